package wallet

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	walleterrors "github.com/weisyn/wallet/client/core/errors"
)

var (
	// ErrInvalidAddress 地址格式错误
	ErrInvalidAddress = errors.New("invalid address: expected 0x followed by 40 hex digits")

	// ErrInvalidPrivateKey 私钥格式错误
	ErrInvalidPrivateKey = errors.New("invalid private key: expected 0x followed by 64 hex digits")

	addressPattern    = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	privateKeyPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
)

// IsAddress 判断字符串是否为合法地址
func IsAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// IsPrivateKey 判断字符串是否符合私钥格式
func IsPrivateKey(s string) bool {
	return privateKeyPattern.MatchString(s)
}

// ParseAddress 解析地址，格式错误时返回 ValidationError
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !addressPattern.MatchString(s) {
		return common.Address{}, walleterrors.Validation("parseAddress", fmt.Errorf("%w: %q", ErrInvalidAddress, s))
	}
	return common.HexToAddress(s), nil
}
