// Package wallet provides key handling and transaction signing for client operations.
package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	walleterrors "github.com/weisyn/wallet/client/core/errors"
)

// Signer 签名器接口 - 由私钥派生的签名身份
type Signer interface {
	// Address 返回签名者地址
	Address() common.Address

	// SignTx 使用链ID对应的签名规则签名交易
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// KeySigner 基于明文私钥的签名器
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewKeySigner 从十六进制私钥创建签名器
//
// 私钥格式：0x 前缀 + 64 位十六进制
func NewKeySigner(hexKey string) (*KeySigner, error) {
	key, err := ParsePrivateKey(hexKey)
	if err != nil {
		return nil, err
	}

	return &KeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address 返回签名者地址
func (s *KeySigner) Address() common.Address {
	return s.address
}

// SignTx 签名交易
func (s *KeySigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return signed, nil
}

// ParsePrivateKey 解析十六进制私钥
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimSpace(hexKey)
	if !privateKeyPattern.MatchString(hexKey) {
		// 不回显私钥内容
		return nil, walleterrors.Validation("parsePrivateKey", ErrInvalidPrivateKey)
	}

	key, err := crypto.HexToECDSA(hexKey[2:])
	if err != nil {
		return nil, walleterrors.Validation("parsePrivateKey", fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err))
	}

	return key, nil
}
