// Package amount provides native-token amount handling for client operations.
package amount

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount 表示原生代币金额（内部使用最小单位 wei）
//
// 金额系统：
//   - 1 ETH = 10^18 wei
//   - 使用 *big.Int 确保精确计算，避免浮点数精度问题
//   - 对外展示与输入使用整币单位的十进制字符串
type Amount struct {
	wei *big.Int
}

const (
	// Decimals 原生代币的小数位数
	Decimals = 18
)

var (
	// ErrInvalidAmount 无效的金额
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrTooPrecise 小数位超过最小单位精度
	ErrTooPrecise = errors.New("amount exceeds 18 decimal places")

	// ErrNegativeAmount 负数金额
	ErrNegativeAmount = errors.New("negative amount")

	// 可选整数部分、可选小数部分、至少一位数字；不接受科学计数法和负号
	amountPattern = regexp.MustCompile(`^(\d+(\.\d+)?|\.\d+)$`)
)

// Parse 从整币单位的十进制字符串创建Amount
//
// 示例：
//
//	"1"    → 1000000000000000000 wei
//	"1.5"  → 1500000000000000000 wei
//	".001" → 1000000000000000 wei
func Parse(s string) (*Amount, error) {
	s = strings.TrimSpace(s)
	if !amountPattern.MatchString(s) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > Decimals {
		return nil, fmt.Errorf("%w: %q", ErrTooPrecise, s)
	}

	if s[0] == '.' {
		s = "0" + s
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, err)
	}

	return &Amount{wei: d.Shift(Decimals).BigInt()}, nil
}

// FromWei 从最小单位创建Amount
func FromWei(wei *big.Int) (*Amount, error) {
	if wei == nil {
		return nil, fmt.Errorf("%w: nil value", ErrInvalidAmount)
	}
	if wei.Sign() < 0 {
		return nil, ErrNegativeAmount
	}

	// 复制value，避免外部修改
	return &Amount{wei: new(big.Int).Set(wei)}, nil
}

// MustFromWei 从最小单位创建Amount，负数或nil时panic
func MustFromWei(wei *big.Int) *Amount {
	a, err := FromWei(wei)
	if err != nil {
		panic(err)
	}
	return a
}

// Add 加法：a + b
func (a *Amount) Add(b *Amount) *Amount {
	return &Amount{wei: new(big.Int).Add(a.Wei(), b.Wei())}
}

// Cmp 比较两个金额
func (a *Amount) Cmp(b *Amount) int {
	return a.Wei().Cmp(b.Wei())
}

// LessThan 判断 a < b
func (a *Amount) LessThan(b *Amount) bool {
	return a.Cmp(b) < 0
}

// Wei 返回最小单位的big.Int副本
func (a *Amount) Wei() *big.Int {
	if a == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.wei)
}

// String 转换为整币单位字符串（去除末尾的0）
//
// 示例：
//
//	1500000000000000000 → "1.5"
//	1 → "0.000000000000000001"
//	0 → "0"
func (a *Amount) String() string {
	return decimal.NewFromBigInt(a.Wei(), -Decimals).String()
}

// Gwei 以 gwei 为单位格式化最小单位数值
func Gwei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -9).String()
}
