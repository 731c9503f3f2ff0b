package utils

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// normalizeNumeric 去掉货币符号、空白和千分位逗号
func normalizeNumeric(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, CurrencySymbol)
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}

// ParseFloatOrZero 解析浮点数，无法解析或非有限值时返回0
func ParseFloatOrZero(s string) float64 {
	f, err := strconv.ParseFloat(normalizeNumeric(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// 金额十进制指数的允许范围，超出时按浮点数解析
const (
	AmountMaxScale    = 18
	AmountMaxExponent = 18
)

// ParseDecimalOrZero 解析金额字符串，无法解析时返回0
//
// 先按精确十进制解析，失败或指数超出范围时再按浮点数解析（兼容 "1e3"、"+5" 等写法）。
func ParseDecimalOrZero(s string) decimal.Decimal {
	n := normalizeNumeric(s)
	if n == "" {
		return decimal.Zero
	}
	if d, err := decimal.NewFromString(n); err == nil && exponentInRange(d) {
		return d
	}
	return DecimalFromFloat(ParseFloatOrZero(n))
}

func exponentInRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp >= -AmountMaxScale && exp <= AmountMaxExponent
}

// ParseInt 解析整数，带小数时截断；无法解析或超出 int 范围时 ok 为 false
func ParseInt(s string) (int, bool) {
	n := normalizeNumeric(s)
	if n == "" {
		return 0, false
	}
	if i, err := strconv.Atoi(n); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(n, 64)
	if err != nil || math.IsNaN(f) || f >= float64(math.MaxInt) || f < float64(math.MinInt) {
		return 0, false
	}
	return int(f), true
}

// ParseIntOrZero 解析整数，失败返回0
func ParseIntOrZero(s string) int {
	i, _ := ParseInt(s)
	return i
}

// DecimalFromFloat 浮点数转金额，NaN/Inf 视为0，小数位超过 AmountMaxScale 时四舍五入
func DecimalFromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	d := decimal.NewFromFloat(f)
	if d.Exponent() < -AmountMaxScale {
		d = d.Round(AmountMaxScale)
	}
	return d
}
