package utils

import (
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencySymbol 系统只处理秘鲁索尔（PEN）
const CurrencySymbol = "S/"

// currencyLocale 千分位分组规则，es-PE 与 en 一致（逗号分组）
var currencyLocale = language.English

// FormatCurrency 格式化金额，四舍五入到整数，例如 "S/ 1,235"
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return CurrencySymbol + " 0"
	}
	return FormatCurrencyDecimal(decimal.NewFromFloat(v))
}

// FormatCurrencyDecimal 格式化金额，负数形如 "-S/ 1,235"
func FormatCurrencyDecimal(d decimal.Decimal) string {
	r := d.Round(0)
	if r.IsZero() {
		return CurrencySymbol + " 0"
	}

	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Abs()
	}

	return sign + CurrencySymbol + " " + groupDigits(r.BigInt())
}

// groupDigits 非负整数的千分位分组，超出 int64 的部分按三位一组手动拼接
func groupDigits(n *big.Int) string {
	if n.IsInt64() {
		return message.NewPrinter(currencyLocale).Sprintf("%d", n.Int64())
	}
	digits := n.String()
	var b strings.Builder
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
