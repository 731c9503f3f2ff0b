package utils

import (
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"zero", 0, "S/ 0"},
		{"NaN", math.NaN(), "S/ 0"},
		{"positive infinity", math.Inf(1), "S/ 0"},
		{"negative infinity", math.Inf(-1), "S/ 0"},
		{"rounds half up", 1234.5, "S/ 1,235"},
		{"small", 999, "S/ 999"},
		{"millions", 1234567.4, "S/ 1,234,567"},
		{"negative", -1234.6, "-S/ 1,235"},
		{"negative rounds to zero", -0.4, "S/ 0"},
		{"beyond int64", 1e20, "S/ 100,000,000,000,000,000,000"},
		{"negative beyond int64", -1e19, "-S/ 10,000,000,000,000,000,000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrency(tt.in))
		})
	}
}

func TestFormatCurrencyDecimal(t *testing.T) {
	assert.Equal(t, "S/ 10,000", FormatCurrencyDecimal(decimal.NewFromInt(10000)))
	assert.Equal(t, "S/ 0", FormatCurrencyDecimal(decimal.Zero))
	assert.Equal(t, "S/ 1", FormatCurrencyDecimal(decimal.RequireFromString("0.5")))
	assert.Equal(t, "S/ 9,223,372,036,854,775,807", FormatCurrencyDecimal(decimal.RequireFromString("9223372036854775807")))
	assert.Equal(t, "S/ 9,223,372,036,854,775,808", FormatCurrencyDecimal(decimal.RequireFromString("9223372036854775808")))
	assert.Equal(t, "-S/ 123,456,789,012,345,678,901", FormatCurrencyDecimal(decimal.RequireFromString("-123456789012345678901.2")))
}

func TestFormatCurrencyLargestFloat(t *testing.T) {
	got := FormatCurrency(math.MaxFloat64)
	assert.True(t, strings.HasPrefix(got, "S/ 179,769,313,486,231,57"), got)
	assert.NotContains(t, got, "-")
	assert.Equal(t, "-"+got, FormatCurrency(-math.MaxFloat64))
}
