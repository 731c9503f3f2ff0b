package models

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BerniceZTT/crm_reports/utils"
)

// Amount 金额字段
//
// 上游数据里金额可能是数字、字符串、Decimal128 或 null，
// 解码时统一按"解析失败记为0"处理，从不返回错误。
type Amount struct {
	decimal.Decimal
}

// NewAmount 由 decimal 构造金额
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// AmountFromString 解析字符串金额
func AmountFromString(s string) Amount {
	return Amount{Decimal: utils.ParseDecimalOrZero(s)}
}

// AmountFromFloat 浮点数金额，NaN/Inf 记为0
func AmountFromFloat(f float64) Amount {
	return Amount{Decimal: utils.DecimalFromFloat(f)}
}

// UnmarshalJSON 宽松解码
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			a.Decimal = decimal.Zero
			return nil
		}
		a.Decimal = utils.ParseDecimalOrZero(str)
		return nil
	}
	a.Decimal = utils.ParseDecimalOrZero(s)
	return nil
}

// MarshalBSONValue 以 Decimal128 存储
func (a Amount) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d128, err := primitive.ParseDecimal128(a.Decimal.String())
	if err != nil {
		return bson.MarshalValue(a.Decimal.InexactFloat64())
	}
	return bson.MarshalValue(d128)
}

// UnmarshalBSONValue 宽松解码 BSON 值
func (a *Amount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	a.Decimal = decimal.Zero

	switch t {
	case bsontype.Double:
		if f, ok := rv.DoubleOK(); ok {
			a.Decimal = utils.DecimalFromFloat(f)
		}
	case bsontype.Int32:
		if v, ok := rv.Int32OK(); ok {
			a.Decimal = decimal.NewFromInt32(v)
		}
	case bsontype.Int64:
		if v, ok := rv.Int64OK(); ok {
			a.Decimal = decimal.NewFromInt(v)
		}
	case bsontype.Decimal128:
		if v, ok := rv.Decimal128OK(); ok {
			a.Decimal = utils.ParseDecimalOrZero(v.String())
		}
	case bsontype.String:
		if v, ok := rv.StringValueOK(); ok {
			a.Decimal = utils.ParseDecimalOrZero(v)
		}
	}
	return nil
}
