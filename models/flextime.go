package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/BerniceZTT/crm_reports/utils"
)

// 支持的日期格式
var flexTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FlexTime 可空时间，非法或缺失时 Valid 为 false
type FlexTime struct {
	Time  time.Time
	Valid bool
}

// NewFlexTime 构造有效时间
func NewFlexTime(t time.Time) FlexTime {
	return FlexTime{Time: t, Valid: true}
}

// ParseFlexTime 按支持的格式解析，失败返回无效时间
func ParseFlexTime(s string) FlexTime {
	s = strings.TrimSpace(s)
	if s == "" {
		return FlexTime{}
	}
	for _, layout := range flexTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return NewFlexTime(t)
		}
	}
	return FlexTime{}
}

// UnixMilli 毫秒时间戳，无效时间按 epoch 0 处理
func (t FlexTime) UnixMilli() int64 {
	if !t.Valid {
		return 0
	}
	return t.Time.UnixMilli()
}

// MarshalJSON 无效时间输出 null
func (t FlexTime) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// UnmarshalJSON 支持字符串日期与毫秒时间戳
func (t *FlexTime) UnmarshalJSON(b []byte) error {
	*t = FlexTime{}
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		*t = ParseFlexTime(str)
		return nil
	}
	if ms := utils.ParseFloatOrZero(s); ms != 0 {
		*t = NewFlexTime(time.UnixMilli(int64(ms)).UTC())
	}
	return nil
}

// MarshalBSONValue 无效时间存为 null
func (t FlexTime) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !t.Valid {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(t.Time)
}

// UnmarshalBSONValue 支持 DateTime、字符串与数值时间戳
func (t *FlexTime) UnmarshalBSONValue(typ bsontype.Type, data []byte) error {
	*t = FlexTime{}
	rv := bson.RawValue{Type: typ, Value: data}

	switch typ {
	case bsontype.DateTime:
		if v, ok := rv.TimeOK(); ok {
			*t = NewFlexTime(v.UTC())
		}
	case bsontype.String:
		if v, ok := rv.StringValueOK(); ok {
			*t = ParseFlexTime(v)
		}
	case bsontype.Int64:
		if v, ok := rv.Int64OK(); ok && v != 0 {
			*t = NewFlexTime(time.UnixMilli(v).UTC())
		}
	case bsontype.Double:
		if v, ok := rv.DoubleOK(); ok && v != 0 {
			*t = NewFlexTime(time.UnixMilli(int64(v)).UTC())
		}
	}
	return nil
}
