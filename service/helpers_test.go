package service

import (
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/BerniceZTT/crm_reports/models"
)

// decimalEqual 按数值比较 decimal，忽略内部表示
var decimalEqual = cmp.Comparer(func(x, y decimal.Decimal) bool { return x.Equal(y) })

func rec(id int64, name, stage, amount string) models.Record {
	return models.Record{
		ID:     id,
		Kind:   models.RecordKindDeal,
		Name:   name,
		Stage:  stage,
		Amount: models.AmountFromString(amount),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}
