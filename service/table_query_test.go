package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerniceZTT/crm_reports/models"
)

func names(rows []models.Record) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Name)
	}
	return out
}

func ids(rows []models.Record) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func twentyRecords() []models.Record {
	records := make([]models.Record, 0, 20)
	for i := 1; i <= 20; i++ {
		records = append(records, rec(int64(i), fmt.Sprintf("Company %02d", i), "lead", "100"))
	}
	return records
}

func TestQueryTableSortIsStable(t *testing.T) {
	records := []models.Record{
		rec(1, "B", "lead", "10"),
		rec(2, "A", "lead", "10"),
	}

	asc := QueryTable(records, TableQuery{SortField: SortFieldAmount, SortOrder: SortAsc})
	assert.Equal(t, []string{"B", "A"}, names(asc.Rows))

	desc := QueryTable(records, TableQuery{SortField: SortFieldAmount, SortOrder: SortDesc})
	assert.Equal(t, []string{"B", "A"}, names(desc.Rows))

	byName := QueryTable(records, TableQuery{SortField: SortFieldName, SortOrder: SortAsc})
	assert.Equal(t, []string{"A", "B"}, names(byName.Rows))

	assert.Equal(t, []string{"B", "A"}, names(records), "input is not reordered")
}

func TestQueryTableSortByAmountAndDate(t *testing.T) {
	late := rec(1, "late", "lead", "5")
	late.CloseDate = models.NewFlexTime(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	early := rec(2, "early", "lead", "50")
	early.CloseDate = models.NewFlexTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	missing := rec(3, "missing", "lead", "abc")

	records := []models.Record{late, early, missing}

	byAmount := QueryTable(records, TableQuery{SortField: SortFieldAmount, SortOrder: SortDesc})
	assert.Equal(t, []int64{2, 1, 3}, ids(byAmount.Rows))

	byDate := QueryTable(records, TableQuery{SortField: SortFieldCloseDate, SortOrder: SortAsc})
	assert.Equal(t, []int64{3, 2, 1}, ids(byDate.Rows), "无效日期按 epoch 0 排在最前")
}

func TestQueryTableUnknownSortFieldKeepsOrder(t *testing.T) {
	records := twentyRecords()[:3]
	page := QueryTable(records, TableQuery{SortField: "color", SortOrder: SortDesc})
	assert.Equal(t, []int64{1, 2, 3}, ids(page.Rows))
}

func TestQueryTablePagination(t *testing.T) {
	records := twentyRecords()

	page := QueryTable(records, TableQuery{Page: 4, PageSize: 5})
	assert.Equal(t, []int64{16, 17, 18, 19, 20}, ids(page.Rows))
	assert.Equal(t, 4, page.TotalPages)
	assert.Equal(t, 20, page.Total)

	clamped := QueryTable(records, TableQuery{Page: 5, PageSize: 5})
	assert.Equal(t, []int64{16, 17, 18, 19, 20}, ids(clamped.Rows))
	assert.Equal(t, 4, clamped.Page)

	far := QueryTable(records, TableQuery{Page: 100, PageSize: 5})
	assert.Equal(t, []int64{16, 17, 18, 19, 20}, ids(far.Rows))
	assert.Equal(t, 4, far.Page)

	first := QueryTable(records, TableQuery{Page: -3, PageSize: 0})
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, DefaultPageSize, first.PageSize)
	assert.Len(t, first.Rows, DefaultPageSize)
}

func TestQueryTablePartialLastPage(t *testing.T) {
	page := QueryTable(twentyRecords()[:7], TableQuery{Page: 9, PageSize: 3})
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, []int64{7}, ids(page.Rows))
}

func TestQueryTableEmpty(t *testing.T) {
	page := QueryTable(nil, TableQuery{Page: 3, PageSize: 5})
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Rows)
}

func TestQueryTableSearch(t *testing.T) {
	records := []models.Record{
		rec(1, "Minera Andina", "lead", "1500"),
		rec(2, "Textiles Lima", "cierre_ganado", "800"),
		rec(3, "Pesquera Sur", "propuesta", "2750.5"),
	}

	assert.Equal(t, []int64{1}, ids(QueryTable(records, TableQuery{SearchText: "ANDINA"}).Rows))
	assert.Equal(t, []int64{2}, ids(QueryTable(records, TableQuery{SearchText: "won"}).Rows), "匹配阶段标签")
	assert.Equal(t, []int64{3}, ids(QueryTable(records, TableQuery{SearchText: "2750"}).Rows), "匹配金额")
	assert.Len(t, QueryTable(records, TableQuery{SearchText: "  "}).Rows, 3)
	assert.Empty(t, QueryTable(records, TableQuery{SearchText: "zzz"}).Rows)
}

func TestTableQueryResetsPage(t *testing.T) {
	q := TableQuery{Page: 4, PageSize: 5}

	searched := q.WithSearch("lima")
	assert.Equal(t, 1, searched.Page)
	assert.Equal(t, "lima", searched.SearchText)
	assert.Equal(t, 4, q.Page)

	sorted := q.WithSort(SortFieldName, SortDesc)
	require.Equal(t, 1, sorted.Page)
	assert.Equal(t, SortDesc, sorted.SortOrder)
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, SortAsc, ParseSortOrder("ascend"))
	assert.Equal(t, SortAsc, ParseSortOrder(""))
	assert.Equal(t, SortDesc, ParseSortOrder("DESC"))
	assert.Equal(t, SortDesc, ParseSortOrder("descend"))
}
