package service

import (
	"sort"
	"strings"

	"github.com/BerniceZTT/crm_reports/models"
)

// DefaultPageSize 默认每页条数
const DefaultPageSize = 10

// SortOrder 排序方向
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder 兼容 asc/ascend/desc/descend，其他值按升序
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desc", "descend":
		return SortDesc
	default:
		return SortAsc
	}
}

// 可排序字段
const (
	SortFieldID        = "id"
	SortFieldName      = "name"
	SortFieldStage     = "stage"
	SortFieldAmount    = "amount"
	SortFieldRevenue   = "revenue"
	SortFieldCloseDate = "closeDate"
)

// TableQuery 表格查询参数，页码从1开始
type TableQuery struct {
	SearchText string    `json:"searchText"`
	SortField  string    `json:"sortField"`
	SortOrder  SortOrder `json:"sortOrder"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
}

// WithSearch 修改搜索词并回到第1页
func (q TableQuery) WithSearch(text string) TableQuery {
	q.SearchText = text
	q.Page = 1
	return q
}

// WithSort 修改排序并回到第1页
func (q TableQuery) WithSort(field string, order SortOrder) TableQuery {
	q.SortField = field
	q.SortOrder = order
	q.Page = 1
	return q
}

// TablePage 表格分页结果
type TablePage struct {
	Rows       []models.Record `json:"rows"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	Total      int             `json:"total"`
	TotalPages int             `json:"totalPages"`
}

// QueryTable 内存中的搜索、稳定排序与分页，不修改入参
func QueryTable(records []models.Record, q TableQuery) TablePage {
	rows := filterRecords(records, q.SearchText)
	sortRecords(rows, q.SortField, q.SortOrder)

	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(rows)
	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}

	return TablePage{
		Rows:       rows[start:end],
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: totalPages,
	}
}

// filterRecords 名称、阶段标签、金额的不区分大小写子串匹配，返回新切片
func filterRecords(records []models.Record, searchText string) []models.Record {
	needle := strings.ToLower(strings.TrimSpace(searchText))
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if needle == "" || recordMatches(r, needle) {
			out = append(out, r)
		}
	}
	return out
}

func recordMatches(r models.Record, needle string) bool {
	fields := []string{
		r.Name,
		ClassifyStage(r.Stage).Label,
		r.Amount.Decimal.String(),
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func sortRecords(rows []models.Record, field string, order SortOrder) {
	compare := recordComparator(field)
	if compare == nil {
		return
	}
	desc := order == SortDesc
	sort.SliceStable(rows, func(i, j int) bool {
		c := compare(rows[i], rows[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// recordComparator 按字段返回比较函数，未知字段返回 nil
func recordComparator(field string) func(a, b models.Record) int {
	switch field {
	case SortFieldID:
		return func(a, b models.Record) int { return compareInt64(a.ID, b.ID) }
	case SortFieldName:
		return func(a, b models.Record) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	case SortFieldStage:
		return func(a, b models.Record) int {
			return strings.Compare(
				strings.ToLower(ClassifyStage(a.Stage).Label),
				strings.ToLower(ClassifyStage(b.Stage).Label),
			)
		}
	case SortFieldAmount, SortFieldRevenue:
		return func(a, b models.Record) int { return a.Amount.Decimal.Cmp(b.Amount.Decimal) }
	case SortFieldCloseDate:
		return func(a, b models.Record) int {
			return compareInt64(a.CloseDate.UnixMilli(), b.CloseDate.UnixMilli())
		}
	}
	return nil
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
