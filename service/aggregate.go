package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/BerniceZTT/crm_reports/models"
)

// DefaultTopNOther other 阶段默认展示数量
const DefaultTopNOther = 5

// 空输入时的占位分桶
const (
	PlaceholderKey   = "none"
	PlaceholderLabel = "No data"
)

// UnassignedAdvisorName 未分配顾问的展示名称
const UnassignedAdvisorName = "Unassigned"

// AggregateOptions 聚合参数
type AggregateOptions struct {
	TopNOther int // <= 0 时使用 DefaultTopNOther
}

func (o AggregateOptions) topN() int {
	if o.TopNOther <= 0 {
		return DefaultTopNOther
	}
	return o.TopNOther
}

// GroupByStage 单次遍历按阶段分桶，返回未截断、已排序的全部分桶
func GroupByStage(records []models.Record) []models.StageBucket {
	index := make(map[string]int)
	buckets := make([]models.StageBucket, 0)

	for _, r := range records {
		c := ClassifyStage(r.Stage)
		i, ok := index[c.Key]
		if !ok {
			i = len(buckets)
			index[c.Key] = i
			buckets = append(buckets, models.StageBucket{
				StageKey:    c.Key,
				Label:       c.Label,
				Group:       c.Group,
				TotalAmount: decimal.Zero,
			})
		}
		buckets[i].Count++
		buckets[i].TotalAmount = buckets[i].TotalAmount.Add(r.Amount.Decimal)
	}

	return orderBuckets(buckets)
}

// orderBuckets won 在前、lost 其次，其余按数量降序，数量相同保持首次出现顺序
func orderBuckets(buckets []models.StageBucket) []models.StageBucket {
	ordered := make([]models.StageBucket, 0, len(buckets))
	others := make([]models.StageBucket, 0, len(buckets))

	for _, group := range []models.StageGroup{models.StageGroupWon, models.StageGroupLost} {
		for _, b := range buckets {
			if b.Group == group {
				ordered = append(ordered, b)
			}
		}
	}
	for _, b := range buckets {
		if b.Group == models.StageGroupOther {
			others = append(others, b)
		}
	}

	sort.SliceStable(others, func(i, j int) bool {
		return others[i].Count > others[j].Count
	})
	return append(ordered, others...)
}

// AggregateStages 阶段聚合，other 阶段截断为前 TopNOther 个
func AggregateStages(records []models.Record, opts AggregateOptions) models.AggregateResult {
	result := models.AggregateResult{
		Total:       len(records),
		TotalAmount: decimal.Zero,
	}
	for _, r := range records {
		result.TotalAmount = result.TotalAmount.Add(r.Amount.Decimal)
	}

	if len(records) == 0 {
		result.Buckets = []models.StageBucket{placeholderBucket()}
		return result
	}

	topN := opts.topN()
	shown := 0
	result.Buckets = make([]models.StageBucket, 0, topN+2)
	for _, b := range GroupByStage(records) {
		if b.Group == models.StageGroupOther {
			if shown >= topN {
				result.HiddenOther++
				continue
			}
			shown++
		}
		result.Buckets = append(result.Buckets, b)
	}
	return result
}

func placeholderBucket() models.StageBucket {
	return models.StageBucket{
		StageKey:    PlaceholderKey,
		Label:       PlaceholderLabel,
		Group:       models.StageGroupOther,
		Count:       0,
		TotalAmount: decimal.Zero,
	}
}

// ChartSeries 转换为图表数据
func ChartSeries(buckets []models.StageBucket) []models.ChartDataItem {
	items := make([]models.ChartDataItem, 0, len(buckets))
	for _, b := range buckets {
		items = append(items, models.ChartDataItem{
			Key:    b.StageKey,
			Name:   b.Label,
			Value:  b.Count,
			Amount: b.TotalAmount,
		})
	}
	return items
}

// AggregateByAdvisor 按顾问分组后分别做阶段聚合
//
// 顾问按记录数降序，数量相同保持首次出现顺序。
func AggregateByAdvisor(records []models.Record, opts AggregateOptions) []models.AdvisorSummary {
	index := make(map[int64]int)
	names := make([]string, 0)
	groups := make([][]models.Record, 0)
	ids := make([]int64, 0)

	for _, r := range records {
		i, ok := index[r.AdvisorID]
		if !ok {
			i = len(groups)
			index[r.AdvisorID] = i
			groups = append(groups, nil)
			ids = append(ids, r.AdvisorID)
			names = append(names, "")
		}
		groups[i] = append(groups[i], r)
		if names[i] == "" && r.AdvisorName != "" {
			names[i] = r.AdvisorName
		}
	}

	summaries := make([]models.AdvisorSummary, 0, len(groups))
	for i, g := range groups {
		name := names[i]
		if name == "" {
			name = UnassignedAdvisorName
		}
		summaries = append(summaries, models.AdvisorSummary{
			AdvisorID:   ids[i],
			AdvisorName: name,
			Aggregate:   AggregateStages(g, opts),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Aggregate.Total > summaries[j].Aggregate.Total
	})
	return summaries
}
