package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/BerniceZTT/crm_reports/models"
)

// MovementCategory 周变动类型
type MovementCategory string

const (
	MovementAdvance    MovementCategory = "advance"
	MovementNewEntry   MovementCategory = "newEntry"
	MovementRegression MovementCategory = "regression"
	MovementUnchanged  MovementCategory = "unchanged"
)

// ClassifyMovement 判断实体本周的变动类型
//
// 周初没有阶段记为新进入；任一阶段不在排序表中时按未变动处理，unranked 返回 true。
func ClassifyMovement(previous *string, current string) (category MovementCategory, unranked bool) {
	if previous == nil || NormalizeStage(*previous) == "" {
		return MovementNewEntry, false
	}

	prevRank, okPrev := ClassifyStage(*previous).Rank()
	curRank, okCur := ClassifyStage(current).Rank()
	if !okPrev || !okCur {
		return MovementUnchanged, true
	}

	switch {
	case curRank > prevRank:
		return MovementAdvance, false
	case curRank < prevRank:
		return MovementRegression, false
	default:
		return MovementUnchanged, false
	}
}

// ComputeWeeklyMovement 按 (年, 周) 统计阶段变动，windowWeeks > 0 时只保留最近的 N 周
func ComputeWeeklyMovement(transitions []models.EntityStageTransition, windowWeeks int) []models.WeeklyMovementRow {
	rows := computeMovementRows(transitions)
	return withTotals(lastWeeks(rows, windowWeeks))
}

// BuildWeeklyReport 计算周变动并合并已保存的周目标
func BuildWeeklyReport(transitions []models.EntityStageTransition, goals []models.WeeklyGoal, windowWeeks int) []models.WeeklyMovementRow {
	rows := computeMovementRows(transitions)
	for _, g := range goals {
		rows = applyOverride(rows, g.Key(), amountPtr(g.Target), amountPtr(g.RevenueOverride))
	}
	return withTotals(lastWeeks(rows, windowWeeks))
}

// ApplyWeeklyOverride 只修改目标行的覆盖字段，对应周不存在时新建零计数行
//
// 入参 rows 不会被修改。target 或 revenueOverride 为 nil 时保留原值。
func ApplyWeeklyOverride(rows []models.WeeklyMovementRow, year, week int, target, revenueOverride *decimal.Decimal) []models.WeeklyMovementRow {
	key := models.WeekKey{Year: year, Week: week}
	out := append([]models.WeeklyMovementRow(nil), rows...)
	if !key.Valid() {
		return out
	}
	return withTotals(applyOverride(out, key, target, revenueOverride))
}

// UnrankedTotal 汇总按未变动兜底的实体数
func UnrankedTotal(rows []models.WeeklyMovementRow) int {
	total := 0
	for _, r := range rows {
		total += r.UnrankedCount
	}
	return total
}

type entityWeek struct {
	key models.WeekKey
	id  int64
}

func computeMovementRows(transitions []models.EntityStageTransition) []models.WeeklyMovementRow {
	// 同一实体同一周重复出现时以最后一条为准，实体ID为0时不去重
	latest := make(map[entityWeek]int)
	order := make([]int, 0, len(transitions))
	for i, t := range transitions {
		if !t.Key().Valid() || NormalizeStage(t.CurrentStage) == "" {
			continue
		}
		if t.EntityID == 0 {
			order = append(order, i)
			continue
		}
		ek := entityWeek{key: t.Key(), id: t.EntityID}
		if prev, ok := latest[ek]; ok {
			order[prev] = i
			continue
		}
		latest[ek] = len(order)
		order = append(order, i)
	}

	rowIndex := make(map[models.WeekKey]int)
	rows := make([]models.WeeklyMovementRow, 0)
	for _, ti := range order {
		t := transitions[ti]
		i, ok := rowIndex[t.Key()]
		if !ok {
			i = len(rows)
			rowIndex[t.Key()] = i
			rows = append(rows, newMovementRow(t.Key()))
		}

		row := &rows[i]
		category, unranked := ClassifyMovement(t.PreviousStage, t.CurrentStage)
		amount := t.Amount.Decimal
		row.EvaluatedCount++
		if unranked {
			row.UnrankedCount++
		}

		switch category {
		case MovementAdvance:
			row.AdvanceCount++
			row.AdvanceAmount = row.AdvanceAmount.Add(amount)
		case MovementNewEntry:
			row.NewEntryCount++
			row.NewEntryAmount = row.NewEntryAmount.Add(amount)
		case MovementRegression:
			row.RegressionCount++
			row.RegressionAmount = row.RegressionAmount.Add(amount)
		default:
			row.UnchangedCount++
			row.UnchangedAmount = row.UnchangedAmount.Add(amount)
		}
	}

	sortRows(rows)
	return rows
}

func newMovementRow(key models.WeekKey) models.WeeklyMovementRow {
	return models.WeeklyMovementRow{
		Year:             key.Year,
		Week:             key.Week,
		AdvanceAmount:    decimal.Zero,
		NewEntryAmount:   decimal.Zero,
		RegressionAmount: decimal.Zero,
		UnchangedAmount:  decimal.Zero,
		Target:           decimal.Zero,
		Actual:           decimal.Zero,
		CumulativeActual: decimal.Zero,
		CumulativeTarget: decimal.Zero,
	}
}

// applyOverride 原地修改 rows，必要时追加新行并重新排序
func applyOverride(rows []models.WeeklyMovementRow, key models.WeekKey, target, revenueOverride *decimal.Decimal) []models.WeeklyMovementRow {
	if !key.Valid() {
		return rows
	}

	i := -1
	for idx := range rows {
		if rows[idx].Key() == key {
			i = idx
			break
		}
	}
	if i < 0 {
		rows = append(rows, newMovementRow(key))
		i = len(rows) - 1
	}

	if target != nil {
		rows[i].Target = *target
	}
	if revenueOverride != nil {
		v := *revenueOverride
		rows[i].RevenueOverride = &v
	}

	sortRows(rows)
	return rows
}

func sortRows(rows []models.WeeklyMovementRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Key().Less(rows[j].Key())
	})
}

func lastWeeks(rows []models.WeeklyMovementRow, windowWeeks int) []models.WeeklyMovementRow {
	if windowWeeks <= 0 || len(rows) <= windowWeeks {
		return rows
	}
	return rows[len(rows)-windowWeeks:]
}

// withTotals 计算实际值与累计值
func withTotals(rows []models.WeeklyMovementRow) []models.WeeklyMovementRow {
	cumActual := decimal.Zero
	cumTarget := decimal.Zero
	for i := range rows {
		rows[i].Actual = rows[i].ActualAmount()
		cumActual = cumActual.Add(rows[i].Actual)
		cumTarget = cumTarget.Add(rows[i].Target)
		rows[i].CumulativeActual = cumActual
		rows[i].CumulativeTarget = cumTarget
	}
	return rows
}

func amountPtr(a *models.Amount) *decimal.Decimal {
	if a == nil {
		return nil
	}
	d := a.Decimal
	return &d
}
