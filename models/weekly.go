package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// 周序号取值范围（ISO 周，部分年份有第53周）
const (
	MinWeek = 1
	MaxWeek = 53
)

// WeekKey (年, 周) 复合键
type WeekKey struct {
	Year int `json:"year" bson:"year"`
	Week int `json:"week" bson:"week"`
}

// Valid 判断年周是否合法
func (k WeekKey) Valid() bool {
	return k.Year > 0 && k.Week >= MinWeek && k.Week <= MaxWeek
}

// Less 按 (年, 周) 升序比较
func (k WeekKey) Less(o WeekKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Week < o.Week
}

// String 形如 2025-W07
func (k WeekKey) String() string {
	return fmt.Sprintf("%04d-W%02d", k.Year, k.Week)
}

// WeekKeyOf 取时间所在的 ISO 周
func WeekKeyOf(t time.Time) WeekKey {
	y, w := t.ISOWeek()
	return WeekKey{Year: y, Week: w}
}

// ParseWeekKey 解析 "2025-W07" 或 "2025-7"
func ParseWeekKey(s string) (WeekKey, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return WeekKey{}, fmt.Errorf("无效的周格式: %q", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return WeekKey{}, fmt.Errorf("无效的年份: %q", parts[0])
	}
	week, err := strconv.Atoi(strings.TrimLeft(parts[1], "Ww"))
	if err != nil {
		return WeekKey{}, fmt.Errorf("无效的周序号: %q", parts[1])
	}
	k := WeekKey{Year: year, Week: week}
	if !k.Valid() {
		return WeekKey{}, fmt.Errorf("周序号超出范围: %s", s)
	}
	return k, nil
}

// WeekRange 闭区间周范围，端点为空表示不限
type WeekRange struct {
	From *WeekKey `json:"from,omitempty"`
	To   *WeekKey `json:"to,omitempty"`
}

// Contains 判断周是否在范围内
func (r WeekRange) Contains(k WeekKey) bool {
	if r.From != nil && k.Less(*r.From) {
		return false
	}
	if r.To != nil && r.To.Less(k) {
		return false
	}
	return true
}

// EntityStageTransition 某实体本周阶段与周初阶段的对比，由上游提供
type EntityStageTransition struct {
	EntityID      int64   `json:"entityId" bson:"entityId"`
	EntityName    string  `json:"entityName" bson:"entityName"`
	Year          int     `json:"year" bson:"year"`
	Week          int     `json:"week" bson:"week"`
	PreviousStage *string `json:"previousStage" bson:"previousStage"`
	CurrentStage  string  `json:"currentStage" bson:"currentStage"`
	Amount        Amount  `json:"amount" bson:"amount"`
}

// Key 返回所在周
func (t EntityStageTransition) Key() WeekKey {
	return WeekKey{Year: t.Year, Week: t.Week}
}

// WeeklyGoal 手工录入的周目标与实际营收覆盖值
type WeeklyGoal struct {
	Year            int       `json:"year" bson:"year"`
	Week            int       `json:"week" bson:"week"`
	Target          *Amount   `json:"target,omitempty" bson:"target,omitempty"`
	RevenueOverride *Amount   `json:"revenueOverride,omitempty" bson:"revenueOverride,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Key 返回所在周
func (g WeeklyGoal) Key() WeekKey {
	return WeekKey{Year: g.Year, Week: g.Week}
}

// WeeklyGoalRequest 设置周目标请求
type WeeklyGoalRequest struct {
	Year            int     `json:"year" binding:"required,min=1"`
	Week            int     `json:"week" binding:"required,min=1,max=53"`
	Target          *Amount `json:"target"`
	RevenueOverride *Amount `json:"revenueOverride"`
}

// WeeklyMovementRow 每周阶段变动统计
type WeeklyMovementRow struct {
	Year int `json:"year"`
	Week int `json:"week"`

	AdvanceCount    int `json:"advanceCount"`
	NewEntryCount   int `json:"newEntryCount"`
	RegressionCount int `json:"regressionCount"`
	UnchangedCount  int `json:"unchangedCount"`
	EvaluatedCount  int `json:"evaluatedCount"`
	UnrankedCount   int `json:"unrankedCount"` // 阶段不在排序表中、按未变动计入的数量

	AdvanceAmount    decimal.Decimal `json:"advanceAmount"`
	NewEntryAmount   decimal.Decimal `json:"newEntryAmount"`
	RegressionAmount decimal.Decimal `json:"regressionAmount"`
	UnchangedAmount  decimal.Decimal `json:"unchangedAmount"`

	Target          decimal.Decimal  `json:"target"`
	RevenueOverride *decimal.Decimal `json:"revenueOverride"`

	Actual           decimal.Decimal `json:"actual"`
	CumulativeActual decimal.Decimal `json:"cumulativeActual"`
	CumulativeTarget decimal.Decimal `json:"cumulativeTarget"`
}

// Key 返回所在周
func (r WeeklyMovementRow) Key() WeekKey {
	return WeekKey{Year: r.Year, Week: r.Week}
}

// ComputedAmount 四类变动金额之和
func (r WeeklyMovementRow) ComputedAmount() decimal.Decimal {
	return r.AdvanceAmount.Add(r.NewEntryAmount).Add(r.RegressionAmount).Add(r.UnchangedAmount)
}

// ActualAmount 实际营收，存在覆盖值时以覆盖值为准
func (r WeeklyMovementRow) ActualAmount() decimal.Decimal {
	if r.RevenueOverride != nil {
		return *r.RevenueOverride
	}
	return r.ComputedAmount()
}
