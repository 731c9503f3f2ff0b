package models

import "github.com/shopspring/decimal"

// StageGroup 阶段归类
type StageGroup string

const (
	StageGroupWon   StageGroup = "won"
	StageGroupLost  StageGroup = "lost"
	StageGroupOther StageGroup = "other"
)

// 图表数据项
type ChartDataItem struct {
	Key    string          `json:"key"`
	Name   string          `json:"name"`
	Value  int             `json:"value"`
	Amount decimal.Decimal `json:"amount"`
}

// StageBucket 按阶段聚合的数量与金额
type StageBucket struct {
	StageKey    string          `json:"stageKey"`
	Label       string          `json:"label"`
	Group       StageGroup      `json:"group"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// AggregateResult 阶段聚合结果
type AggregateResult struct {
	Buckets     []StageBucket   `json:"buckets"`
	Total       int             `json:"total"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	HiddenOther int             `json:"hiddenOther"` // 被截断的其他阶段数
}

// AdvisorSummary 单个顾问名下记录的阶段分布
type AdvisorSummary struct {
	AdvisorID   int64           `json:"advisorId"`
	AdvisorName string          `json:"advisorName"`
	Aggregate   AggregateResult `json:"aggregate"`
}

// StageReportResponse 阶段分布报表响应
type StageReportResponse struct {
	Aggregate            AggregateResult `json:"aggregate"`
	Chart                []ChartDataItem `json:"chart"`
	TotalAmountFormatted string          `json:"totalAmountFormatted"`
}

// WeeklyReportResponse 周变动报表响应
type WeeklyReportResponse struct {
	Rows          []WeeklyMovementRow `json:"rows"`
	UnrankedTotal int                 `json:"unrankedTotal"`
}

// 数据看板响应结构
type DashboardDataResponse struct {
	DealCount    int `json:"dealCount"`    // 商机总数
	CompanyCount int `json:"companyCount"` // 公司总数

	DealsByStage     AggregateResult `json:"dealsByStage"`
	CompaniesByStage AggregateResult `json:"companiesByStage"`
	DealChart        []ChartDataItem `json:"dealChart"`

	WonAmount          decimal.Decimal `json:"wonAmount"`
	WonAmountFormatted string          `json:"wonAmountFormatted"`
	PipelineFormatted  string          `json:"pipelineFormatted"` // 全部商机金额

	WeeklyMovement []WeeklyMovementRow `json:"weeklyMovement"`
}
