package repository

import (
	"context"
	"errors"

	"github.com/BerniceZTT/crm_reports/models"
)

// 集合名
const (
	DealsCollection            = "deals"
	CompaniesCollection        = "companies"
	TransitionsCollection      = "companyStageTransitions"
	WeeklyGoalsCollection      = "weeklyGoals"
	ApiOperationLogsCollection = "apiOperationLogs"
)

// AllCollections 服务使用的全部集合
var AllCollections = []string{
	DealsCollection,
	CompaniesCollection,
	TransitionsCollection,
	WeeklyGoalsCollection,
	ApiOperationLogsCollection,
}

// ErrInvalidWeek 年周不合法
var ErrInvalidWeek = errors.New("无效的年周")

// Store 报表数据来源，记录的预过滤在存储层完成
type Store interface {
	ListDeals(ctx context.Context, filter models.RecordFilter) ([]models.Record, error)
	ListCompanies(ctx context.Context, filter models.RecordFilter) ([]models.Record, error)
	ListStageTransitions(ctx context.Context, r models.WeekRange) ([]models.EntityStageTransition, error)
	ListWeeklyGoals(ctx context.Context, r models.WeekRange) ([]models.WeeklyGoal, error)
	// UpsertWeeklyGoal 只覆盖非空字段，返回合并后的周目标
	UpsertWeeklyGoal(ctx context.Context, goal models.WeeklyGoal) (models.WeeklyGoal, error)
	SaveOperationLog(ctx context.Context, log models.OperationLog) error
	Status(ctx context.Context) (map[string]interface{}, error)
	Close(ctx context.Context) error
}

var (
	_ Store = (*MongoStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
