package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/BerniceZTT/crm_reports/models"
	"github.com/BerniceZTT/crm_reports/service"
	"github.com/BerniceZTT/crm_reports/utils"
)

// GetDashboardStats 获取数据看板统计信息
func (h *Handler) GetDashboardStats(c *gin.Context) {
	filter, err := parseRecordFilter(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	opts := h.aggregateOptions(c)

	ctx, cancel := h.queryContext(c)
	defer cancel()

	// 并发获取各类数据，任一失败则整体失败
	var (
		deals, companies []models.Record
		transitions      []models.EntityStageTransition
		goals            []models.WeeklyGoal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		deals, err = h.store.ListDeals(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		companies, err = h.store.ListCompanies(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		transitions, err = h.store.ListStageTransitions(gctx, models.WeekRange{})
		return err
	})
	g.Go(func() error {
		var err error
		goals, err = h.store.ListWeeklyGoals(gctx, models.WeekRange{})
		return err
	})
	if err := g.Wait(); err != nil {
		utils.HandleError(c, utils.CreateStoreError("获取数据看板统计信息失败", err))
		return
	}

	dealsByStage := service.AggregateStages(deals, opts)
	wonAmount := wonTotal(deals)

	utils.LogInfo(map[string]interface{}{
		"deals":       len(deals),
		"companies":   len(companies),
		"transitions": len(transitions),
	}, "获取数据看板统计信息")

	utils.SuccessResponse(c, models.DashboardDataResponse{
		DealCount:          len(deals),
		CompanyCount:       len(companies),
		DealsByStage:       dealsByStage,
		CompaniesByStage:   service.AggregateStages(companies, opts),
		DealChart:          service.ChartSeries(dealsByStage.Buckets),
		WonAmount:          wonAmount,
		WonAmountFormatted: utils.FormatCurrencyDecimal(wonAmount),
		PipelineFormatted:  utils.FormatCurrencyDecimal(dealsByStage.TotalAmount),
		WeeklyMovement:     service.BuildWeeklyReport(transitions, goals, h.report.WindowWeeks),
	}, "")
}

// wonTotal 已成交商机金额
func wonTotal(records []models.Record) decimal.Decimal {
	total := decimal.Zero
	for _, b := range service.GroupByStage(records) {
		if b.Group == models.StageGroupWon {
			total = total.Add(b.TotalAmount)
		}
	}
	return total
}
