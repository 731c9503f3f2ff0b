package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/BerniceZTT/crm_reports/middleware"
	"github.com/BerniceZTT/crm_reports/models"
	"github.com/BerniceZTT/crm_reports/repository"
	"github.com/BerniceZTT/crm_reports/service"
	"github.com/BerniceZTT/crm_reports/utils"
)

// DealsByStage 商机阶段分布
func (h *Handler) DealsByStage(c *gin.Context) {
	filter, err := parseRecordFilter(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	deals, err := h.store.ListDeals(ctx, filter)
	if err != nil {
		utils.HandleError(c, utils.CreateStoreError("获取商机失败", err))
		return
	}

	utils.SuccessResponse(c, stageReport(deals, h.aggregateOptions(c)), "")
}

// CompaniesByStage 公司阶段分布
func (h *Handler) CompaniesByStage(c *gin.Context) {
	filter, err := parseRecordFilter(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	companies, err := h.store.ListCompanies(ctx, filter)
	if err != nil {
		utils.HandleError(c, utils.CreateStoreError("获取公司失败", err))
		return
	}

	utils.SuccessResponse(c, stageReport(companies, h.aggregateOptions(c)), "")
}

// CompaniesByUser 按顾问统计公司阶段分布
func (h *Handler) CompaniesByUser(c *gin.Context) {
	filter, err := parseRecordFilter(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	companies, err := h.store.ListCompanies(ctx, filter)
	if err != nil {
		utils.HandleError(c, utils.CreateStoreError("获取公司失败", err))
		return
	}

	utils.SuccessResponse(c, service.AggregateByAdvisor(companies, h.aggregateOptions(c)), "")
}

func stageReport(records []models.Record, opts service.AggregateOptions) models.StageReportResponse {
	agg := service.AggregateStages(records, opts)
	return models.StageReportResponse{
		Aggregate:            agg,
		Chart:                service.ChartSeries(agg.Buckets),
		TotalAmountFormatted: utils.FormatCurrencyDecimal(agg.TotalAmount),
	}
}

// CompaniesWeeklyMovementRange 公司每周阶段变动
//
// 指定 from/to 时默认返回区间内全部周，否则返回最近 window 周。
func (h *Handler) CompaniesWeeklyMovementRange(c *gin.Context) {
	weekRange, err := parseWeekRange(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	defaultWindow := h.report.WindowWeeks
	if weekRange.From != nil || weekRange.To != nil {
		defaultWindow = 0
	}
	window := utils.QueryInt(c, "window", defaultWindow)
	if window < 0 {
		utils.HandleError(c, utils.CreateBadRequestError("window 不能为负数"))
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	rows, err := h.weeklyRows(ctx, weekRange, window)
	if err != nil {
		utils.HandleError(c, utils.CreateStoreError("获取周变动数据失败", err))
		return
	}

	unranked := service.UnrankedTotal(rows)
	if unranked > 0 {
		utils.Logger.Warn().
			Int("unranked", unranked).
			Str("requestId", middleware.GetRequestID(c)).
			Msg("存在不在排序表中的阶段，已按未变动计入")
	}

	utils.SuccessResponse(c, models.WeeklyReportResponse{Rows: rows, UnrankedTotal: unranked}, "")
}

// SetWeeklyGoal 设置某周的目标或实际营收覆盖值
func (h *Handler) SetWeeklyGoal(c *gin.Context) {
	var req models.WeeklyGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("请求参数无效: "+err.Error()))
		return
	}
	if req.Target == nil && req.RevenueOverride == nil {
		utils.HandleError(c, utils.CreateBadRequestError("至少需要提供 target 或 revenueOverride"))
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	saved, err := h.store.UpsertWeeklyGoal(ctx, models.WeeklyGoal{
		Year:            req.Year,
		Week:            req.Week,
		Target:          req.Target,
		RevenueOverride: req.RevenueOverride,
	})
	if errors.Is(err, repository.ErrInvalidWeek) {
		utils.HandleError(c, utils.CreateBadRequestError(err.Error()))
		return
	}
	if err != nil {
		utils.HandleError(c, utils.CreateStoreError("保存周目标失败", err))
		return
	}

	// 返回该周合并后的统计行
	key := saved.Key()
	transitions, err := h.store.ListStageTransitions(ctx, models.WeekRange{From: &key, To: &key})
	if err != nil {
		utils.HandleError(c, utils.CreateStoreError("获取周变动数据失败", err))
		return
	}
	rows := service.ApplyWeeklyOverride(
		service.ComputeWeeklyMovement(transitions, 0),
		saved.Year, saved.Week,
		amountValue(saved.Target), amountValue(saved.RevenueOverride),
	)

	utils.LogInfo(map[string]interface{}{
		"week":      key.String(),
		"requestId": middleware.GetRequestID(c),
	}, "周目标已更新")

	utils.SuccessResponse(c, gin.H{"goal": saved, "row": rows[0]}, "保存成功", http.StatusOK)
}

// GetWeeklyGoal 查询某周已保存的周目标，参数 week 格式 YYYY-Www
func (h *Handler) GetWeeklyGoal(c *gin.Context) {
	key, err := models.ParseWeekKey(c.Query("week"))
	if err != nil {
		utils.HandleError(c, utils.CreateBadRequestError(err.Error()))
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	goals, err := h.store.ListWeeklyGoals(ctx, models.WeekRange{From: &key, To: &key})
	if err != nil {
		utils.HandleError(c, utils.CreateStoreError("获取周目标失败", err))
		return
	}
	if len(goals) == 0 {
		utils.HandleError(c, utils.CreateNotFoundError(key.String()+" 的周目标"))
		return
	}

	utils.SuccessResponse(c, goals[0], "")
}

func (h *Handler) weeklyRows(ctx context.Context, r models.WeekRange, window int) ([]models.WeeklyMovementRow, error) {
	transitions, err := h.store.ListStageTransitions(ctx, r)
	if err != nil {
		return nil, err
	}
	goals, err := h.store.ListWeeklyGoals(ctx, r)
	if err != nil {
		return nil, err
	}
	return service.BuildWeeklyReport(transitions, goals, window), nil
}

// parseWeekRange 解析 from/to 参数，格式 YYYY-Www
func parseWeekRange(c *gin.Context) (models.WeekRange, error) {
	var r models.WeekRange
	if raw := c.Query("from"); raw != "" {
		k, err := models.ParseWeekKey(raw)
		if err != nil {
			return r, utils.CreateBadRequestError(err.Error())
		}
		r.From = &k
	}
	if raw := c.Query("to"); raw != "" {
		k, err := models.ParseWeekKey(raw)
		if err != nil {
			return r, utils.CreateBadRequestError(err.Error())
		}
		r.To = &k
	}
	if r.From != nil && r.To != nil && r.To.Less(*r.From) {
		return r, utils.CreateBadRequestError("结束周不能早于开始周")
	}
	return r, nil
}

func amountValue(a *models.Amount) *decimal.Decimal {
	if a == nil {
		return nil
	}
	d := a.Decimal
	return &d
}
