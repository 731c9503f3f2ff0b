package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/crm_reports/config"
	"github.com/BerniceZTT/crm_reports/models"
	"github.com/BerniceZTT/crm_reports/repository"
	"github.com/BerniceZTT/crm_reports/service"
	"github.com/BerniceZTT/crm_reports/utils"
)

// Handler 报表接口，依赖数据存储与报表配置
type Handler struct {
	store  repository.Store
	report config.ReportConfig
}

// NewHandler 创建接口处理器
func NewHandler(store repository.Store, report config.ReportConfig) *Handler {
	return &Handler{store: store, report: report}
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DBStatus 数据库状态检查
func (h *Handler) DBStatus(c *gin.Context) {
	ctx, cancel := h.queryContext(c)
	defer cancel()

	status, err := h.store.Status(ctx)
	if err != nil {
		utils.ErrorResponse(c, "获取数据库状态失败: "+err.Error(), http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) queryContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.report.QueryTimeout)
}

func (h *Handler) aggregateOptions(c *gin.Context) service.AggregateOptions {
	return service.AggregateOptions{TopNOther: utils.QueryInt(c, "topN", h.report.TopNOther)}
}

// parseRecordFilter 解析预过滤查询参数
func parseRecordFilter(c *gin.Context) (models.RecordFilter, error) {
	var f models.RecordFilter

	if raw := c.Query("advisorId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, utils.CreateBadRequestError(fmt.Sprintf("无效的顾问ID: %s", raw))
		}
		f.AdvisorID = &id
	}

	if raw := c.Query("startDate"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, utils.CreateBadRequestError(fmt.Sprintf("解析开始日期失败: %s", raw))
		}
		f.StartDate = &t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, utils.CreateBadRequestError(fmt.Sprintf("解析结束日期失败: %s", raw))
		}
		// 包含结束日期当天
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.EndDate = &end
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return f, utils.CreateBadRequestError("结束日期不能早于开始日期")
	}

	f.Origin = strings.TrimSpace(c.Query("origin"))
	f.Recovered = utils.QueryBoolPtr(c, "recovered")
	return f, nil
}

// parseTableQuery 解析表格查询参数
func parseTableQuery(c *gin.Context) service.TableQuery {
	return service.TableQuery{
		SearchText: c.Query("search"),
		SortField:  c.Query("sortField"),
		SortOrder:  service.ParseSortOrder(c.Query("sortOrder")),
		Page:       utils.QueryInt(c, "page", 1),
		PageSize:   utils.QueryInt(c, "pageSize", service.DefaultPageSize),
	}
}
