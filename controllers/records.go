package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/crm_reports/service"
	"github.com/BerniceZTT/crm_reports/utils"
)

// ListDeals 商机表格：预过滤后在内存中搜索、排序、分页
func (h *Handler) ListDeals(c *gin.Context) {
	filter, err := parseRecordFilter(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	records, err := h.store.ListDeals(ctx, filter)
	if err != nil {
		utils.HandleError(c, utils.CreateStoreError("获取商机列表失败", err))
		return
	}

	page := service.QueryTable(records, parseTableQuery(c))
	utils.PaginatedResponse(c, page.Rows, int64(page.Total), int64(page.Page), int64(page.PageSize))
}

// ListCompanies 公司表格，金额列为年营收
func (h *Handler) ListCompanies(c *gin.Context) {
	filter, err := parseRecordFilter(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	records, err := h.store.ListCompanies(ctx, filter)
	if err != nil {
		utils.HandleError(c, utils.CreateStoreError("获取公司列表失败", err))
		return
	}

	page := service.QueryTable(records, parseTableQuery(c))
	utils.PaginatedResponse(c, page.Rows, int64(page.Total), int64(page.Page), int64(page.PageSize))
}
