package routes

import (
	"github.com/BerniceZTT/crm_reports/config"
	"github.com/BerniceZTT/crm_reports/controllers"
	"github.com/BerniceZTT/crm_reports/middleware"
	"github.com/BerniceZTT/crm_reports/repository"

	"github.com/gin-gonic/gin"
)

// NewRouter 创建 Gin 实例并应用中间件与路由
func NewRouter(cfg *config.Config, store repository.Store) *gin.Engine {
	router := gin.New()

	// 应用中间件
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.OperationLoggerMiddleware(store))

	RegisterRoutes(router, controllers.NewHandler(store, cfg.Report))
	return router
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, h *controllers.Handler) {
	// 健康检查与数据库状态
	router.GET("/api/health", h.Health)
	router.GET("/api/db-status", h.DBStatus)
	router.GET("/metrics", middleware.MetricsHandler())

	// 表格数据
	router.GET("/api/deals", h.ListDeals)
	router.GET("/api/companies", h.ListCompanies)

	RegisterReportRoutes(router, h)
	RegisterDashboardStatsRoutes(router, h)
}

// RegisterReportRoutes 注册报表相关路由
func RegisterReportRoutes(router *gin.Engine, h *controllers.Handler) {
	reportRoutes := router.Group("/api/reports")

	reportRoutes.GET("/deals-by-stage", h.DealsByStage)
	reportRoutes.GET("/companies-by-stage", h.CompaniesByStage)
	reportRoutes.GET("/companies-by-user", h.CompaniesByUser)
	reportRoutes.GET("/companies-weekly-movement-range", h.CompaniesWeeklyMovementRange)
	reportRoutes.GET("/weekly-goal", h.GetWeeklyGoal)
	reportRoutes.PUT("/weekly-goal", h.SetWeeklyGoal)
}

// RegisterDashboardStatsRoutes 注册数据看板统计相关路由
func RegisterDashboardStatsRoutes(router *gin.Engine, h *controllers.Handler) {
	dashboardStatsRoutes := router.Group("/api/dashboard-stats")

	dashboardStatsRoutes.GET("", h.GetDashboardStats)
}
