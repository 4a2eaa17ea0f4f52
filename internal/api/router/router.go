package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"nutri-assistant/backend/config"
	"nutri-assistant/backend/internal/api/handler"
	"nutri-assistant/backend/internal/api/middleware"
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时生成接口使用进程内限流；db 为 nil 时健康检查跳过数据库探测
func Setup(cfg *config.Config, h *handler.Handler, limiter middleware.WindowLimiter, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyMaxBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": "down"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 调用外部生成服务的接口单独限流
	generateLimit := middleware.RateLimit(limiter, cfg.RateLimit.Requests, cfg.RateLimit.Window)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 菜单计划模块
		mealPlans := v1.Group("/meal-plans")
		{
			mealPlans.POST("/generate", generateLimit, h.MealPlan.Generate)
			mealPlans.GET("/:school_id/daily", h.MealPlan.GetDaily)
			mealPlans.GET("/:school_id/weekly", h.MealPlan.GetWeekly)
			mealPlans.GET("/:school_id/:year/:month", h.MealPlan.GetMonthly)
			mealPlans.GET("/:school_id/:year/:month/export", h.Export.ExportMonth)
		}

		// 单餐修改
		dailyMenus := v1.Group("/daily-menus")
		{
			dailyMenus.POST("/ai-replace", generateLimit, h.MealPlan.AIReplace)
			dailyMenus.PUT("/manual", h.MealPlan.ManualUpdate)
		}

		// 修改历史模块
		v1.GET("/histories", h.History.ListHistories)

		// 单价台账模块
		costs := v1.Group("/costs")
		{
			costs.GET("", h.Cost.ListCosts)
			costs.GET("/lookup", h.Cost.Lookup)
			costs.POST("/bulk", h.Cost.BulkUpsert)
			costs.POST("/reprice", h.Cost.Reprice)
		}

		// 营养目录模块
		v1.POST("/foods/import", h.Food.ImportFoods)
	}

	return r
}
