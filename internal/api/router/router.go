package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"signage/backend/config"
	"signage/backend/internal/api/handler"
	"signage/backend/internal/api/middleware"
	"signage/backend/internal/repository"
	"signage/backend/pkg/jwt"
	"signage/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(
		middleware.BodyLimit(cfg.Server.BodyLimit),
		middleware.JWTAuth(jwtMgr, rdb),
		middleware.CompanyContext(repo.Company, logger),
		middleware.Locale(cfg.Locale.Default),
	)
	writeLimit := middleware.RateLimit(rdb, cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window)
	{
		// 地点模块
		locations := v1.Group("/locations")
		{
			locations.GET("", h.Location.ListLocations)
			locations.GET("/export", h.Export.ExportLocations)
			locations.GET("/:id", h.Location.GetLocation)
			locations.GET("/:id/screens", h.Location.ListLocationScreens)
			locations.POST("", writeLimit, h.Location.CreateLocation)
			locations.PUT("/:id", writeLimit, h.Location.UpdateLocation)
			locations.PUT("/:id/tags", writeLimit, h.Location.UpdateLocationTags)
		}
	}

	return r
}
