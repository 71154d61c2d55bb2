package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kiflomm/mu-maintainance/config"
	"github.com/kiflomm/mu-maintainance/internal/api/handler"
	"github.com/kiflomm/mu-maintainance/internal/api/middleware"
	"github.com/kiflomm/mu-maintainance/internal/model"
	"github.com/kiflomm/mu-maintainance/pkg/jwt"
	"github.com/kiflomm/mu-maintainance/pkg/redis"
)

// HealthChecker 数据库连通性检查（repository.Repository 实现）
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时黑名单与限流均降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, health HealthChecker, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// nil *redis.Client 不能直接赋给接口
	var checker middleware.TokenChecker
	if rdb != nil {
		checker = rdb
	}
	requireAuth := middleware.JWTAuth(jwtMgr, checker)
	optionalAuth := middleware.OptionalAuth(jwtMgr, checker)
	limit := func(scope string, route config.RateRule) gin.HandlerFunc {
		rule := cfg.Limit.Rule(route)
		return middleware.RateLimit(rdb, scope, rule.Requests, rule.Window)
	}

	// ── 运维 ──
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := health.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 投诉图片
	r.Static(cfg.Upload.PublicPrefix, cfg.Upload.Dir)

	// ── 公开 ──
	r.GET("/", h.Reference.SubmitForm)
	r.GET("/campuses", h.Reference.ListCampuses)
	r.GET("/categories", h.Reference.ListCategories)
	r.POST("/auth/login", limit("login", cfg.Limit.Login), h.Auth.Login)

	complaints := r.Group("/complaints")
	{
		complaints.POST("", limit("submit", cfg.Limit.Submit), h.Complaint.Submit)
		complaints.POST("/track", limit("track", cfg.Limit.Track), h.Complaint.Track)
		complaints.GET("/:id", optionalAuth, h.Complaint.Get)
	}

	// ── 需要认证 ──
	authorized := r.Group("")
	authorized.Use(requireAuth)
	{
		authorized.POST("/auth/logout", h.Auth.Logout)
		authorized.GET("/auth/me", h.Auth.Me)
		authorized.GET("/dashboard", h.Complaint.Dashboard)

		authorized.GET("/complaints", h.Complaint.List)
		authorized.PATCH("/complaints/:id", h.Complaint.Update)
		authorized.GET("/complaints/export",
			middleware.RoleAuth(model.RoleAdmin, model.RoleDirector), h.Export.ExportComplaints)

		// 工作人员管理（仅管理员）
		users := authorized.Group("/users")
		users.Use(middleware.RoleAuth(model.RoleAdmin))
		{
			users.GET("", h.User.ListUsers)
			users.POST("", h.User.CreateUser)
			users.GET("/:id", h.User.GetUser)
			users.GET("/:id/edit", h.User.EditUser)
			users.PUT("/:id", h.User.UpdateUser)
			users.DELETE("/:id", h.User.DeleteUser)
		}
	}

	return r
}
