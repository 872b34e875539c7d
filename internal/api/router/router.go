package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"offio/backend/config"
	"offio/backend/internal/api/handler"
	"offio/backend/internal/api/middleware"
	"offio/backend/internal/model"
	"offio/backend/pkg/jwt"
	"offio/backend/pkg/metrics"
	"offio/backend/pkg/redis"
)

// maxBodyBytes request body cap; import uploads are bounded again in the handler
const maxBodyBytes = 8 << 20

// Setup builds the Gin engine. rdb may be nil, which disables rate limiting.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── health & metrics ──
	r.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "ok", "database": "disabled", "redis": "disabled"}
		code := http.StatusOK
		if db != nil {
			status["database"] = "ok"
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
				status["status"], status["database"] = "degraded", "unreachable"
				code = http.StatusServiceUnavailable
			}
		}
		if rdb != nil {
			status["redis"] = "ok"
			if err := rdb.Ping(c.Request.Context()); err != nil {
				status["redis"] = "unreachable"
			}
		}
		c.JSON(code, status)
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	var limiter middleware.Limiter
	if rdb != nil {
		limiter = rdb
	}

	v1 := r.Group("/api/v1")
	{
		// desktop agent (agent tokens only)
		desktop := v1.Group("/desktop")
		desktop.Use(middleware.JWTAuth(jwtMgr, jwt.TokenTypeAgent))
		desktop.Use(middleware.RateLimit(limiter, cfg.RateLimit.AgentRequestsPerMinute, time.Minute, logger))
		{
			desktop.POST("/session/start", h.Agent.StartSession)
			desktop.POST("/session/end", h.Agent.EndSession)
			desktop.POST("/activity", h.Agent.AppendActivity)
			desktop.POST("/screenshot", h.Agent.RequestScreenshotUpload)
			desktop.PUT("/screenshot", h.Agent.RecordScreenshot)
		}

		// web console
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, jwt.TokenTypeAccess))
		{
			sessions := authorized.Group("/sessions")
			{
				sessions.GET("", h.Session.ListSessions)
				sessions.GET("/:id", h.Session.GetSession)
				sessions.PUT("/:id/memo", h.Session.UpdateMemo)
				sessions.POST("/:id/excluded-ranges", h.Session.ExcludeRange)
				sessions.DELETE("/:id/excluded-ranges", h.Session.IncludeRange)
				sessions.DELETE("/:id/screenshots/:sid", h.Session.DeleteScreenshot)
				sessions.POST("/:id/screenshots/:sid/restore", h.Session.RestoreScreenshot)
				sessions.POST("/:id/submit", h.Session.SubmitSession)
				sessions.POST("/:id/review", middleware.RoleAuth(model.RoleAdmin, model.RoleManager), h.Session.ReviewSession)
			}

			vacations := authorized.Group("/vacations")
			{
				vacations.GET("", h.Vacation.ListVacations)
				vacations.POST("", h.Vacation.CreateVacation)
				vacations.POST("/:id/review", middleware.RoleAuth(model.RoleAdmin, model.RoleManager), h.Vacation.ReviewVacation)
				vacations.DELETE("/:id", h.Vacation.DeleteVacation)
			}

			authorized.GET("/leave/balance", h.Vacation.GetLeaveBalance)

			reports := authorized.Group("/reports")
			{
				reports.GET("/export", middleware.RoleAuth(model.RoleAdmin, model.RoleManager), h.Report.Export)
				reports.GET("/vacations.ics", h.Report.VacationCalendar)
			}

			policies := authorized.Group("/policies")
			{
				policies.GET("", h.Policy.GetPolicy)
				policies.PUT("", middleware.RoleAuth(model.RoleAdmin), h.Policy.UpdatePolicy)
			}

			departments := authorized.Group("/departments")
			{
				departments.GET("", h.Department.ListDepartments)
				departments.POST("", middleware.RoleAuth(model.RoleAdmin), h.Department.CreateDepartment)
				departments.PUT("/:id", middleware.RoleAuth(model.RoleAdmin), h.Department.UpdateDepartment)
				departments.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Department.DeleteDepartment)
			}

			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth(model.RoleAdmin, model.RoleManager), h.User.ListUsers)
				users.PATCH("/:id", middleware.RoleAuth(model.RoleAdmin, model.RoleManager), h.User.UpdateUser)
				users.POST("/import", middleware.RoleAuth(model.RoleAdmin), h.User.ImportUsers)
			}
		}
	}

	return r
}
