package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/notsocj/SmartExam/internal/config"
	"github.com/notsocj/SmartExam/internal/handler"
	"github.com/notsocj/SmartExam/internal/middleware"
	"github.com/notsocj/SmartExam/internal/response"
	"github.com/notsocj/SmartExam/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Test      *handler.TestHandler
	Portal    *handler.PortalHandler
	Telemetry *handler.TelemetryHandler
	Result    *handler.ResultHandler
	Resource  *handler.ResourceHandler
	Monitor   *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	attemptService *service.AttemptService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group (Public) ────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes (either role)
		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Student Portal (JWT + Single Device) ───────────────────────
	portal := router.Group("/api/v1/portal")
	portal.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		portal.GET("/tests", handlers.Portal.ListTests)
		portal.POST("/tests/:test_id/take", handlers.Portal.Take)
		portal.POST("/tests/:test_id/submit", handlers.Portal.Submit)

		portal.GET("/attempt", handlers.Portal.ActiveAttempt)
		portal.POST("/attempt/heartbeat", handlers.Telemetry.Heartbeat)
		portal.POST("/attempt/violation", handlers.Telemetry.ReportViolation)
		portal.POST("/attempt/abandoned", handlers.Telemetry.Abandoned)

		portal.GET("/results", handlers.Result.ListMine)
		portal.GET("/results/:result_id", handlers.Result.GetMine)
	}

	// ─── 3. Learning Resources (Student, blocked during tests) ─────────
	// Every route here, raw file serving included, refuses to serve while
	// the student has an active attempt.
	resources := router.Group("/api/v1/resources")
	resources.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
		middleware.BlockDuringTest(attemptService),
	)
	{
		resources.GET("", handlers.Resource.List)
		resources.GET("/progress", handlers.Resource.ListProgress)
		resources.GET("/:resource_id", handlers.Resource.Get)
		resources.GET("/:resource_id/files/:file_id", handlers.Resource.ServeFile)
		resources.POST("/:resource_id/progress", handlers.Resource.RecordProgress)
	}

	// ─── 4. WebSocket Group (Admin WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAdminWSAuth(authService))
	{
		ws.GET("/admin/tests/:test_id/monitor", handlers.Monitor.MonitorTest)
	}

	// ─── 5. Admin Group (Admin JWT) ────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Test authoring
		adminAPI.GET("/tests", handlers.Test.List)
		adminAPI.POST("/tests", handlers.Test.Create)
		adminAPI.GET("/tests/:test_id", handlers.Test.Get)
		adminAPI.PUT("/tests/:test_id", handlers.Test.Update)
		adminAPI.DELETE("/tests/:test_id", handlers.Test.Delete)

		adminAPI.GET("/tests/:test_id/questions", handlers.Test.ListQuestions)
		adminAPI.POST("/tests/:test_id/questions", handlers.Test.CreateQuestion)
		adminAPI.PUT("/tests/:test_id/questions/:question_id", handlers.Test.UpdateQuestion)
		adminAPI.DELETE("/tests/:test_id/questions/:question_id", handlers.Test.DeleteQuestion)

		// Results and records
		adminAPI.GET("/tests/:test_id/results/export", handlers.Result.ExportCSV)
		adminAPI.GET("/records", handlers.Result.StudentRecords)
		adminAPI.GET("/results/:result_id", handlers.Result.Get)
		adminAPI.POST("/results/:result_id/retake", handlers.Result.GrantRetake)

		// Learning resources
		adminAPI.GET("/resources", handlers.Resource.AdminList)
		adminAPI.POST("/resources", handlers.Resource.Create)
		adminAPI.PUT("/resources/:resource_id", handlers.Resource.Update)
		adminAPI.DELETE("/resources/:resource_id", handlers.Resource.Delete)
		adminAPI.POST("/resources/:resource_id/files", handlers.Resource.AddFile)
		adminAPI.DELETE("/resources/:resource_id/files/:file_id", handlers.Resource.DeleteFile)
	}

	return router
}
