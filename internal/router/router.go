package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/istanbulinstitute/educrm-exam/internal/config"
	"github.com/istanbulinstitute/educrm-exam/internal/handler"
	"github.com/istanbulinstitute/educrm-exam/internal/i18n"
	"github.com/istanbulinstitute/educrm-exam/internal/middleware"
	"github.com/istanbulinstitute/educrm-exam/internal/response"
	"github.com/rs/zerolog"
)

// templateMaxAge is how long browsers may cache the import template.
const templateMaxAge = 3600

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Exam       *handler.ExamHandler
	Question   *handler.QuestionHandler
	Result     *handler.ResultHandler
	PublicExam *handler.PublicExamHandler
	WS         *handler.WSHandler
	System     *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// publicLimiter throttles the unauthenticated candidate and login routes;
// the caller owns it and stops it on shutdown.
func SetupRouter(
	auth middleware.TokenValidator,
	handlers *Handlers,
	bundle *i18n.Bundle,
	publicLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "Accept-Language", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Language", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID and request-scoped logger, then language, on every route.
	router.Use(response.RequestIDMiddleware(log))
	router.Use(middleware.Locale(bundle))

	router.Use(middleware.Brotli())

	router.GET("/health", middleware.NoStore(), handlers.System.Health)

	// ─── 0. Public Group (No Auth, Rate Limited) ───────────────────────
	publicAPI := router.Group("/api/v1/public")
	publicAPI.Use(publicLimiter.Middleware(), middleware.NoStore())
	{
		publicAPI.GET("/exams/:code", handlers.PublicExam.GetExamByCode)
		publicAPI.POST("/exams/submit", handlers.PublicExam.SubmitExam)
	}

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	authAPI := router.Group("/api/v1/auth")
	{
		authAPI.POST("/admin/login", publicLimiter.Middleware(), handlers.Auth.AdminLogin)
		authAPI.GET("/admin/me", middleware.RequireAdminJWT(auth), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. WebSocket Group (Admin WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAdminWSAuth(auth))
	{
		ws.GET("/admin/exams/:id/results", handlers.WS.ResultStream)
	}

	// ─── 3. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(auth), middleware.NoStore())
	{
		// Exam management
		adminAPI.GET("/exams", handlers.Exam.ListExams)
		adminAPI.POST("/exams", handlers.Exam.CreateExam)
		adminAPI.GET("/exams/:id", handlers.Exam.GetExam)
		adminAPI.PUT("/exams/:id", handlers.Exam.UpdateExam)
		adminAPI.DELETE("/exams/:id", handlers.Exam.DeleteExam)
		adminAPI.POST("/exams/:id/recalculate-total", handlers.Exam.RecalculateTotal)

		// Question management
		adminAPI.GET("/exams/:id/questions", handlers.Question.ListQuestions)
		adminAPI.POST("/exams/:id/questions", handlers.Question.AddQuestion)
		adminAPI.DELETE("/exams/:id/questions", handlers.Question.DeleteAllQuestions)
		adminAPI.POST("/exams/:id/questions/import", handlers.Question.ImportQuestions)
		adminAPI.GET("/exams/:id/questions/import/template",
			middleware.CacheControl(templateMaxAge),
			handlers.Question.DownloadTemplate,
		)
		adminAPI.GET("/questions/:id", handlers.Question.GetQuestion)
		adminAPI.PUT("/questions/:id", handlers.Question.UpdateQuestion)
		adminAPI.DELETE("/questions/:id", handlers.Question.DeleteQuestion)

		// Results
		adminAPI.GET("/exams/:id/results", handlers.Result.ListExamResults)
		adminAPI.GET("/results/:id", handlers.Result.GetResult)
	}

	return router
}
