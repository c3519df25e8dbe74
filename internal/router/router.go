package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/preplab/mockexam-backend/internal/config"
	"github.com/preplab/mockexam-backend/internal/handler"
	"github.com/preplab/mockexam-backend/internal/middleware"
	"github.com/preplab/mockexam-backend/internal/response"
	"github.com/preplab/mockexam-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Catalog *handler.CatalogHandler
	Attempt *handler.AttemptHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list; otherwise
	// allow all so dev works without extra config.
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

	// Request IDs on every response.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for login attempts (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── Auth (public, rate limited) ───────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// ─── Exam taking (JWT + live session) ──────────────────────────────
	api := router.Group("/api/v1")
	api.Use(
		middleware.RequireJWT(authService),
		middleware.CheckActiveSession(authService),
	)
	{
		api.GET("/tests", handlers.Catalog.ListTests)
		api.GET("/tests/:test_id/paper", handlers.Catalog.GetPaper)

		api.POST("/attempts/:test_id/start", handlers.Attempt.Start)
		api.POST("/attempts/:test_id/answers", handlers.Attempt.Answer)
		api.POST("/attempts/:test_id/goto", handlers.Attempt.GoTo)
		api.GET("/attempts/:test_id/state", handlers.Attempt.State)
		api.POST("/attempts/:test_id/submit", handlers.Attempt.Submit)
		api.GET("/attempts/:test_id/result", handlers.Attempt.Result)
	}

	// ─── Author tools (JWT + AUTHOR role) ──────────────────────────────
	author := router.Group("/api/v1/author")
	author.Use(middleware.RequireAuthorJWT(authService))
	{
		author.POST("/tests", handlers.Catalog.CreateTest)
		author.PUT("/tests/:test_id/questions", handlers.Catalog.ReplaceQuestions)
		author.POST("/tests/:test_id/publish", handlers.Catalog.PublishTest)
		author.GET("/tests/:test_id/results", handlers.Catalog.ListResults)
	}

	// ─── WebSocket (token via query param) ─────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/attempts/:test_id/stream", handlers.WS.AttemptStream)
	}

	return router
}
