package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanqian/quiz-catalog/internal/domain/auth"
	"github.com/yanqian/quiz-catalog/internal/infra/config"
	"github.com/yanqian/quiz-catalog/pkg/metrics"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(
	cfg *config.Config,
	handler *Handler,
	health *HealthHandler,
	authSvc auth.Service,
	recorder *metrics.HTTPRecorder,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	log := logger.With("component", "http.router")

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(log, recorder),
		corsMiddleware(cfg.HTTP.CORSOrigins),
		errorHandlingMiddleware(log),
		rateLimitMiddleware(cfg.HTTP.RateLimit, log),
	)

	router.GET("/health", health.Basic)
	router.GET("/health/detailed", health.Detailed)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	authenticate := authMiddleware(authSvc)
	optionalAuth := optionalAuthMiddleware(authSvc, log)
	admin := adminMiddleware(authSvc)
	write := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, admin...), h)
	}

	api := router.Group("/api/v1")

	providers := api.Group("/providers")
	{
		providers.POST("", write(handler.CreateProvider)...)
		providers.GET("", handler.ListProviders)
		providers.GET("/:id", handler.GetProvider)
		providers.GET("/slug/:slug", handler.GetProviderBySlug)
		providers.PUT("/:id", write(handler.UpdateProvider)...)
		providers.DELETE("/:id", write(handler.DeleteProvider)...)
	}

	topics := api.Group("/topics")
	{
		topics.POST("", write(handler.CreateTopic)...)
		topics.GET("", handler.ListTopics)
		topics.GET("/:id", handler.GetTopic)
		topics.GET("/slug/:slug", handler.GetTopicBySlug)
		topics.GET("/provider/:providerId", handler.ListTopicsByProvider)
		topics.GET("/provider/slug/:slug", handler.ListTopicsByProviderSlug)
		topics.PUT("/:id", write(handler.UpdateTopic)...)
		topics.DELETE("/:id", write(handler.DeleteTopic)...)
	}

	questions := api.Group("/questions")
	{
		questions.POST("", write(handler.CreateQuestion)...)
		questions.GET("", optionalAuth, handler.ListQuestions)
		questions.GET("/bookmarked", authenticate, handler.ListBookmarkedQuestions)
		questions.GET("/slug/:slug", optionalAuth, handler.GetQuestionBySlug)
		questions.PUT("/:id", write(handler.UpdateQuestion)...)
		questions.DELETE("/:id", write(handler.DeleteQuestion)...)
	}

	profile := api.Group("/profile", authenticate)
	{
		profile.POST("/bookmark", handler.TopicBookmarks)
		profile.POST("/bookmark/check", handler.CheckBookmark)
		profile.POST("/bookmark/toggle", handler.ToggleBookmark)
		profile.POST("/bookmark/clear", handler.ClearBookmarks)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, log),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
