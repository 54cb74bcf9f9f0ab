package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
		errorHandlingMiddleware(handler.logger),
	)

	api := router.Group("/api/v1")
	api.POST("/devices", handler.RegisterDevice)

	authed := api.Group("")
	authed.Use(deviceMiddleware(handler.deviceSvc))
	{
		authed.POST("/prescriptions/analyze", handler.AnalyzePrescription)
		authed.POST("/medicines/alternatives", handler.FindAlternatives)
		authed.GET("/medicines/search", handler.SearchMedicine)
		authed.GET("/medicines/search/trending", handler.TrendingSearches)
		authed.POST("/pharmacies/search", handler.SearchPharmacies)
		authed.GET("/pharmacies/favorites", handler.ListFavorites)
		authed.PUT("/pharmacies/favorites/toggle", handler.ToggleFavorite)
		authed.POST("/pharmacies/map/sync", handler.SyncMap)
		authed.GET("/pharmacies/map/config", handler.MapConfig)
		authed.POST("/interactions/check", handler.CheckInteractions)
		authed.POST("/pills/identify", handler.IdentifyPill)
		authed.POST("/symptoms/analyze", handler.AnalyzeSymptoms)
		authed.GET("/session", handler.SessionSnapshot)
		authed.POST("/session/handoff", handler.TakeHandoff)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
