package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rzzdr/mc-scenario-pricer/pkg/utils/backpressure"
)

// SetupRoutes configures all API routes
func (s *Server) SetupRoutes() {
	s.router.Use(ErrorMiddleware())
	s.router.Use(LoggingMiddleware())
	if s.recorder != nil {
		s.router.Use(MetricsMiddleware(s.recorder))
	}
	s.router.Use(CORSMiddleware())

	s.router.GET("/health", s.handlers.HealthCheckHandler)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if s.notifier != nil {
		s.router.GET("/ws", gin.WrapF(s.notifier.HandleWebSocket))
	}

	v1 := s.router.Group("/api/v1")

	simulations := v1.Group("/simulations")
	simulations.POST("", RateLimitMiddleware(backpressure.NewLimiter(s.config.RateLimit, s.config.RateBurst)), s.handlers.RunSimulationHandler)
	simulations.GET("/latest", s.handlers.LatestSummaryHandler)
	simulations.GET("/latest/rows", s.handlers.LatestRowsHandler)
	simulations.GET("/latest/central", s.handlers.CentralSampleHandler)
	simulations.GET("/latest/detailed/:column", s.handlers.DetailedSampleHandler)

	s.router.NoRoute(s.handlers.NotFoundHandler)
}
