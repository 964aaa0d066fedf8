// Package httpapi exposes the tracking service over a JSON HTTP API.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/balkashynov/studytrack/internal/logger"
	"github.com/balkashynov/studytrack/internal/metrics"
	"github.com/balkashynov/studytrack/internal/tracking"
)

type RouterConfig struct {
	Service     *tracking.Service
	Logger      *logger.Logger
	Metrics     *metrics.Recorder
	CORSOrigins []string
}

// Handler serves the tracking endpoints
type Handler struct {
	svc *tracking.Service
	log *logger.Logger
}

func NewHandler(svc *tracking.Service, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), RequestLogger(cfg.Logger), Recovery(cfg.Logger), Metrics(cfg.Metrics))
	if len(cfg.CORSOrigins) > 0 {
		router.Use(CORS(cfg.CORSOrigins))
	}

	router.GET("/healthcheck", HealthCheck)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	h := NewHandler(cfg.Service, cfg.Logger)
	api := router.Group("/api/v1")
	{
		// Sessions
		api.POST("/sessions", h.StartSession)
		api.GET("/sessions/active", h.ActiveSession)
		api.GET("/sessions/:id", h.SessionDetail)
		api.POST("/sessions/:id/pause", h.PauseSession)
		api.POST("/sessions/:id/resume", h.ResumeSession)
		api.POST("/sessions/:id/finish", h.FinishSession)
		api.PATCH("/sessions/:id", h.EditSession)

		// Manual records
		api.POST("/manual-records", h.CreateManualRecord)
		api.GET("/manual-records/:id", h.GetManualRecord)
		api.PUT("/manual-records/:id", h.UpdateManualRecord)
		api.DELETE("/manual-records/:id", h.DeleteManualRecord)

		// Reports
		api.GET("/history", h.History)
		api.GET("/statistics", h.Statistics)
	}

	router.NoRoute(func(c *gin.Context) {
		RespondError(c, http.StatusNotFound, tracking.CodeNotFound, errRouteNotFound, nil)
	})

	return router
}

func HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
