// Package httpapi serves the booking engine over HTTP/JSON with gin.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	Service        bookingService
	Logger         *slog.Logger
	Observer       RequestObserver
	Metrics        http.Handler
	Ready          func(ctx context.Context) error
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(log.With(slog.String("component", "http"))), observeRequests(cfg.Observer))
	r.NoRoute(func(c *gin.Context) {
		respondError(c, errRouteNotFound)
	})

	r.GET("/healthz", func(c *gin.Context) {
		respond(c, http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		if cfg.Ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := cfg.Ready(ctx); err != nil {
				log.WarnContext(ctx, "readiness check failed", slog.Any("err", err))
				respondError(c, errNotReady)
				return
			}
		}
		respond(c, http.StatusOK, gin.H{"status": "ready"})
	})
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	h := NewBookingHandler(cfg.Service, log)
	v1 := r.Group("/v1", requestTimeout(cfg.RequestTimeout))
	{
		v1.GET("/professionals/:id/availability", h.Availability)
		v1.GET("/professionals/:id/next-available-week", h.NextAvailableWeek)
		v1.POST("/professionals/:id/claims", h.Claim)
		v1.PUT("/professionals/:id/schedule", h.PutSchedule)
		v1.GET("/appointments/:id", h.GetAppointment)
		v1.POST("/appointments/:id/status", h.UpdateStatus)
	}
	return r
}
