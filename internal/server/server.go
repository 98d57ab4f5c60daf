// Package server exposes the HTTP surface: the log ingest endpoint the chat
// widgets post to, and the read side the portal queries.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chatlens/chatlens/internal/config"
	"github.com/chatlens/chatlens/internal/observability"
	obsmiddleware "github.com/chatlens/chatlens/internal/observability/logger"
	obsmetrics "github.com/chatlens/chatlens/internal/observability/metrics"
	obstracing "github.com/chatlens/chatlens/internal/observability/tracing"
	"github.com/chatlens/chatlens/internal/ratelimit"
	"github.com/chatlens/chatlens/internal/telemetry"
	telemetrydomain "github.com/chatlens/chatlens/internal/telemetry/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	telemetry.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	db         *gorm.DB
	logsvc     telemetrydomain.Service
	repo       telemetrydomain.Repository
	limiter    *ratelimit.IngestLimiter
	obsMetrics *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	DB         *gorm.DB
	Logsvc     telemetrydomain.Service
	Repo       telemetrydomain.Repository
	Limiter    *ratelimit.IngestLimiter `optional:"true"`
	ObsMetrics *obsmetrics.Metrics      `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		db:         p.DB,
		logsvc:     p.Logsvc,
		repo:       p.Repo,
		limiter:    p.Limiter,
		obsMetrics: p.ObsMetrics,
	}

	api := s.engine.Group("/v1", s.TenantMiddleware())
	{
		api.POST("/log", s.RateLimitMiddleware(), s.SubmitLog)
		api.GET("/usage", s.ListUsage)
		api.GET("/leads", s.ListLeads)
		api.GET("/conversations/:session/messages", s.ListMessages)
	}

	return s
}
