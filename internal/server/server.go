package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/rentaldocs/internal/artifact"
	"github.com/smallbiznis/rentaldocs/internal/cache"
	"github.com/smallbiznis/rentaldocs/internal/config"
	"github.com/smallbiznis/rentaldocs/internal/document"
	documentdomain "github.com/smallbiznis/rentaldocs/internal/document/domain"
	"github.com/smallbiznis/rentaldocs/internal/gite"
	gitedomain "github.com/smallbiznis/rentaldocs/internal/gite/domain"
	"github.com/smallbiznis/rentaldocs/internal/lock"
	"github.com/smallbiznis/rentaldocs/internal/observability"
	obsmiddleware "github.com/smallbiznis/rentaldocs/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/rentaldocs/internal/observability/metrics"
	obstracing "github.com/smallbiznis/rentaldocs/internal/observability/tracing"
	"github.com/smallbiznis/rentaldocs/internal/providers/pdf"
	"github.com/smallbiznis/rentaldocs/internal/renderer"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	artifact.Module,
	cache.Module,
	lock.Module,
	pdf.Module,
	renderer.Module,
	gite.Module,
	document.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	useJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CORS(cfg))
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware())
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(cfg, obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log = log.Named("http.server")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", srv.Addr))
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
	engine      *gin.Engine
	cfg         config.Config
	giteSvc     gitedomain.Service
	documentSvc documentdomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	GiteSvc     gitedomain.Service
	DocumentSvc documentdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		giteSvc:     p.GiteSvc,
		documentSvc: p.DocumentSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(BasicAuth(s.cfg))

	// -------- Gîtes --------
	api.GET("/gites", s.ListGites)
	api.POST("/gites", s.CreateGite)
	api.GET("/gites/:id", s.GetGite)
	api.PUT("/gites/:id", s.UpdateGite)
	api.DELETE("/gites/:id", s.DeleteGite)
	api.POST("/gites/:id/duplicate", s.DuplicateGite)

	// -------- Contracts & invoices --------
	for _, kind := range []documentdomain.Kind{documentdomain.KindContract, documentdomain.KindInvoice} {
		docs := api.Group("/"+kind.Path(), withKind(kind))

		docs.GET("", s.ListDocuments(kind))
		docs.GET("/export.xlsx", s.ExportDocuments(kind))
		docs.POST("/preview-html", s.PreviewDocument(kind, previewHTML))
		docs.POST("/preview-pdf", s.PreviewDocument(kind, previewPDF))
		docs.POST("", s.CreateDocument(kind))
		docs.GET("/:id", s.GetDocument(kind))
		docs.PUT("/:id", s.UpdateDocument(kind))
		docs.DELETE("/:id", s.DeleteDocument(kind))
		docs.POST("/:id/regenerate", s.RegenerateDocument(kind))
		docs.GET("/:id/pdf", s.DownloadDocument(kind))
	}

	api.PATCH("/contracts/:id/deposit-status", withKind(documentdomain.KindContract), s.SetDepositStatus)
	api.PATCH("/invoices/:id/payment", withKind(documentdomain.KindInvoice), s.SetPaymentStatus)
}
