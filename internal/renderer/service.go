package renderer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/rentaldocs/internal/observability/metrics"
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle `optional:"true"`
	Log       *zap.Logger
	Launcher  Launcher
	Layouts   LayoutSource
	Metrics   *metrics.Metrics `optional:"true"`
}

// Service renders documents on a pooled engine with overflow compaction.
type Service struct {
	pool    *Pool
	layouts LayoutSource
	log     *zap.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type HTMLResult struct {
	HTML string
	Compaction
}

type PDFResult struct {
	PDF []byte
	Compaction
}

func New(p Params) *Service {
	log := p.Log.Named("renderer.service")
	svc := &Service{
		pool:    NewPool(p.Launcher, p.Log),
		layouts: p.Layouts,
		log:     log,
		metrics: p.Metrics,
		tracer:  otel.Tracer("rentaldocs/renderer"),
	}
	svc.pool.OnReset = func() {
		svc.metrics.RecordRendererReset(context.Background())
	}

	if p.Lifecycle != nil {
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				log.Info("closing renderer pool")
				return svc.pool.Close()
			},
		})
	}
	return svc
}

// Pool exposes the engine pool, mostly for shutdown and tests.
func (s *Service) Pool() *Pool { return s.pool }

func (s *Service) layout() Layout {
	if s.layouts == nil {
		return DefaultLayout()
	}
	return s.layouts.Layout()
}

// RenderHTML returns the compacted markup of doc.
func (s *Service) RenderHTML(ctx context.Context, doc Document) (HTMLResult, error) {
	ctx, span := s.start(ctx, "renderer.html", doc)
	defer span.End()

	start := time.Now()
	layout := s.layout()
	doc.PrintableHeightPX = layout.PrintableHeightPX
	res, err := WithPage(ctx, s.pool, doc, layout.Base, func(ctx context.Context, page Page) (HTMLResult, error) {
		compaction, err := s.compact(ctx, page, layout)
		if err != nil {
			return HTMLResult{}, err
		}
		html, err := page.HTML(ctx)
		if err != nil {
			return HTMLResult{}, err
		}
		return HTMLResult{HTML: html, Compaction: compaction}, nil
	})
	s.finish(ctx, span, "html", res.Compaction, start, err)
	return res, err
}

// RenderPDF returns the PDF bytes of doc, only its first page when asked.
func (s *Service) RenderPDF(ctx context.Context, doc Document, firstPageOnly bool) (PDFResult, error) {
	ctx, span := s.start(ctx, "renderer.pdf", doc)
	defer span.End()

	start := time.Now()
	layout := s.layout()
	doc.PrintableHeightPX = layout.PrintableHeightPX
	res, err := WithPage(ctx, s.pool, doc, layout.Base, func(ctx context.Context, page Page) (PDFResult, error) {
		compaction, err := s.compact(ctx, page, layout)
		if err != nil {
			return PDFResult{}, err
		}
		data, err := page.PDF(ctx, firstPageOnly)
		if err != nil {
			return PDFResult{}, err
		}
		return PDFResult{PDF: data, Compaction: compaction}, nil
	})
	s.finish(ctx, span, "pdf", res.Compaction, start, err)
	return res, err
}

func (s *Service) compact(ctx context.Context, page Page, layout Layout) (Compaction, error) {
	ctx, span := s.tracer.Start(ctx, "renderer.compact")
	defer span.End()

	result, err := Compact(ctx, page, layout.Presets, layout.PrintableHeightPX)
	if err != nil {
		span.RecordError(err)
		return result, err
	}
	span.SetAttributes(
		attribute.Bool("overflow_before", result.OverflowBefore),
		attribute.Bool("overflow_after", result.OverflowAfter),
		attribute.Int("presets", len(result.Presets)),
	)
	return result, nil
}

func (s *Service) start(ctx context.Context, name string, doc Document) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.Bool("preview", doc.Preview),
		attribute.Bool("invoice", doc.Input.Invoice),
	))
}

func (s *Service) finish(ctx context.Context, span trace.Span, format string, compaction Compaction, start time.Time, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		s.log.Warn("render failed", zap.String("format", format), zap.Error(err))
		return
	}
	s.metrics.RecordRender(ctx, format, compaction.CompactApplied, compaction.OverflowAfter)
	s.log.Debug("rendered",
		zap.String("format", format),
		zap.Bool("overflow_before", compaction.OverflowBefore),
		zap.Bool("overflow_after", compaction.OverflowAfter),
		zap.Strings("presets", compaction.Presets),
		zap.Duration("duration", time.Since(start)),
	)
}
