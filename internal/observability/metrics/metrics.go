package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	documentsCommitted metric.Int64Counter
	previewsRendered   metric.Int64Counter
	renders            metric.Int64Counter
	compactions        metric.Int64Counter
	rendererResets     metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "rentaldocs"
	}
	meter := provider.Meter(name)

	documentsCommitted, err := meter.Int64Counter("rentaldocs_documents_committed_total")
	if err != nil {
		return nil, err
	}
	previewsRendered, err := meter.Int64Counter("rentaldocs_previews_rendered_total")
	if err != nil {
		return nil, err
	}
	renders, err := meter.Int64Counter("rentaldocs_renders_total")
	if err != nil {
		return nil, err
	}
	compactions, err := meter.Int64Counter("rentaldocs_compactions_total")
	if err != nil {
		return nil, err
	}
	rendererResets, err := meter.Int64Counter("rentaldocs_renderer_resets_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		documentsCommitted: documentsCommitted,
		previewsRendered:   previewsRendered,
		renders:            renders,
		compactions:        compactions,
		rendererResets:     rendererResets,
	}, nil
}

// RecordDocumentCommitted counts creates and updates per document kind.
func (m *Metrics) RecordDocumentCommitted(ctx context.Context, kind, operation string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("kind", strings.TrimSpace(kind)),
		attribute.String("operation", strings.TrimSpace(operation)),
	)
	m.documentsCommitted.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPreview counts previews per kind and format.
func (m *Metrics) RecordPreview(ctx context.Context, kind, format string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("kind", strings.TrimSpace(kind)),
		attribute.String("format", strings.TrimSpace(format)),
	)
	m.previewsRendered.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRender counts renders and the ones that needed compaction.
func (m *Metrics) RecordRender(ctx context.Context, format string, compacted, overflowAfter bool) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("format", strings.TrimSpace(format)))
	m.renders.Add(ctx, 1, metric.WithAttributes(attrs...))
	if !compacted {
		return
	}
	outcome := "fitted"
	if overflowAfter {
		outcome = "overflowing"
	}
	m.compactions.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("format", strings.TrimSpace(format)),
		attribute.String("outcome", outcome),
	)...))
}

// RecordRendererReset counts engine relaunches.
func (m *Metrics) RecordRendererReset(ctx context.Context) {
	if m == nil {
		return
	}
	m.rendererResets.Add(ctx, 1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"kind":        {},
	"operation":   {},
	"format":      {},
	"outcome":     {},
	"endpoint":    {},
	"status_code": {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
