package renderer

import (
	"context"
	"errors"

	"github.com/smallbiznis/rentaldocs/internal/render"
)

var (
	// ErrHandleClosed marks failures caused by a dead engine handle. Only
	// these are retried.
	ErrHandleClosed = errors.New("renderer_handle_closed")
	ErrRenderFailed = errors.New("render_failed")
)

// Document is one rendering job. PrintableHeightPX is the page height the
// job is laid out against; Service fills it from the active layout.
type Document struct {
	Input             render.Input
	Preview           bool
	PrintableHeightPX float64
}

// PageHeightPX falls back to the A4 default when no height was set.
func (d Document) PageHeightPX() float64 {
	if d.PrintableHeightPX > 0 {
		return d.PrintableHeightPX
	}
	return PrintableHeightPX
}

// Page is a document loaded in the engine.
type Page interface {
	// HeightPX measures the first page at the presets applied so far.
	HeightPX(ctx context.Context) (float64, error)
	Apply(ctx context.Context, preset Preset) error
	// Applied lists the preset names in application order.
	Applied() []string
	HTML(ctx context.Context) (string, error)
	PDF(ctx context.Context, firstPageOnly bool) ([]byte, error)
	Close() error
}

// Engine is the long-lived rendering handle.
type Engine interface {
	NewPage(ctx context.Context, doc Document, base Metrics) (Page, error)
	Close() error
}

// Launcher starts a new engine.
type Launcher func(ctx context.Context) (Engine, error)
