package pdf

import (
	"context"
	"sync"

	"github.com/smallbiznis/rentaldocs/internal/render"
	"github.com/smallbiznis/rentaldocs/internal/renderer"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("pdf",
	fx.Provide(NewLauncher),
)

// Engine renders markup with the HTML template and bytes with maroto.
// Once closed, every page it handed out fails with renderer.ErrHandleClosed.
type Engine struct {
	html *render.HTMLRenderer
	log  *zap.Logger

	mu     sync.RWMutex
	closed bool
}

func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{html: render.NewHTMLRenderer(), log: log.Named("pdf.engine")}
}

// NewLauncher starts a fresh engine each time the pool needs one.
func NewLauncher(log *zap.Logger) renderer.Launcher {
	return func(ctx context.Context) (renderer.Engine, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return NewEngine(log), nil
	}
}

func (e *Engine) alive() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return renderer.ErrHandleClosed
	}
	return nil
}

func (e *Engine) NewPage(ctx context.Context, doc renderer.Document, base renderer.Metrics) (renderer.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.alive(); err != nil {
		return nil, err
	}
	return &page{engine: e, doc: doc, metrics: base}, nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		e.log.Debug("engine closed")
	}
	return nil
}

type page struct {
	engine  *Engine
	doc     renderer.Document
	metrics renderer.Metrics
	applied []string
	closed  bool
}

func (p *page) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.closed {
		return renderer.ErrHandleClosed
	}
	return p.engine.alive()
}

func (p *page) layout() *sheet {
	return layoutDocument(p.doc.Input, p.metrics, p.doc.Preview)
}

func (p *page) HeightPX(ctx context.Context) (float64, error) {
	if err := p.check(ctx); err != nil {
		return 0, err
	}
	return p.layout().heightPX(), nil
}

func (p *page) Apply(ctx context.Context, preset renderer.Preset) error {
	if err := p.check(ctx); err != nil {
		return err
	}
	p.metrics = preset.Metrics
	p.applied = append(p.applied, preset.Name)
	return nil
}

func (p *page) Applied() []string {
	return append([]string(nil), p.applied...)
}

func (p *page) HTML(ctx context.Context) (string, error) {
	if err := p.check(ctx); err != nil {
		return "", err
	}
	return p.engine.html.RenderHTML(render.View{
		Input:   p.doc.Input,
		Preview: p.doc.Preview,
		Classes: p.Applied(),
	})
}

func (p *page) PDF(ctx context.Context, firstPageOnly bool) ([]byte, error) {
	if err := p.check(ctx); err != nil {
		return nil, err
	}
	return drawPDF(p.rows(firstPageOnly), p.metrics)
}

func (p *page) rows(firstPageOnly bool) []row {
	s := p.layout()
	if firstPageOnly {
		return s.firstPage(p.doc.PageHeightPX())
	}
	return s.rows
}

func (p *page) Close() error {
	p.closed = true
	return nil
}

var (
	_ renderer.Engine = (*Engine)(nil)
	_ renderer.Page   = (*page)(nil)
)
