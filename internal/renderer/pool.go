package renderer

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Pool owns at most one engine. The engine is launched on first use and
// relaunched after Reset.
type Pool struct {
	mu       sync.Mutex
	launch   Launcher
	engine   Engine
	launches int
	log      *zap.Logger

	// OnReset runs after a live engine has been dropped.
	OnReset func()
}

func NewPool(launch Launcher, log *zap.Logger) *Pool {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{launch: launch, log: log.Named("renderer.pool")}
}

// Acquire returns the live engine, launching it when needed.
func (p *Pool) Acquire(ctx context.Context) (Engine, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.engine != nil {
		return p.engine, nil
	}
	engine, err := p.launch(ctx)
	if err != nil {
		return nil, err
	}
	p.engine = engine
	p.launches++
	p.log.Debug("engine launched", zap.Int("launches", p.launches))
	return engine, nil
}

// Reset closes and forgets failed if it is still the pooled engine. A
// caller holding an engine that another caller already replaced leaves the
// fresh one alone.
func (p *Pool) Reset(failed Engine) error {
	if failed == nil {
		return nil
	}
	p.mu.Lock()
	if p.engine != failed {
		p.mu.Unlock()
		return nil
	}
	p.engine = nil
	p.mu.Unlock()

	p.log.Info("engine reset")
	err := failed.Close()
	if p.OnReset != nil {
		p.OnReset()
	}
	return err
}

// Close releases the engine for good; a later Acquire relaunches.
func (p *Pool) Close() error {
	p.mu.Lock()
	engine := p.engine
	p.engine = nil
	p.mu.Unlock()

	if engine == nil {
		return nil
	}
	return engine.Close()
}

// Launches counts successful launches.
func (p *Pool) Launches() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.launches
}
