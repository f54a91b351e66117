// Package formpreview drives the live preview of an unsaved contract or
// invoice form: it debounces edits, skips payloads that did not change and
// makes sure only the newest request can update what the user sees.
package formpreview

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	documentdomain "github.com/smallbiznis/rentaldocs/internal/document/domain"
	"go.uber.org/zap"
)

const DefaultDelay = 600 * time.Millisecond

var (
	ErrClosed             = errors.New("preview_scheduler_closed")
	errGenerationMismatch = errors.New("preview_generation_mismatch")
)

// State is what the preview pane shows. HTML survives failed and superseded
// requests so the user keeps the last good render.
type State struct {
	HTML           string
	Loading        bool
	Error          string
	Reason         string
	OverflowBefore bool
	OverflowAfter  bool
	CompactApplied bool
	Generation     string
}

type Config struct {
	Kind    documentdomain.Kind
	Fetcher Fetcher
	// Delay defaults to DefaultDelay.
	Delay time.Duration
	Log   *zap.Logger
	// OnChange receives every state transition. It runs outside the
	// scheduler lock and may call State but not Update.
	OnChange func(State)
}

type Scheduler struct {
	kind     documentdomain.Kind
	fetcher  Fetcher
	delay    time.Duration
	log      *zap.Logger
	onChange func(State)

	base   context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	notify sync.Mutex

	mu         sync.Mutex
	state      State
	key        string
	timer      *time.Timer
	cancel     context.CancelFunc
	generation string
	entropy    *ulid.MonotonicEntropy
	closed     bool
}

func New(cfg Config) *Scheduler {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	delay := cfg.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	base, stop := context.WithCancel(context.Background())
	return &Scheduler{
		kind:     cfg.Kind,
		fetcher:  cfg.Fetcher,
		delay:    delay,
		log:      log.Named("formpreview.scheduler").With(zap.String("kind", cfg.Kind.String())),
		onChange: cfg.OnChange,
		base:     base,
		stop:     stop,
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

// State returns the current preview state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update records the latest form payload. A payload equal to the previous
// one is ignored; anything else cancels the pending or in-flight request
// and schedules a new one after the debounce delay. A form that is not
// ready clears the preview and shows the reason instead.
func (s *Scheduler) Update(payload any, readiness Readiness) error {
	if !readiness.Ready {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return ErrClosed
		}
		s.abortLocked()
		s.key = ""
		s.state = State{Reason: readiness.Reason}
		snapshot := s.state
		s.mu.Unlock()
		s.publish(snapshot)
		return nil
	}

	body, err := CanonicalJSON(payload)
	if err != nil {
		return err
	}
	key := string(body)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if key == s.key {
		return nil
	}
	s.abortLocked()
	s.key = key
	s.state.Reason = ""
	s.timer = time.AfterFunc(s.delay, func() { s.fire(key, body) })
	return nil
}

// Close cancels pending work and waits for in-flight requests to return.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.abortLocked()
	s.mu.Unlock()

	s.stop()
	s.wg.Wait()
}

// abortLocked stops the debounce timer and supersedes the in-flight request.
func (s *Scheduler) abortLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation = ""
	s.state.Loading = false
}

func (s *Scheduler) fire(key string, body []byte) {
	s.mu.Lock()
	if s.closed || s.key != key {
		s.mu.Unlock()
		return
	}
	generation := ulid.MustNew(ulid.Now(), s.entropy).String()
	ctx, cancel := context.WithCancel(s.base)
	s.timer = nil
	s.cancel = cancel
	s.generation = generation
	s.state.Loading = true
	s.state.Error = ""
	snapshot := s.state
	s.wg.Add(1)
	s.mu.Unlock()

	defer s.wg.Done()
	defer cancel()
	s.publish(snapshot)

	result, err := s.fetcher.Fetch(ctx, Request{Kind: s.kind, Payload: body, Generation: generation})

	s.mu.Lock()
	if s.generation != generation {
		s.mu.Unlock()
		s.log.Debug("discarding superseded preview", zap.String("generation", generation))
		return
	}
	// the server echoes the generation; a mismatch means responses got mixed up
	if err == nil && result.Generation != "" && result.Generation != generation {
		err = errGenerationMismatch
	}
	s.cancel = nil
	s.state.Loading = false
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.mu.Unlock()
			return
		}
		s.state.Error = ErrorMessage(err)
		s.log.Warn("preview failed", zap.String("generation", generation), zap.Error(err))
	} else {
		s.state.HTML = result.HTML
		s.state.Error = ""
		s.state.OverflowBefore = result.OverflowBefore
		s.state.OverflowAfter = result.OverflowAfter
		s.state.CompactApplied = result.CompactApplied
		s.state.Generation = generation
	}
	snapshot = s.state
	s.mu.Unlock()

	s.publish(snapshot)
}

func (s *Scheduler) publish(state State) {
	if s.onChange == nil {
		return
	}
	s.notify.Lock()
	defer s.notify.Unlock()
	s.onChange(state)
}

// CanonicalJSON encodes payload with object keys sorted at every level, so
// two payloads that differ only in field order share one key.
func CanonicalJSON(payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}
