// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch turns a stream of search intents into exactly one
// authoritative FetchState. Every request carries a sequence token; a new
// request cancels the previous one and late completions are discarded.
// The package also provides the debounced type-ahead Suggester and the
// Pager that bounds page navigation.
package fetch

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/estate-search/pkg/types"
)

// ErrStaleResponse marks a completion that arrived after a newer request
// was issued. It is logged and never reaches FetchState.
var ErrStaleResponse = errors.New("stale response discarded")

// Source fetches one page of listings for an intent.
type Source interface {
	ListProperties(ctx context.Context, intent types.SearchIntent) (*types.ResultPage, error)
}

// Pipeline owns the FetchState for the current intent.
type Pipeline struct {
	src    Source
	logger *zap.Logger

	mu       sync.Mutex
	seq      uint64
	cancel   context.CancelFunc
	state    types.FetchState
	last     types.SearchIntent
	hasLast  bool
	inflight sync.WaitGroup
	closed   bool

	subs     broadcaster[types.FetchState]
	notifyMu sync.Mutex
}

// NewPipeline returns an idle Pipeline fetching from src. A nil logger
// disables logging.
func NewPipeline(src Source, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{src: src, logger: logger}
}

// State returns the current FetchState.
func (p *Pipeline) State() types.FetchState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Subscribe registers fn for state changes and returns a function that
// removes it. fn must not call Submit or Retry synchronously.
func (p *Pipeline) Subscribe(fn func(types.FetchState)) (unsubscribe func()) {
	return p.subs.subscribe(fn)
}

// Submit moves to Loading and issues one request for the normalized
// intent. Any request still in flight is cancelled and its result will be
// discarded. Submit returns the new request's sequence token, or 0 after
// Close.
func (p *Pipeline) Submit(intent types.SearchIntent) uint64 {
	intent = intent.Normalize()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.seq++
	seq := p.seq
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.last = intent.Clone()
	p.hasLast = true
	p.state = types.FetchState{Status: types.StatusLoading, Intent: intent, Seq: seq}
	p.inflight.Add(1)
	p.publishLocked()

	go p.run(ctx, seq, intent)
	return seq
}

// Retry re-issues the last submitted intent unchanged. It reports false
// when nothing has been submitted yet.
func (p *Pipeline) Retry() (uint64, bool) {
	p.mu.Lock()
	intent, ok := p.last.Clone(), p.hasLast
	p.mu.Unlock()
	if !ok {
		return 0, false
	}
	return p.Submit(intent), true
}

// Wait blocks until no request is in flight.
func (p *Pipeline) Wait() {
	p.inflight.Wait()
}

// Close cancels the in-flight request and rejects further submissions.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *Pipeline) run(ctx context.Context, seq uint64, intent types.SearchIntent) {
	defer p.inflight.Done()

	start := time.Now()
	page, err := p.src.ListProperties(ctx, intent)
	latency := time.Since(start)

	p.mu.Lock()
	if seq != p.seq || ctx.Err() != nil {
		p.mu.Unlock()
		p.logger.Debug("fetch completion dropped",
			zap.Uint64("seq", seq),
			zap.Duration("latency", latency),
			zap.Error(ErrStaleResponse),
		)
		return
	}
	p.cancel = nil

	switch {
	case err != nil:
		p.state = types.FetchState{Status: types.StatusFailure, Intent: intent, Err: err, Seq: seq}
		p.logger.Warn("fetch failed",
			zap.Uint64("seq", seq),
			zap.Duration("latency", latency),
			zap.Error(err),
		)
	case page == nil:
		p.state = types.FetchState{Status: types.StatusSuccess, Intent: intent, Page: &types.ResultPage{CurrentPage: intent.Page}, Seq: seq}
	default:
		result := *page
		if result.CurrentPage == 0 {
			result.CurrentPage = intent.Page
		}
		p.state = types.FetchState{Status: types.StatusSuccess, Intent: intent, Page: &result, Seq: seq}
		p.logger.Debug("fetch succeeded",
			zap.Uint64("seq", seq),
			zap.Duration("latency", latency),
			zap.Int("items", len(result.Items)),
			zap.Int("total", result.TotalCount),
		)
	}
	p.publishLocked()
}

// publishLocked delivers the current state to subscribers. It must be
// called with p.mu held and releases it; the delivery lock is taken first
// so states reach subscribers in the order they were set.
func (p *Pipeline) publishLocked() {
	st := p.state
	subs := p.subs.snapshot()
	p.notifyMu.Lock()
	p.mu.Unlock()
	defer p.notifyMu.Unlock()
	p.subs.publish(subs, st)
}
