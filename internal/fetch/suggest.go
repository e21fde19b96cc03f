// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pdiddy/estate-search/pkg/types"
)

// SuggestSource looks up listings matching a free-text term.
type SuggestSource interface {
	Search(ctx context.Context, term string) ([]types.PropertySummary, error)
}

// Suggestions is the type-ahead state shown under the search box.
type Suggestions struct {
	Term    string
	Items   []types.PropertySummary
	Loading bool
	Err     error
}

// Suggester debounces keystrokes and keeps only the newest lookup.
type Suggester struct {
	src      SuggestSource
	debounce *Debouncer
	minLen   int
	logger   *zap.Logger

	mu       sync.Mutex
	seq      uint64
	inputGen uint64
	cancel   context.CancelFunc
	state    Suggestions
	inflight sync.WaitGroup

	subs     broadcaster[Suggestions]
	notifyMu sync.Mutex
}

// NewSuggester returns a Suggester using cfg's window and minimum length.
// A nil clock uses RealClock and a nil logger disables logging.
func NewSuggester(src SuggestSource, cfg types.TypeaheadConfig, clock Clock, logger *zap.Logger) *Suggester {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Suggester{
		src:      src,
		debounce: NewDebouncer(clock, cfg.Debounce),
		minLen:   cfg.MinLength,
		logger:   logger,
	}
}

// State returns the current suggestions.
func (s *Suggester) State() Suggestions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for suggestion changes and returns a function that
// removes it.
func (s *Suggester) Subscribe(fn func(Suggestions)) (unsubscribe func()) {
	return s.subs.subscribe(fn)
}

// Input records the search box contents after a keystroke. Terms shorter
// than the minimum length clear the suggestions at once, cancel the
// pending lookup and invalidate any lookup in flight. Longer terms
// schedule a lookup once typing pauses for the debounce window.
func (s *Suggester) Input(term string) {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < s.minLen {
		s.debounce.Stop()
		s.mu.Lock()
		s.inputGen++
		s.invalidateLocked()
		s.state = Suggestions{Term: term}
		s.publishLocked()
		return
	}
	s.mu.Lock()
	s.inputGen++
	gen := s.inputGen
	s.mu.Unlock()
	s.debounce.Restart(func() { s.lookup(gen, term) })
}

// Wait blocks until no lookup is in flight. It does not wait for a
// pending debounce timer.
func (s *Suggester) Wait() {
	s.inflight.Wait()
}

// Close cancels the pending timer and any lookup in flight.
func (s *Suggester) Close() {
	s.debounce.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputGen++
	s.invalidateLocked()
}

func (s *Suggester) invalidateLocked() {
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Suggester) lookup(gen uint64, term string) {
	s.mu.Lock()
	if gen != s.inputGen {
		// A later keystroke arrived while the timer was firing.
		s.mu.Unlock()
		return
	}
	s.invalidateLocked()
	seq := s.seq
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.state = Suggestions{Term: term, Items: s.state.Items, Loading: true}
	s.inflight.Add(1)
	s.publishLocked()

	go func() {
		defer s.inflight.Done()
		items, err := s.src.Search(ctx, term)

		s.mu.Lock()
		if seq != s.seq || ctx.Err() != nil {
			s.mu.Unlock()
			s.logger.Debug("suggestion dropped", zap.String("term", term), zap.Error(ErrStaleResponse))
			return
		}
		s.cancel = nil
		if err != nil {
			s.logger.Warn("suggestion lookup failed", zap.String("term", term), zap.Error(err))
			s.state = Suggestions{Term: term, Err: err}
		} else {
			s.state = Suggestions{Term: term, Items: items}
		}
		s.publishLocked()
	}()
}

func (s *Suggester) publishLocked() {
	st := s.state
	subs := s.subs.snapshot()
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	s.subs.publish(subs, st)
}
