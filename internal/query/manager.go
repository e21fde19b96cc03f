// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"sync"

	"go.uber.org/zap"

	"github.com/pdiddy/estate-search/pkg/types"
)

// LinkWriter receives the canonical query string after every change, e.g.
// to rewrite the browser address bar or print a shareable link.
type LinkWriter func(query string)

// Listener is notified with the new intent after every change.
type Listener func(types.SearchIntent)

// Manager owns the current SearchIntent. Every Update, Replace and SetPage
// call performs exactly one link rewrite followed by exactly one listener
// notification, in call order. Listeners must not call back into the
// Manager synchronously.
type Manager struct {
	mu        sync.Mutex
	intent    types.SearchIntent
	listeners map[int]Listener
	order     []int
	nextID    int
	link      LinkWriter
	logger    *zap.Logger

	// notifyMu serializes delivery so listeners observe changes in order.
	notifyMu sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithLinkWriter installs the shareable-representation writer.
func WithLinkWriter(w LinkWriter) Option {
	return func(m *Manager) { m.link = w }
}

// WithLogger sets the logger used for change tracing.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager returns a Manager holding the normalized initial intent.
// Construction does not notify anyone.
func NewManager(initial types.SearchIntent, opts ...Option) *Manager {
	m := &Manager{
		intent:    initial.Normalize(),
		listeners: make(map[int]Listener),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Intent returns a copy of the current intent.
func (m *Manager) Intent() types.SearchIntent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.intent.Clone()
}

// Link returns the canonical query string of the current intent.
func (m *Manager) Link() string {
	return Encode(m.Intent())
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (m *Manager) Subscribe(fn Listener) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.order = append(m.order, id)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Update applies fn to a copy of the current intent. When any field other
// than Page changed, the page resets to 1 so a narrowed result set is never
// viewed past its end.
func (m *Manager) Update(fn func(*types.SearchIntent)) types.SearchIntent {
	return m.commit(func(cur types.SearchIntent) types.SearchIntent {
		next := cur.Clone()
		fn(&next)
		next = next.Normalize()
		if !next.EqualIgnoringPage(cur) {
			next.Page = 1
		}
		return next
	})
}

// Replace swaps in intent wholesale and resets the page to 1. The filter
// coordinator commits through Replace on apply and clear.
func (m *Manager) Replace(intent types.SearchIntent) types.SearchIntent {
	return m.commit(func(types.SearchIntent) types.SearchIntent {
		next := intent.Normalize()
		next.Page = 1
		return next
	})
}

// SetPage moves to page n, leaving every filter untouched. Values below 1
// are clamped to 1; the upper bound is the pager's concern.
func (m *Manager) SetPage(n int) types.SearchIntent {
	return m.Update(func(s *types.SearchIntent) { s.Page = n })
}

func (m *Manager) commit(change func(types.SearchIntent) types.SearchIntent) types.SearchIntent {
	m.mu.Lock()
	prev := m.intent
	m.intent = change(prev.Clone())
	next := m.intent.Clone()
	link := m.link
	listeners := make([]Listener, 0, len(m.listeners))
	live := m.order[:0]
	for _, id := range m.order {
		if fn, ok := m.listeners[id]; ok {
			listeners = append(listeners, fn)
			live = append(live, id)
		}
	}
	m.order = live

	// Take the delivery lock before releasing state so a later commit
	// cannot overtake this one.
	m.notifyMu.Lock()
	m.mu.Unlock()
	defer m.notifyMu.Unlock()

	encoded := Encode(next)
	m.logger.Debug("intent changed",
		zap.String("query", encoded),
		zap.Int("page", next.Page),
		zap.Bool("page_only", next.EqualIgnoringPage(prev)),
	)
	if link != nil {
		link(encoded)
	}
	for _, fn := range listeners {
		fn(next.Clone())
	}
	return next
}
