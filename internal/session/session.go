// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session wires the query manager, filter coordinator, fetch
// pipeline, pager and suggester into one listing page. Every change to the
// shareable intent triggers exactly one fetch.
package session

import (
	"net/url"

	"go.uber.org/zap"

	"github.com/pdiddy/estate-search/internal/fetch"
	"github.com/pdiddy/estate-search/internal/filter"
	"github.com/pdiddy/estate-search/internal/query"
	"github.com/pdiddy/estate-search/pkg/types"
)

// Session is one visitor's property listing page.
type Session struct {
	query   *query.Manager
	filters *filter.Coordinator
	fetch   *fetch.Pipeline
	pager   *fetch.Pager
	suggest *fetch.Suggester
	logger  *zap.Logger

	unsubscribe func()
}

type options struct {
	link      query.LinkWriter
	clock     fetch.Clock
	typeahead types.TypeaheadConfig
	logger    *zap.Logger
}

// Option configures a Session.
type Option func(*options)

// WithLinkWriter receives every rewrite of the shareable query string.
func WithLinkWriter(w query.LinkWriter) Option {
	return func(o *options) { o.link = w }
}

// WithClock sets the clock for type-ahead debouncing.
func WithClock(c fetch.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithTypeahead sets the debounce window and minimum term length.
func WithTypeahead(cfg types.TypeaheadConfig) Option {
	return func(o *options) { o.typeahead = cfg }
}

// WithLogger sets the logger shared by every component.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New opens a session for the page at /properties/<location>?<values> and
// issues the initial fetch. An empty location means no route location.
func New(listings fetch.Source, suggestions fetch.SuggestSource, location string, values url.Values, opts ...Option) *Session {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	initial := query.ParseRoute(location, values)
	mgrOpts := []query.Option{query.WithLogger(o.logger.Named("query"))}
	if o.link != nil {
		mgrOpts = append(mgrOpts, query.WithLinkWriter(o.link))
	}

	s := &Session{
		query:  query.NewManager(initial, mgrOpts...),
		fetch:  fetch.NewPipeline(listings, o.logger.Named("fetch")),
		logger: o.logger,
	}
	s.filters = filter.NewCoordinator(s.query, o.logger.Named("filter"))
	s.pager = fetch.NewPager(s.fetch, s.query)
	s.suggest = fetch.NewSuggester(suggestions, o.typeahead, o.clock, o.logger.Named("suggest"))
	s.unsubscribe = s.query.Subscribe(func(intent types.SearchIntent) {
		s.fetch.Submit(intent)
	})

	s.fetch.Submit(s.query.Intent())
	return s
}

// Intent returns the current shareable intent.
func (s *Session) Intent() types.SearchIntent { return s.query.Intent() }

// Link returns the canonical query string of the current intent.
func (s *Session) Link() string { return s.query.Link() }

// Title returns the page heading for the current intent.
func (s *Session) Title() string { return s.query.Intent().Describe() }

// Update changes the intent directly, outside the sidebar (sort order,
// search box location). Sidebar groups the change touched are re-seeded;
// other staged edits survive until Apply or Clear.
func (s *Session) Update(fn func(*types.SearchIntent)) types.SearchIntent {
	prev := s.query.Intent()
	next := s.query.Update(fn)
	s.filters.Rebase(prev, next)
	return next
}

// Filters returns the sidebar coordinator for staging edits.
func (s *Session) Filters() *filter.Coordinator { return s.filters }

// Apply commits the staged sidebar selections.
func (s *Session) Apply() []filter.ValidationError { return s.filters.Apply() }

// Clear drops every filter and commits the empty set.
func (s *Session) Clear() types.SearchIntent { return s.filters.Clear() }

// State returns the fetch state of the current intent.
func (s *Session) State() types.FetchState { return s.fetch.State() }

// Subscribe registers fn for fetch state changes.
func (s *Session) Subscribe(fn func(types.FetchState)) (unsubscribe func()) {
	return s.fetch.Subscribe(fn)
}

// Retry re-issues the last fetch. It reports false when none was issued.
func (s *Session) Retry() bool {
	_, ok := s.fetch.Retry()
	return ok
}

// Next moves to the following page. It is a no-op on the last page.
func (s *Session) Next() bool { return s.pager.Next() }

// Previous moves to the preceding page. It is a no-op on the first page.
func (s *Session) Previous() bool { return s.pager.Previous() }

// GoTo moves to page n when it lies within the result set.
func (s *Session) GoTo(n int) bool { return s.pager.GoTo(n) }

// PageWindow returns the page buttons to show for the last successful
// fetch, with fetch.Ellipsis marking gaps. It is empty before the first
// success.
func (s *Session) PageWindow(width int) []int {
	st := s.fetch.State()
	if st.Status != types.StatusSuccess || st.Page == nil {
		return nil
	}
	return fetch.PageWindow(st.Page.CurrentPage, st.Page.TotalPages, width)
}

// Type feeds the search box contents to the suggester.
func (s *Session) Type(term string) { s.suggest.Input(term) }

// Suggestions returns the current type-ahead state.
func (s *Session) Suggestions() fetch.Suggestions { return s.suggest.State() }

// SubscribeSuggestions registers fn for type-ahead changes.
func (s *Session) SubscribeSuggestions(fn func(fetch.Suggestions)) (unsubscribe func()) {
	return s.suggest.Subscribe(fn)
}

// Wait blocks until no fetch or suggestion lookup is in flight.
func (s *Session) Wait() {
	s.fetch.Wait()
	s.suggest.Wait()
}

// Close stops listening for intent changes and cancels outstanding work.
func (s *Session) Close() {
	s.unsubscribe()
	s.suggest.Close()
	s.fetch.Close()
	s.Wait()
}
