// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/estate-search/internal/fetch"
	"github.com/pdiddy/estate-search/pkg/types"
)

// fakeBackend answers every listing request with a three-page result and
// records what was asked.
type fakeBackend struct {
	mu      sync.Mutex
	intents []types.SearchIntent
	terms   []string
	err     error
	total   int
}

func (b *fakeBackend) ListProperties(_ context.Context, intent types.SearchIntent) (*types.ResultPage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.intents = append(b.intents, intent)
	if b.err != nil {
		return nil, b.err
	}
	return &types.ResultPage{
		Items:       []types.PropertySummary{{ID: "p-1"}},
		TotalCount:  b.total,
		TotalPages:  types.PageCount(b.total, 20),
		CurrentPage: intent.Page,
	}, nil
}

func (b *fakeBackend) Search(_ context.Context, term string) ([]types.PropertySummary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.terms = append(b.terms, term)
	return []types.PropertySummary{{ID: "s-" + term}}, nil
}

func (b *fakeBackend) fetched() []types.SearchIntent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]types.SearchIntent(nil), b.intents...)
}

func (b *fakeBackend) searched() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.terms...)
}

func (b *fakeBackend) setErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

func newSession(t *testing.T, location, rawQuery string, opts ...Option) (*Session, *fakeBackend) {
	t.Helper()
	values, err := url.ParseQuery(rawQuery)
	require.NoError(t, err)
	b := &fakeBackend{total: 50}
	s := New(b, b, location, values, opts...)
	t.Cleanup(s.Close)
	s.Wait()
	return s, b
}

func TestNewFetchesInitialIntent(t *testing.T) {
	s, b := newSession(t, "sector-77-noida", "purpose=rent&page=2")

	got := b.fetched()
	require.Len(t, got, 1)
	assert.Equal(t, "sector-77-noida", got[0].Location)
	assert.Equal(t, types.PurposeRent, got[0].Purpose)
	assert.Equal(t, 2, got[0].Page)

	st := s.State()
	assert.Equal(t, types.StatusSuccess, st.Status)
	assert.Equal(t, 2, st.Page.CurrentPage)
	assert.Equal(t, "Properties for Rent in Sector 77 Noida", s.Title())
}

func TestApplyOnPageThreeFetchesOnceAtPageOne(t *testing.T) {
	var links []string
	s, b := newSession(t, "", "page=3", WithLinkWriter(func(q string) { links = append(links, q) }))

	f := s.Filters()
	f.ToggleBHK("2 BHK")
	f.ToggleAmenity("Gym")
	f.SetMaxPrice("1.5 Cr")
	assert.Len(t, b.fetched(), 1, "staged edits do not fetch")

	errs := s.Apply()
	s.Wait()
	assert.Empty(t, errs)

	got := b.fetched()
	require.Len(t, got, 2)
	last := got[1]
	assert.Equal(t, 1, last.Page)
	assert.Equal(t, 2, *last.Bedrooms)
	assert.Equal(t, int64(15000000), *last.MaxPrice)
	assert.Equal(t, []string{"Gym"}, last.Amenities)
	assert.Equal(t, []string{"amenities=Gym&bedrooms=2&maxPrice=15000000"}, links)
	assert.Equal(t, links[0], s.Link())
}

func TestPurposeAndBedroomsApplyFetchesOnce(t *testing.T) {
	s, b := newSession(t, "", "page=3")

	f := s.Filters()
	f.SetPurpose(types.PurposeRent)
	f.ToggleBHK("2 BHK")
	require.Empty(t, s.Apply())
	s.Wait()

	got := b.fetched()
	require.Len(t, got, 2, "initial fetch plus exactly one for the apply")
	last := got[1]
	assert.Equal(t, types.PurposeRent, last.Purpose)
	require.NotNil(t, last.Bedrooms)
	assert.Equal(t, 2, *last.Bedrooms)
	assert.Equal(t, 1, last.Page)
	assert.Equal(t, "bedrooms=2&purpose=rent", s.Link())
}

func TestUpdateKeepsStagedEdits(t *testing.T) {
	s, b := newSession(t, "", "amenities=Gym")

	f := s.Filters()
	f.ToggleBHK("2 BHK")
	f.SetMaxPrice("50 L")

	s.Update(func(i *types.SearchIntent) {
		i.SortBy = types.SortPriceAsc
		i.Purpose = types.PurposePG
	})
	s.Wait()

	sel := f.Selection()
	assert.Equal(t, "2 BHK", sel.BHK)
	assert.Equal(t, "50 L", sel.MaxPrice)
	assert.Equal(t, []string{"Gym"}, sel.Amenities)
	assert.Equal(t, types.PurposePG, sel.Purpose, "changed groups are re-seeded")

	require.Empty(t, s.Apply())
	s.Wait()

	got := b.fetched()
	require.Len(t, got, 3)
	last := got[2]
	assert.Equal(t, types.SortPriceAsc, last.SortBy)
	assert.Equal(t, types.PurposePG, last.Purpose)
	assert.Equal(t, 2, *last.Bedrooms)
	assert.Equal(t, int64(5_000_000), *last.MaxPrice)
	assert.Equal(t, []string{"Gym"}, last.Amenities)
}

func TestApplyReportsInvalidPrice(t *testing.T) {
	s, b := newSession(t, "", "")
	s.Filters().SetMinPrice("lots")

	errs := s.Apply()
	s.Wait()
	require.Len(t, errs, 1)
	assert.Equal(t, "minPrice", errs[0].Field)
	assert.Nil(t, s.Intent().MinPrice)
	assert.Len(t, b.fetched(), 2)
}

func TestClearKeepsRouteLocation(t *testing.T) {
	s, b := newSession(t, "dwarka", "bedrooms=3&furnishing=furnished&page=2")

	s.Clear()
	s.Wait()

	got := b.fetched()
	require.Len(t, got, 2)
	assert.True(t, got[1].Equal(types.SearchIntent{Location: "dwarka"}), "got %+v", got[1])
	assert.Zero(t, s.Filters().ActiveCount())
}

func TestUpdateResetsPageAndReseedsFilters(t *testing.T) {
	s, b := newSession(t, "", "page=2")

	next := s.Update(func(i *types.SearchIntent) {
		i.SortBy = types.SortPriceAsc
		i.Bedrooms = types.Int(3)
	})
	s.Wait()

	assert.Equal(t, 1, next.Page)
	assert.Equal(t, "3 BHK", s.Filters().Selection().BHK)
	require.Len(t, b.fetched(), 2)
	assert.Equal(t, types.SortPriceAsc, b.fetched()[1].SortBy)
}

func TestPagination(t *testing.T) {
	s, b := newSession(t, "", "")

	assert.False(t, s.Previous(), "no page before the first")
	require.True(t, s.Next())
	s.Wait()
	assert.Equal(t, 2, s.State().Page.CurrentPage)

	require.True(t, s.GoTo(3))
	s.Wait()
	assert.False(t, s.Next(), "no page after the last")
	assert.False(t, s.GoTo(9))
	assert.Equal(t, []int{1, 2, 3}, s.PageWindow(5))

	assert.Len(t, b.fetched(), 3)
}

func TestPaginationIgnoredWhileFailed(t *testing.T) {
	s, b := newSession(t, "", "")
	b.setErr(errors.New("backend down"))

	require.True(t, s.Retry())
	s.Wait()
	assert.Equal(t, types.StatusFailure, s.State().Status)
	assert.False(t, s.Next())
	assert.Nil(t, s.PageWindow(5))

	b.setErr(nil)
	require.True(t, s.Retry())
	s.Wait()
	assert.Equal(t, types.StatusSuccess, s.State().Status)
	assert.Len(t, b.fetched(), 3)
}

func TestSubscribeSeesLoadingThenSuccess(t *testing.T) {
	s, _ := newSession(t, "", "")

	var mu sync.Mutex
	var seen []types.FetchStatus
	unsub := s.Subscribe(func(st types.FetchState) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, st.Status)
	})
	defer unsub()

	s.Update(func(i *types.SearchIntent) { i.Purpose = types.PurposePG })
	s.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []types.FetchStatus{types.StatusLoading, types.StatusSuccess}, seen)
}

func TestTypeDebounces(t *testing.T) {
	clock := fetch.NewManualClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s, b := newSession(t, "", "", WithClock(clock), WithTypeahead(types.TypeaheadConfig{Debounce: 500 * time.Millisecond, MinLength: 2}))

	var updates int
	var mu sync.Mutex
	unsub := s.SubscribeSuggestions(func(fetch.Suggestions) {
		mu.Lock()
		updates++
		mu.Unlock()
	})
	defer unsub()

	s.Type("de")
	clock.Advance(200 * time.Millisecond)
	s.Type("del")
	clock.Advance(500 * time.Millisecond)
	s.Wait()

	assert.Equal(t, []string{"del"}, b.searched())
	got := s.Suggestions()
	assert.Equal(t, "del", got.Term)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "s-del", got.Items[0].ID)

	s.Type("d")
	assert.Empty(t, s.Suggestions().Items)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, updates, "loading, result, clear")
}

func TestCloseStopsFetching(t *testing.T) {
	values := url.Values{}
	b := &fakeBackend{total: 10}
	s := New(b, b, "", values)
	s.Wait()
	s.Close()

	s.Update(func(i *types.SearchIntent) { i.Purpose = types.PurposeBuy })
	s.Wait()
	assert.Len(t, b.fetched(), 1)
}
