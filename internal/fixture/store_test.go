// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fixture

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/estate-search/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join("testdata", "listings.yaml"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func ids(items []types.PropertySummary) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}

func TestOpenLoadsListings(t *testing.T) {
	s := openTestStore(t)
	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	p, ok, err := s.Get(context.Background(), "p-101")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "3 BHK Apartment", p.Title())
	assert.Equal(t, "Sale", p.Purpose)
	assert.Equal(t, []string{"https://img.example.test/p-101/1.jpg"}, p.Photos)
	assert.True(t, p.Featured)

	_, ok, err = s.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "reading fixture data")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("listings: [oops"), 0o644))
	_, err = Open(context.Background(), bad)
	assert.ErrorContains(t, err, "parsing fixture data")

	noID := filepath.Join(t.TempDir(), "noid.yaml")
	require.NoError(t, os.WriteFile(noID, []byte("listings:\n  - city: Noida\n"), 0o644))
	_, err = Open(context.Background(), noID)
	assert.ErrorContains(t, err, "has no id")
}

func TestList(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		name   string
		intent types.SearchIntent
		want   []string
	}{
		{name: "everything featured first", intent: types.SearchIntent{}, want: []string{"p-101", "p-102", "p-103", "p-104"}},
		{name: "location slug", intent: types.SearchIntent{Location: "noida"}, want: []string{"p-101", "p-102"}},
		{name: "purpose buy matches sale", intent: types.SearchIntent{Purpose: types.PurposeBuy}, want: []string{"p-101", "p-103", "p-104"}},
		{name: "purpose rent", intent: types.SearchIntent{Purpose: types.PurposeRent}, want: []string{"p-102"}},
		{name: "property type", intent: types.SearchIntent{PropertyType: "villa"}, want: []string{"p-103"}},
		{name: "bedrooms", intent: types.SearchIntent{Bedrooms: types.Int(3)}, want: []string{"p-101"}},
		{name: "price band", intent: types.SearchIntent{MinPrice: types.Int64(5000000), MaxPrice: types.Int64(20000000)}, want: []string{"p-101", "p-104"}},
		{name: "furnishing", intent: types.SearchIntent{Furnishing: types.FurnishingSemi}, want: []string{"p-101"}},
		{name: "posted by", intent: types.SearchIntent{PostedBy: types.PostedByOwner}, want: []string{"p-101", "p-104"}},
		{name: "availability", intent: types.SearchIntent{Availability: types.AvailabilityWithin15Days}, want: []string{"p-102"}},
		{name: "every amenity required", intent: types.SearchIntent{Amenities: []string{"Gym", "Parking"}}, want: []string{"p-101"}},
		{name: "sort price ascending", intent: types.SearchIntent{SortBy: types.SortPriceAsc}, want: []string{"p-102", "p-104", "p-101", "p-103"}},
		{name: "sort newest", intent: types.SearchIntent{SortBy: types.SortNewest}, want: []string{"p-104", "p-102", "p-101", "p-103"}},
		{name: "no match", intent: types.SearchIntent{Location: "mumbai"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := s.List(context.Background(), tt.intent, 20)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(items))
			assert.Equal(t, len(tt.want), total)
		})
	}
}

func TestListPaginates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	items, total, err := s.List(ctx, types.SearchIntent{Page: 2}, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, []string{"p-104"}, ids(items))

	items, total, err = s.List(ctx, types.SearchIntent{Page: 5}, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Empty(t, items)
}

func TestSearch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	got, err := s.Search(ctx, "dwar", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p-103", "p-104"}, ids(got))

	got, err = s.Search(ctx, "VILLA", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p-103"}, ids(got))

	got, err = s.Search(ctx, "100%", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Search(ctx, "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
