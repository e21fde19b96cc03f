// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/estate-search/pkg/types"
)

type fixedState types.FetchState

func (f fixedState) State() types.FetchState { return types.FetchState(f) }

type pageRecorder struct{ pages []int }

func (r *pageRecorder) SetPage(n int) types.SearchIntent {
	r.pages = append(r.pages, n)
	return types.SearchIntent{Page: n}
}

func successAt(current, total int) fixedState {
	return fixedState{Status: types.StatusSuccess, Page: &types.ResultPage{CurrentPage: current, TotalPages: total, TotalCount: total * 20}}
}

func TestPagerNextAtLastPageIsNoOp(t *testing.T) {
	rec := &pageRecorder{}
	p := NewPager(successAt(5, 5), rec)

	assert.False(t, p.Next())
	assert.Empty(t, rec.pages)

	assert.True(t, p.Previous())
	assert.Equal(t, []int{4}, rec.pages)
}

func TestPagerPreviousAtFirstPageIsNoOp(t *testing.T) {
	rec := &pageRecorder{}
	p := NewPager(successAt(1, 3), rec)

	assert.False(t, p.Previous())
	assert.True(t, p.Next())
	assert.Equal(t, []int{2}, rec.pages)
}

func TestPagerGoTo(t *testing.T) {
	tests := []struct {
		name  string
		state fixedState
		page  int
		moved bool
	}{
		{name: "in range", state: successAt(1, 10), page: 7, moved: true},
		{name: "last page", state: successAt(1, 10), page: 10, moved: true},
		{name: "past the end", state: successAt(1, 10), page: 11},
		{name: "zero", state: successAt(2, 10), page: 0},
		{name: "current page", state: successAt(3, 10), page: 3},
		{name: "empty result", state: successAt(1, 0), page: 1},
		{name: "while loading", state: fixedState{Status: types.StatusLoading}, page: 2},
		{name: "after failure", state: fixedState{Status: types.StatusFailure}, page: 2},
		{name: "idle", state: fixedState{}, page: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &pageRecorder{}
			moved := NewPager(tt.state, rec).GoTo(tt.page)
			assert.Equal(t, tt.moved, moved)
			if tt.moved {
				assert.Equal(t, []int{tt.page}, rec.pages)
			} else {
				assert.Empty(t, rec.pages)
			}
		})
	}
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		name                  string
		current, total, width int
		want                  []int
	}{
		{name: "no pages", current: 1, total: 0, width: 5, want: nil},
		{name: "fits", current: 2, total: 3, width: 5, want: []int{1, 2, 3}},
		{name: "start", current: 1, total: 10, width: 5, want: []int{1, 2, 3, 4, 5, Ellipsis, 10}},
		{name: "middle", current: 5, total: 10, width: 5, want: []int{1, Ellipsis, 3, 4, 5, 6, 7, Ellipsis, 10}},
		{name: "near start", current: 4, total: 10, width: 5, want: []int{1, 2, 3, 4, 5, 6, Ellipsis, 10}},
		{name: "end", current: 10, total: 10, width: 5, want: []int{1, Ellipsis, 6, 7, 8, 9, 10}},
		{name: "current clamped", current: 99, total: 6, width: 5, want: []int{1, 2, 3, 4, 5, 6}},
		{name: "default width", current: 1, total: 7, width: 0, want: []int{1, 2, 3, 4, 5, Ellipsis, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PageWindow(tt.current, tt.total, tt.width))
		})
	}
}
