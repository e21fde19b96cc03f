// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import "github.com/pdiddy/estate-search/pkg/types"

// StateReader exposes the current FetchState. Pipeline implements it.
type StateReader interface {
	State() types.FetchState
}

// PageSetter moves the shareable intent to another page. query.Manager
// implements it.
type PageSetter interface {
	SetPage(n int) types.SearchIntent
}

// Pager bounds page navigation to [1, TotalPages] of the last successful
// fetch. Moves outside that range, to the current page, or while the
// state is not Success are no-ops and issue no request.
type Pager struct {
	state  StateReader
	target PageSetter
}

// NewPager returns a Pager reading state and moving target.
func NewPager(state StateReader, target PageSetter) *Pager {
	return &Pager{state: state, target: target}
}

// Next moves one page forward and reports whether a move happened.
func (p *Pager) Next() bool {
	cur, _, ok := p.position()
	return ok && p.GoTo(cur+1)
}

// Previous moves one page back and reports whether a move happened.
func (p *Pager) Previous() bool {
	cur, _, ok := p.position()
	return ok && p.GoTo(cur-1)
}

// GoTo moves to page n and reports whether a move happened.
func (p *Pager) GoTo(n int) bool {
	cur, total, ok := p.position()
	if !ok || n < 1 || n > total || n == cur {
		return false
	}
	p.target.SetPage(n)
	return true
}

func (p *Pager) position() (current, total int, ok bool) {
	st := p.state.State()
	if st.Status != types.StatusSuccess || st.Page == nil {
		return 0, 0, false
	}
	return st.Page.CurrentPage, st.Page.TotalPages, true
}

// Ellipsis marks a gap in a PageWindow.
const Ellipsis = 0

// PageWindow returns the page buttons to show: up to width consecutive
// pages around current, plus the first and last page separated by
// Ellipsis when they fall outside the window.
func PageWindow(current, total, width int) []int {
	if total <= 0 {
		return nil
	}
	if width <= 0 {
		width = 5
	}
	current = max(1, min(current, total))
	if total <= width {
		return seq(1, total)
	}

	start := max(1, min(current-width/2, total-width+1))
	end := start + width - 1

	var out []int
	if start > 1 {
		out = append(out, 1)
		if start > 2 {
			out = append(out, Ellipsis)
		}
	}
	out = append(out, seq(start, end)...)
	if end < total {
		if end < total-1 {
			out = append(out, Ellipsis)
		}
		out = append(out, total)
	}
	return out
}

func seq(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}
