// Package window computes the renderable slice of a fixed-height item
// list from scroll state, and decides when to request the next page of
// results. Both pieces are deliberately dumb: the window is a pure
// function recomputed per scroll event, and the pagination controller
// holds just enough state to keep one fetch in flight.
package window

// Params are the inputs to Compute. Heights are in terminal rows.
type Params struct {
	ScrollTop      int
	ViewportHeight int
	ItemHeight     int
	Overscan       int
	ItemCount      int
}

// Window is the derived render slice. It has no lifecycle of its own:
// the list may grow between computations (append-only pagination) and
// the same scroll position keeps producing the same slice start.
type Window struct {
	Start       int // first item index to render
	End         int // one past the last item index to render
	OffsetY     int // rows of spacer above the rendered slice
	TotalHeight int // rows the full list occupies, for scrollbar proportion
}

// Compute derives the visible index range. Degenerate inputs (empty
// list, collapsed viewport, non-positive item height, negative scroll)
// clamp rather than fail, and 0 <= Start <= End <= ItemCount always
// holds.
func Compute(p Params) Window {
	if p.ItemCount <= 0 || p.ViewportHeight <= 0 {
		return Window{}
	}
	ih := p.ItemHeight
	if ih <= 0 {
		ih = 1
	}
	top := p.ScrollTop
	if top < 0 {
		top = 0
	}
	over := p.Overscan
	if over < 0 {
		over = 0
	}

	start := top/ih - over
	if start < 0 {
		start = 0
	}
	end := (top+p.ViewportHeight+ih-1)/ih + over
	if end > p.ItemCount {
		end = p.ItemCount
	}
	if start > end {
		start = end
	}
	return Window{
		Start:       start,
		End:         end,
		OffsetY:     start * ih,
		TotalHeight: p.ItemCount * ih,
	}
}

// MaxScroll returns the largest useful scrollTop for a list of the given
// total height inside the given viewport.
func MaxScroll(totalHeight, viewportHeight int) int {
	m := totalHeight - viewportHeight
	if m < 0 {
		return 0
	}
	return m
}

// ClampScroll pins a scroll offset into [0, MaxScroll].
func ClampScroll(scrollTop, totalHeight, viewportHeight int) int {
	if scrollTop < 0 {
		return 0
	}
	if m := MaxScroll(totalHeight, viewportHeight); scrollTop > m {
		return m
	}
	return scrollTop
}
