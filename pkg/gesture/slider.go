// Package gesture models the pointer-drag session behind a bucketized
// range slider, decoupled from any input device API. The UI feeds it
// Start/Move/End in track fractions; the engine owns clamping, the
// unbounded-end sentinels and the debounced commit.
package gesture

import (
	"time"

	"github.com/0raclide/nihontowatch-sub000/pkg/bucket"
	"github.com/0raclide/nihontowatch-sub000/pkg/watcher"
)

// Handle identifies which end of the slider a drag session moves.
type Handle int

const (
	HandleNone Handle = iota
	HandleMin
	HandleMax
)

// Range is a committed selection in domain values. A nil end means
// unbounded: minimum at bucket zero and maximum at the last visible
// bucket both translate to "no constraint".
type Range struct {
	Min *float64
	Max *float64
}

// Slider owns the transient selection state for one bucketized range
// slider. Local indices update on every move for immediate visual
// feedback; commits are debounced so a drag gesture produces at most one
// commit per pause rather than one per pointer event.
type Slider struct {
	buckets  *bucket.Bucketizer
	visible  int
	minIndex int
	maxIndex int
	active   Handle
	debounce *watcher.Debouncer
	commit   func(Range)
	closed   bool
}

// NewSlider creates a slider over the bucketizer's full ladder with both
// ends unbounded. The commit callback receives the selection computed at
// schedule time; it may run on the debounce timer goroutine, so owners
// should hand it to their own event loop rather than mutate state in it.
func NewSlider(b *bucket.Bucketizer, commit func(Range)) *Slider {
	return NewSliderWithDelay(b, commit, 0)
}

// NewSliderWithDelay creates a slider with an explicit debounce delay.
// Zero selects the shared default.
func NewSliderWithDelay(b *bucket.Bucketizer, commit func(Range), delay time.Duration) *Slider {
	return &Slider{
		buckets:  b,
		visible:  b.Len(),
		minIndex: 0,
		maxIndex: b.Len() - 1,
		debounce: watcher.NewDebouncer(delay),
		commit:   commit,
	}
}

// MinIndex returns the current lower selection index.
func (s *Slider) MinIndex() int { return s.minIndex }

// MaxIndex returns the current upper selection index.
func (s *Slider) MaxIndex() int { return s.maxIndex }

// VisibleCount returns the number of buckets the track currently renders.
func (s *Slider) VisibleCount() int { return s.visible }

// Dragging returns the handle of the active drag session, or HandleNone.
func (s *Slider) Dragging() Handle { return s.active }

// SetVisibleCount trims the track to n buckets (from the bucketizer's
// VisibleBucketCount). A selection end sitting on the old last bucket is
// unbounded and stays pinned to the new last bucket; anything beyond the
// new track clamps in.
func (s *Slider) SetVisibleCount(n int) {
	if n < 2 {
		n = 2
	}
	if n > s.buckets.Len() {
		n = s.buckets.Len()
	}
	maxWasUnbounded := s.maxIndex == s.visible-1
	s.visible = n
	if maxWasUnbounded || s.maxIndex > n-1 {
		s.maxIndex = n - 1
	}
	if s.minIndex > s.maxIndex {
		s.minIndex = s.maxIndex
	}
}

// Start begins a drag session on the given handle. Starting a new session
// while another is active simply switches handles.
func (s *Slider) Start(h Handle) {
	if h != HandleMin && h != HandleMax {
		return
	}
	s.active = h
}

// Move maps a pointer position (fraction 0..1 along the track) to a
// bucket index and updates the active handle. The clamp holds after every
// intermediate move: dragging min past max pins it to max and vice versa.
// No commit happens here.
func (s *Slider) Move(frac float64) {
	if s.active == HandleNone {
		return
	}
	s.moveIndex(s.indexForFraction(frac))
}

// MoveIndex is Move for callers that already resolved a bucket index
// (keyboard nudges).
func (s *Slider) MoveIndex(idx int) {
	if s.active == HandleNone {
		return
	}
	s.moveIndex(s.clampIndex(idx))
}

func (s *Slider) moveIndex(idx int) {
	switch s.active {
	case HandleMin:
		if idx > s.maxIndex {
			idx = s.maxIndex
		}
		s.minIndex = idx
	case HandleMax:
		if idx < s.minIndex {
			idx = s.minIndex
		}
		s.maxIndex = idx
	}
}

// End finishes the drag session and schedules a debounced commit carrying
// the selection as it stands now.
func (s *Slider) End() {
	if s.active == HandleNone {
		return
	}
	s.active = HandleNone
	s.scheduleCommit()
}

// SetIndexes applies a programmatic selection (text inputs) and schedules
// a debounced commit. Indices are clamped into the visible track and
// against each other.
func (s *Slider) SetIndexes(minIdx, maxIdx int) {
	minIdx = s.clampIndex(minIdx)
	maxIdx = s.clampIndex(maxIdx)
	if minIdx > maxIdx {
		minIdx = maxIdx
	}
	s.minIndex = minIdx
	s.maxIndex = maxIdx
	s.scheduleCommit()
}

// SetValues is SetIndexes over domain values. A nil end selects the
// unbounded sentinel on that side.
func (s *Slider) SetValues(min, max *float64) {
	minIdx := 0
	if min != nil {
		minIdx = s.buckets.ValueToIndex(*min)
	}
	maxIdx := s.visible - 1
	if max != nil {
		maxIdx = s.buckets.ValueToIndex(*max)
	}
	s.SetIndexes(minIdx, maxIdx)
}

// Reset returns both ends to unbounded without committing.
func (s *Slider) Reset() {
	s.active = HandleNone
	s.minIndex = 0
	s.maxIndex = s.visible - 1
	s.debounce.Cancel()
}

// Selection translates the current indices into a Range, applying the
// unbounded sentinels.
func (s *Slider) Selection() Range {
	var r Range
	if s.minIndex > 0 {
		v := s.buckets.IndexToValue(s.minIndex)
		r.Min = &v
	}
	if s.maxIndex < s.visible-1 {
		v := s.buckets.IndexToValue(s.maxIndex)
		r.Max = &v
	}
	return r
}

// Flush forces any pending commit to run now.
func (s *Slider) Flush() {
	s.debounce.Flush()
}

// Close cancels the debounce timer so no commit fires after disposal.
// Idempotent.
func (s *Slider) Close() {
	s.closed = true
	s.debounce.Cancel()
}

func (s *Slider) scheduleCommit() {
	if s.closed || s.commit == nil {
		return
	}
	// Capture the selection now: the timer goroutine must not read
	// slider state.
	sel := s.Selection()
	s.debounce.Trigger(func() {
		s.commit(sel)
	})
}

// indexForFraction maps a 0..1 track fraction onto the nearest visible
// bucket index.
func (s *Slider) indexForFraction(frac float64) int {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return int(frac*float64(s.visible-1) + 0.5)
}

func (s *Slider) clampIndex(idx int) int {
	if idx < 0 {
		return 0
	}
	if idx > s.visible-1 {
		return s.visible - 1
	}
	return idx
}
