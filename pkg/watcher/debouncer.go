// Package watcher provides catalog file watching with debouncing and
// fallback polling, plus the Debouncer shared by the range-slider commit
// path.
package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration is the default debounce window. It matches the
// slider commit delay: one commit per pause in a drag gesture, not one per
// pointer move.
const DefaultDebounceDuration = 250 * time.Millisecond

// Debouncer coalesces rapid triggers into a single callback invocation.
// When Trigger is called multiple times within the debounce duration, only
// the last callback runs, after the duration elapses. Each stateful owner
// (a slider instance, a catalog watcher) holds its own Debouncer and must
// Cancel it on teardown so no callback fires after disposal.
type Debouncer struct {
	duration time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	pending  func()
	seq      uint64
}

// NewDebouncer creates a Debouncer with the given duration. A zero
// duration selects DefaultDebounceDuration.
func NewDebouncer(duration time.Duration) *Debouncer {
	if duration == 0 {
		duration = DefaultDebounceDuration
	}
	return &Debouncer{duration: duration}
}

// Trigger schedules the callback to run after the debounce duration,
// replacing any previously scheduled callback.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq
	d.pending = callback

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, func() {
		d.fire(seq)
	})
}

// fire runs the pending callback if it is still the most recently
// scheduled one. Stop() can return false when the timer already fired, so
// the sequence check is what actually prevents a stale callback from
// running concurrently with a newer one.
func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	cb := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	cb()
}

// Flush runs any pending callback immediately and cancels its timer.
// Used when the owner wants the debounced action now (explicit confirm)
// instead of after the pause.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	d.seq++
	cb := d.pending
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Cancel drops any pending callback. Safe to call repeatedly and after
// the timer has already fired.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a callback is scheduled and has not yet run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Duration returns the debounce duration.
func (d *Debouncer) Duration() time.Duration {
	return d.duration
}
