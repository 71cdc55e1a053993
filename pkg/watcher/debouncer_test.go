package watcher

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var calls atomic.Int32
	var last atomic.Int32

	for i := 1; i <= 10; i++ {
		i := i
		d.Trigger(func() {
			calls.Add(1)
			last.Store(int32(i))
		})
	}

	time.Sleep(100 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Errorf("expected exactly 1 call, got %d", got)
	}
	if got := last.Load(); got != 10 {
		t.Errorf("expected last trigger to win, got %d", got)
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32

	d.Trigger(func() { calls.Add(1) })
	d.Cancel()

	time.Sleep(60 * time.Millisecond)

	if got := calls.Load(); got != 0 {
		t.Errorf("expected 0 calls after Cancel, got %d", got)
	}
}

func TestDebouncerFlush(t *testing.T) {
	d := NewDebouncer(time.Hour) // would never fire on its own
	var calls atomic.Int32

	d.Trigger(func() { calls.Add(1) })
	d.Flush()

	if got := calls.Load(); got != 1 {
		t.Errorf("expected Flush to run pending callback, got %d calls", got)
	}

	// Flush with nothing pending is a no-op
	d.Flush()
	if got := calls.Load(); got != 1 {
		t.Errorf("second Flush should be a no-op, got %d calls", got)
	}
}

func TestDebouncerPending(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	if d.Pending() {
		t.Error("fresh debouncer should have nothing pending")
	}
	d.Trigger(func() {})
	if !d.Pending() {
		t.Error("expected pending after Trigger")
	}

	time.Sleep(80 * time.Millisecond)
	if d.Pending() {
		t.Error("expected nothing pending after fire")
	}
}

func TestDebouncerSequentialBursts(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32

	d.Trigger(func() { calls.Add(1) })
	time.Sleep(60 * time.Millisecond)
	d.Trigger(func() { calls.Add(1) })
	time.Sleep(60 * time.Millisecond)

	if got := calls.Load(); got != 2 {
		t.Errorf("two separated triggers should both fire, got %d", got)
	}
}

func TestDebouncerZeroDurationDefaults(t *testing.T) {
	d := NewDebouncer(0)
	if d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected default duration, got %v", d.Duration())
	}
}
