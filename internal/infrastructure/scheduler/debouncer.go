package scheduler

import (
	"sync"
	"time"
)

// Debouncer runs at most one pending action after a quiet period.
// Each Trigger cancels and replaces whatever was pending, so only the
// action from the latest Trigger ever fires.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	running int
	gen     uint64
	stopped bool
}

// NewDebouncer creates a debouncer with the given quiet period.
// A non-positive delay runs actions on their own goroutine without waiting.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Delay returns the configured quiet period
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger schedules fn to run after the quiet period, replacing any
// pending action. It returns false once the debouncer is stopped.
func (d *Debouncer) Trigger(fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}
	d.stopTimerLocked()
	d.gen++
	gen := d.gen

	d.timer = time.AfterFunc(max(d.delay, 0), func() {
		d.mu.Lock()
		if d.stopped || gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.running++
		d.mu.Unlock()

		defer func() {
			d.mu.Lock()
			d.running--
			d.mu.Unlock()
		}()
		fn()
	})
	return true
}

// Cancel drops the pending action, if any, and reports whether one was pending
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	pending := d.timer != nil
	d.stopTimerLocked()
	d.gen++
	return pending
}

// Pending reports whether an action is waiting to fire or still running
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil || d.running > 0
}

// Stop cancels the pending action and rejects further triggers
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.stopTimerLocked()
	d.gen++
}

func (d *Debouncer) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
