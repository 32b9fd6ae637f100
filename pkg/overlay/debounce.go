package overlay

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into one callback after a
// quiet period. Re-triggering inside the window cancels the pending
// invocation and arms a fresh one: last write wins, nothing queues.
type Debouncer struct {
	quiet time.Duration

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

func NewDebouncer(quiet time.Duration) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultDebounceDelay
	}
	return &Debouncer{quiet: quiet}
}

// Trigger arms the debouncer with fn, replacing any pending callback.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() {
		d.mu.Lock()
		// A stale timer can reach here after Stop lost the race with
		// firing; the sequence check keeps only the newest callback.
		if seq != d.seq {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		fn()
	})
}

// Cancel drops any pending callback, including one whose timer has
// already fired but not yet run.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Quiet returns the configured quiet period.
func (d *Debouncer) Quiet() time.Duration {
	return d.quiet
}
