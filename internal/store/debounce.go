package store

import (
	"sync"
	"time"
)

// Debouncer runs the most recent function once the delay has passed without
// another call. Superseded timers are stopped; work already running is not
// cancelled.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	if d.delay <= 0 {
		d.timer = nil
		go fn()
		return
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop drops a pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
