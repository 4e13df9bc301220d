package persist

import (
	"sync"
	"time"
)

// DefaultDebounce coalesces slider-drag style edit bursts before hitting
// the network. The visual update is never debounced, only persistence.
const DefaultDebounce = 80 * time.Millisecond

// Debouncer delays the save of each option until its edits settle. A newer
// edit to the same option cancels the pending timer; distinct options do
// not interfere.
type Debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	save   func(optionID, value string)
	timers map[string]*time.Timer
	closed bool
}

// NewDebouncer schedules save after delay of inactivity per option. A zero
// delay uses DefaultDebounce.
func NewDebouncer(delay time.Duration, save func(optionID, value string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{
		delay:  delay,
		save:   save,
		timers: make(map[string]*time.Timer),
	}
}

// Trigger records a fresh edit; the latest value wins.
func (d *Debouncer) Trigger(optionID, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if t, ok := d.timers[optionID]; ok {
		t.Stop()
	}
	d.timers[optionID] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, optionID)
		closed := d.closed
		d.mu.Unlock()
		if !closed {
			d.save(optionID, value)
		}
	})
}

// Flush cancels pending timers and saves their latest values immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	timers := d.timers
	d.timers = make(map[string]*time.Timer)
	d.mu.Unlock()
	for _, t := range timers {
		if t.Stop() {
			// The callback never ran; nothing more to do here because the
			// value lives in the closure. Firing it early keeps last-write
			// semantics.
			t.Reset(0)
		}
	}
}

// Close drops all pending saves.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for id, t := range d.timers {
		t.Stop()
		delete(d.timers, id)
	}
}
