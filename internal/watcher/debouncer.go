package watcher

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of change notifications into single refresh
// signals. A run file being appended to produces many write events in quick
// succession; one refresh after the burst settles covers them all.
type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending int
	output  chan int
	stopped bool
}

// NewDebouncer creates a debouncer with the given settle window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window: window,
		output: make(chan int, 1),
	}
}

// Add records one change notification and (re)starts the settle window.
func (d *Debouncer) Add() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending++
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || d.pending == 0 {
		return
	}
	// Non-blocking: a signal already queued covers this burst too.
	select {
	case d.output <- d.pending:
		d.pending = 0
	default:
	}
}

// Output signals once per settled burst with the number of coalesced
// notifications.
func (d *Debouncer) Output() <-chan int {
	return d.output
}

// Stop stops the debouncer. Safe to call multiple times.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.output)
}
