package watcher

import (
	"sync"
	"time"
)

// Debouncer collects changed paths and emits one batch after a quiet
// period. Multiple events for the same path within the window collapse
// into one entry.
type Debouncer struct {
	interval time.Duration
	changed  map[string]struct{}
	mu       sync.Mutex
	timer    *time.Timer
	output   chan []string
}

// NewDebouncer creates a debouncer with the specified quiet interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		changed:  make(map[string]struct{}),
		output:   make(chan []string, 16),
	}
}

// Output returns the channel that receives batched paths.
func (d *Debouncer) Output() <-chan []string {
	return d.output
}

// Add records a changed path and restarts the quiet-period timer.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.changed[path] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.flush)
}

// flush sends the accumulated paths to the output channel and resets
// the buffer.
func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.changed) == 0 {
		return
	}

	batch := make([]string, 0, len(d.changed))
	for path := range d.changed {
		batch = append(batch, path)
	}

	d.changed = make(map[string]struct{})
	d.output <- batch
}
