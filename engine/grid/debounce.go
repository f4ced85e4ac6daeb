package grid

import (
	"sync"
	"time"

	"github.com/romdo/go-debounce"
)

// searchDebouncer coalesces search keystrokes so only the last value within
// the wait window reaches the backend.
type searchDebouncer struct {
	mu      sync.Mutex
	pending Search
	fire    func()
	cancel  func()
}

func newSearchDebouncer(wait time.Duration, run func(Search)) *searchDebouncer {
	d := &searchDebouncer{}
	d.fire, d.cancel = debounce.New(wait, func() {
		d.mu.Lock()
		s := d.pending
		d.mu.Unlock()
		run(s)
	})
	return d
}

// Schedule replaces any pending search and restarts the wait window
func (d *searchDebouncer) Schedule(s Search) {
	d.mu.Lock()
	d.pending = s
	d.mu.Unlock()
	d.fire()
}

// Cancel drops the pending search, if any
func (d *searchDebouncer) Cancel() {
	d.cancel()
}
