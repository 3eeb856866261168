package preview

import (
	"context"
	"sync"
	"time"
)

// Rebuild triggers.
const (
	TriggerStartup = "startup"
	TriggerWatch   = "watch"
	TriggerRescan  = "rescan"
	TriggerAPI     = "api"
)

// rebuildQueue serializes rebuilds. At most one request waits while a
// rebuild runs; further requests coalesce into it.
type rebuildQueue struct {
	requests chan string
}

func newRebuildQueue() *rebuildQueue {
	return &rebuildQueue{requests: make(chan string, 1)}
}

func (q *rebuildQueue) request(trigger string) {
	select {
	case q.requests <- trigger:
	default:
	}
}

// run processes requests until ctx is done.
func (q *rebuildQueue) run(ctx context.Context, rebuild func(ctx context.Context, trigger string)) {
	for {
		select {
		case <-ctx.Done():
			return
		case trigger := <-q.requests:
			rebuild(ctx, trigger)
		}
	}
}

// debouncer calls fire once no trigger has arrived for delay.
type debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	fire  func()
}

func newDebouncer(delay time.Duration, fire func()) *debouncer {
	return &debouncer{delay: delay, fire: fire}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
