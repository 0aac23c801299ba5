package watcher

import (
	"sort"
	"sync"
	"time"
)

// DefaultDebounceDelay is used when NewDebouncedWatcher gets a non-positive delay.
const DefaultDebounceDelay = 100 * time.Millisecond

// DebouncedWatcher holds events from an inner watcher until their path has
// been quiet for the delay, then delivers one event carrying every operation
// seen. A single goroutine owns the held events and one timer set to the
// earliest deadline.
type DebouncedWatcher struct {
	inner Watcher
	delay time.Duration

	events  chan Event
	errors  chan error
	flush   chan chan struct{}
	done    chan struct{}
	stopped chan struct{}

	closeOnce sync.Once
	closeErr  error

	mu      sync.Mutex
	pending map[string]held
}

type held struct {
	ev  Event
	due time.Time
}

// NewDebouncedWatcher wraps inner and takes ownership of it.
func NewDebouncedWatcher(inner Watcher, delay time.Duration) *DebouncedWatcher {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	dw := &DebouncedWatcher{
		inner:   inner,
		delay:   delay,
		events:  make(chan Event, DefaultConfig().BufferSize),
		errors:  make(chan error, DefaultConfig().BufferSize),
		flush:   make(chan chan struct{}),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		pending: make(map[string]held),
	}
	go dw.loop()
	return dw
}

// Events returns the debounced event channel. It is closed once the inner
// watcher stops or Close is called.
func (dw *DebouncedWatcher) Events() <-chan Event { return dw.events }

// Errors returns the inner watcher's errors.
func (dw *DebouncedWatcher) Errors() <-chan error { return dw.errors }

// Close discards held events and closes the inner watcher.
func (dw *DebouncedWatcher) Close() error {
	dw.closeOnce.Do(func() {
		close(dw.done)
		<-dw.stopped
		dw.closeErr = dw.inner.Close()
	})
	return dw.closeErr
}

// Flush delivers every held event now. It returns once they were handed to
// the consumer or the watcher stopped.
func (dw *DebouncedWatcher) Flush() {
	ack := make(chan struct{})
	select {
	case dw.flush <- ack:
	case <-dw.stopped:
		return
	}
	select {
	case <-ack:
	case <-dw.stopped:
	}
}

// PendingCount returns the number of paths with a held event.
func (dw *DebouncedWatcher) PendingCount() int {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	return len(dw.pending)
}

func (dw *DebouncedWatcher) loop() {
	defer close(dw.stopped)
	defer close(dw.errors)
	defer close(dw.events)

	timer := time.NewTimer(dw.delay)
	timer.Stop()
	defer timer.Stop()

	events, errs := dw.inner.Events(), dw.inner.Errors()
	for {
		select {
		case <-dw.done:
			return

		case ev, ok := <-events:
			if !ok {
				dw.release(time.Time{})
				return
			}
			dw.hold(ev)
			dw.arm(timer)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			select {
			case dw.errors <- err:
			case <-dw.done:
				return
			}

		case now := <-timer.C:
			if !dw.release(now) {
				return
			}
			dw.arm(timer)

		case ack := <-dw.flush:
			ok := dw.release(time.Time{})
			close(ack)
			if !ok {
				return
			}
			timer.Stop()
		}
	}
}

func (dw *DebouncedWatcher) hold(ev Event) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if h, ok := dw.pending[ev.Path]; ok {
		ev.Op |= h.ev.Op
	}
	dw.pending[ev.Path] = held{ev: ev, due: time.Now().Add(dw.delay)}
}

// arm points timer at the earliest deadline, or stops it when nothing is held.
func (dw *DebouncedWatcher) arm(timer *time.Timer) {
	dw.mu.Lock()
	var next time.Time
	for _, h := range dw.pending {
		if next.IsZero() || h.due.Before(next) {
			next = h.due
		}
	}
	dw.mu.Unlock()

	if next.IsZero() {
		timer.Stop()
		return
	}
	timer.Reset(time.Until(next))
}

// release sends every held event due at or before now, oldest first. A zero
// now releases everything. It reports false if Close interrupted a send.
func (dw *DebouncedWatcher) release(now time.Time) bool {
	dw.mu.Lock()
	var ready []held
	for path, h := range dw.pending {
		if now.IsZero() || !h.due.After(now) {
			ready = append(ready, h)
			delete(dw.pending, path)
		}
	}
	dw.mu.Unlock()

	sort.Slice(ready, func(i, j int) bool { return ready[i].due.Before(ready[j].due) })
	for _, h := range ready {
		select {
		case dw.events <- h.ev:
		case <-dw.done:
			return false
		}
	}
	return true
}

var _ Watcher = (*DebouncedWatcher)(nil)
