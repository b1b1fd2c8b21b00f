package playback

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// LoopScheduler is a Scheduler for an event loop.  Timers run on the clock's goroutines,
// but callbacks are only handed back through Fired so the loop can run them itself.
type LoopScheduler struct {
	clock clockwork.Clock
	fired chan func()
	done  chan struct{}
	once  sync.Once
}

func NewLoopScheduler(clock clockwork.Clock) *LoopScheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LoopScheduler{
		clock: clock,
		fired: make(chan func(), 16),
		done:  make(chan struct{}),
	}
}

// After schedules f.  Cancelling is only safe from the loop goroutine, which is also where f runs,
// so a cancelled callback that was already queued is skipped.
func (s *LoopScheduler) After(d time.Duration, f func()) (cancel func()) {
	var mu sync.Mutex
	cancelled := false

	isCancelled := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return cancelled
	}

	timer := s.clock.AfterFunc(d, func() {
		if isCancelled() {
			return
		}
		run := func() {
			if !isCancelled() {
				f()
			}
		}
		select {
		case s.fired <- run:
		case <-s.done:
		}
	})

	return func() {
		mu.Lock()
		cancelled = true
		mu.Unlock()
		timer.Stop()
	}
}

// Fired delivers callbacks that are due
func (s *LoopScheduler) Fired() <-chan func() {
	return s.fired
}

// Stop releases timer goroutines blocked on delivery.  Nothing is delivered afterwards.
func (s *LoopScheduler) Stop() {
	s.once.Do(func() { close(s.done) })
}
