package toast_test

import (
	"sync"
	"time"

	"github.com/gobarber/web/pkg/toast"
)

// manualScheduler records scheduled callbacks and runs them on demand.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) toast.Timer {
	t := &manualTimer{delay: d, fn: f}
	s.mu.Lock()
	s.timers = append(s.timers, t)
	s.mu.Unlock()
	return t
}

func (s *manualScheduler) all() []*manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*manualTimer, len(s.timers))
	copy(out, s.timers)
	return out
}

// fireAll runs every timer that is neither stopped nor fired.
func (s *manualScheduler) fireAll() {
	for _, t := range s.all() {
		t.fire()
	}
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (t *manualTimer) fire() {
	t.mu.Lock()
	if t.stopped || t.fired {
		t.mu.Unlock()
		return
	}
	t.fired = true
	t.mu.Unlock()
	t.fn()
}

// forceFire runs the callback even if the timer was stopped, emulating a
// timer that already started firing when Stop was called.
func (t *manualTimer) forceFire() {
	t.fn()
}

func (t *manualTimer) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// eventRecorder collects store events.
type eventRecorder struct {
	mu     sync.Mutex
	events []toast.Event
}

func (r *eventRecorder) listen(ev toast.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *eventRecorder) all() []toast.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]toast.Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *eventRecorder) removals() []toast.Event {
	var out []toast.Event
	for _, ev := range r.all() {
		if ev.Type == toast.EventRemoved {
			out = append(out, ev)
		}
	}
	return out
}
