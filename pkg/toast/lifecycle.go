package toast

import (
	"sync"
	"time"
)

// Timer is a cancellable handle for a scheduled callback.
type Timer interface {
	// Stop cancels the callback. It returns false if the callback has
	// already run or been stopped.
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(d time.Duration, f func()) Timer

// AfterFunc calls fn(d, f).
func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) Timer {
	return fn(d, f)
}

// RealScheduler schedules callbacks with time.AfterFunc.
var RealScheduler Scheduler = SchedulerFunc(func(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
})

// Controller removes messages from a Store once their dwell time elapses.
//
// Each added message gets exactly one timer. The timer is never restarted
// or extended. When a message leaves the store by any other path its timer
// is stopped, and a timer that has already been released does nothing.
type Controller struct {
	store     *Store
	dwell     time.Duration
	scheduler Scheduler

	mu     sync.Mutex
	timers map[string]*pending
	closed bool

	unsubscribe func()
}

// pending is the controller's handle for one message. It holds the id only,
// never the message itself.
type pending struct {
	id    string
	timer Timer
}

// NewController attaches a controller to store. Messages already in the
// store are scheduled as if they had just been added. A non-positive dwell
// uses DefaultDwellTime; a nil scheduler uses RealScheduler.
func NewController(store *Store, dwell time.Duration, scheduler Scheduler) *Controller {
	if dwell <= 0 {
		dwell = DefaultDwellTime
	}
	if scheduler == nil {
		scheduler = RealScheduler
	}
	c := &Controller{
		store:     store,
		dwell:     dwell,
		scheduler: scheduler,
		timers:    make(map[string]*pending),
	}

	snapshot, unsubscribe := store.Watch(c.handle)
	c.unsubscribe = unsubscribe
	for _, msg := range snapshot {
		c.mount(msg.ID)
	}
	return c
}

// DwellTime returns the delay applied to every message.
func (c *Controller) DwellTime() time.Duration {
	return c.dwell
}

// Pending returns the number of running timers.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Close detaches the controller and stops all pending timers.
// Messages still in the store stay there.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	timers := c.timers
	c.timers = make(map[string]*pending)
	c.mu.Unlock()

	c.unsubscribe()
	for _, p := range timers {
		p.timer.Stop()
	}
}

func (c *Controller) handle(ev Event) {
	switch ev.Type {
	case EventAdded:
		c.mount(ev.Message.ID)
	case EventRemoved:
		c.unmount(ev.Message.ID)
	}
}

func (c *Controller) mount(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if _, ok := c.timers[id]; ok {
		return
	}
	p := &pending{id: id}
	c.timers[id] = p
	p.timer = c.scheduler.AfterFunc(c.dwell, func() { c.expire(p) })
}

func (c *Controller) unmount(id string) {
	c.mu.Lock()
	p, ok := c.timers[id]
	if ok {
		delete(c.timers, id)
	}
	c.mu.Unlock()

	if ok && p.timer != nil {
		p.timer.Stop()
	}
}

// expire runs on the timer's goroutine.
func (c *Controller) expire(p *pending) {
	c.mu.Lock()
	current, ok := c.timers[p.id]
	if !ok || current != p {
		c.mu.Unlock()
		return
	}
	delete(c.timers, p.id)
	c.mu.Unlock()

	c.store.RemoveWithReason(p.id, ReasonExpired)
}
