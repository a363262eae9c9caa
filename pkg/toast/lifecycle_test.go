package toast_test

import (
	"testing"
	"time"

	"github.com/gobarber/web/pkg/toast"
)

func TestControllerExpiresAfterDwellTime(t *testing.T) {
	sched := &manualScheduler{}
	store := toast.NewStore()
	rec := &eventRecorder{}
	store.Subscribe(rec.listen)
	c := toast.NewController(store, 0, sched)
	defer c.Close()

	msg, _ := store.Add(toast.Input{Title: "bye"})

	timers := sched.all()
	if len(timers) != 1 {
		t.Fatalf("expected 1 timer, got %d", len(timers))
	}
	if timers[0].delay != toast.DefaultDwellTime {
		t.Errorf("delay = %v, want %v", timers[0].delay, toast.DefaultDwellTime)
	}
	if c.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", c.Pending())
	}

	timers[0].fire()

	if store.Len() != 0 {
		t.Fatalf("message not removed on expiry")
	}
	removals := rec.removals()
	if len(removals) != 1 || removals[0].Message.ID != msg.ID || removals[0].Reason != toast.ReasonExpired {
		t.Errorf("unexpected removals: %+v", removals)
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d after expiry, want 0", c.Pending())
	}
}

func TestControllerManualRemovalCancelsTimer(t *testing.T) {
	sched := &manualScheduler{}
	store := toast.NewStore()
	rec := &eventRecorder{}
	store.Subscribe(rec.listen)
	c := toast.NewController(store, time.Second, sched)
	defer c.Close()

	msg, _ := store.Add(toast.Input{Title: "dismiss me"})
	store.Remove(msg.ID)

	timer := sched.all()[0]
	if !timer.isStopped() {
		t.Fatal("timer not stopped after manual removal")
	}

	// A callback that was already running when Stop was called must not
	// produce a second removal.
	timer.forceFire()

	if n := len(rec.removals()); n != 1 {
		t.Errorf("expected 1 removal, got %d", n)
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", c.Pending())
	}
}

func TestControllerStaleTimerDoesNotRemoveLaterMessages(t *testing.T) {
	sched := &manualScheduler{}
	ids := []string{"reused", "reused"}
	var n int
	store := toast.NewStore(toast.WithIDGenerator(func() string {
		id := ids[n%len(ids)]
		n++
		return id
	}))
	c := toast.NewController(store, time.Second, sched)
	defer c.Close()

	store.Add(toast.Input{Title: "first"})
	store.Remove("reused")
	store.Add(toast.Input{Title: "second"})

	timers := sched.all()
	if len(timers) != 2 {
		t.Fatalf("expected 2 timers, got %d", len(timers))
	}
	timers[0].forceFire()

	if store.Len() != 1 {
		t.Fatal("stale timer removed the message that reused its id")
	}
	timers[1].fire()
	if store.Len() != 0 {
		t.Fatal("current timer did not remove its message")
	}
}

func TestControllerOneTimerPerMessage(t *testing.T) {
	sched := &manualScheduler{}
	store := toast.NewStore()
	c := toast.NewController(store, 2*time.Second, sched)
	defer c.Close()

	for i := 0; i < 3; i++ {
		store.Add(toast.Input{Title: "t"})
	}

	timers := sched.all()
	if len(timers) != 3 {
		t.Fatalf("expected 3 timers, got %d", len(timers))
	}
	for _, tm := range timers {
		if tm.delay != 2*time.Second {
			t.Errorf("delay = %v, want 2s", tm.delay)
		}
	}
	if c.DwellTime() != 2*time.Second {
		t.Errorf("DwellTime() = %v", c.DwellTime())
	}

	sched.fireAll()
	if store.Len() != 0 {
		t.Errorf("Len() = %d after all timers fired", store.Len())
	}
	if len(sched.all()) != 3 {
		t.Error("timers must never be restarted")
	}
}

func TestControllerSchedulesExistingMessages(t *testing.T) {
	sched := &manualScheduler{}
	store := toast.NewStore()
	store.Add(toast.Input{Title: "before"})

	c := toast.NewController(store, 0, sched)
	defer c.Close()

	if len(sched.all()) != 1 {
		t.Fatalf("expected existing message to be scheduled")
	}
	sched.fireAll()
	if store.Len() != 0 {
		t.Error("existing message not expired")
	}
}

func TestControllerCloseStopsTimers(t *testing.T) {
	sched := &manualScheduler{}
	store := toast.NewStore()
	c := toast.NewController(store, 0, sched)

	store.Add(toast.Input{Title: "a"})
	store.Add(toast.Input{Title: "b"})
	c.Close()
	c.Close()

	for i, tm := range sched.all() {
		if !tm.isStopped() {
			t.Errorf("timer %d still running after Close", i)
		}
		tm.forceFire()
	}
	if store.Len() != 2 {
		t.Errorf("closed controller removed messages, Len() = %d", store.Len())
	}

	store.Add(toast.Input{Title: "c"})
	if len(sched.all()) != 2 {
		t.Error("closed controller scheduled a new timer")
	}
}

func TestControllerRealScheduler(t *testing.T) {
	store := toast.NewStore()
	c := toast.NewController(store, 10*time.Millisecond, nil)
	defer c.Close()

	store.Add(toast.Input{Title: "short lived"})

	deadline := time.Now().Add(2 * time.Second)
	for store.Len() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("message was not removed by the real timer")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
