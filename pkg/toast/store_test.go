package toast_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gobarber/web/pkg/toast"
	"github.com/google/go-cmp/cmp"
)

func titles(msgs []toast.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Title
	}
	return out
}

func TestStoreAddPreservesCallOrder(t *testing.T) {
	s := toast.NewStore()

	var want []string
	for i := 0; i < 5; i++ {
		title := fmt.Sprintf("toast %d", i)
		want = append(want, title)
		if _, err := s.Add(toast.Input{Title: title}); err != nil {
			t.Fatalf("Add(%q) error: %v", title, err)
		}
	}

	if s.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", s.Len())
	}
	if diff := cmp.Diff(want, titles(s.Messages())); diff != "" {
		t.Errorf("Messages() order mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreAddErrorToastScenario(t *testing.T) {
	s := toast.NewStore()

	_, err := s.Add(toast.Input{
		Kind:        toast.KindError,
		Title:       "Authentication Failure",
		Description: "Authentication error, verify your credentials.",
	})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	msgs := s.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	got := msgs[0]
	if got.ID == "" {
		t.Error("expected a generated id")
	}
	if got.Kind != toast.KindError {
		t.Errorf("Kind = %q, want %q", got.Kind, toast.KindError)
	}
	if got.Title != "Authentication Failure" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Description != "Authentication error, verify your credentials." {
		t.Errorf("Description = %q", got.Description)
	}
}

func TestStoreTwoAddsHaveDistinctIDs(t *testing.T) {
	s := toast.NewStore()

	first, _ := s.Add(toast.Input{Title: "first"})
	second, _ := s.Add(toast.Input{Title: "second"})

	if first.ID == second.ID {
		t.Fatalf("expected distinct ids, both are %q", first.ID)
	}
	if diff := cmp.Diff([]string{"first", "second"}, titles(s.Messages())); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreKindDefaultsToInfo(t *testing.T) {
	s := toast.NewStore()

	msg, err := s.Add(toast.Input{Title: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if msg.Kind != toast.KindInfo {
		t.Errorf("Kind = %q, want %q", msg.Kind, toast.KindInfo)
	}
}

func TestStoreAddValidation(t *testing.T) {
	s := toast.NewStore()

	tests := []struct {
		name string
		in   toast.Input
		want error
	}{
		{"empty title", toast.Input{}, toast.ErrEmptyTitle},
		{"blank title", toast.Input{Title: "   "}, toast.ErrEmptyTitle},
		{"unknown kind", toast.Input{Kind: "warning", Title: "x"}, toast.ErrUnknownKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Add(tt.in); !errors.Is(err, tt.want) {
				t.Errorf("Add() error = %v, want %v", err, tt.want)
			}
		})
	}
	if s.Len() != 0 {
		t.Errorf("rejected inputs must not be stored, Len() = %d", s.Len())
	}
}

func TestStoreRemoveExactlyOne(t *testing.T) {
	s := toast.NewStore()
	a, _ := s.Add(toast.Input{Title: "a"})
	b, _ := s.Add(toast.Input{Title: "b"})
	c, _ := s.Add(toast.Input{Title: "c"})

	s.Remove(b.ID)

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	got := s.Messages()
	if got[0].ID != a.ID || got[1].ID != c.ID {
		t.Errorf("unexpected remaining messages: %+v", got)
	}
	if _, ok := s.Get(b.ID); ok {
		t.Error("removed message still retrievable")
	}
}

func TestStoreRemoveAbsentIsNoop(t *testing.T) {
	s := toast.NewStore()
	rec := &eventRecorder{}
	msg, _ := s.Add(toast.Input{Title: "a"})
	s.Subscribe(rec.listen)

	before := s.Messages()
	s.Remove("does-not-exist")
	s.Remove(msg.ID)
	s.Remove(msg.ID)

	if diff := cmp.Diff(before[1:], s.Messages()); diff != "" {
		t.Errorf("unexpected active set (-want +got):\n%s", diff)
	}
	if n := len(rec.removals()); n != 1 {
		t.Errorf("expected exactly one removal event, got %d", n)
	}
	if removed := s.RemoveWithReason(msg.ID, toast.ReasonExpired); removed {
		t.Error("RemoveWithReason on absent id reported a removal")
	}
}

func TestStoreIDsUniqueWithCollidingGenerator(t *testing.T) {
	ids := []string{"same", "same", "same", "other"}
	var i int
	s := toast.NewStore(toast.WithIDGenerator(func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}))

	seen := map[string]bool{}
	for n := 0; n < 3; n++ {
		msg, err := s.Add(toast.Input{Title: "t"})
		if err != nil {
			t.Fatal(err)
		}
		if seen[msg.ID] {
			t.Fatalf("duplicate id %q", msg.ID)
		}
		seen[msg.ID] = true
	}
}

func TestStoreStampsCreatedAt(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s := toast.NewStore(toast.WithNow(func() time.Time { return now }))

	msg, _ := s.Add(toast.Input{Title: "t"})
	if !msg.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", msg.CreatedAt, now)
	}
}

func TestStoreListenersObserveMutations(t *testing.T) {
	s := toast.NewStore()
	rec := &eventRecorder{}
	unsubscribe := s.Subscribe(rec.listen)

	a, _ := s.Add(toast.Input{Title: "a"})
	s.Add(toast.Input{Title: "b"})
	s.Remove(a.ID)

	events := rec.all()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Type != toast.EventAdded || events[0].Message.ID != a.ID {
		t.Errorf("event[0] = %+v", events[0])
	}
	if events[2].Type != toast.EventRemoved || events[2].Reason != toast.ReasonDismissed {
		t.Errorf("event[2] = %+v", events[2])
	}
	if diff := cmp.Diff([]string{"b"}, titles(events[2].Messages)); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	unsubscribe()
	unsubscribe()
	s.Add(toast.Input{Title: "c"})
	if len(rec.all()) != 3 {
		t.Error("listener called after unsubscribe")
	}
}

func TestStoreListenerMayReadStore(t *testing.T) {
	s := toast.NewStore()
	var lens []int
	s.Subscribe(func(toast.Event) {
		lens = append(lens, s.Len())
	})

	m, _ := s.Add(toast.Input{Title: "a"})
	s.Remove(m.ID)

	if diff := cmp.Diff([]int{1, 0}, lens); diff != "" {
		t.Errorf("lengths seen by listener (-want +got):\n%s", diff)
	}
}

func TestStoreWatchReturnsSnapshot(t *testing.T) {
	s := toast.NewStore()
	s.Add(toast.Input{Title: "existing"})

	rec := &eventRecorder{}
	snapshot, unsubscribe := s.Watch(rec.listen)
	defer unsubscribe()

	if diff := cmp.Diff([]string{"existing"}, titles(snapshot)); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if len(rec.all()) != 0 {
		t.Error("Watch must not replay existing messages as events")
	}
}

func TestStoreConcurrentUse(t *testing.T) {
	s := toast.NewStore()
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		count int
	)
	s.Subscribe(func(ev toast.Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg, err := s.Add(toast.Input{Title: fmt.Sprintf("t%d", i)})
			if err != nil {
				t.Error(err)
				return
			}
			if i%2 == 0 {
				s.Remove(msg.ID)
			}
			_ = s.Messages()
		}(i)
	}
	wg.Wait()

	if s.Len() != 25 {
		t.Errorf("Len() = %d, want 25", s.Len())
	}
	if count != 75 {
		t.Errorf("listener saw %d events, want 75", count)
	}
}
