package toast

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the mutation that produced an Event.
type EventType int

const (
	EventAdded EventType = iota
	EventRemoved
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Reason records why a message left the active set.
type Reason string

const (
	// ReasonDismissed is a manual removal (user action or API call).
	ReasonDismissed Reason = "dismissed"

	// ReasonExpired is a removal by the lifecycle timer.
	ReasonExpired Reason = "expired"

	// ReasonClosed is a removal because the owning Provider was closed.
	ReasonClosed Reason = "closed"
)

// Event is delivered to listeners after every store mutation.
type Event struct {
	Type    EventType
	Message Message

	// Reason is set for EventRemoved.
	Reason Reason

	// Messages is a snapshot of the active set after the mutation.
	Messages []Message
}

// Listener observes store mutations. Listeners run synchronously on the
// goroutine that mutated the store. They may read the store but must not
// call Add, Remove or Subscribe on it before returning.
type Listener func(Event)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithIDGenerator replaces the uuid id generator.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithNow replaces the clock used to stamp CreatedAt.
func WithNow(fn func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = fn
	}
}

// Store holds the ordered list of active messages.
// It is safe for concurrent use.
type Store struct {
	// writeMu serializes mutations together with their notification, so
	// listeners observe events in mutation order. Lock order: writeMu, mu.
	writeMu   sync.Mutex
	listeners []subscription
	nextSubID uint64

	mu       sync.Mutex
	messages []Message

	newID func() string
	now   func() time.Time
}

type subscription struct {
	id uint64
	fn Listener
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add creates a message from in and appends it to the active set.
// The generated id is distinct from every id currently active.
func (s *Store) Add(in Input) (Message, error) {
	if strings.TrimSpace(in.Title) == "" {
		return Message{}, ErrEmptyTitle
	}
	kind := in.Kind.orDefault()
	if !kind.Valid() {
		return Message{}, ErrUnknownKind
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	msg := Message{
		ID:          s.uniqueIDLocked(),
		Kind:        kind,
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   s.now(),
	}
	s.messages = append(s.messages, msg)
	ev := Event{Type: EventAdded, Message: msg, Messages: s.snapshotLocked()}
	s.mu.Unlock()

	s.emit(ev)
	return msg, nil
}

// Remove drops the message with the given id. Removing an id that is not
// active is a no-op.
func (s *Store) Remove(id string) {
	s.RemoveWithReason(id, ReasonDismissed)
}

// RemoveWithReason drops the message with the given id and reports reason
// to listeners. It reports whether a message was removed.
func (s *Store) RemoveWithReason(id string, reason Reason) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	msg := s.messages[idx]
	s.messages = append(s.messages[:idx:idx], s.messages[idx+1:]...)
	ev := Event{Type: EventRemoved, Message: msg, Reason: reason, Messages: s.snapshotLocked()}
	s.mu.Unlock()

	s.emit(ev)
	return true
}

// Messages returns a copy of the active set in creation order.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Get returns the active message with the given id.
func (s *Store) Get(id string) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexLocked(id); idx >= 0 {
		return s.messages[idx], true
	}
	return Message{}, false
}

// Len returns the number of active messages.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Subscribe registers fn for every subsequent mutation and returns a
// function that removes it again.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	_, unsubscribe = s.Watch(fn)
	return unsubscribe
}

// Watch is Subscribe that also returns the active set at the moment of
// registration. Events delivered to fn start exactly after that snapshot.
func (s *Store) Watch(fn Listener) (snapshot []Message, unsubscribe func()) {
	s.writeMu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	snapshot = s.Messages()
	s.writeMu.Unlock()

	var once sync.Once
	return snapshot, func() {
		once.Do(func() {
			s.writeMu.Lock()
			defer s.writeMu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// emit delivers ev to every listener. The caller holds writeMu.
func (s *Store) emit(ev Event) {
	for _, sub := range s.listeners {
		sub.fn(ev)
	}
}

func (s *Store) indexLocked(id string) int {
	for i := range s.messages {
		if s.messages[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) uniqueIDLocked() string {
	for attempt := 0; attempt < 8; attempt++ {
		id := s.newID()
		if id != "" && s.indexLocked(id) < 0 {
			return id
		}
	}
	// A generator that keeps colliding falls back to uuid.
	for {
		if id := uuid.NewString(); s.indexLocked(id) < 0 {
			return id
		}
	}
}

func (s *Store) snapshotLocked() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}
