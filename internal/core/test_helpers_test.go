package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/roomchat/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind, wait time.Duration) {
	t.Helper()

	deadline := time.After(wait)
	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected %v event: %+v", kind, ev)
			}
		case <-deadline:
			return
		}
	}
}

// memoryStore is an in-memory store.MessageStore for hub tests.
type memoryStore struct {
	mu    sync.Mutex
	saved map[int64]*store.Message
	seed  map[string][]*store.Message
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		saved: make(map[int64]*store.Message),
		seed:  make(map[string][]*store.Message),
	}
}

func (m *memoryStore) SaveMessage(_ context.Context, msg *store.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	m.saved[msg.ID] = &cp
	return nil
}

func (m *memoryStore) ListMessages(_ context.Context, room string, limit int, _ *int64) ([]*store.Message, error) {
	msgs := m.seed[room]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (m *memoryStore) ListRooms(_ context.Context) ([]string, error) {
	rooms := make([]string, 0, len(m.seed))
	for room := range m.seed {
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (m *memoryStore) get(id int64) (*store.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.saved[id]
	return msg, ok
}
