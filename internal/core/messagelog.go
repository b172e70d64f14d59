package core

import (
	"slices"
	"sort"
	"sync"
)

const (
	// DefaultHistoryLimit is the per-room retention bound.
	DefaultHistoryLimit = 1000
	// DefaultRecentCount is how many messages accompany joined/roomJoined.
	DefaultRecentCount = 50
)

// roomLog is the bounded, append-only history of one room.
type roomLog struct {
	messages []*Message
	byID     map[int64]*Message
}

// MessageLog owns all room histories and the process-wide id counter.
// Message ids are unique across rooms, strictly increasing, and never reused.
type MessageLog struct {
	mu     sync.RWMutex
	limit  int
	lastID int64
	rooms  map[string]*roomLog
}

// NewMessageLog creates a log retaining at most limit messages per room.
func NewMessageLog(limit int) *MessageLog {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &MessageLog{
		limit: limit,
		rooms: make(map[string]*roomLog),
	}
}

func (l *MessageLog) getOrCreate(room string) *roomLog {
	rl, ok := l.rooms[room]
	if !ok {
		rl = &roomLog{byID: make(map[int64]*Message)}
		l.rooms[room] = rl
	}
	return rl
}

// Append assigns the next id to msg, stores it under room and returns the
// stored copy. The oldest entries are evicted once the room exceeds its limit.
func (l *MessageLog) Append(room string, msg Message) Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastID++
	stored := msg.Clone()
	stored.ID = l.lastID
	stored.Room = room
	if stored.ReadBy == nil {
		stored.ReadBy = []string{}
	}

	l.push(l.getOrCreate(room), &stored)
	return stored.Clone()
}

func (l *MessageLog) push(rl *roomLog, m *Message) {
	rl.messages = append(rl.messages, m)
	rl.byID[m.ID] = m

	if over := len(rl.messages) - l.limit; over > 0 {
		for i := 0; i < over; i++ {
			delete(rl.byID, rl.messages[i].ID)
			rl.messages[i] = nil
		}
		rl.messages = rl.messages[over:]
	}
}

// Restore loads archived messages into room, oldest first, keeping their
// ids. The id counter moves past the highest restored id.
func (l *MessageLog) Restore(room string, msgs []Message) {
	if len(msgs) == 0 {
		return
	}
	sorted := make([]Message, len(msgs))
	copy(sorted, msgs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	l.mu.Lock()
	defer l.mu.Unlock()

	rl := l.getOrCreate(room)
	for i := range sorted {
		m := sorted[i].Clone()
		m.Room = room
		if _, dup := rl.byID[m.ID]; dup {
			continue
		}
		l.push(rl, &m)
		if m.ID > l.lastID {
			l.lastID = m.ID
		}
	}
}

// Recent returns the newest count messages of room, oldest first.
func (l *MessageLog) Recent(room string, count int) []Message {
	return l.Page(room, 0, count)
}

// Page returns up to limit messages ending offset messages before the
// newest one, oldest first. Out-of-range arguments yield an empty slice.
func (l *MessageLog) Page(room string, offset, limit int) []Message {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return []Message{}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	rl, ok := l.rooms[room]
	if !ok {
		return []Message{}
	}
	n := len(rl.messages)
	end := max(0, n-offset)
	start := max(0, end-limit)
	return cloneMessages(rl.messages[start:end])
}

// Get looks a message up by id within room.
func (l *MessageLog) Get(room string, id int64) (Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	m, ok := l.find(room, id)
	if !ok {
		return Message{}, false
	}
	return m.Clone(), true
}

func (l *MessageLog) find(room string, id int64) (*Message, bool) {
	rl, ok := l.rooms[room]
	if !ok {
		return nil, false
	}
	m, ok := rl.byID[id]
	return m, ok
}

// MarkRead records username as a reader of message id. The returned bool
// is false when the message is unknown (never sent or already evicted).
func (l *MessageLog) MarkRead(room string, id int64, username string) (Message, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.find(room, id)
	if !ok {
		return Message{}, false
	}
	if !slices.Contains(m.ReadBy, username) {
		m.ReadBy = append(m.ReadBy, username)
	}
	return m.Clone(), true
}

// AddReaction records that username reacted with kind to message id.
// Repeating the same reaction has no further effect.
func (l *MessageLog) AddReaction(room string, id int64, username, kind string) (Message, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.find(room, id)
	if !ok {
		return Message{}, false
	}
	if m.Reactions == nil {
		m.Reactions = make(map[string][]string)
	}
	if !slices.Contains(m.Reactions[kind], username) {
		m.Reactions[kind] = append(m.Reactions[kind], username)
	}
	return m.Clone(), true
}

// Len returns the number of retained messages in room.
func (l *MessageLog) Len(room string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if rl, ok := l.rooms[room]; ok {
		return len(rl.messages)
	}
	return 0
}

// LastID returns the most recently assigned message id.
func (l *MessageLog) LastID() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastID
}
