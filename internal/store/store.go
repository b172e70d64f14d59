package store

import (
	"context"
	"time"
)

// Message represents an archived chat message together with its
// read receipts and reactions.
type Message struct {
	ID        int64
	Room      string
	From      string
	Text      string
	FileURL   string
	FileName  string
	CreatedAt time.Time
	ReadBy    []string
	Reactions map[string][]string
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage inserts the message or replaces the stored copy with the
	// same ID, so annotation updates go through the same call.
	SaveMessage(ctx context.Context, msg *Message) error

	// ListMessages retrieves messages from a room, oldest first.
	// If beforeID is provided, only messages older than that ID are considered.
	// Limit bounds the result to the newest matching messages.
	ListMessages(ctx context.Context, room string, limit int, beforeID *int64) ([]*Message, error)

	// ListRooms returns the names of rooms that have archived messages.
	ListRooms(ctx context.Context) ([]string, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
