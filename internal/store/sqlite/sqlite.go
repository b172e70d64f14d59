package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/roomchat/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER PRIMARY KEY,
	room       TEXT NOT NULL,
	sender     TEXT NOT NULL,
	text       TEXT NOT NULL DEFAULT '',
	file_url   TEXT NOT NULL DEFAULT '',
	file_name  TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	read_by    TEXT NOT NULL DEFAULT '[]',
	reactions  TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room, id DESC);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with single connection; it also keeps :memory:
	// databases alive for the lifetime of the store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveMessage inserts or replaces a message.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *store.Message) error {
	readBy := msg.ReadBy
	if readBy == nil {
		readBy = []string{}
	}
	readByJSON, err := json.Marshal(readBy)
	if err != nil {
		return fmt.Errorf("encode read_by: %w", err)
	}
	reactions := msg.Reactions
	if reactions == nil {
		reactions = map[string][]string{}
	}
	reactionsJSON, err := json.Marshal(reactions)
	if err != nil {
		return fmt.Errorf("encode reactions: %w", err)
	}

	query := `
		INSERT INTO messages (id, room, sender, text, file_url, file_name, created_at, read_by, reactions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			read_by = excluded.read_by,
			reactions = excluded.reactions
	`
	_, err = s.db.ExecContext(ctx, query,
		msg.ID,
		msg.Room,
		msg.From,
		msg.Text,
		msg.FileURL,
		msg.FileName,
		msg.CreatedAt.UnixMilli(),
		string(readByJSON),
		string(reactionsJSON),
	)
	if err != nil {
		return fmt.Errorf("save message %d: %w", msg.ID, err)
	}
	return nil
}

// ListMessages retrieves the newest limit messages of a room, oldest first.
func (s *SQLiteStore) ListMessages(ctx context.Context, room string, limit int, beforeID *int64) ([]*store.Message, error) {
	var query string
	var args []any

	if beforeID != nil {
		query = `
			SELECT id, room, sender, text, file_url, file_name, created_at, read_by, reactions
			FROM messages
			WHERE room = ? AND id < ?
			ORDER BY id DESC
			LIMIT ?
		`
		args = []any{room, *beforeID, limit}
	} else {
		query = `
			SELECT id, room, sender, text, file_url, file_name, created_at, read_by, reactions
			FROM messages
			WHERE room = ?
			ORDER BY id DESC
			LIMIT ?
		`
		args = []any{room, limit}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []*store.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// Reverse to get chronological order (oldest first)
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// ListRooms returns every room with at least one archived message.
func (s *SQLiteStore) ListRooms(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT room FROM messages ORDER BY room`)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []string
	for rows.Next() {
		var room string
		if err := rows.Scan(&room); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func scanMessage(rows *sql.Rows) (*store.Message, error) {
	var (
		msg       store.Message
		createdAt int64
		readBy    string
		reactions string
	)
	if err := rows.Scan(
		&msg.ID,
		&msg.Room,
		&msg.From,
		&msg.Text,
		&msg.FileURL,
		&msg.FileName,
		&createdAt,
		&readBy,
		&reactions,
	); err != nil {
		return nil, fmt.Errorf("scan message: %w", err)
	}

	msg.CreatedAt = time.UnixMilli(createdAt)
	if err := json.Unmarshal([]byte(readBy), &msg.ReadBy); err != nil {
		return nil, fmt.Errorf("decode read_by of %d: %w", msg.ID, err)
	}
	if err := json.Unmarshal([]byte(reactions), &msg.Reactions); err != nil {
		return nil, fmt.Errorf("decode reactions of %d: %w", msg.ID, err)
	}
	return &msg, nil
}
