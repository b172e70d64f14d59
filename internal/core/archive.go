package core

import (
	"context"
	"fmt"

	"github.com/vovakirdan/roomchat/internal/store"
)

// LoadHistory fills the message log from the archive. Call it before Run.
func (h *Hub) LoadHistory(ctx context.Context) error {
	if h.archive == nil {
		return nil
	}

	rooms, err := h.archive.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("list archived rooms: %w", err)
	}

	total := 0
	for _, room := range rooms {
		stored, err := h.archive.ListMessages(ctx, room, h.router.limits.HistoryLimit, nil)
		if err != nil {
			return fmt.Errorf("list archived messages for %s: %w", room, err)
		}
		msgs := make([]Message, 0, len(stored))
		for _, sm := range stored {
			msgs = append(msgs, fromStoreMessage(sm))
		}
		h.router.restore(room, msgs)
		total += len(msgs)
	}

	h.log.Info().Int("rooms", len(rooms)).Int("messages", total).Int64("last_id", h.router.messages.LastID()).Msg("history restored")
	return nil
}

func (h *Hub) archiveLoop(ctx context.Context) {
	for {
		select {
		case msg := <-h.saves:
			h.save(ctx, msg)
		case <-ctx.Done():
			h.drainArchive()
			return
		}
	}
}

// drainArchive flushes queued updates after shutdown began.
func (h *Hub) drainArchive() {
	ctx, cancel := context.WithTimeout(context.Background(), archiveDrainWait)
	defer cancel()
	for {
		select {
		case msg := <-h.saves:
			h.save(ctx, msg)
		default:
			return
		}
	}
}

func (h *Hub) save(ctx context.Context, msg *store.Message) {
	if err := h.archive.SaveMessage(ctx, msg); err != nil {
		h.log.Error().Err(err).Int64("message_id", msg.ID).Str("room", msg.Room).Msg("archive message")
	}
}

func toStoreMessage(m *Message) *store.Message {
	sm := &store.Message{
		ID:        m.ID,
		Room:      m.Room,
		From:      m.From,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
		ReadBy:    append([]string(nil), m.ReadBy...),
		Reactions: make(map[string][]string, len(m.Reactions)),
	}
	if m.File != nil {
		sm.FileURL = m.File.URL
		sm.FileName = m.File.Name
	}
	for kind, users := range m.Reactions {
		sm.Reactions[kind] = append([]string(nil), users...)
	}
	return sm
}

func fromStoreMessage(sm *store.Message) Message {
	m := Message{
		ID:        sm.ID,
		Room:      sm.Room,
		From:      sm.From,
		Text:      sm.Text,
		CreatedAt: sm.CreatedAt,
		ReadBy:    append([]string{}, sm.ReadBy...),
		Reactions: make(map[string][]string, len(sm.Reactions)),
	}
	if sm.FileURL != "" {
		m.File = &FileRef{URL: sm.FileURL, Name: sm.FileName}
	}
	for kind, users := range sm.Reactions {
		m.Reactions[kind] = append([]string(nil), users...)
	}
	return m
}
