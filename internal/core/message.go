package core

import "time"

// FileRef points at a blob stored by the upload service.
type FileRef struct {
	URL  string
	Name string
}

// Message is the domain model for a chat message.
// ReadBy and Reactions are the only fields that change after creation.
type Message struct {
	ID        int64
	Room      string
	From      string
	Text      string
	File      *FileRef
	CreatedAt time.Time
	ReadBy    []string
	Reactions map[string][]string
}

// HasContent reports whether the message carries text or a file.
func (m *Message) HasContent() bool {
	return m.Text != "" || (m.File != nil && m.File.URL != "")
}

// Clone returns a deep copy so callers can hand it across goroutines.
func (m *Message) Clone() Message {
	out := *m
	if m.File != nil {
		f := *m.File
		out.File = &f
	}
	out.ReadBy = append([]string(nil), m.ReadBy...)
	out.Reactions = make(map[string][]string, len(m.Reactions))
	for kind, users := range m.Reactions {
		out.Reactions[kind] = append([]string(nil), users...)
	}
	return out
}

func cloneMessages(src []*Message) []Message {
	out := make([]Message, 0, len(src))
	for _, m := range src {
		out = append(out, m.Clone())
	}
	return out
}
