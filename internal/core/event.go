package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventOnlineUsers carries the full list of logged-in usernames.
	EventOnlineUsers EventKind = iota
	// EventJoined answers a login with rooms and recent global history.
	EventJoined
	// EventRoomJoined answers joinRoom with the room's recent history.
	EventRoomJoined
	// EventMessage delivers a room message.
	EventMessage
	// EventPrivateMessage delivers a private message.
	EventPrivateMessage
	// EventTyping relays a typing indicator.
	EventTyping
	// EventNotification carries a human-readable status line.
	EventNotification
	// EventOlderMessages answers loadMore.
	EventOlderMessages
	// EventMessageRead announces a read receipt.
	EventMessageRead
	// EventReaction announces a reaction.
	EventReaction
)

var eventNames = map[EventKind]string{
	EventOnlineUsers:    "onlineUsers",
	EventJoined:         "joined",
	EventRoomJoined:     "roomJoined",
	EventMessage:        "message",
	EventPrivateMessage: "privateMessage",
	EventTyping:         "typing",
	EventNotification:   "notification",
	EventOlderMessages:  "olderMessages",
	EventMessageRead:    "messageRead",
	EventReaction:       "reaction",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is sent to clients to describe what happened in the system.
// An Event may be shared by several recipients and must not be mutated
// after it has been handed to the hub.
type Event struct {
	Kind      EventKind
	Room      string
	User      string
	Users     []string  // EventOnlineUsers
	Rooms     []string  // EventJoined
	Message   Message   // EventMessage, EventPrivateMessage
	Messages  []Message // EventJoined, EventRoomJoined, EventOlderMessages
	MessageID int64
	Reaction  string
	IsTyping  bool
	Text      string // EventNotification
}
