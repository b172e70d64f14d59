package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeLogin       = "login"
	InboundTypeJoinRoom    = "joinRoom"
	InboundTypeLeaveRoom   = "leaveRoom"
	InboundTypeSendMessage = "sendMessage"
	InboundTypeTyping      = "typing"
	InboundTypeMessageRead = "messageRead"
	InboundTypeReact       = "react"
	InboundTypeLoadMore    = "loadMore"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventOnlineUsers    = "onlineUsers"
	EventJoined         = "joined"
	EventRoomJoined     = "roomJoined"
	EventMessage        = "message"
	EventPrivateMessage = "privateMessage"
	EventTyping         = "typing"
	EventNotification   = "notification"
	EventOlderMessages  = "olderMessages"
	EventMessageRead    = "messageRead"
	EventReaction       = "reaction"

	DefaultLoadMoreLimit = 20
)

// LoginData is sent by the client to pick a username.
type LoginData struct {
	Username string `json:"username"`
}

// RoomData names a room to join or leave.
type RoomData struct {
	Room string `json:"room"`
}

// File references an uploaded blob.
type File struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// SendMessageData is a chat message from the client. A non-empty ToUserID
// makes it private.
type SendMessageData struct {
	Room      string `json:"room,omitempty"`
	Text      string `json:"text,omitempty"`
	File      *File  `json:"file,omitempty"`
	ToUserID  string `json:"toUserId,omitempty"`
	IsPrivate bool   `json:"isPrivate,omitempty"`
}

// TypingData is a typing indicator from the client.
type TypingData struct {
	Room      string `json:"room,omitempty"`
	IsTyping  bool   `json:"isTyping"`
	ToUserID  string `json:"toUserId,omitempty"`
	IsPrivate bool   `json:"isPrivate,omitempty"`
}

// MessageReadData marks a message as read.
type MessageReadData struct {
	Room      string `json:"room,omitempty"`
	MessageID int64  `json:"messageId"`
}

// ReactData reacts to a message.
type ReactData struct {
	Room      string `json:"room,omitempty"`
	MessageID int64  `json:"messageId"`
	Reaction  string `json:"reaction"`
}

// LoadMoreData asks for older messages. Missing fields take defaults.
type LoadMoreData struct {
	Room   string `json:"room,omitempty"`
	Offset *int   `json:"offset,omitempty"`
	Limit  *int   `json:"limit,omitempty"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Message is the wire shape of a chat message.
type Message struct {
	ID        int64               `json:"id"`
	From      string              `json:"from"`
	Text      *string             `json:"text"`
	File      *File               `json:"file"`
	TS        int64               `json:"ts"`
	ReadBy    []string            `json:"readBy"`
	Reactions map[string][]string `json:"reactions"`
}

// JoinedPayload answers a login.
type JoinedPayload struct {
	Username     string    `json:"username"`
	Rooms        []string  `json:"rooms"`
	LastMessages []Message `json:"lastMessages"`
}

// RoomJoinedPayload answers joinRoom.
type RoomJoinedPayload struct {
	Room         string    `json:"room"`
	LastMessages []Message `json:"lastMessages"`
}

// MessagePayload delivers a room message.
type MessagePayload struct {
	Room    string  `json:"room"`
	Message Message `json:"message"`
}

// TypingPayload relays a typing indicator.
type TypingPayload struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

// NotificationPayload is a status line.
type NotificationPayload struct {
	Message string `json:"message"`
}

// OlderMessagesPayload answers loadMore.
type OlderMessagesPayload struct {
	Room     string    `json:"room"`
	Messages []Message `json:"messages"`
}

// MessageReadPayload announces a read receipt.
type MessageReadPayload struct {
	MessageID int64  `json:"messageId"`
	Username  string `json:"username"`
}

// ReactionPayload announces a reaction.
type ReactionPayload struct {
	MessageID int64  `json:"messageId"`
	Username  string `json:"username"`
	Reaction  string `json:"reaction"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
