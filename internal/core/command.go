package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandLogin binds a username to the session.
	CommandLogin CommandKind = iota
	// CommandJoinRoom moves the session into a room.
	CommandJoinRoom
	// CommandLeaveRoom removes the session's user from a room.
	CommandLeaveRoom
	// CommandSendMessage posts to a room or, with ToUser set, privately.
	CommandSendMessage
	// CommandTyping relays a typing indicator.
	CommandTyping
	// CommandMessageRead marks a message as read.
	CommandMessageRead
	// CommandReact adds a reaction to a message.
	CommandReact
	// CommandLoadMore pages backwards through a room's history.
	CommandLoadMore
)

var commandNames = map[CommandKind]string{
	CommandLogin:       "login",
	CommandJoinRoom:    "joinRoom",
	CommandLeaveRoom:   "leaveRoom",
	CommandSendMessage: "sendMessage",
	CommandTyping:      "typing",
	CommandMessageRead: "messageRead",
	CommandReact:       "react",
	CommandLoadMore:    "loadMore",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command represents an action requested by a client.
type Command struct {
	Kind     CommandKind
	Username string
	Room     string
	ToUser   string
	Text     string
	File     *FileRef
	IsTyping bool

	MessageID int64
	Reaction  string

	Offset int
	Limit  int
}

// Private reports whether a send or typing command targets a single user.
func (c *Command) Private() bool {
	return c.ToUser != ""
}
