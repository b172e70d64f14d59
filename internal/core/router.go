package core

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const privateRoomPrefix = "private_"

// PrivateRoomName returns the room both participants of a private
// conversation resolve to, regardless of argument order.
func PrivateRoomName(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return privateRoomPrefix + a + "_" + b
}

// Limits bounds history sizes handed out by the router.
type Limits struct {
	HistoryLimit int
	RecentCount  int
}

// DefaultLimits mirrors the retention and recent-history defaults.
func DefaultLimits() Limits {
	return Limits{HistoryLimit: DefaultHistoryLimit, RecentCount: DefaultRecentCount}
}

// Delivery addresses one event to one client.
type Delivery struct {
	To    *Client
	Event *Event
}

// Outcome is everything a single inbound event produced: the fan-out and
// the messages whose stored state changed.
type Outcome struct {
	Deliveries []Delivery
	Changed    []Message
}

type session struct {
	client *Client
	room   string
}

// Router validates inbound commands, mutates the registries and computes
// fan-out. It is not safe for concurrent use: the hub calls it from a
// single goroutine so every fan-out decision is taken against the state
// its own mutation produced.
type Router struct {
	identities *IdentityRegistry
	rooms      *RoomDirectory
	messages   *MessageLog
	presence   *Presence
	limits     Limits

	sessions     map[string]*session
	privatePeers map[string][2]string

	now func() time.Time
	log *zerolog.Logger
}

// NewRouter builds a router with fresh registries.
func NewRouter(limits Limits, logger *zerolog.Logger) *Router {
	if limits.HistoryLimit <= 0 {
		limits.HistoryLimit = DefaultHistoryLimit
	}
	if limits.RecentCount <= 0 {
		limits.RecentCount = DefaultRecentCount
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	identities := NewIdentityRegistry()
	return &Router{
		identities:   identities,
		rooms:        NewRoomDirectory(),
		messages:     NewMessageLog(limits.HistoryLimit),
		presence:     NewPresence(identities),
		limits:       limits,
		sessions:     make(map[string]*session),
		privatePeers: make(map[string][2]string),
		now:          time.Now,
		log:          logger,
	}
}

// Identities exposes the identity registry for read-only callers.
func (r *Router) Identities() *IdentityRegistry { return r.identities }

// Rooms exposes the room directory for read-only callers.
func (r *Router) Rooms() *RoomDirectory { return r.rooms }

// Messages exposes the message log for read-only callers.
func (r *Router) Messages() *MessageLog { return r.messages }

// Connect registers an anonymous session.
func (r *Router) Connect(c *Client) {
	if _, exists := r.sessions[c.ID]; exists {
		return
	}
	r.sessions[c.ID] = &session{client: c}
}

// Handle applies cmd on behalf of c. Domain errors never escape: they are
// logged and the event is dropped or turned into a notification.
func (r *Router) Handle(c *Client, cmd *Command) Outcome {
	var out Outcome
	if cmd == nil {
		return out
	}

	s, ok := r.sessions[c.ID]
	if !ok {
		r.log.Debug().Err(ErrUnknownConnection).Str("client_id", c.ID).Msg("command from unknown connection")
		return out
	}

	err := r.dispatch(s, cmd, &out)
	if err != nil {
		r.log.Debug().
			Err(err).
			Str("client_id", c.ID).
			Stringer("command", cmd.Kind).
			Msg("command absorbed")
	}
	return out
}

func (r *Router) dispatch(s *session, cmd *Command, out *Outcome) error {
	if cmd.Kind == CommandLogin {
		return r.login(s, cmd, out)
	}

	username, ok := r.identities.WhoIs(s.client.ID)
	if !ok {
		return ErrUnauthenticated
	}

	switch cmd.Kind {
	case CommandJoinRoom:
		return r.joinRoom(s, username, cmd, out)
	case CommandLeaveRoom:
		return r.leaveRoom(s, username, cmd, out)
	case CommandSendMessage:
		return r.sendMessage(s, username, cmd, out)
	case CommandTyping:
		return r.typing(s, username, cmd, out)
	case CommandMessageRead:
		return r.messageRead(s, username, cmd, out)
	case CommandReact:
		return r.react(s, username, cmd, out)
	case CommandLoadMore:
		return r.loadMore(s, cmd, out)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownCommand, cmd.Kind)
	}
}

// Disconnect forgets c and releases its identity and memberships.
// Calling it twice for the same client is a no-op.
func (r *Router) Disconnect(c *Client) Outcome {
	var out Outcome

	if _, ok := r.sessions[c.ID]; !ok {
		return out
	}
	delete(r.sessions, c.ID)

	username, ok := r.identities.Logout(c.ID)
	if !ok {
		return out
	}
	r.rooms.LeaveAll(username)

	r.toAll(&out, r.presence.Event())
	r.toAll(&out, notification("%s disconnected", username))
	return out
}

func (r *Router) login(s *session, cmd *Command, out *Outcome) error {
	if _, ok := r.identities.WhoIs(s.client.ID); ok {
		return ErrAlreadyLoggedIn
	}

	ident, err := r.identities.Login(s.client.ID, cmd.Username)
	if err != nil {
		return err
	}
	username := ident.Username

	if ident.Revoked != "" {
		r.revoke(ident.Revoked, username, out)
	}

	s.room = GlobalRoom
	r.rooms.Join(GlobalRoom, username)

	r.toAll(out, r.presence.Event())
	r.toRoom(out, GlobalRoom, notification("%s joined %s", username, GlobalRoom))
	r.toSession(out, s.client, &Event{
		Kind:     EventJoined,
		User:     username,
		Rooms:    r.rooms.Rooms(),
		Messages: r.messages.Recent(GlobalRoom, r.limits.RecentCount),
	})
	return nil
}

// revoke turns the session that previously held username back into an
// anonymous one. Its connection stays open.
func (r *Router) revoke(connID, username string, out *Outcome) {
	for _, room := range r.rooms.LeaveAll(username) {
		if room != GlobalRoom {
			r.toRoom(out, room, notification("%s left %s", username, room))
		}
	}

	old, ok := r.sessions[connID]
	if !ok {
		return
	}
	old.room = ""
	r.toSession(out, old.client, notification("%s signed in from another connection", username))
	r.log.Info().Str("username", username).Str("client_id", connID).Msg("identity taken over")
}

func (r *Router) joinRoom(s *session, username string, cmd *Command, out *Outcome) error {
	target := cmd.Room
	if target == "" {
		return fmt.Errorf("%w: room is required", ErrInvalidCommand)
	}

	prev := s.room
	r.rooms.Switch(prev, target, username)
	s.room = target

	if prev != "" && prev != target {
		r.toRoom(out, prev, notification("%s left %s", username, prev))
	}
	r.toRoom(out, target, notification("%s joined %s", username, target))
	r.toSession(out, s.client, &Event{
		Kind:     EventRoomJoined,
		Room:     target,
		Messages: r.messages.Recent(target, r.limits.RecentCount),
	})
	r.toAll(out, r.presence.Event())
	return nil
}

func (r *Router) leaveRoom(s *session, username string, cmd *Command, out *Outcome) error {
	target := cmd.Room
	if target == "" {
		return fmt.Errorf("%w: room is required", ErrInvalidCommand)
	}

	removed := r.rooms.Leave(target, username)
	if target == s.room {
		s.room = ""
	}
	if removed {
		r.toRoom(out, target, notification("%s left %s", username, target))
	}
	return nil
}

func (r *Router) sendMessage(s *session, username string, cmd *Command, out *Outcome) error {
	msg := Message{
		From:      username,
		Text:      cmd.Text,
		File:      cmd.File,
		CreatedAt: r.now(),
	}
	if !msg.HasContent() {
		return ErrEmptyMessage
	}

	if cmd.Private() {
		room := PrivateRoomName(username, cmd.ToUser)
		stored := r.messages.Append(room, msg)
		r.privatePeers[room] = [2]string{username, cmd.ToUser}
		out.Changed = append(out.Changed, stored)

		recipient, online := r.sessionOf(cmd.ToUser)
		if !online {
			r.toSession(out, s.client, notification("%s is offline", cmd.ToUser))
			return fmt.Errorf("%w: %s", ErrRecipientOffline, cmd.ToUser)
		}

		ev := &Event{Kind: EventPrivateMessage, Room: room, Message: stored}
		r.toSession(out, recipient.client, ev)
		if recipient != s {
			r.toSession(out, s.client, ev)
		}
		return nil
	}

	room := r.resolveRoom(s, cmd.Room)
	stored := r.messages.Append(room, msg)
	out.Changed = append(out.Changed, stored)
	r.toRoom(out, room, &Event{Kind: EventMessage, Room: room, Message: stored})
	return nil
}

func (r *Router) typing(s *session, username string, cmd *Command, out *Outcome) error {
	ev := &Event{Kind: EventTyping, User: username, IsTyping: cmd.IsTyping}

	if cmd.Private() {
		recipient, online := r.sessionOf(cmd.ToUser)
		if !online {
			return fmt.Errorf("%w: %s", ErrRecipientOffline, cmd.ToUser)
		}
		r.toSession(out, recipient.client, ev)
		return nil
	}

	ev.Room = r.resolveRoom(s, cmd.Room)
	r.toRoom(out, ev.Room, ev)
	return nil
}

func (r *Router) messageRead(s *session, username string, cmd *Command, out *Outcome) error {
	room := r.resolveRoom(s, cmd.Room)
	msg, ok := r.messages.MarkRead(room, cmd.MessageID, username)
	if !ok {
		return fmt.Errorf("%w: %d in %s", ErrMessageNotFound, cmd.MessageID, room)
	}
	out.Changed = append(out.Changed, msg)
	r.toRoom(out, room, &Event{
		Kind:      EventMessageRead,
		Room:      room,
		User:      username,
		MessageID: cmd.MessageID,
	})
	return nil
}

func (r *Router) react(s *session, username string, cmd *Command, out *Outcome) error {
	if cmd.Reaction == "" {
		return fmt.Errorf("%w: reaction is required", ErrInvalidCommand)
	}

	room := r.resolveRoom(s, cmd.Room)
	msg, ok := r.messages.AddReaction(room, cmd.MessageID, username, cmd.Reaction)
	if !ok {
		return fmt.Errorf("%w: %d in %s", ErrMessageNotFound, cmd.MessageID, room)
	}
	out.Changed = append(out.Changed, msg)
	r.toRoom(out, room, &Event{
		Kind:      EventReaction,
		Room:      room,
		User:      username,
		MessageID: cmd.MessageID,
		Reaction:  cmd.Reaction,
	})
	return nil
}

func (r *Router) loadMore(s *session, cmd *Command, out *Outcome) error {
	room := r.resolveRoom(s, cmd.Room)
	limit := min(cmd.Limit, r.limits.HistoryLimit)
	r.toSession(out, s.client, &Event{
		Kind:     EventOlderMessages,
		Room:     room,
		Messages: r.messages.Page(room, cmd.Offset, limit),
	})
	return nil
}

func (r *Router) resolveRoom(s *session, room string) string {
	if room != "" {
		return room
	}
	if s.room != "" {
		return s.room
	}
	return GlobalRoom
}

func (r *Router) sessionOf(username string) (*session, bool) {
	connID, ok := r.identities.Resolve(username)
	if !ok {
		return nil, false
	}
	s, ok := r.sessions[connID]
	return s, ok
}

func (r *Router) toSession(out *Outcome, c *Client, ev *Event) {
	out.Deliveries = append(out.Deliveries, Delivery{To: c, Event: ev})
}

// toRoom addresses ev to every connected member of room. Private rooms
// also reach both participants, whether or not they joined the room.
func (r *Router) toRoom(out *Outcome, room string, ev *Event) {
	members := r.rooms.MembersOf(room)
	if peers, ok := r.privatePeers[room]; ok {
		for _, p := range peers {
			if p != "" && !slices.Contains(members, p) {
				members = append(members, p)
			}
		}
	}
	for _, username := range members {
		if s, ok := r.sessionOf(username); ok {
			r.toSession(out, s.client, ev)
		}
	}
}

// restore loads archived messages for room. For a private room the two
// participants are recovered from the senders and the room name.
func (r *Router) restore(room string, msgs []Message) {
	r.messages.Restore(room, msgs)
	if !strings.HasPrefix(room, privateRoomPrefix) || len(msgs) == 0 {
		return
	}
	if peers, ok := privatePeersOf(room, msgs); ok {
		r.privatePeers[room] = peers
	}
}

// privatePeersOf works out who shares a private room. Usernames may contain
// underscores, so a known sender anchors the split of the room name.
func privatePeersOf(room string, msgs []Message) ([2]string, bool) {
	rest := strings.TrimPrefix(room, privateRoomPrefix)
	for i := range msgs {
		from := msgs[i].From
		if from == "" {
			continue
		}
		var other string
		switch {
		case strings.HasPrefix(rest, from+"_"):
			other = strings.TrimPrefix(rest, from+"_")
		case strings.HasSuffix(rest, "_"+from):
			other = strings.TrimSuffix(rest, "_"+from)
		default:
			continue
		}
		if other != "" && PrivateRoomName(from, other) == room {
			return [2]string{from, other}, true
		}
	}
	return [2]string{}, false
}

// toAll addresses ev to every connected session, logged in or not.
func (r *Router) toAll(out *Outcome, ev *Event) {
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		r.toSession(out, r.sessions[id].client, ev)
	}
}

func notification(format string, args ...any) *Event {
	return &Event{Kind: EventNotification, Text: fmt.Sprintf(format, args...)}
}
