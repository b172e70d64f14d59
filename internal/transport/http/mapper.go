package http

import (
	"encoding/json"

	"github.com/vovakirdan/roomchat/internal/core"
	"github.com/vovakirdan/roomchat/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *core.CoreError) {
	switch inbound.Type {
	case proto.InboundTypeLogin:
		var login proto.LoginData
		if perr := decodeData(inbound.Data, &login); perr != nil {
			return nil, perr
		}
		return &core.Command{Kind: core.CommandLogin, Username: login.Username}, nil
	case proto.InboundTypeJoinRoom, proto.InboundTypeLeaveRoom:
		var room proto.RoomData
		if perr := decodeData(inbound.Data, &room); perr != nil {
			return nil, perr
		}
		if room.Room == "" {
			return nil, core.NewCoreError(core.ErrCodeBadRequest, "room is required")
		}
		kind := core.CommandJoinRoom
		if inbound.Type == proto.InboundTypeLeaveRoom {
			kind = core.CommandLeaveRoom
		}
		return &core.Command{Kind: kind, Room: room.Room}, nil
	case proto.InboundTypeSendMessage:
		var msg proto.SendMessageData
		if perr := decodeData(inbound.Data, &msg); perr != nil {
			return nil, perr
		}
		cmd := &core.Command{
			Kind:   core.CommandSendMessage,
			Room:   msg.Room,
			ToUser: msg.ToUserID,
			Text:   msg.Text,
		}
		if msg.File != nil {
			cmd.File = &core.FileRef{URL: msg.File.URL, Name: msg.File.Name}
		}
		return cmd, nil
	case proto.InboundTypeTyping:
		var typing proto.TypingData
		if perr := decodeData(inbound.Data, &typing); perr != nil {
			return nil, perr
		}
		return &core.Command{
			Kind:     core.CommandTyping,
			Room:     typing.Room,
			ToUser:   typing.ToUserID,
			IsTyping: typing.IsTyping,
		}, nil
	case proto.InboundTypeMessageRead:
		var read proto.MessageReadData
		if perr := decodeData(inbound.Data, &read); perr != nil {
			return nil, perr
		}
		return &core.Command{Kind: core.CommandMessageRead, Room: read.Room, MessageID: read.MessageID}, nil
	case proto.InboundTypeReact:
		var react proto.ReactData
		if perr := decodeData(inbound.Data, &react); perr != nil {
			return nil, perr
		}
		if react.Reaction == "" {
			return nil, core.NewCoreError(core.ErrCodeBadRequest, "reaction is required")
		}
		return &core.Command{
			Kind:      core.CommandReact,
			Room:      react.Room,
			MessageID: react.MessageID,
			Reaction:  react.Reaction,
		}, nil
	case proto.InboundTypeLoadMore:
		var more proto.LoadMoreData
		if perr := decodeData(inbound.Data, &more); perr != nil {
			return nil, perr
		}
		offset, limit := 0, proto.DefaultLoadMoreLimit
		if more.Offset != nil {
			offset = *more.Offset
		}
		if more.Limit != nil {
			limit = *more.Limit
		}
		return &core.Command{Kind: core.CommandLoadMore, Room: more.Room, Offset: offset, Limit: limit}, nil
	default:
		return nil, core.NewCoreError(core.ErrCodeInvalidMessage, "unknown message type")
	}
}

// decodeData treats a missing payload as an empty object.
func decodeData(data json.RawMessage, v any) *core.CoreError {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return core.NewCoreError(core.ErrCodeBadRequest, "invalid payload")
	}
	return nil
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	out := proto.Outbound{Type: proto.OutboundTypeEvent, Event: event.Kind.String()}

	switch event.Kind {
	case core.EventOnlineUsers:
		users := event.Users
		if users == nil {
			users = []string{}
		}
		out.Data = users
	case core.EventJoined:
		rooms := event.Rooms
		if rooms == nil {
			rooms = []string{}
		}
		out.Data = proto.JoinedPayload{
			Username:     event.User,
			Rooms:        rooms,
			LastMessages: wireMessages(event.Messages),
		}
	case core.EventRoomJoined:
		out.Data = proto.RoomJoinedPayload{Room: event.Room, LastMessages: wireMessages(event.Messages)}
	case core.EventMessage:
		out.Data = proto.MessagePayload{Room: event.Room, Message: wireMessage(&event.Message)}
	case core.EventPrivateMessage:
		out.Data = wireMessage(&event.Message)
	case core.EventTyping:
		out.Data = proto.TypingPayload{Username: event.User, IsTyping: event.IsTyping}
	case core.EventNotification:
		out.Data = proto.NotificationPayload{Message: event.Text}
	case core.EventOlderMessages:
		out.Data = proto.OlderMessagesPayload{Room: event.Room, Messages: wireMessages(event.Messages)}
	case core.EventMessageRead:
		out.Data = proto.MessageReadPayload{MessageID: event.MessageID, Username: event.User}
	case core.EventReaction:
		out.Data = proto.ReactionPayload{MessageID: event.MessageID, Username: event.User, Reaction: event.Reaction}
	}
	return out
}

func wireMessages(msgs []core.Message) []proto.Message {
	out := make([]proto.Message, 0, len(msgs))
	for i := range msgs {
		out = append(out, wireMessage(&msgs[i]))
	}
	return out
}

func wireMessage(m *core.Message) proto.Message {
	wm := proto.Message{
		ID:        m.ID,
		From:      m.From,
		TS:        m.CreatedAt.UnixMilli(),
		ReadBy:    m.ReadBy,
		Reactions: m.Reactions,
	}
	if m.Text != "" {
		text := m.Text
		wm.Text = &text
	}
	if m.File != nil {
		wm.File = &proto.File{URL: m.File.URL, Name: m.File.Name}
	}
	if wm.ReadBy == nil {
		wm.ReadBy = []string{}
	}
	if wm.Reactions == nil {
		wm.Reactions = map[string][]string{}
	}
	return wm
}

func errorOutbound(cerr *core.CoreError) proto.Outbound {
	return proto.Outbound{
		Type:  proto.OutboundTypeError,
		Error: &proto.Error{Code: cerr.Code, Msg: cerr.Message},
	}
}
