package http

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/roomchat/internal/core"
	"github.com/vovakirdan/roomchat/internal/proto"
)

func TestInboundLoadMoreDefaults(t *testing.T) {
	cases := []struct {
		name       string
		data       string
		wantOffset int
		wantLimit  int
	}{
		{name: "missing payload", data: "", wantOffset: 0, wantLimit: proto.DefaultLoadMoreLimit},
		{name: "empty object", data: `{}`, wantOffset: 0, wantLimit: proto.DefaultLoadMoreLimit},
		{name: "explicit", data: `{"room":"dev","offset":40,"limit":5}`, wantOffset: 40, wantLimit: 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, perr := inboundToCommand(proto.Inbound{Type: proto.InboundTypeLoadMore, Data: json.RawMessage(tc.data)})
			if perr != nil {
				t.Fatalf("unexpected error %+v", perr)
			}
			if cmd.Kind != core.CommandLoadMore || cmd.Offset != tc.wantOffset || cmd.Limit != tc.wantLimit {
				t.Fatalf("unexpected command %+v", cmd)
			}
		})
	}
}

func TestInboundSendMessage(t *testing.T) {
	data := `{"text":"hi","file":{"url":"/uploads/x-a.png","name":"a.png"},"toUserId":"bob","isPrivate":true}`
	cmd, perr := inboundToCommand(proto.Inbound{Type: proto.InboundTypeSendMessage, Data: json.RawMessage(data)})
	if perr != nil {
		t.Fatalf("unexpected error %+v", perr)
	}
	if !cmd.Private() || cmd.ToUser != "bob" || cmd.Text != "hi" {
		t.Fatalf("unexpected command %+v", cmd)
	}
	if cmd.File == nil || cmd.File.URL != "/uploads/x-a.png" || cmd.File.Name != "a.png" {
		t.Fatalf("file not mapped: %+v", cmd.File)
	}

	cmd, perr = inboundToCommand(proto.Inbound{Type: proto.InboundTypeSendMessage, Data: json.RawMessage(`{"text":"hi","isPrivate":true}`)})
	if perr != nil {
		t.Fatalf("unexpected error %+v", perr)
	}
	if cmd.Private() {
		t.Fatalf("isPrivate without recipient must not be private")
	}
}

func TestInboundErrors(t *testing.T) {
	cases := []struct {
		inbound proto.Inbound
		code    string
	}{
		{proto.Inbound{Type: "nope"}, core.ErrCodeInvalidMessage},
		{proto.Inbound{Type: proto.InboundTypeJoinRoom, Data: json.RawMessage(`{"room":""}`)}, core.ErrCodeBadRequest},
		{proto.Inbound{Type: proto.InboundTypeLogin, Data: json.RawMessage(`{"username":5}`)}, core.ErrCodeBadRequest},
		{proto.Inbound{Type: proto.InboundTypeReact, Data: json.RawMessage(`{"messageId":1}`)}, core.ErrCodeBadRequest},
	}

	for _, tc := range cases {
		_, perr := inboundToCommand(tc.inbound)
		if perr == nil || perr.Code != tc.code {
			t.Errorf("%s: got %+v, want code %s", tc.inbound.Type, perr, tc.code)
		}
	}
}

func TestOutboundMessageShape(t *testing.T) {
	ev := &core.Event{
		Kind: core.EventMessage,
		Room: "global",
		Message: core.Message{
			ID:        7,
			Room:      "global",
			From:      "alice",
			File:      &core.FileRef{URL: "/uploads/f", Name: "f"},
			CreatedAt: time.UnixMilli(1700000000123),
		},
	}

	raw, err := json.Marshal(outboundFromEvent(ev))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(raw)
	for _, want := range []string{
		`"type":"event"`,
		`"event":"message"`,
		`"text":null`,
		`"readBy":[]`,
		`"reactions":{}`,
		`"ts":1700000000123`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %s in %s", want, got)
		}
	}
}

func TestOutboundPrivateMessageIsBareMessage(t *testing.T) {
	ev := &core.Event{
		Kind:    core.EventPrivateMessage,
		Room:    core.PrivateRoomName("bob", "alice"),
		Message: core.Message{ID: 3, Room: "private_alice_bob", From: "bob", Text: "psst"},
	}

	raw, err := json.Marshal(outboundFromEvent(ev).Data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var msg proto.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.ID != 3 || msg.From != "bob" || msg.Text == nil || *msg.Text != "psst" {
		t.Fatalf("unexpected payload %s", string(raw))
	}
	if strings.Contains(string(raw), `"room"`) {
		t.Fatalf("private message payload must not wrap the message: %s", string(raw))
	}
}
