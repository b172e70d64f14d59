package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/roomchat/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:5000/ws", "WebSocket address")
	user := flag.String("user", "tester", "username to log in with")
	room := flag.String("room", "general", "room name")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(typ string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", typ, err)
		}
		return nil
	}

	if err := send(proto.InboundTypeLogin, proto.LoginData{Username: *user}); err != nil {
		return err
	}
	if err := send(proto.InboundTypeJoinRoom, proto.RoomData{Room: *room}); err != nil {
		return err
	}
	if err := send(proto.InboundTypeSendMessage, proto.SendMessageData{Room: *room, Text: *text}); err != nil {
		return err
	}

	for {
		var outbound struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		fmt.Printf("Received outbound: type=%s", outbound.Type)
		if outbound.Event != "" {
			fmt.Printf(" event=%s", outbound.Event)
		}
		if outbound.Error != nil {
			fmt.Printf(" error=%s:%s\n", outbound.Error.Code, outbound.Error.Msg)
			return fmt.Errorf("server error %s", outbound.Error.Code)
		}
		fmt.Printf(" data=%s\n", string(outbound.Data))

		if outbound.Event != proto.EventMessage {
			continue
		}
		var evt proto.MessagePayload
		if err := json.Unmarshal(outbound.Data, &evt); err != nil {
			return fmt.Errorf("decode message: %w", err)
		}
		if evt.Room == *room && evt.Message.From == *user && evt.Message.Text != nil && *evt.Message.Text == *text {
			fmt.Println("smoke test passed")
			return nil
		}
	}
}
