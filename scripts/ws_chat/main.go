package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/roomchat/internal/proto"
)

const usage = `Commands:
  <text>               send to the current room
  /join <room>         switch rooms
  /leave <room>        leave a room
  /msg <user> <text>   private message
  /more [offset]       load older messages of the current room
  /read <id>           mark a message read
  /react <id> <emoji>  react to a message`

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:5000/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "username")
	room := flag.String("room", "", "room to join after login")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	login, err := inbound(proto.InboundTypeLogin, proto.LoginData{Username: *user})
	if err != nil {
		return err
	}
	if err := wsjson.Write(ctx, conn, login); err != nil {
		return fmt.Errorf("send login: %w", err)
	}
	if *room != "" {
		join, err := inbound(proto.InboundTypeJoinRoom, proto.RoomData{Room: *room})
		if err != nil {
			return err
		}
		if err := wsjson.Write(ctx, conn, join); err != nil {
			return fmt.Errorf("send join: %w", err)
		}
	}

	fmt.Printf("Connected to %s as %s\n", *addr, *user)
	fmt.Println(usage)

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var outbound struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		if outbound.Error != nil {
			fmt.Printf("! %s: %s\n", outbound.Error.Code, outbound.Error.Msg)
			continue
		}

		switch outbound.Event {
		case proto.EventMessage:
			var evt proto.MessagePayload
			if err := json.Unmarshal(outbound.Data, &evt); err != nil {
				log.Printf("unmarshal message: %v", err)
				continue
			}
			printMessage(evt.Room, evt.Message)
		case proto.EventPrivateMessage:
			var msg proto.Message
			if err := json.Unmarshal(outbound.Data, &msg); err != nil {
				log.Printf("unmarshal privateMessage: %v", err)
				continue
			}
			printMessage("private", msg)
		case proto.EventJoined:
			var evt proto.JoinedPayload
			if err := json.Unmarshal(outbound.Data, &evt); err != nil {
				log.Printf("unmarshal joined: %v", err)
				continue
			}
			fmt.Printf("* logged in as %s, rooms: %s\n", evt.Username, strings.Join(evt.Rooms, ", "))
			for _, m := range evt.LastMessages {
				printMessage("global", m)
			}
		case proto.EventRoomJoined:
			var evt proto.RoomJoinedPayload
			if err := json.Unmarshal(outbound.Data, &evt); err != nil {
				log.Printf("unmarshal roomJoined: %v", err)
				continue
			}
			fmt.Printf("* now in %s\n", evt.Room)
			for _, m := range evt.LastMessages {
				printMessage(evt.Room, m)
			}
		case proto.EventOlderMessages:
			var evt proto.OlderMessagesPayload
			if err := json.Unmarshal(outbound.Data, &evt); err != nil {
				log.Printf("unmarshal olderMessages: %v", err)
				continue
			}
			for _, m := range evt.Messages {
				printMessage(evt.Room, m)
			}
		case proto.EventNotification:
			var evt proto.NotificationPayload
			if err := json.Unmarshal(outbound.Data, &evt); err != nil {
				log.Printf("unmarshal notification: %v", err)
				continue
			}
			fmt.Printf("* %s\n", evt.Message)
		default:
			fmt.Printf("event=%s data=%s\n", outbound.Event, string(outbound.Data))
		}
	}
}

func printMessage(room string, m proto.Message) {
	text := ""
	if m.Text != nil {
		text = *m.Text
	}
	if m.File != nil {
		text = strings.TrimSpace(text + " [file " + m.File.Name + " " + m.File.URL + "]")
	}
	fmt.Printf("[%s #%d] %s: %s\n", room, m.ID, m.From, text)
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			msg, err := parseLine(line)
			if err != nil {
				fmt.Println(err)
				continue
			}
			if msg == nil {
				continue
			}
			if err := wsjson.Write(ctx, conn, msg); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}

// parseLine turns one line of input into an inbound frame. Blank lines yield nil.
func parseLine(line string) (*proto.Inbound, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	if !strings.HasPrefix(line, "/") {
		return inbound(proto.InboundTypeSendMessage, proto.SendMessageData{Text: line})
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/join", "/leave":
		if len(fields) != 2 {
			return nil, fmt.Errorf("usage: %s <room>", fields[0])
		}
		typ := proto.InboundTypeJoinRoom
		if fields[0] == "/leave" {
			typ = proto.InboundTypeLeaveRoom
		}
		return inbound(typ, proto.RoomData{Room: fields[1]})
	case "/msg":
		if len(fields) < 3 {
			return nil, errors.New("usage: /msg <user> <text>")
		}
		text := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, fields[0]), " "+fields[1]))
		return inbound(proto.InboundTypeSendMessage, proto.SendMessageData{Text: text, ToUserID: fields[1], IsPrivate: true})
	case "/more":
		data := proto.LoadMoreData{}
		if len(fields) > 1 {
			offset, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("bad offset %q", fields[1])
			}
			data.Offset = &offset
		}
		return inbound(proto.InboundTypeLoadMore, data)
	case "/read":
		if len(fields) != 2 {
			return nil, errors.New("usage: /read <id>")
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad message id %q", fields[1])
		}
		return inbound(proto.InboundTypeMessageRead, proto.MessageReadData{MessageID: id})
	case "/react":
		if len(fields) != 3 {
			return nil, errors.New("usage: /react <id> <emoji>")
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad message id %q", fields[1])
		}
		return inbound(proto.InboundTypeReact, proto.ReactData{MessageID: id, Reaction: fields[2]})
	default:
		return nil, fmt.Errorf("unknown command %s\n%s", fields[0], usage)
	}
}

func inbound(typ string, data any) (*proto.Inbound, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", typ, err)
	}
	return &proto.Inbound{Type: typ, Data: payload}, nil
}
