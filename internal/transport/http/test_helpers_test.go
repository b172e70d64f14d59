package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomchat/internal/config"
	"github.com/vovakirdan/roomchat/internal/core"
	"github.com/vovakirdan/roomchat/internal/proto"
)

// testOutbound mirrors proto.Outbound with a raw payload so tests can
// decode per event.
type testOutbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func testConfig(t *testing.T) config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	cfg.UploadDir = t.TempDir()
	return cfg
}

// newTestHub builds a hub that is not running, so tests may drive its
// router directly.
func newTestHub() *core.Hub {
	logger := zerolog.Nop()
	return core.NewHub(core.NewRouter(core.DefaultLimits(), &logger), nil, &logger)
}

// startTestServer runs a hub and serves it over httptest.
func startTestServer(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()

	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	disabledLogger := zerolog.New(nil)
	server := NewServer(hub, &cfg, &disabledLogger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	t.Cleanup(cancel)

	return ts
}

func dialWS(ctx context.Context, t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func sendInbound(ctx context.Context, t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s: %v", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readOutbound(ctx context.Context, t *testing.T, conn *websocket.Conn) testOutbound {
	t.Helper()

	var out testOutbound
	if err := wsjson.Read(ctx, conn, &out); err != nil {
		t.Fatalf("read: %v", err)
	}
	return out
}

// readEvent skips frames until the named event arrives.
func readEvent(ctx context.Context, t *testing.T, conn *websocket.Conn, event string) testOutbound {
	t.Helper()

	for {
		out := readOutbound(ctx, t, conn)
		if out.Type == proto.OutboundTypeEvent && out.Event == event {
			return out
		}
	}
}

func login(ctx context.Context, t *testing.T, conn *websocket.Conn, username string) {
	t.Helper()

	sendInbound(ctx, t, conn, proto.InboundTypeLogin, proto.LoginData{Username: username})
	out := readEvent(ctx, t, conn, proto.EventJoined)

	var joined proto.JoinedPayload
	if err := json.Unmarshal(out.Data, &joined); err != nil {
		t.Fatalf("decode joined: %v", err)
	}
	if joined.Username != username {
		t.Fatalf("joined as %q, want %q", joined.Username, username)
	}
}
