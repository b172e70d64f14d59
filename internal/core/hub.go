package core

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomchat/internal/store"
)

const (
	hubQueueSize     = 256
	archiveQueueSize = 1024
	archiveDrainWait = 2 * time.Second
)

type inboundCommand struct {
	client *Client
	cmd    *Command
}

type lifecycleOp int

const (
	opRegister lifecycleOp = iota
	opUnregister
)

// lifecycleEvent travels on one channel so a client's register is always
// applied before its unregister.
type lifecycleEvent struct {
	client *Client
	op     lifecycleOp
}

// Hub is the single authority over chat state. One goroutine (Run) applies
// every registration, command and disconnect in arrival order, then hands
// the resulting events to client channels without blocking.
type Hub struct {
	router  *Router
	archive store.MessageStore
	log     *zerolog.Logger

	lifecycle chan lifecycleEvent
	inbound   chan inboundCommand
	saves     chan *store.Message

	clients map[*Client]struct{}
	done    chan struct{}

	mu      sync.Mutex
	stopped bool
}

// NewHub creates a new chat hub. archive may be nil for memory-only history.
func NewHub(router *Router, archive store.MessageStore, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if router == nil {
		router = NewRouter(DefaultLimits(), logger)
	}
	return &Hub{
		router:     router,
		archive:    archive,
		log:        logger,
		lifecycle: make(chan lifecycleEvent, hubQueueSize),
		inbound:   make(chan inboundCommand, hubQueueSize),
		saves:     make(chan *store.Message, archiveQueueSize),
		clients:   make(map[*Client]struct{}),
		done:      make(chan struct{}),
	}
}

// Router returns the router owned by the hub.
func (h *Hub) Router() *Router {
	return h.router
}

// RegisterClient hands a new connection to the hub. A client registered
// after the hub has stopped is shut down at once.
func (h *Hub) RegisterClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		c.shutdown()
		return
	}
	select {
	case h.lifecycle <- lifecycleEvent{client: c, op: opRegister}:
	case <-h.done:
		c.shutdown()
	}
}

// UnregisterClient tells the hub the connection is gone. Safe to call more
// than once and after the hub has stopped.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.lifecycle <- lifecycleEvent{client: c, op: opUnregister}:
	case <-h.done:
	}
}

// Run processes hub events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	var wg sync.WaitGroup
	if h.archive != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.archiveLoop(ctx)
		}()
	}

	defer func() {
		close(h.done)
		h.mu.Lock()
		h.stopped = true
		h.mu.Unlock()

		h.drainLifecycle()
		for c := range h.clients {
			c.shutdown()
			delete(h.clients, c)
		}
		wg.Wait()
		h.log.Info().Msg("hub stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.lifecycle:
			switch ev.op {
			case opRegister:
				h.addClient(ctx, ev.client)
			case opUnregister:
				h.removeClient(ev.client)
			}
		case in := <-h.inbound:
			if _, ok := h.clients[in.client]; !ok {
				continue
			}
			h.apply(h.router.Handle(in.client, in.cmd))
		}
	}
}

// drainLifecycle shuts down clients whose registration was queued but never
// applied. Every RegisterClient has returned once stopped is set.
func (h *Hub) drainLifecycle() {
	for {
		select {
		case ev := <-h.lifecycle:
			if ev.op == opRegister && ev.client != nil {
				ev.client.shutdown()
			}
		default:
			return
		}
	}
}

func (h *Hub) addClient(ctx context.Context, c *Client) {
	if c == nil {
		return
	}
	if _, exists := h.clients[c]; exists {
		return
	}
	select {
	case <-c.done:
		// already unregistered and shut down
		return
	default:
	}
	h.clients[c] = struct{}{}
	h.router.Connect(c)
	h.log.Debug().Str("client_id", c.ID).Int("clients", len(h.clients)).Msg("client registered")

	go h.forward(ctx, c)
}

func (h *Hub) removeClient(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	out := h.router.Disconnect(c)
	c.shutdown()
	h.log.Debug().Str("client_id", c.ID).Int("clients", len(h.clients)).Msg("client unregistered")

	h.apply(out)
}

// forward moves a client's commands onto the hub queue, preserving order.
func (h *Hub) forward(ctx context.Context, c *Client) {
	for {
		select {
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			select {
			case h.inbound <- inboundCommand{client: c, cmd: cmd}:
			case <-c.done:
				return
			case <-ctx.Done():
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) apply(out Outcome) {
	for _, d := range out.Deliveries {
		h.deliver(d)
	}
	if h.archive == nil {
		return
	}
	for i := range out.Changed {
		select {
		case h.saves <- toStoreMessage(&out.Changed[i]):
		default:
			h.log.Warn().Int64("message_id", out.Changed[i].ID).Msg("archive queue full, dropping update")
		}
	}
}

func (h *Hub) deliver(d Delivery) {
	if _, ok := h.clients[d.To]; !ok {
		return
	}
	select {
	case d.To.Events <- d.Event:
	default:
		// Drop if slow consumer.
		h.log.Debug().Str("client_id", d.To.ID).Stringer("event", d.Event.Kind).Msg("client queue full, event dropped")
	}
}
