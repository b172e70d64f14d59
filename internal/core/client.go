package core

import "sync"

const defaultClientBuffer = 64

// Client is one live connection (a session) as seen by the core layer.
// The transport writes Commands and drains Events; the hub closes Events
// once the client is unregistered.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return NewClientWithBuffer(id, defaultClientBuffer)
}

// NewClientWithBuffer constructs a client whose channels hold size items.
func NewClientWithBuffer(id string, size int) *Client {
	if size <= 0 {
		size = defaultClientBuffer
	}
	return &Client{
		ID:       id,
		Commands: make(chan *Command, size),
		Events:   make(chan *Event, size),
		done:     make(chan struct{}),
	}
}

// Done is closed when the hub has forgotten the client.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		close(c.Events)
	})
}
