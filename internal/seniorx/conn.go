package seniorx

import (
	"context"
	"errors"
	"sync"
)

// Message is one inbound frame from the hosting platform.
type Message struct {
	Origin string
	Data   []byte
}

// Conn is the channel to the hosting platform: requests flow out, credential
// messages flow in. The handshake owns the read side; implementations own
// delivery.
type Conn interface {
	// Request asks the platform for initial data. It is called repeatedly
	// until the handshake completes, so it must be cheap and idempotent.
	Request(ctx context.Context, marker string) error

	// Messages returns the inbound frame stream. The channel is closed when
	// the connection goes away.
	Messages() <-chan Message
}

// ErrConnClosed is returned by PipeConn.Request after Close.
var ErrConnClosed = errors.New("connection closed")

// PipeConn is an in-process Conn used by tests and by transports that bridge
// frames from an upstream source. Deliver feeds inbound frames; Requests
// exposes what the handshake asked for.
type PipeConn struct {
	mu       sync.Mutex
	closed   bool
	inbound  chan Message
	requests chan string
}

// NewPipeConn creates a PipeConn with room for buffer inbound frames.
func NewPipeConn(buffer int) *PipeConn {
	if buffer <= 0 {
		buffer = 16
	}
	return &PipeConn{
		inbound:  make(chan Message, buffer),
		requests: make(chan string, buffer),
	}
}

// Request records the outbound request marker.
func (c *PipeConn) Request(ctx context.Context, marker string) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrConnClosed
	}

	select {
	case c.requests <- marker:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Messages returns the inbound frame stream.
func (c *PipeConn) Messages() <-chan Message {
	return c.inbound
}

// Requests exposes the outbound request markers in order.
func (c *PipeConn) Requests() <-chan string {
	return c.requests
}

// Deliver feeds an inbound frame. Frames delivered after Close are dropped.
func (c *PipeConn) Deliver(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.inbound <- msg
}

// Close closes the inbound stream.
func (c *PipeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.inbound)
}
