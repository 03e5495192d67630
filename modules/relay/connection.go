package relay

import (
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// DefaultSendBufferSize is the outbound queue length used when none is configured.
const DefaultSendBufferSize = 256

// Transport is the socket a Connection writes to. *websocket.Conn satisfies it.
type Transport interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Connection is one client session. Outbound frames are queued and written
// by a single goroutine running WritePump.
type Connection struct {
	id        string
	transport Transport
	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once

	// guarded by Engine.mu
	bound    bool
	room     string
	username string
}

// NewConnection creates a connection with an outbound queue of bufferSize frames.
func NewConnection(id string, transport Transport, bufferSize int) *Connection {
	if bufferSize <= 0 {
		bufferSize = DefaultSendBufferSize
	}
	return &Connection{
		id:        id,
		transport: transport,
		out:       make(chan []byte, bufferSize),
		done:      make(chan struct{}),
	}
}

// ID returns the transport identity of the connection.
func (c *Connection) ID() string {
	return c.id
}

// Send queues a frame without blocking.
func (c *Connection) Send(frame []byte) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.out <- frame:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Done is closed once the connection is closed.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Closed reports whether Close has been called.
func (c *Connection) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Close stops the write pump and closes the transport. Safe to call more than once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.transport.Close()
	})
}

// WritePump drains the outbound queue to the transport and sends a ping every
// pingInterval. It returns nil once the connection is closed, or the first
// write error.
func (c *Connection) WritePump(pingInterval time.Duration) error {
	var ping <-chan time.Time
	if pingInterval > 0 {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case <-c.done:
			return nil
		case frame := <-c.out:
			if err := c.transport.WriteMessage(websocket.TextMessage, frame); err != nil {
				return fmt.Errorf("write to %s: %w", c.id, err)
			}
		case <-ping:
			if err := c.transport.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("ping %s: %w", c.id, err)
			}
		}
	}
}
