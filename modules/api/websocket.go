package api

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/example/collab-relay/modules/relay"
)

// handleWebSocket runs one relay session at /ws. The read loop feeds the
// engine; a second goroutine owns all writes to the socket.
func (m *APIModule) handleWebSocket(c *websocket.Conn) {
	conn := relay.NewConnection(uuid.NewString(), c, m.cfg.SendBufferSize)
	if m.cfg.MaxFrameBytes > 0 {
		c.SetReadLimit(m.cfg.MaxFrameBytes)
	}
	limiter := rate.NewLimiter(rate.Limit(m.cfg.RateLimitPerSecond), m.cfg.RateLimitBurst)

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		if err := conn.WritePump(m.cfg.PingInterval); err != nil {
			m.logger.Warn("WebSocket write failed", "connectionID", conn.ID(), "error", err)
			conn.Close()
		}
	}()

	m.engine.Connect(conn)
	m.logger.Info("WebSocket connected", "connectionID", conn.ID(), "remoteAddr", c.RemoteAddr().String())

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			if !conn.Closed() && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.logger.Warn("WebSocket read error", "connectionID", conn.ID(), "error", err)
			}
			break
		}

		if !limiter.Allow() {
			m.logger.Warn("Rate limit exceeded, frame dropped", "connectionID", conn.ID())
			continue
		}

		m.engine.Dispatch(conn, raw)
	}

	m.engine.Disconnect(conn)
	<-pumpDone
	m.logger.Info("WebSocket disconnected", "connectionID", conn.ID())
}
