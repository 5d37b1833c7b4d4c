package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"userdir/internal/pkg/randx"
)

const (
	// timeout for writing to the websocket connection.
	writeWait = 10 * time.Second

	// time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// ping frequency; must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maximum size of an inbound message.
	maxMessageSize = 1024

	// outbound queue length per client.
	sendBuffer = 64
)

// Client is one websocket connection of a session (one browser tab).
type Client struct {
	ID string

	session *Session
	conn    *websocket.Conn

	send      chan []byte
	closeOnce sync.Once

	logger zerolog.Logger
}

// NewClient wraps conn for s.
func NewClient(s *Session, conn *websocket.Conn) *Client {
	id := randx.EventID()

	return &Client{
		ID:      id,
		session: s,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		logger:  s.logger.With().Str("client_id", id).Logger(),
	}
}

// closeSend closes the outbound queue, which makes WritePump send a close frame and exit.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// ReadPump reads inbound messages until the connection fails, then unregisters the client.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Websocket closed unexpectedly")
			}
			break
		}

		c.session.Touch()
		c.processInboundMessage(messageBytes)
	}
}

func (c *Client) cleanupOnDisconnect() {
	c.session.unregisterClient(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// processInboundMessage handles the few messages a browser may send.
func (c *Client) processInboundMessage(messageBytes []byte) {
	var inbound struct {
		Type EventType `json:"type"`
		Seq  uint64    `json:"seq"`
	}

	if err := json.Unmarshal(messageBytes, &inbound); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		return
	}

	switch inbound.Type {
	case TypeDismissNotification:
		c.session.State.Notifications.Dismiss(inbound.Seq)

	default:
		c.logger.Warn().Str("msg_type", string(inbound.Type)).Msg("Client sent unsupported message type")
	}
}

// WritePump drains the send queue to the connection and keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}

// writeQueuedMessage writes one queued message, or a close frame once the queue
// is closed. It returns false when WritePump should stop.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// enqueue queues message without blocking. It reports false when the queue is full.
func (c *Client) enqueue(message []byte) bool {
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}
