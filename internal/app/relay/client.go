/*
Package relay contains the core logic of the chat relay.

This file defines the Client struct, representing one WebSocket connection
and its session lifecycle: Unregistered until a successful register, Active
while bound to an identity, then Loggedout or Disconnected. It owns the
message communication loops (ReadPump and WritePump) and the per-connection
outbound queue.
*/
package relay

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 8192

	// MaxContentBytes is the maximum allowed size (in bytes) for message text.
	MaxContentBytes = 5000

	// sendQueueSize is the per-connection outbound buffer. A full queue means
	// the recipient is treated as offline for that payload.
	sendQueueSize = 256
)

// Client represents an active WebSocket connection. Identity is not stored
// here: the hub's registry owns the connection-to-identity binding.
type Client struct {
	// hub routes everything this connection sends.
	hub *Hub

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// a buffered channel used to queue messages waiting to be sent to the client.
	send chan []byte

	// mu guards closed; sends and the channel close may race otherwise.
	mu     sync.Mutex
	closed bool

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client for a freshly upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	clientLogger := logx.Logger().With().
		Str("component", "client").
		Str("remote_addr", conn.RemoteAddr().String()).
		Logger()

	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		logger: clientLogger,
	}
}

// ReadPump handles reading messages from the WebSocket connection.
// It handles heartbeats (Pong), envelope parsing, and performs cleanup upon
// connection closure.
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
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		c.processInbound(messageBytes)
	}
}

// cleanupOnDisconnect handles the necessary cleanup steps when the client's
// ReadPump terminates, whether by logout or unexpected close.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.hub.Disconnect(c)
	c.closeSend()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// processInbound dispatches one raw inbound message. Malformed JSON and
// unknown types are logged and ignored; the connection stays open.
func (c *Client) processInbound(messageBytes []byte) {
	var env Envelope
	if err := json.Unmarshal(messageBytes, &env); err != nil {
		c.logger.Warn().Err(err).
			Bytes("message_bytes", messageBytes).
			Msg("Client sent invalid JSON")
		return
	}

	switch env.Type {
	case TypeRegister:
		c.hub.Register(c, env.Username)

	case TypeLogout:
		c.hub.Logout(c)

	case TypeMessage:
		if len(env.Text) > MaxContentBytes {
			c.SendError(errs.NewError(errs.ErrMessageContentTooLong))
			return
		}
		c.hub.Route(c, env.Text)

	case TypeRead:
		c.hub.MarkRead(c, env.MessageID, env.ReaderID)

	default:
		c.logger.Warn().Str("msg_type", string(env.Type)).Msg("Client sent unsupported message type")
	}
}

// WritePump handles writing messages from the Client.send channel to the
// WebSocket connection. It serializes all writes on this connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
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
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage handles messages pulled from the send channel, writing them to the WebSocket.
// Returns true if the WritePump loop should continue, false if it should terminate.
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

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Debug().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// sendPayload marshals the payload and queues it on the send channel without
// blocking. A full queue or a released connection drops the payload: the
// recipient is treated as offline rather than stalling the routing step.
func (c *Client) sendPayload(payload any) {
	messageBytes, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error marshaling payload for client")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- messageBytes:
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping message")
	}
}

// SendError sends a typed error payload to this connection.
func (c *Client) SendError(customErr *errs.CustomError) {
	c.sendPayload(errorPayload{
		Type:    TypeError,
		Code:    customErr.Code,
		Message: customErr.Message,
	})
}

// closeSend closes the outbound queue exactly once, which makes the write
// pump emit a Close frame and terminate.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
