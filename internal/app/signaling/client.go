package signaling

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"studyroom/internal/pkg/errs"
	"studyroom/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client. SDP offers are large.
	maxMessageSize = 64 * 1024

	// size of the per-connection outbound queue.
	sendBufferSize = 256

	// MaxContentBytes is the maximum allowed size of a chat message.
	MaxContentBytes = 5000

	// WsCloseCodeSessionKicked is a custom WebSocket Close Code (4000-4999 range)
	// used to signal the client that the session was replaced by a new connection.
	WsCloseCodeSessionKicked = 4001
)

// Session is the identity a connection was admitted with.
type Session struct {
	ConnID string
	UserID string
	RoomID string
	Name   string
}

// Client is one admitted websocket connection.
type Client struct {
	Session

	registry *Registry

	// nil in unit tests, which drive the registry directly.
	conn *websocket.Conn

	send chan []byte

	// done is closed by Close; the write pump then sends closeCode and exits.
	done        chan struct{}
	closeOnce   sync.Once
	closeCode   int
	closeReason string

	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewClient binds a connection to the registry. A nil limiter disables inbound rate limiting.
func NewClient(registry *Registry, conn *websocket.Conn, session Session, limiter *rate.Limiter) *Client {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}

	return &Client{
		Session:  session,
		registry: registry,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		limiter:  limiter,
		logger: logx.Logger().With().
			Str("conn_id", session.ConnID).
			Str("user_id", session.UserID).
			Str("room_id", session.RoomID).
			Logger(),
	}
}

// Close asks the write pump to send a close frame with the given code and stop.
// Only the first call has any effect.
func (c *Client) Close(code int, reason string) {
	c.closeOnce.Do(func() {
		c.closeCode = code
		c.closeReason = reason
		close(c.done)
	})
}

// Kick closes a connection that was replaced by a newer one for the same user.
func (c *Client) Kick() {
	c.logger.Info().Msg("Session replaced by a newer connection, kicking.")
	c.Close(WsCloseCodeSessionKicked, errs.NewError(errs.ErrSessionKicked).Message)
}

func (c *Client) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// trySend queues msg without blocking. A full queue drops the message.
func (c *Client) trySend(msg []byte) bool {
	if c.closed() {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping message")
		return false
	}
}

// SendError delivers an error event to this client only.
func (c *Client) SendError(err error) {
	var code int
	var message string

	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		code = customErr.Code
		message = customErr.Message
	} else {
		code = errs.ErrUnknown
		message = fmt.Sprintf("Internal server error: %v", err)
	}

	msg, encErr := encodeEvent(EventError, ErrorPayload{Code: code, Message: message})
	if encErr != nil {
		c.logger.Error().Err(encErr).Msg("Failed to build error event")
		return
	}
	c.trySend(msg)
}

// ReadPump reads frames until the connection fails, dispatching each event in arrival order.
// On exit the client leaves its room exactly once.
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

		c.processInboundMessage(messageBytes)
	}
}

func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.registry.Leave(c)
	c.Close(websocket.CloseNormalClosure, "")

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

func (c *Client) processInboundMessage(messageBytes []byte) {
	if !c.limiter.Allow() {
		c.logger.Warn().Msg("Client exceeded message rate, dropping event")
		c.SendError(errs.NewError(errs.ErrRateLimitExceeded))
		return
	}

	var inbound Envelope
	if err := json.Unmarshal(messageBytes, &inbound); err != nil {
		c.logger.Warn().Err(err).Int("size", len(messageBytes)).Msg("Client sent invalid JSON")
		return
	}

	switch inbound.Type {
	case EventJoin:
		if c.checkRoom(inbound.Payload) {
			c.registry.Join(c)
		}

	case EventSignal:
		c.registry.Relay(c, inbound.Payload)

	case EventMessage:
		var chat ChatInPayload
		if err := json.Unmarshal(inbound.Payload, &chat); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid message payload")
			return
		}
		c.registry.Chat(c, chat.Data)

	case EventShareScreen, EventStopScreen:
		if c.checkRoom(inbound.Payload) {
			c.registry.Screen(c, inbound.Type == EventShareScreen)
		}

	default:
		c.logger.Warn().Str("msg_type", string(inbound.Type)).Msg("Client sent unsupported message type")
	}
}

// checkRoom accepts a payload naming the bound room, or naming none.
func (c *Client) checkRoom(payload json.RawMessage) bool {
	if len(payload) == 0 {
		return true
	}

	var body RoomPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid room payload")
		return false
	}

	if body.Room != "" && body.Room != c.RoomID {
		c.logger.Warn().Str("requested_room", body.Room).Msg("Client referenced a room it was not admitted to")
		c.SendError(errs.NewError(errs.ErrRoomMismatch))
		return false
	}
	return true
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
		case message := <-c.send:
			if !c.writeFrame(websocket.TextMessage, message) {
				return
			}

		case <-ticker.C:
			if !c.writeFrame(websocket.PingMessage, nil) {
				return
			}

		case <-c.done:
			frame := websocket.FormatCloseMessage(c.closeCode, c.closeReason)
			c.writeFrame(websocket.CloseMessage, frame)
			return
		}
	}
}

// writeFrame reports whether the write pump should keep running.
func (c *Client) writeFrame(messageType int, data []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if err := c.conn.WriteMessage(messageType, data); err != nil {
		c.logger.Debug().Err(err).Int("frame_type", messageType).Msg("Error writing frame")
		return false
	}
	return true
}
