package chathub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/coursebridge/coursebridge-backend/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// MessageSink receives every send_message payload for durable persistence.
// Persistence is best effort from the relay's point of view: a sink error is
// logged and never blocks the broadcast.
type MessageSink func(senderID uuid.UUID, roomCourseID string, payload json.RawMessage) error

// Client is one websocket connection registered with the hub.
type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Rooms    map[string]bool
	Outbound chan Event

	done      chan struct{}
	closeOnce sync.Once
	hub       *Hub
	conn      *websocket.Conn
	log       *logger.Logger
	sink      MessageSink
}

// Attach binds the websocket connection and persistence sink to the client.
// Must be called before Run.
func (c *Client) Attach(conn *websocket.Conn, log *logger.Logger, sink MessageSink) {
	c.conn = conn
	c.log = log.With("component", "ChatClient", "client_id", c.ID)
	c.sink = sink
}

// Run starts the read and write pumps. It returns immediately; the pumps
// stop when the connection drops, which triggers hub cleanup.
func (c *Client) Run() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.CloseClient(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug("websocket read ended", "error", err)
			}
			return
		}

		var frame Event
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.log.Debug("dropping malformed relay frame", "error", err)
			continue
		}
		c.handleFrame(frame)
	}
}

func (c *Client) handleFrame(frame Event) {
	switch frame.Event {
	case EventJoinCourse:
		courseID := roomIDFromJSON(frame.Data)
		if courseID == "" {
			c.log.Debug("join_course without a course id, ignoring")
			return
		}
		c.hub.Join(c, RoomKey(courseID))

	case EventSendMessage:
		courseID := roomIDFromJSON(frame.Data)
		if courseID == "" {
			// No resolvable room: nothing to fan out to. Dropped silently.
			c.log.Debug("send_message without a course id, dropping")
			return
		}
		if c.sink != nil {
			if err := c.sink(c.UserID, courseID, frame.Data); err != nil {
				c.log.Warn("chat message persistence failed", "course_id", courseID, "error", err)
			}
		}
		c.hub.Publish(RoomKey(courseID), Event{Event: EventReceiveMessage, Data: frame.Data})

	default:
		c.log.Debug("unknown relay event", "event", frame.Event)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Outbound:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
