package chathub

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/coursebridge/coursebridge-backend/internal/logger"
)

const (
	EventJoinCourse     = "join_course"
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
)

// Event is one relay frame. Data is opaque to the hub: it is rebroadcast
// byte-for-byte to room members.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Envelope carries an event across processes through a bus. Origin is the
// publishing hub's identity so a hub can ignore its own forwarded traffic.
type Envelope struct {
	Origin uuid.UUID `json:"origin"`
	Room   string    `json:"room"`
	Event  Event     `json:"event"`
}

// RoomKey maps a course identifier to its relay room name.
func RoomKey(courseID string) string {
	return "course_" + courseID
}

// Hub is the in-memory room broadcaster. It owns the bidirectional
// room/client index exclusively; membership does not survive a restart.
type Hub struct {
	id     uuid.UUID
	log    *logger.Logger
	mu     sync.RWMutex
	rooms  map[string]map[*Client]bool
	remote func(Envelope) error
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		id:    uuid.New(),
		log:   log.With("component", "ChatHub"),
		rooms: make(map[string]map[*Client]bool),
	}
}

func (h *Hub) ID() uuid.UUID { return h.id }

// SetRemotePublisher installs the cross-process publish hook (normally a
// redis bus). Local delivery never depends on it.
func (h *Hub) SetRemotePublisher(publish func(Envelope) error) {
	h.remote = publish
}

// NewClient creates an unregistered client. The caller attaches a transport
// (websocket pumps) or, in tests, reads Outbound directly.
func (h *Hub) NewClient(userID uuid.UUID) *Client {
	return &Client{
		ID:       uuid.New(),
		UserID:   userID,
		Rooms:    make(map[string]bool),
		Outbound: make(chan Event, 16),
		done:     make(chan struct{}),
		hub:      h,
	}
}

func (h *Hub) Join(client *Client, room string) {
	room = strings.TrimSpace(room)
	if client == nil || room == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	client.Rooms[room] = true
	members, exists := h.rooms[room]
	if !exists {
		members = make(map[*Client]bool)
		h.rooms[room] = members
	}
	members[client] = true

	h.log.Debug("client joined room", "client_id", client.ID, "room", room)
}

// RemoveClient drops the client from every room it had joined. Called on
// disconnect; there is no partial-leave operation.
func (h *Hub) RemoveClient(client *Client) {
	if client == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range client.Rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	client.Rooms = make(map[string]bool)

	h.log.Debug("client left all rooms", "client_id", client.ID)
}

// Publish fans the event out to the room locally and forwards it to other
// processes when a remote publisher is installed.
func (h *Hub) Publish(room string, ev Event) {
	h.broadcastLocal(room, ev)

	if h.remote != nil {
		if err := h.remote(Envelope{Origin: h.id, Room: room, Event: ev}); err != nil {
			h.log.Warn("remote publish failed", "room", room, "error", err)
		}
	}
}

// HandleRemote delivers an envelope received from the bus, skipping traffic
// this hub published itself.
func (h *Hub) HandleRemote(env Envelope) {
	if env.Origin == h.id {
		return
	}
	h.broadcastLocal(env.Room, env.Event)
}

// broadcastLocal delivers to every current room member, including the
// sender's own connections. Delivery is best effort: a member whose buffer
// is full is skipped so one slow recipient cannot stall the rest.
func (h *Hub) broadcastLocal(room string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[room]
	if !ok {
		return
	}
	for c := range members {
		select {
		case c.Outbound <- ev:
		case <-c.done:
		default:
			h.log.Warn("dropping relay event; outbound buffer full", "client_id", c.ID, "room", room)
		}
	}
}

// RoomSize reports current membership; used by tests and the healthcheck.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// CloseClient tears the client down: membership cleanup plus channel close
// so a pending write pump exits.
func (h *Hub) CloseClient(client *Client) {
	if client == nil {
		return
	}
	client.closeOnce.Do(func() {
		close(client.done)
		h.RemoveClient(client)
		close(client.Outbound)
	})
}

// roomIDFromJSON pulls a course/room identifier out of a relay payload. The
// wire format allows a bare string, a bare number, or an object carrying a
// courseId field (itself string or number). Empty string means "no room".
func roomIDFromJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return strings.TrimSpace(asString)
	}

	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return strconv.FormatFloat(asNumber, 'f', -1, 64)
	}

	var asObject struct {
		CourseID json.RawMessage `json:"courseId"`
	}
	if err := json.Unmarshal(raw, &asObject); err == nil && len(asObject.CourseID) > 0 {
		return roomIDFromJSON(asObject.CourseID)
	}

	return ""
}
