package chathub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/coursebridge/coursebridge-backend/internal/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case ev := <-c.Outbound:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case ev := <-c.Outbound:
		t.Fatalf("unexpected event %q delivered", ev.Event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishReachesRoomMembersOnly(t *testing.T) {
	hub := NewHub(mustTestLogger(t))

	a := hub.NewClient(uuid.New())
	b := hub.NewClient(uuid.New())
	c := hub.NewClient(uuid.New())
	hub.Join(a, RoomKey("7"))
	hub.Join(b, RoomKey("7"))
	hub.Join(c, RoomKey("9"))

	payload := json.RawMessage(`{"content":"hi"}`)
	hub.Publish(RoomKey("7"), Event{Event: EventReceiveMessage, Data: payload})

	got := recvEvent(t, b)
	if got.Event != EventReceiveMessage {
		t.Fatalf("event = %q, want %q", got.Event, EventReceiveMessage)
	}
	if string(got.Data) != string(payload) {
		t.Fatalf("data = %s, want %s", got.Data, payload)
	}
	assertNoEvent(t, c)
}

func TestPublishIncludesSenderConnections(t *testing.T) {
	hub := NewHub(mustTestLogger(t))

	sender := hub.NewClient(uuid.New())
	hub.Join(sender, RoomKey("3"))

	hub.Publish(RoomKey("3"), Event{Event: EventReceiveMessage, Data: json.RawMessage(`"echo"`)})

	got := recvEvent(t, sender)
	if got.Event != EventReceiveMessage {
		t.Fatalf("sender did not receive its own broadcast, got %q", got.Event)
	}
}

func TestRemoveClientDropsMembership(t *testing.T) {
	hub := NewHub(mustTestLogger(t))

	a := hub.NewClient(uuid.New())
	b := hub.NewClient(uuid.New())
	hub.Join(a, RoomKey("7"))
	hub.Join(a, RoomKey("9"))
	hub.Join(b, RoomKey("7"))

	hub.RemoveClient(a)

	if n := hub.RoomSize(RoomKey("7")); n != 1 {
		t.Fatalf("room 7 size = %d, want 1", n)
	}
	if n := hub.RoomSize(RoomKey("9")); n != 0 {
		t.Fatalf("room 9 size = %d, want 0", n)
	}

	hub.Publish(RoomKey("7"), Event{Event: EventReceiveMessage})
	assertNoEvent(t, a)
	recvEvent(t, b)
}

func TestCloseClientIsIdempotent(t *testing.T) {
	hub := NewHub(mustTestLogger(t))

	c := hub.NewClient(uuid.New())
	hub.Join(c, RoomKey("1"))

	hub.CloseClient(c)
	hub.CloseClient(c)

	if n := hub.RoomSize(RoomKey("1")); n != 0 {
		t.Fatalf("room size after close = %d, want 0", n)
	}
	if _, open := <-c.Outbound; open {
		t.Fatal("Outbound still open after close")
	}

	// Publishing into a room the closed client left must not panic.
	hub.Publish(RoomKey("1"), Event{Event: EventReceiveMessage})
}

func TestFullOutboundBufferDropsNotBlocks(t *testing.T) {
	hub := NewHub(mustTestLogger(t))

	c := hub.NewClient(uuid.New())
	hub.Join(c, RoomKey("5"))

	for i := 0; i < cap(c.Outbound)+10; i++ {
		hub.Publish(RoomKey("5"), Event{Event: EventReceiveMessage})
	}

	drained := 0
	for {
		select {
		case <-c.Outbound:
			drained++
		default:
			if drained != cap(c.Outbound) {
				t.Fatalf("drained %d events, want %d", drained, cap(c.Outbound))
			}
			return
		}
	}
}

func TestHandleRemoteSkipsOwnTraffic(t *testing.T) {
	hub := NewHub(mustTestLogger(t))

	c := hub.NewClient(uuid.New())
	hub.Join(c, RoomKey("2"))

	hub.HandleRemote(Envelope{Origin: hub.ID(), Room: RoomKey("2"), Event: Event{Event: EventReceiveMessage}})
	assertNoEvent(t, c)

	hub.HandleRemote(Envelope{Origin: uuid.New(), Room: RoomKey("2"), Event: Event{Event: EventReceiveMessage}})
	recvEvent(t, c)
}

func TestPublishForwardsToRemote(t *testing.T) {
	hub := NewHub(mustTestLogger(t))

	var got []Envelope
	hub.SetRemotePublisher(func(env Envelope) error {
		got = append(got, env)
		return nil
	})

	hub.Publish(RoomKey("4"), Event{Event: EventReceiveMessage, Data: json.RawMessage(`"x"`)})

	if len(got) != 1 {
		t.Fatalf("remote publisher called %d times, want 1", len(got))
	}
	if got[0].Origin != hub.ID() {
		t.Fatalf("envelope origin = %s, want hub id %s", got[0].Origin, hub.ID())
	}
	if got[0].Room != RoomKey("4") {
		t.Fatalf("envelope room = %q, want %q", got[0].Room, RoomKey("4"))
	}
}

func TestRoomIDFromJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare string", `"42"`, "42"},
		{"padded string", `"  7 "`, "7"},
		{"bare number", `42`, "42"},
		{"object string", `{"courseId":"abc"}`, "abc"},
		{"object number", `{"courseId":9}`, "9"},
		{"object missing field", `{"content":"hi"}`, ""},
		{"empty", ``, ""},
		{"null", `null`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := roomIDFromJSON(json.RawMessage(tt.raw)); got != tt.want {
				t.Fatalf("roomIDFromJSON(%s) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
