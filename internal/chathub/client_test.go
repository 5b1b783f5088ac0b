package chathub

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

// newFrameClient wires a client for handleFrame tests without a websocket.
func newFrameClient(t *testing.T, hub *Hub, sink MessageSink) *Client {
	t.Helper()
	c := hub.NewClient(uuid.New())
	c.log = hub.log
	c.sink = sink
	return c
}

func TestHandleFrameJoinThenSend(t *testing.T) {
	hub := NewHub(mustTestLogger(t))

	var sunk []string
	sink := func(senderID uuid.UUID, roomCourseID string, payload json.RawMessage) error {
		sunk = append(sunk, roomCourseID)
		return nil
	}

	sender := newFrameClient(t, hub, sink)
	listener := newFrameClient(t, hub, nil)

	sender.handleFrame(Event{Event: EventJoinCourse, Data: json.RawMessage(`{"courseId":"7"}`)})
	listener.handleFrame(Event{Event: EventJoinCourse, Data: json.RawMessage(`"7"`)})
	if n := hub.RoomSize(RoomKey("7")); n != 2 {
		t.Fatalf("room size = %d, want 2", n)
	}

	payload := json.RawMessage(`{"courseId":"7","content":"hello"}`)
	sender.handleFrame(Event{Event: EventSendMessage, Data: payload})

	got := recvEvent(t, listener)
	if got.Event != EventReceiveMessage {
		t.Fatalf("event = %q, want %q", got.Event, EventReceiveMessage)
	}
	if string(got.Data) != string(payload) {
		t.Fatalf("payload altered in transit: %s", got.Data)
	}
	if len(sunk) != 1 || sunk[0] != "7" {
		t.Fatalf("sink calls = %v, want one for course 7", sunk)
	}

	// The sender's own connection gets the broadcast too.
	recvEvent(t, sender)
}

func TestHandleFrameSinkErrorStillBroadcasts(t *testing.T) {
	hub := NewHub(mustTestLogger(t))

	sink := func(senderID uuid.UUID, roomCourseID string, payload json.RawMessage) error {
		return fmt.Errorf("database down")
	}
	sender := newFrameClient(t, hub, sink)
	sender.handleFrame(Event{Event: EventJoinCourse, Data: json.RawMessage(`"1"`)})

	sender.handleFrame(Event{Event: EventSendMessage, Data: json.RawMessage(`{"courseId":"1","content":"x"}`)})
	recvEvent(t, sender)
}

func TestHandleFrameIgnoresUnroutableAndUnknown(t *testing.T) {
	hub := NewHub(mustTestLogger(t))

	sinkCalled := false
	sink := func(senderID uuid.UUID, roomCourseID string, payload json.RawMessage) error {
		sinkCalled = true
		return nil
	}
	c := newFrameClient(t, hub, sink)
	c.handleFrame(Event{Event: EventJoinCourse, Data: json.RawMessage(`"9"`)})

	c.handleFrame(Event{Event: EventSendMessage, Data: json.RawMessage(`{"content":"no room"}`)})
	c.handleFrame(Event{Event: EventJoinCourse, Data: json.RawMessage(`""`)})
	c.handleFrame(Event{Event: "presence_ping", Data: nil})

	if sinkCalled {
		t.Fatal("sink called for a message with no resolvable room")
	}
	assertNoEvent(t, c)
	if n := hub.RoomSize(RoomKey("")); n != 0 {
		t.Fatalf("blank room has %d members, want 0", n)
	}
}
