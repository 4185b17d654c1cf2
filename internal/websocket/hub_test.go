package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient builds a client without a live connection; pumps are not
// started so messages accumulate in the Send channel.
func testClient(id, room string) *Client {
	return NewClient(id, "voter-"+id, room, nil)
}

func drain(t *testing.T, c *Client) OutgoingMessage {
	t.Helper()
	select {
	case raw := <-c.Send:
		var msg OutgoingMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message in Send channel")
		return OutgoingMessage{}
	}
}

func TestHub_RegisterAnnouncesJoin(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	first := testClient("c1", "ABC123")
	hub.Register("ABC123", first)

	second := testClient("c2", "ABC123")
	hub.Register("ABC123", second)

	msg := drain(t, first)
	assert.Equal(t, EventUserJoined, msg.Type)
	assert.Equal(t, "ABC123", msg.RoomCode)
	assert.EqualValues(t, 2, msg.Data["participant_count"])

	// the joiner gets no echo of its own arrival
	assert.Empty(t, second.Send)
}

func TestHub_RegisterNormalizesCode(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	c := testClient("c1", "")
	hub.Register("abc123", c)

	assert.Equal(t, "ABC123", c.RoomCode)

	clients := hub.GetRoomClients("ABC123")
	assert.Len(t, clients, 1)
}

func TestHub_BroadcastToRoom(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	a := testClient("a", "ROOM01")
	b := testClient("b", "ROOM01")
	other := testClient("x", "OTHER1")

	hub.Register("ROOM01", a)
	hub.Register("ROOM01", b)
	hub.Register("OTHER1", other)

	// clear the join announcement delivered to a
	drain(t, a)

	hub.BroadcastToRoom("ROOM01", NewEvent(EventNewQuestion, map[string]any{
		"question": map[string]any{"id": "q1"},
	}))

	for _, c := range []*Client{a, b} {
		msg := drain(t, c)
		assert.Equal(t, EventNewQuestion, msg.Type)
		assert.Equal(t, "ROOM01", msg.RoomCode)
		assert.NotZero(t, msg.Timestamp)
	}

	assert.Empty(t, other.Send, "broadcast must not leak into other rooms")
}

func TestHub_BroadcastToRoomExcept(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	a := testClient("a", "ROOM01")
	b := testClient("b", "ROOM01")
	hub.Register("ROOM01", a)
	hub.Register("ROOM01", b)
	drain(t, a)

	hub.BroadcastToRoomExcept("ROOM01", b, NewEvent(EventQuestionApproval, map[string]any{
		"questionId": "q1",
	}))

	msg := drain(t, a)
	assert.Equal(t, EventQuestionApproval, msg.Type)
	assert.Empty(t, b.Send)
}

func TestHub_UnregisterAnnouncesLeave(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	a := testClient("a", "ROOM01")
	b := testClient("b", "ROOM01")
	hub.Register("ROOM01", a)
	hub.Register("ROOM01", b)
	drain(t, a)

	hub.Unregister("ROOM01", b)

	msg := drain(t, a)
	assert.Equal(t, EventUserLeft, msg.Type)
	assert.EqualValues(t, 1, msg.Data["participant_count"])

	// second unregister is a no-op
	hub.Unregister("ROOM01", b)
	assert.Empty(t, a.Send)
}

func TestHub_Stats(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	hub.Register("ROOM01", testClient("a", "ROOM01"))
	hub.Register("ROOM01", testClient("b", "ROOM01"))
	hub.Register("ROOM02", testClient("c", "ROOM02"))

	stats := hub.GetHubStats()
	assert.Equal(t, 2, stats["room_count"])
	assert.Equal(t, 3, stats["client_count"])

	roomStats := hub.GetRoomStats("room01")
	assert.Equal(t, "ROOM01", roomStats["room_code"])
	assert.Equal(t, 2, roomStats["client_count"])
}

func TestHub_SlowConsumerIsSkipped(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	slow := testClient("slow", "ROOM01")
	hub.Register("ROOM01", slow)

	// fill the buffer
	for i := 0; i < cap(slow.Send); i++ {
		slow.Send <- []byte("{}")
	}

	// must not block
	done := make(chan struct{})
	go func() {
		hub.BroadcastToRoom("ROOM01", NewEvent(EventUserJoined, nil))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow consumer")
	}
}
