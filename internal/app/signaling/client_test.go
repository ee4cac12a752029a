package signaling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"studyroom/internal/pkg/errs"
)

func TestInboundDispatch(t *testing.T) {
	r := NewRegistry()
	a := NewClient(r, nil, Session{ConnID: "A", UserID: "u1", RoomID: "room", Name: "Mina"}, nil)
	b := NewClient(r, nil, Session{ConnID: "B", UserID: "u2", RoomID: "room", Name: "Jisoo"}, nil)

	a.processInboundMessage([]byte(`{"type":"join","payload":{"room":"room"}}`))
	b.processInboundMessage([]byte(`{"type":"join"}`))
	drain(t, a)
	drain(t, b)

	a.processInboundMessage([]byte(`{"type":"signal","payload":{"to":"B","candidate":"x"}}`))
	a.processInboundMessage([]byte(`{"type":"message","payload":{"data":"hi"}}`))
	a.processInboundMessage([]byte(`{"type":"share-screen","payload":{"room":"room"}}`))
	a.processInboundMessage([]byte(`{"type":"stop-screen","payload":{"room":"room"}}`))

	assert.Equal(t, []EventType{EventSignal, EventMessage, EventScreenShared, EventScreenStopped}, types(drain(t, b)))
	assert.Equal(t, []EventType{EventMessage}, types(drain(t, a)))
}

func TestInboundRoomMismatch(t *testing.T) {
	r := NewRegistry()
	a := NewClient(r, nil, Session{ConnID: "A", UserID: "u1", RoomID: "room"}, nil)

	a.processInboundMessage([]byte(`{"type":"join","payload":{"room":"other"}}`))

	events := drain(t, a)
	require.Len(t, events, 1)
	assert.Equal(t, EventError, events[0].Type)
	assert.Equal(t, errs.ErrRoomMismatch, decode[ErrorPayload](t, events[0]).Code)
	assert.Equal(t, 0, r.RoomCount())
}

func TestInboundGarbageIsIgnored(t *testing.T) {
	r := NewRegistry()
	a := NewClient(r, nil, Session{ConnID: "A", UserID: "u1", RoomID: "room"}, nil)

	a.processInboundMessage([]byte(`not json`))
	a.processInboundMessage([]byte(`{"type":"teleport"}`))
	a.processInboundMessage([]byte(`{"type":"message","payload":"oops"}`))

	assert.Empty(t, drain(t, a))
	assert.Equal(t, 0, r.RoomCount())
}

func TestInboundRateLimit(t *testing.T) {
	r := NewRegistry()
	a := NewClient(r, nil, Session{ConnID: "A", UserID: "u1", RoomID: "room"}, rate.NewLimiter(rate.Limit(0.001), 1))

	a.processInboundMessage([]byte(`{"type":"join"}`))
	assert.Equal(t, []EventType{EventRoomState}, types(drain(t, a)))

	a.processInboundMessage([]byte(`{"type":"message","payload":{"data":"too fast"}}`))
	events := drain(t, a)
	require.Len(t, events, 1)
	assert.Equal(t, errs.ErrRateLimitExceeded, decode[ErrorPayload](t, events[0]).Code)
}

func TestCloseIsIdempotent(t *testing.T) {
	a := newTestClient("A", "u1", "room")

	a.Kick()
	a.Close(1001, "later")

	assert.Equal(t, WsCloseCodeSessionKicked, a.closeCode)
	assert.False(t, a.trySend([]byte(`{}`)))
}
