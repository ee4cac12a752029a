package signaling

import "encoding/json"

// EventType names a websocket event. Client and server share the same envelope:
// {"type": "...", "payload": {...}}.
type EventType string

// Client → server events.
const (
	EventJoin        EventType = "join"
	EventSignal      EventType = "signal"
	EventMessage     EventType = "message"
	EventShareScreen EventType = "share-screen"
	EventStopScreen  EventType = "stop-screen"
)

// Server → client events. EventSignal and EventMessage are used in both directions.
const (
	EventUserJoined    EventType = "user-joined"
	EventUserLeft      EventType = "user-left"
	EventScreenShared  EventType = "screen-shared"
	EventScreenStopped EventType = "screen-stopped"
	EventRoomState     EventType = "room-state"
	EventError         EventType = "error"
)

// Envelope is the wire frame of every event.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RoomPayload is sent with join, share-screen and stop-screen.
type RoomPayload struct {
	Room string `json:"room"`
}

// ChatInPayload is the body of an inbound chat message.
type ChatInPayload struct {
	Data string `json:"data"`
}

// ChatOutPayload is the body of a chat message delivered to room occupants.
type ChatOutPayload struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// PeerPayload names a connection in presence and screen-share events.
type PeerPayload struct {
	UserID string `json:"userId"`
}

// RoomStatePayload tells a freshly joined connection its own id and who is already there.
type RoomStatePayload struct {
	UserID string   `json:"userId"`
	Peers  []string `json:"peers"`
}

// ErrorPayload reports a rejected request to its sender.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// encodeEvent marshals an envelope carrying payload.
func encodeEvent(t EventType, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: t, Payload: body})
}
