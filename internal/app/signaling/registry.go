/*
Package signaling tracks who is present in each study room and relays WebRTC signaling,
chat, and screen-share notices between the connections of one room.

Rooms are created on first join and removed when the last joined connection leaves. Each
room serializes its own events under a per-room lock; distinct rooms never contend.
*/
package signaling

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"studyroom/internal/pkg/errs"
	"studyroom/internal/pkg/logx"
)

// Registry is the process-wide map of live rooms.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	logger zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		logger: logx.Component("signaling"),
	}
}

func (r *Registry) lookup(roomID string) *Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[roomID]
}

func (r *Registry) getOrCreate(roomID string) *Room {
	if room := r.lookup(roomID); room != nil {
		return room
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		room = newRoom(roomID)
		r.rooms[roomID] = room
		r.logger.Info().Str("room_id", roomID).Msg("Room created")
	}
	return room
}

// remove drops room from the map unless it was already replaced.
// Callers hold room.mu; the lock order is room.mu before r.mu.
func (r *Registry) remove(room *Room) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.rooms[room.ID]; ok && current == room {
		delete(r.rooms, room.ID)
		r.logger.Info().Str("room_id", room.ID).Msg("Room removed")
	}
}

// Join adds c to its bound room. Existing occupants receive user-joined; c receives room-state.
// A connection that is already joined, or already closed, is left untouched and Join returns false.
//
// If the same user already holds a connection in the room, the newer connection takes the
// user's slot and the older one is kicked. The kicked connection still counts as a member
// until its own disconnect runs Leave.
func (r *Registry) Join(c *Client) bool {
	if c.closed() {
		return false
	}

	for {
		room := r.getOrCreate(c.RoomID)

		room.mu.Lock()
		if room.closed {
			room.mu.Unlock()
			continue
		}

		if _, ok := room.conns[c.ConnID]; ok {
			room.mu.Unlock()
			c.logger.Debug().Msg("Duplicate join ignored")
			return false
		}

		var replaced *Client
		if prevID, ok := room.participants[c.UserID]; ok && prevID != c.ConnID {
			replaced = room.conns[prevID]
		}

		room.participants[c.UserID] = c.ConnID
		room.conns[c.ConnID] = c
		room.members++

		if joined, err := encodeEvent(EventUserJoined, PeerPayload{UserID: c.ConnID}); err == nil {
			room.broadcastLocked(joined, c.ConnID)
		} else {
			c.logger.Error().Err(err).Msg("Failed to build user-joined event")
		}

		state := RoomStatePayload{UserID: c.ConnID, Peers: room.peerIDsLocked(c.ConnID)}
		if msg, err := encodeEvent(EventRoomState, state); err == nil {
			c.trySend(msg)
		} else {
			c.logger.Error().Err(err).Msg("Failed to build room-state event")
		}

		members := room.members
		room.mu.Unlock()

		c.logger.Info().Int("members", members).Msg("Client joined room")

		if replaced != nil {
			replaced.Kick()
		}
		return true
	}
}

// Leave removes c from its room. Remaining occupants receive user-left. When the last member
// leaves the room is removed and nothing is broadcast. Leave returns false when c was not joined.
func (r *Registry) Leave(c *Client) bool {
	room := r.lookup(c.RoomID)
	if room == nil {
		c.logger.Debug().Msg("Leave ignored: room not found")
		return false
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if !room.hasLocked(c) {
		c.logger.Debug().Msg("Leave ignored: connection not joined")
		return false
	}

	delete(room.conns, c.ConnID)
	if room.participants[c.UserID] == c.ConnID {
		delete(room.participants, c.UserID)
	}
	room.members--

	c.logger.Info().Int("members", room.members).Msg("Client left room")

	if room.members <= 0 {
		room.closed = true
		r.remove(room)
		return true
	}

	if left, err := encodeEvent(EventUserLeft, PeerPayload{UserID: c.ConnID}); err == nil {
		room.broadcastLocked(left, c.ConnID)
	} else {
		c.logger.Error().Err(err).Msg("Failed to build user-left event")
	}
	return true
}

// Relay forwards a signaling payload to the connection named by its "to" field, adding
// "from". Every other field passes through untouched. Payloads without a reachable target
// in the sender's room are dropped.
func (r *Registry) Relay(from *Client, payload json.RawMessage) bool {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(payload, &body); err != nil || body == nil {
		from.logger.Warn().Err(err).Msg("Client sent invalid signal payload")
		return false
	}

	var to string
	if err := json.Unmarshal(body["to"], &to); err != nil || to == "" {
		from.logger.Warn().Msg("Signal payload has no target")
		return false
	}

	fromID, err := json.Marshal(from.ConnID)
	if err != nil {
		return false
	}
	body["from"] = fromID

	msg, err := encodeEvent(EventSignal, body)
	if err != nil {
		from.logger.Error().Err(err).Msg("Failed to build signal event")
		return false
	}

	room := r.lookup(from.RoomID)
	if room == nil {
		from.logger.Debug().Msg("Signal dropped: sender's room not found")
		return false
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if !room.hasLocked(from) {
		from.logger.Debug().Msg("Signal dropped: sender not joined")
		return false
	}

	target, ok := room.conns[to]
	if !ok {
		from.logger.Debug().Str("to", to).Msg("Signal dropped: target not in room")
		return false
	}
	return target.trySend(msg)
}

// Chat delivers text to every occupant of the sender's room, the sender included, labeled
// with the sender's display name. Oversized text is rejected with an error to the sender only.
func (r *Registry) Chat(from *Client, text string) bool {
	if len(text) > MaxContentBytes {
		from.SendError(errs.NewError(errs.ErrMessageContentTooLong))
		return false
	}

	msg, err := encodeEvent(EventMessage, ChatOutPayload{Name: from.Name, Message: text})
	if err != nil {
		from.logger.Error().Err(err).Msg("Failed to build message event")
		return false
	}

	return r.broadcastFrom(from, msg, "")
}

// Screen tells the other occupants that the sender started or stopped sharing its screen.
func (r *Registry) Screen(from *Client, started bool) bool {
	eventType := EventScreenStopped
	if started {
		eventType = EventScreenShared
	}

	msg, err := encodeEvent(eventType, PeerPayload{UserID: from.ConnID})
	if err != nil {
		from.logger.Error().Err(err).Msg("Failed to build screen event")
		return false
	}

	return r.broadcastFrom(from, msg, from.ConnID)
}

func (r *Registry) broadcastFrom(from *Client, msg []byte, except string) bool {
	room := r.lookup(from.RoomID)
	if room == nil {
		return false
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if !room.hasLocked(from) {
		from.logger.Debug().Msg("Broadcast dropped: sender not joined")
		return false
	}

	room.broadcastLocked(msg, except)
	return true
}

// Members returns the number of joined connections in a room and whether the room is live.
func (r *Registry) Members(roomID string) (int, bool) {
	room := r.lookup(roomID)
	if room == nil {
		return 0, false
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed {
		return 0, false
	}
	return room.members, true
}

// RoomCount returns the number of live rooms.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Shutdown closes every joined connection. Rooms empty out as their read pumps exit.
func (r *Registry) Shutdown() {
	r.mu.RLock()
	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.RUnlock()

	var clients []*Client
	for _, room := range rooms {
		room.mu.Lock()
		for _, c := range room.conns {
			clients = append(clients, c)
		}
		room.mu.Unlock()
	}

	for _, c := range clients {
		c.Close(websocket.CloseGoingAway, "server shutting down")
	}

	r.logger.Info().Int("rooms", len(rooms)).Int("clients", len(clients)).Msg("Signaling registry shut down")
}
