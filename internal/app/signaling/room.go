package signaling

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"studyroom/internal/pkg/logx"
)

// Room is the presence state of one video chat. All fields below mu are guarded by it;
// every join, leave and broadcast of the room runs under that lock, which linearizes the
// room's events without blocking other rooms.
type Room struct {
	ID string

	mu sync.Mutex

	// members counts joined connections; the room leaves the registry when it drops to 0.
	members int

	// participants maps a user id to that user's current connection id.
	participants map[string]string

	// conns is the set of joined connections, keyed by connection id.
	conns map[string]*Client

	// closed is set once the room has been removed from the registry. A join that
	// raced the removal must retry on a fresh room.
	closed bool

	logger zerolog.Logger
}

func newRoom(id string) *Room {
	return &Room{
		ID:           id,
		participants: make(map[string]string),
		conns:        make(map[string]*Client),
		logger:       logx.Logger().With().Str("room_id", id).Logger(),
	}
}

// hasLocked reports whether c is joined to the room.
func (r *Room) hasLocked(c *Client) bool {
	current, ok := r.conns[c.ConnID]
	return ok && current == c
}

// broadcastLocked queues msg for every joined connection except the one with id except.
func (r *Room) broadcastLocked(msg []byte, except string) int {
	sent := 0
	for id, c := range r.conns {
		if id == except {
			continue
		}
		if c.trySend(msg) {
			sent++
		}
	}
	return sent
}

// peerIDsLocked lists joined connection ids other than except, sorted.
func (r *Room) peerIDsLocked(except string) []string {
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		if id != except {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
