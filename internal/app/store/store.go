/*
Package store is the signaling server's view of the study application's database.

The study application owns these records; the signaling server only reads the scheduled
video chat rooms and the users that may enter them. Postgres, MongoDB and in-memory
backends implement the same Store contract.
*/
package store

import (
	"context"
	"errors"
	"fmt"

	"studyroom/internal/app/db"
	"studyroom/internal/app/user"
	"studyroom/internal/configs"
)

// ErrNotFound is returned when the requested room or user does not exist.
var ErrNotFound = errors.New("store: not found")

// Room is a scheduled video chat created when a study host confirms the participants.
type Room struct {
	ID string

	// StartDate is the scheduled start exactly as stored. It may be empty or malformed;
	// interpreting it is the admission gate's job.
	StartDate string

	// ParticipantIDs lists the confirmed participants and the host.
	ParticipantIDs []string
}

// HasParticipant reports whether userID is on the room's participant list.
func (r *Room) HasParticipant(userID string) bool {
	for _, id := range r.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Store is the read-only contract the signaling server needs from the study database.
type Store interface {
	// GetRoom returns the room with the given id or ErrNotFound.
	GetRoom(ctx context.Context, roomID string) (*Room, error)

	// GetUser returns the user with the given id or ErrNotFound.
	GetUser(ctx context.Context, userID string) (*user.User, error)

	// Close releases the backend's connections.
	Close(ctx context.Context) error
}

// Open connects the backend selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg *configs.AppConfig) (Store, error) {
	switch cfg.StoreDriver {
	case configs.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return NewPostgres(pool), nil

	case configs.StoreMongo:
		return NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)

	case configs.StoreMemory:
		return NewMemory(), nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
