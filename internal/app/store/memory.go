package store

import (
	"context"
	"sync"

	"studyroom/internal/app/user"
)

// Memory is a map-backed Store for tests and local development.
type Memory struct {
	mu    sync.RWMutex
	rooms map[string]Room
	users map[string]user.User
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		rooms: make(map[string]Room),
		users: make(map[string]user.User),
	}
}

// PutRoom inserts or replaces a room.
func (m *Memory) PutRoom(r Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ParticipantIDs = append([]string(nil), r.ParticipantIDs...)
	m.rooms[r.ID] = r
}

// PutUser inserts or replaces a user.
func (m *Memory) PutUser(u user.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *Memory) GetRoom(_ context.Context, roomID string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	r.ParticipantIDs = append([]string(nil), r.ParticipantIDs...)
	return &r, nil
}

func (m *Memory) GetUser(_ context.Context, userID string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) Close(context.Context) error { return nil }
