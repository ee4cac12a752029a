package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studyroom/internal/app/user"
)

const (
	selectRoomSQL = `SELECT id, start_date, user_ids FROM video_chat WHERE id = $1`
	selectUserSQL = `SELECT id, name, email FROM users WHERE id = $1`
)

// Postgres reads rooms and users from the tables created by the db migrations.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an open pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) GetRoom(ctx context.Context, roomID string) (*Room, error) {
	var (
		room      Room
		startDate *string
	)

	err := p.pool.QueryRow(ctx, selectRoomSQL, roomID).Scan(&room.ID, &startDate, &room.ParticipantIDs)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query video_chat %s: %w", roomID, err)
	}

	if startDate != nil {
		room.StartDate = *startDate
	}

	return &room, nil
}

func (p *Postgres) GetUser(ctx context.Context, userID string) (*user.User, error) {
	var u user.User

	err := p.pool.QueryRow(ctx, selectUserSQL, userID).Scan(&u.ID, &u.Name, &u.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query users %s: %w", userID, err)
	}

	return &u, nil
}

func (p *Postgres) Close(context.Context) error {
	p.pool.Close()
	return nil
}
