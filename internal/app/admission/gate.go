/*
Package admission decides whether a user may enter a study room's video chat right now.

A room may be entered from AdmitLead before its scheduled start until AdmitTail after it,
both bounds inclusive. Anything the gate cannot verify (unknown room or user, missing or
unreadable schedule, store failure) denies entry.
*/
package admission

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"studyroom/internal/app/store"
	"studyroom/internal/app/user"
	"studyroom/internal/pkg/errs"
	"studyroom/internal/pkg/logx"
	"studyroom/internal/pkg/randx"
)

// Default window around the scheduled start.
const (
	DefaultLead = 10 * time.Minute
	DefaultTail = 3 * time.Hour
)

// Admission is the session binding produced by a successful check.
type Admission struct {
	RoomID   string
	UserID   string
	User     *user.User
	StartsAt time.Time
	OpensAt  time.Time
	ClosesAt time.Time
}

// Gate performs the admission check against the study store.
type Gate struct {
	store  store.Store
	loc    *time.Location
	lead   time.Duration
	tail   time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// Option customizes a Gate.
type Option func(*Gate)

// WithWindow overrides the default lead and tail durations.
func WithWindow(lead, tail time.Duration) Option {
	return func(g *Gate) {
		g.lead = lead
		g.tail = tail
	}
}

// WithLocation sets the zone naive start dates are read in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(g *Gate) {
		if loc != nil {
			g.loc = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// NewGate builds a Gate reading from s.
func NewGate(s store.Store, opts ...Option) *Gate {
	g := &Gate{
		store:  s,
		loc:    time.UTC,
		lead:   DefaultLead,
		tail:   DefaultTail,
		now:    time.Now,
		logger: logx.Component("admission"),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Lead returns how long before the start the room opens.
func (g *Gate) Lead() time.Duration { return g.lead }

// Tail returns how long after the scheduled start a room keeps admitting users.
func (g *Gate) Tail() time.Duration { return g.tail }

// Window returns the inclusive admission bounds for a start time.
func (g *Gate) Window(start time.Time) (opens, closes time.Time) {
	return start.Add(-g.lead), start.Add(g.tail)
}

// Admit checks that roomID and userID exist and that the current time lies inside the
// room's admission window.
func (g *Gate) Admit(ctx context.Context, roomID, userID string) (*Admission, *errs.CustomError) {
	logger := g.logger.With().Str("room_id", roomID).Str("user_id", userID).Logger()

	if !randx.IsValidExternalID(roomID) || !randx.IsValidExternalID(userID) {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	room, err := g.store.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Info().Msg("Admission denied: room not found.")
			return nil, errs.NewError(errs.ErrRoomNotFound)
		}
		logger.Error().Err(err).Msg("Admission failed: room lookup error.")
		return nil, errs.NewError(errs.ErrStoreUnavailable)
	}

	u, err := g.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Info().Msg("Admission denied: user not found.")
			return nil, errs.NewError(errs.ErrUserNotFound)
		}
		logger.Error().Err(err).Msg("Admission failed: user lookup error.")
		return nil, errs.NewError(errs.ErrStoreUnavailable)
	}

	start, err := ParseSchedule(room.StartDate, g.loc)
	if err != nil {
		logger.Warn().Err(err).Str("start_date", room.StartDate).Msg("Admission denied: unreadable schedule.")
		return nil, errs.NewError(errs.ErrRoomScheduleInvalid)
	}

	now := g.now()
	opens, closes := g.Window(start)

	if now.Before(opens) {
		logger.Info().Time("opens_at", opens).Msg("Admission denied: room not open yet.")
		return nil, errs.NewError(errs.ErrRoomNotOpen, g.lead.String())
	}
	if now.After(closes) {
		logger.Info().Time("closed_at", closes).Msg("Admission denied: session over.")
		return nil, errs.NewError(errs.ErrRoomClosed)
	}

	if !room.HasParticipant(userID) {
		// Participant lists are informational; the study app decides who gets the link.
		logger.Debug().Msg("Admitted user is not on the room's participant list.")
	}

	return &Admission{
		RoomID:   roomID,
		UserID:   userID,
		User:     u,
		StartsAt: start,
		OpensAt:  opens,
		ClosesAt: closes,
	}, nil
}
