/*
Package handler provides HTTP handler functions for room admission and presence checks.
*/
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"studyroom/internal/pkg/auth/jwt"
	"studyroom/internal/pkg/errs"
	"studyroom/internal/pkg/logx"
	"studyroom/internal/pkg/req"
	"studyroom/internal/pkg/resp"
)

type AdmissionInput struct {
	UserID string `json:"userId"`
}

type AdmissionOutput struct {
	// Token is the one-shot session token for GET /ws.
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	StartsAt  time.Time `json:"startsAt"`
	ClosesAt  time.Time `json:"closesAt"`
}

// HandleAdmission runs the admission gate for a user and a room and, on success, issues a
// session token binding the two.
func HandleAdmission(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomID")

		var input AdmissionInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, customErr)
			return
		}

		adm, customErr := deps.Gate.Admit(r.Context(), roomID, input.UserID)
		if customErr != nil {
			resp.RespondError(w, customErr)
			return
		}

		payload := &jwt.Payload{
			UserID: adm.UserID,
			RoomID: adm.RoomID,
			Name:   adm.User.DisplayName(),
		}

		token, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, deps.Config.SessionTokenTTL)
		if err != nil {
			resp.RespondError(w, errs.NewError(errs.ErrUnknown, err))
			return
		}

		logx.Info("Admission granted", "room_id", adm.RoomID, "user_id", adm.UserID)

		resp.RespondSuccess(w, AdmissionOutput{
			Token:     token,
			ExpiresAt: payload.ExpiresAtTime(),
			StartsAt:  adm.StartsAt,
			ClosesAt:  adm.ClosesAt,
		})
	}
}

type PresenceOutput struct {
	RoomID  string `json:"roomId"`
	Members int    `json:"members"`
	Active  bool   `json:"active"`
}

// HandlePresence reports how many connections are currently joined to a room.
func HandlePresence(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomID")

		members, active := deps.Registry.Members(roomID)
		resp.RespondSuccess(w, PresenceOutput{
			RoomID:  roomID,
			Members: members,
			Active:  active,
		})
	}
}
