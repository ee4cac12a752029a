/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which is responsible for rate limiting, validating
the session token, re-running the admission gate, upgrading the HTTP connection to WebSocket, and
initiating the client lifecycle.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"studyroom/internal/app/signaling"
	"studyroom/internal/pkg/auth/jwt"
	"studyroom/internal/pkg/errs"
	"studyroom/internal/pkg/limiter"
	"studyroom/internal/pkg/logx"
	"studyroom/internal/pkg/randx"
	"studyroom/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !deps.ConnectLimiter.Allow(r) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "remote_ip", logx.AnonymizeIP(ip))
			resp.RespondError(w, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		tokenString := jwt.TokenFromRequest(r)
		if tokenString == "" {
			logx.Warn("WebSocket request rejected: Missing session token")
			resp.RespondError(w, errs.NewError(errs.ErrSessionInvalid))
			return
		}

		payload, err := jwt.ParseToken(tokenString, deps.Config.JWTSecret)
		if err != nil {
			logx.Info("WebSocket request rejected: Invalid session token", "reason", err.Error())
			resp.RespondError(w, errs.NewError(errs.ErrSessionInvalid))
			return
		}

		if !deps.Ledger.Consume(payload.Id, payload.ExpiresAtTime()) {
			logx.Warn("WebSocket request rejected: Session token replayed", "room_id", payload.RoomID, "user_id", payload.UserID)
			resp.RespondError(w, errs.NewError(errs.ErrSessionInvalid))
			return
		}

		// The window may have closed since the token was issued.
		adm, customErr := deps.Gate.Admit(r.Context(), payload.RoomID, payload.UserID)
		if customErr != nil {
			resp.RespondError(w, customErr)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		session := signaling.Session{
			ConnID: randx.ConnID(),
			UserID: adm.UserID,
			RoomID: adm.RoomID,
			Name:   adm.User.DisplayName(),
		}
		client := signaling.NewClient(deps.Registry, conn, session, deps.messageLimiter())

		go client.WritePump()

		logx.Info("WebSocket connection established", "conn_id", session.ConnID, "room_id", session.RoomID, "user_id", session.UserID)

		client.ReadPump()
	}
}
