package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyroom/internal/app/admission"
	"studyroom/internal/app/signaling"
	"studyroom/internal/app/store"
	"studyroom/internal/app/user"
	"studyroom/internal/configs"
	"studyroom/internal/pkg/auth/jwt"
	"studyroom/internal/pkg/errs"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestDeps(t *testing.T, now time.Time) *AppDeps {
	t.Helper()

	s := store.NewMemory()
	s.PutRoom(store.Room{ID: "study-1", StartDate: "2025-01-10T10:00", ParticipantIDs: []string{"u1", "u2"}})
	s.PutUser(user.User{ID: "u1", Name: "Mina"})
	s.PutUser(user.User{ID: "u2", Name: ""})

	cfg := &configs.AppConfig{
		Environment:     "development",
		JWTSecret:       "test-secret",
		SessionTokenTTL: 5 * time.Minute,
		ConnectRate:     100,
		ConnectBurst:    100,
		MessageRate:     100,
		MessageBurst:    100,
	}

	gate := admission.NewGate(s, admission.WithLocation(time.UTC), admission.WithClock(func() time.Time { return now }))
	deps := NewAppDeps(cfg, signaling.NewRegistry(), gate, jwt.NewLedger())
	t.Cleanup(deps.Close)
	return deps
}

func duringSession() time.Time { return time.Date(2025, 1, 10, 10, 30, 0, 0, time.UTC) }

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	r := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func admit(t *testing.T, h http.Handler, userID string) AdmissionOutput {
	t.Helper()

	w, env := doJSON(t, h, http.MethodPost, "/api/rooms/study-1/admission", `{"userId":"`+userID+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, 0, env.Code)

	var out AdmissionOutput
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestHealth(t *testing.T) {
	h := Router(newTestDeps(t, duringSession()))

	w, env := doJSON(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Code)
}

func TestAdmissionIssuesSessionToken(t *testing.T) {
	deps := newTestDeps(t, duringSession())
	h := Router(deps)

	out := admit(t, h, "u1")
	assert.Equal(t, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), out.StartsAt.UTC())
	assert.Equal(t, time.Date(2025, 1, 10, 13, 0, 0, 0, time.UTC), out.ClosesAt.UTC())

	payload, err := jwt.ParseToken(out.Token, deps.Config.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "u1", payload.UserID)
	assert.Equal(t, "study-1", payload.RoomID)
	assert.Equal(t, "Mina", payload.Name)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), out.ExpiresAt, 5*time.Second)
}

func TestAdmissionRejections(t *testing.T) {
	tests := []struct {
		name       string
		now        time.Time
		path       string
		body       string
		wantStatus int
		wantCode   int
	}{
		{"too early", time.Date(2025, 1, 10, 9, 49, 59, 0, time.UTC), "/api/rooms/study-1/admission", `{"userId":"u1"}`, http.StatusForbidden, errs.ErrRoomNotOpen},
		{"too late", time.Date(2025, 1, 10, 13, 0, 1, 0, time.UTC), "/api/rooms/study-1/admission", `{"userId":"u1"}`, http.StatusForbidden, errs.ErrRoomClosed},
		{"unknown room", duringSession(), "/api/rooms/nope/admission", `{"userId":"u1"}`, http.StatusNotFound, errs.ErrRoomNotFound},
		{"unknown user", duringSession(), "/api/rooms/study-1/admission", `{"userId":"ghost"}`, http.StatusNotFound, errs.ErrUserNotFound},
		{"missing user", duringSession(), "/api/rooms/study-1/admission", `{}`, http.StatusBadRequest, errs.ErrInvalidParams},
		{"unknown field", duringSession(), "/api/rooms/study-1/admission", `{"userId":"u1","role":"admin"}`, http.StatusBadRequest, errs.ErrInvalidJSONFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Router(newTestDeps(t, tt.now))

			w, env := doJSON(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, env.Code)
		})
	}
}

func TestAdmissionRequiresJSON(t *testing.T) {
	h := Router(newTestDeps(t, duringSession()))

	r := httptest.NewRequest(http.MethodPost, "/api/rooms/study-1/admission", strings.NewReader("userId=u1"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestPresenceOfIdleRoom(t *testing.T) {
	h := Router(newTestDeps(t, duringSession()))

	_, env := doJSON(t, h, http.MethodGet, "/api/rooms/study-1/presence", "")

	var out PresenceOutput
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, PresenceOutput{RoomID: "study-1", Members: 0, Active: false}, out)
}

func TestWebSocketRejectsBadTokens(t *testing.T) {
	deps := newTestDeps(t, duringSession())
	h := Router(deps)

	w, env := doJSON(t, h, http.MethodGet, "/ws", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, errs.ErrSessionInvalid, env.Code)

	w, _ = doJSON(t, h, http.MethodGet, "/ws?token=garbage", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	forged, err := jwt.GenerateToken(&jwt.Payload{UserID: "u1", RoomID: "study-1"}, "other-secret", time.Minute)
	require.NoError(t, err)
	w, _ = doJSON(t, h, http.MethodGet, "/ws?token="+forged, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func dial(t *testing.T, srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

func readEvent(t *testing.T, conn *websocket.Conn) signaling.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var env signaling.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestWebSocketSession(t *testing.T) {
	deps := newTestDeps(t, duringSession())
	h := Router(deps)
	srv := httptest.NewServer(h)
	defer srv.Close()

	tokenA := admit(t, h, "u1").Token
	tokenB := admit(t, h, "u2").Token

	a, _, err := dial(t, srv, tokenA)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.WriteJSON(map[string]any{"type": "join", "payload": map[string]string{"room": "study-1"}}))
	stateA := readEvent(t, a)
	require.Equal(t, signaling.EventRoomState, stateA.Type)

	var selfA signaling.RoomStatePayload
	require.NoError(t, json.Unmarshal(stateA.Payload, &selfA))
	assert.Empty(t, selfA.Peers)

	b, _, err := dial(t, srv, tokenB)
	require.NoError(t, err)

	require.NoError(t, b.WriteJSON(map[string]any{"type": "join", "payload": map[string]string{"room": "study-1"}}))
	stateB := readEvent(t, b)
	var selfB signaling.RoomStatePayload
	require.NoError(t, json.Unmarshal(stateB.Payload, &selfB))
	assert.Equal(t, []string{selfA.UserID}, selfB.Peers)

	joined := readEvent(t, a)
	require.Equal(t, signaling.EventUserJoined, joined.Type)
	var peer signaling.PeerPayload
	require.NoError(t, json.Unmarshal(joined.Payload, &peer))
	assert.Equal(t, selfB.UserID, peer.UserID)

	_, env := doJSON(t, h, http.MethodGet, "/api/rooms/study-1/presence", "")
	var presence PresenceOutput
	require.NoError(t, json.Unmarshal(env.Data, &presence))
	assert.Equal(t, 2, presence.Members)
	assert.True(t, presence.Active)

	// A session token opens exactly one connection.
	_, res, err := dial(t, srv, tokenA)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	require.NoError(t, b.WriteJSON(map[string]any{"type": "signal", "payload": map[string]string{"to": selfA.UserID, "sdp": "offer"}}))
	sig := readEvent(t, a)
	require.Equal(t, signaling.EventSignal, sig.Type)
	var relayed map[string]string
	require.NoError(t, json.Unmarshal(sig.Payload, &relayed))
	assert.Equal(t, map[string]string{"to": selfA.UserID, "from": selfB.UserID, "sdp": "offer"}, relayed)

	require.NoError(t, b.WriteJSON(map[string]any{"type": "message", "payload": map[string]string{"data": "hello"}}))
	for _, conn := range []*websocket.Conn{a, b} {
		msg := readEvent(t, conn)
		require.Equal(t, signaling.EventMessage, msg.Type)
		var chat signaling.ChatOutPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &chat))
		assert.Equal(t, signaling.ChatOutPayload{Name: user.UnknownName, Message: "hello"}, chat)
	}

	require.NoError(t, b.Close())
	left := readEvent(t, a)
	require.Equal(t, signaling.EventUserLeft, left.Type)
	require.NoError(t, json.Unmarshal(left.Payload, &peer))
	assert.Equal(t, selfB.UserID, peer.UserID)

	assert.Eventually(t, func() bool {
		members, _ := deps.Registry.Members("study-1")
		return members == 1
	}, 2*time.Second, 10*time.Millisecond)
}
