package jwt

import (
	"net/http/httptest"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(&Payload{UserID: "u1", RoomID: "r1", Name: "Kim"}, testSecret, time.Minute)
	require.NoError(t, err)

	payload, err := ParseToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "u1", payload.UserID)
	assert.Equal(t, "r1", payload.RoomID)
	assert.Equal(t, "Kim", payload.Name)
	assert.Equal(t, TokenIssuer, payload.Issuer)
	assert.NotEmpty(t, payload.Id)
	assert.WithinDuration(t, time.Now().Add(time.Minute), payload.ExpiresAtTime(), 2*time.Second)
}

func TestParseTokenRejects(t *testing.T) {
	valid, err := GenerateToken(&Payload{UserID: "u1", RoomID: "r1"}, testSecret, time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(valid, "other-secret")
	assert.Error(t, err, "wrong secret")

	expired, err := GenerateToken(&Payload{UserID: "u1", RoomID: "r1"}, testSecret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, testSecret)
	assert.Error(t, err, "expired")

	unbound, err := GenerateToken(&Payload{UserID: "u1"}, testSecret, time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(unbound, testSecret)
	assert.Error(t, err, "missing room claim")

	none := gojwt.NewWithClaims(gojwt.SigningMethodNone, &Payload{UserID: "u1", RoomID: "r1"})
	unsigned, err := none.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken(unsigned, testSecret)
	assert.Error(t, err, "alg none")
}

func TestLedgerConsumesOnce(t *testing.T) {
	l := NewLedger()
	defer l.Stop()

	exp := time.Now().Add(time.Minute)
	assert.True(t, l.Consume("jti-1", exp))
	assert.False(t, l.Consume("jti-1", exp))
	assert.True(t, l.Consume("jti-2", exp))

	assert.Equal(t, 0, l.sweep(time.Now()))
	assert.Equal(t, 2, l.sweep(exp.Add(time.Second)))
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws?token=from-query", nil)
	assert.Equal(t, "from-query", TokenFromRequest(r))

	r.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", TokenFromRequest(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "", TokenFromRequest(r))
}
