package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"

	"studyroom/internal/pkg/randx"
)

// TokenIssuer identifies the issuer of the token.
const TokenIssuer = "StudyRoom-Signaling"

// GenerateToken signs payload with HS256 after stamping a fresh token id, issue time and expiry.
func GenerateToken(payload *Payload, secretKey string, duration time.Duration) (string, error) {
	now := time.Now()

	payload.StandardClaims = jwt.StandardClaims{
		Id:        randx.TokenID(),
		ExpiresAt: now.Add(duration).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    TokenIssuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)

	return token.SignedString([]byte(secretKey))
}

// ParseToken verifies the signature and standard claims of tokenString.
func ParseToken(tokenString string, secretKey string) (*Payload, error) {
	claims := &Payload{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	if claims.Id == "" || claims.UserID == "" || claims.RoomID == "" {
		return nil, errors.New("token is missing session claims")
	}

	return claims, nil
}

// ExpiresAtTime returns the expiry claim as a time.Time.
func (p *Payload) ExpiresAtTime() time.Time {
	return time.Unix(p.ExpiresAt, 0)
}
