package jwt

import "github.com/golang-jwt/jwt"

// Payload is the claim set of a room session token. It binds one user to one room and is
// issued by the admission endpoint once the admission gate has accepted the pair.
type Payload struct {
	// StandardClaims carries exp, iat, iss and the token id (jti) used for one-shot consumption.
	jwt.StandardClaims

	// UserID is the application-level user identifier.
	UserID string `json:"uid"`

	// RoomID is the video chat room the holder may join.
	RoomID string `json:"room"`

	// Name is the display name resolved at admission time.
	Name string `json:"name,omitempty"`
}
