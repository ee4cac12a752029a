/*
Package randx generates identifiers for transient server objects and validates the opaque
identifiers supplied by clients.
*/
package randx

import (
	"unicode"

	"github.com/google/uuid"
)

// MaxExternalIDLength bounds room and user ids accepted from clients.
const MaxExternalIDLength = 128

// ConnID generates a UUID v4 identifying one websocket connection.
func ConnID() string {
	return uuid.New().String()
}

// TokenID generates a UUID v4 used as the jti of a session token.
func TokenID() string {
	return uuid.New().String()
}

// IsValidExternalID reports whether id is usable as an opaque room or user identifier:
// non-empty, at most MaxExternalIDLength bytes, printable and without spaces or slashes.
func IsValidExternalID(id string) bool {
	if id == "" || len(id) > MaxExternalIDLength {
		return false
	}

	for _, r := range id {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) || r == '/' {
			return false
		}
	}

	return true
}
