/*
Package user defines the identity of a study participant as the signaling server sees it.
*/
package user

import "strings"

// UnknownName is shown for users whose display name cannot be resolved.
const UnknownName = "Unknown"

// User is a participant record from the user store.
type User struct {
	// ID is the application-level user identifier issued by the OAuth login.
	ID string `json:"id"`

	// Name is the display name shown in chat.
	Name string `json:"name"`

	Email string `json:"email,omitempty"`
}

// DisplayName returns the user's name, or UnknownName for a nil user or a blank name.
func (u *User) DisplayName() string {
	if u == nil || strings.TrimSpace(u.Name) == "" {
		return UnknownName
	}
	return u.Name
}
