package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	var missing *User
	assert.Equal(t, UnknownName, missing.DisplayName())
	assert.Equal(t, UnknownName, (&User{ID: "u1", Name: "  "}).DisplayName())
	assert.Equal(t, "Jiwoo", (&User{ID: "u1", Name: "Jiwoo"}).DisplayName())
}
