package logx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	cases := map[string]string{
		"203.0.113.57:4242":       "203.0.113.0",
		"203.0.113.57":            "203.0.113.0",
		"[::1]:80":                "127.0.0.1",
		"[2001:db8:1:2:3::9]:443": "2001:db8:1:2::",
		"not-an-ip":               "unknown_ip",
	}

	for in, want := range cases {
		assert.Equal(t, want, AnonymizeIP(in), in)
	}
}
