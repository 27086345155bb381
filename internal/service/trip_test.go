package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantName string
		wantTrip bool
	}{
		{"plain", "alice", "alice", false},
		{"trimmed", "  alice  ", "alice", false},
		{"with secret", "alice#secret", "alice", true},
		{"empty secret", "alice#", "alice", false},
		{"secret only", "#secret", "", true},
		{"extra delimiters stay in secret", "alice#a#b", "alice", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, trip := ParseName(tt.raw, "salt")
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantTrip, trip != "")
		})
	}
}

func TestParseNameSalted(t *testing.T) {
	_, a := ParseName("alice#secret", "salt-1")
	_, b := ParseName("alice#secret", "salt-1")
	_, c := ParseName("alice#secret", "salt-2")
	_, d := ParseName("bob#secret", "salt-1")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d, "trip depends on the name too")
}
