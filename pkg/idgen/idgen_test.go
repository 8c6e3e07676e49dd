package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFormat(t *testing.T) {
	code := New(PrefixAppointment)
	parts := strings.Split(code, "-")
	assert.Len(t, parts, 3)
	assert.Equal(t, PrefixAppointment, parts[0])
	assert.Len(t, parts[1], 14)
	assert.Len(t, parts[2], 4)
}

func TestNewUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code := New(PrefixBill)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}
