package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+15551234567", "+15551234567"},
		{"15551234567", "+15551234567"},
		{"(555) 123-4567", "+5551234567"},
		{" +1 555 123 4567 ", "+15551234567"},
		{"", ""},
		{"no digits here", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeE164(tt.in), "input: %q", tt.in)
	}
}
