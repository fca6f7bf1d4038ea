package callurl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAugment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"no query", "https://x/y", "https://x/y?videocallUser=mobile"},
		{"existing query", "https://x/y?room=7", "https://x/y?room=7&videocallUser=mobile"},
		{"already tagged", "https://x/y?videocallUser=desktop", "https://x/y?videocallUser=desktop"},
		{"tagged among others", "https://x/y?a=1&videocallUser=mobile&b=2", "https://x/y?a=1&videocallUser=mobile&b=2"},
		{"trailing question mark", "https://x/y?", "https://x/y?videocallUser=mobile"},
		{"fragment kept last", "https://x/y#lobby", "https://x/y?videocallUser=mobile#lobby"},
		{"marker in fragment only", "https://x/y#videocallUser=mobile", "https://x/y?videocallUser=mobile#videocallUser=mobile"},
		{"similar key is not the marker", "https://x/y?videocallUserId=3", "https://x/y?videocallUserId=3&videocallUser=mobile"},
	}

	a := New(DefaultMarker)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Augment(tt.in))
		})
	}
}

func TestAugment_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"https://meet.example.com/r/abc",
		"https://meet.example.com/r/abc?token=1",
		"https://meet.example.com/r/abc?token=1#x",
		"https://meet.example.com/r/abc?",
		"not a url at all",
	}
	a := New("kiosk")
	for _, in := range inputs {
		once := a.Augment(in)
		assert.Equal(t, once, a.Augment(once), "Augment(%q) twice", in)
		if in != "" {
			assert.Equal(t, 1, strings.Count(once, Param+"="), "Augment(%q) = %q", in, once)
		}
	}
}

func TestNew_DefaultsAndEscapesMarker(t *testing.T) {
	assert.Equal(t, DefaultMarker, New("  ").Marker())
	assert.Equal(t, "https://x/y?videocallUser=front+desk", New("front desk").Augment("https://x/y"))

	var zero Augmenter
	assert.Equal(t, "https://x/y?videocallUser=mobile", zero.Augment("https://x/y"))
}
