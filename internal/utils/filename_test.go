package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		slug string
		want string
	}{
		{"drops path and shell characters", `how-to: "quote"/guide?`, "how-to quoteguide"},
		{"control whitespace becomes one space", "summer\tnews\r\n2020", "summer news 2020"},
		{"runs of spaces collapse", "trip   to    lisbon", "trip to lisbon"},
		{"slug punctuation survives", "hello-world_2020", "hello-world_2020"},
		{"dot segment falls back to the id", "..", "42"},
		{"empty slug falls back to the id", "", "42"},
		{"nothing usable falls back to the id", "<>|*", "42"},
		{"long slugs are cut", strings.Repeat("b", 260), strings.Repeat("b", 200)},
		{"decoded unicode slug is kept", "привет-мир", "привет-мир"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.slug, "42"))
		})
	}
}

func TestSanitizeFilename_TruncatesOnRuneBoundary(t *testing.T) {
	result := SanitizeFilename(strings.Repeat("ö", 150), "x")

	assert.True(t, utf8.ValidString(result))
	assert.LessOrEqual(t, len(result), 200)
}

func TestImageFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://site.test/wp-content/uploads/photo.PNG", "photo.PNG"},
		{"https://site.test/img/x.jpg?w=300#top", "x.jpg"},
		{"https://site.test/img/caf%C3%A9.png", "caf%C3%A9.png"},
		{"http://ex.com/my%20photo.jpg", "my%20photo.jpg"},
		{"https://site.test/img/a:b.png", "ab.png"},
		{"https://site.test/", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ImageFilename(tt.input))
		})
	}
}
