package simplepublish_test

import (
	"testing"

	"github.com/simplepub/simple-publish/pkg/simplepublish"
	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple title", "Hello World", "hello-world"},
		{"punctuation collapses", "Hello,  World!!", "hello-world"},
		{"mixed case and digits", "Q3 2025 Report", "q3-2025-report"},
		{"leading and trailing junk", "--My Post--", "my-post"},
		{"underscores become hyphens", "my_post_title", "my-post-title"},
		{"unicode stripped", "café résumé", "caf-r-sum"},
		{"all punctuation", "!!!???", ""},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"already a slug", "already-a-slug", "already-a-slug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, simplepublish.Slugify(tt.input))
		})
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	inputs := []string{"Hello, World!", "Q3 2025 Report", "--My Post--", "plain"}

	for _, input := range inputs {
		once := simplepublish.Slugify(input)
		assert.Equal(t, once, simplepublish.Slugify(once), "Slugify must be idempotent for %q", input)
	}
}

func TestSlugifyAlphabet(t *testing.T) {
	// The output alphabet is lowercase letters, digits, and interior hyphens.
	out := simplepublish.Slugify("A!b@C#1$2%3 éü_")
	for _, r := range out {
		valid := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
		assert.True(t, valid, "unexpected rune %q in slug %q", r, out)
	}
	assert.NotEmpty(t, out)
	assert.NotEqual(t, byte('-'), out[0])
	assert.NotEqual(t, byte('-'), out[len(out)-1])
}
