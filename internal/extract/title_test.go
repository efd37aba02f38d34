package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "buy milk", want: "Buy milk"},
		{in: "- - call plumber", want: "Call plumber"},
		{in: "• water plants •", want: "Water plants"},
		{in: "*** pay rent ***", want: "Pay rent"},
		{in: "clean   the\t\tgarage", want: "Clean the garage"},
		{in: "  -*•  ", want: ""},
		{in: "", want: ""},
		{in: "éclair tasting", want: "Éclair tasting"},
		{in: "42 boxes", want: "42 boxes"},
		{in: "well-known issue", want: "Well-known issue"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sanitizeTitle(tt.in))
		})
	}
}

func TestSnippet(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", snippet("short", SnippetLength))
	assert.Equal(t, strings.Repeat("é", 80), snippet(strings.Repeat("é", 100), SnippetLength))
}
