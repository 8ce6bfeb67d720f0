package validation

import (
	"strings"
	"testing"
)

func TestValidRating(t *testing.T) {
	for rating, want := range map[int]bool{
		0: false, 1: true, 3: true, 5: true, 6: false, -2: false,
	} {
		if got := ValidRating(rating); got != want {
			t.Errorf("ValidRating(%d) = %v, want %v", rating, got, want)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"trims whitespace", "  hello  ", 100, "hello"},
		{"strips null bytes", "he\x00llo", 100, "hello"},
		{"caps length", strings.Repeat("a", 50), 10, strings.Repeat("a", 10)},
		{"empty passes through", "", 100, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeString(tt.in, tt.maxLen); got != tt.want {
				t.Errorf("SanitizeString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
			}
		})
	}
}
