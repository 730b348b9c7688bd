package strings

import (
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "short message unchanged",
			input:    "invalid_grant",
			maxLen:   20,
			expected: "invalid_grant",
		},
		{
			name:     "exact length unchanged",
			input:    "hello",
			maxLen:   5,
			expected: "hello",
		},
		{
			name:     "long message truncated",
			input:    "the authorization code has expired or was already used",
			maxLen:   22,
			expected: "the authorization c...",
		},
		{
			name:     "html error page collapsed",
			input:    "<html>\n  <body>\n\t<h1>502 Bad Gateway</h1>\n  </body>\n</html>",
			maxLen:   100,
			expected: "<html> <body> <h1>502 Bad Gateway</h1> </body> </html>",
		},
		{
			name:     "maxLen below minimum is clamped",
			input:    "abcdefgh",
			maxLen:   1,
			expected: "a...",
		},
		{
			name:     "empty string",
			input:    "",
			maxLen:   10,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Truncate(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}

func TestTruncate_RuneLength(t *testing.T) {
	input := "Fehler: Der Autorisierungscode ist ungültig ✗✗✗✗✗✗✗✗✗✗"
	result := Truncate(input, 30)

	if n := utf8.RuneCountInString(result); n != 30 {
		t.Errorf("expected 30 runes, got %d (%q)", n, result)
	}
	if !utf8.ValidString(result) {
		t.Errorf("result is not valid UTF-8: %q", result)
	}
}
