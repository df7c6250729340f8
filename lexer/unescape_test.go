package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnescape(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		// Escape-free strings are returned unchanged.
		{"", ""},
		{"plain", "plain"},
		{"日本語 no escapes", "日本語 no escapes"},

		// String escapes.
		{"a\\tb", "a\tb"},
		{"a\\nb", "a\nb"},
		{"a\\rb", "a\rb"},
		{"a\\bb", "a\bb"},
		{"a\\fb", "a\fb"},
		{"\\\"quoted\\\"", "\"quoted\""},
		{"\\'quoted\\'", "'quoted'"},
		{"back\\\\slash", "back\\slash"},

		// Numeric escapes.
		{"\\u0041", "A"},
		{"\\U0001F600", "😀"},
		{"x\\u00E9x", "xéx"},

		// A numeric escape resolving to a backslash is committed to the
		// output and cannot start a new escape.
		{"\\u005C\\n", "\\\n"},
		{"\\u0041\\n\\\\\\u0042", "A\n\\B"},

		// Malformed sequences pass through.
		{"\\q", "\\q"},
		{"\\u00", "\\u00"},
		{"end\\", "end\\"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Unescape(tc.in), "input: %q", tc.in)
	}
}
