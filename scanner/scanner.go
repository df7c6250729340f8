// Package scanner provides a pull-based cursor over a UTF-8 string with
// regular-expression matching anchored at the cursor position.
package scanner

import (
	"regexp"
	"strings"
)

// Anchored compiles pattern so that it can only match at the start of the
// scanned region. The lexer builds all its terminal patterns through it.
func Anchored(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`\A(?:` + pattern + `)`)
}

// Scanner is a cursor over an input string. Scan and Skip only ever match at
// the current position; on failure the cursor is left untouched.
type Scanner struct {
	input string
	pos   int
}

// New returns a Scanner over input. Byte sequences that are not valid UTF-8
// are replaced with the Unicode replacement character.
func New(input string) *Scanner {
	return &Scanner{input: strings.ToValidUTF8(input, "�")}
}

// EOS reports whether the cursor has reached the end of the input.
func (s *Scanner) EOS() bool {
	return s.pos >= len(s.input)
}

// Rest returns the not yet consumed remainder of the input.
func (s *Scanner) Rest() string {
	return s.input[s.pos:]
}

// Pos returns the current cursor position, in bytes.
func (s *Scanner) Pos() int {
	return s.pos
}

// SetPos moves the cursor to p, clamped to the input bounds.
func (s *Scanner) SetPos(p int) {
	if p < 0 {
		p = 0
	}
	if p > len(s.input) {
		p = len(s.input)
	}
	s.pos = p
}

// Scan tries to match re at the cursor. On success it advances the cursor
// past the match and returns the matched substring.
func (s *Scanner) Scan(re *regexp.Regexp) (string, bool) {
	loc := re.FindStringIndex(s.input[s.pos:])
	if loc == nil || loc[0] != 0 {
		return "", false
	}
	m := s.input[s.pos : s.pos+loc[1]]
	s.pos += loc[1]
	return m, true
}

// Skip is Scan with the matched text discarded. It reports whether anything
// was consumed.
func (s *Scanner) Skip(re *regexp.Regexp) bool {
	m, ok := s.Scan(re)
	return ok && m != ""
}
