package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanAnchored(t *testing.T) {
	s := New("foo bar")
	word := Anchored(`\w+`)
	ws := Anchored(`\s+`)

	m, ok := s.Scan(word)
	assert.True(t, ok)
	assert.Equal(t, "foo", m)
	assert.Equal(t, 3, s.Pos())

	// Not anchored at the cursor: the pattern must not match mid-input.
	m, ok = s.Scan(word)
	assert.False(t, ok)
	assert.Equal(t, "", m)
	assert.Equal(t, 3, s.Pos())

	assert.True(t, s.Skip(ws))
	m, ok = s.Scan(word)
	assert.True(t, ok)
	assert.Equal(t, "bar", m)
	assert.True(t, s.EOS())
}

func TestRestAndSetPos(t *testing.T) {
	s := New("abcdef")
	s.SetPos(2)
	assert.Equal(t, "cdef", s.Rest())

	s.SetPos(100)
	assert.True(t, s.EOS())
	assert.Equal(t, "", s.Rest())

	s.SetPos(-1)
	assert.Equal(t, 0, s.Pos())
}

func TestScanFailureLeavesCursor(t *testing.T) {
	s := New("123abc")
	alpha := Anchored(`[a-z]+`)
	_, ok := s.Scan(alpha)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Pos())
}

func TestInvalidUTF8Normalized(t *testing.T) {
	s := New("a\xffb")
	assert.Equal(t, "a�b", s.Rest())
}
