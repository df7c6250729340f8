// Package lexer turns a byte stream into a lazy sequence of typed tokens,
// driven by an ordered table of regular-expression terminals.
package lexer

import (
	"regexp"
	"strings"

	"github.com/knakk/turtle/scanner"
)

var (
	defaultWhitespace = scanner.Anchored(`\s+`)
	defaultComment    = scanner.Anchored(`#[^\n\r]*`)
	wordRe            = regexp.MustCompile(`\S+`)
)

// Options configures a Lexer. The zero value selects `\s+` as whitespace and
// `#` line comments.
type Options struct {
	Whitespace *regexp.Regexp
	Comment    *regexp.Regexp
}

// Lexer produces tokens from an input string. Tokens for whitespace and
// comments are not emitted. A Lexer is good for a single run over its input;
// construct a new one to restart.
type Lexer struct {
	sc        *scanner.Scanner
	terminals []Terminal
	ws        *regexp.Regexp
	comment   *regexp.Regexp

	line   int
	peeked *Token
	atEOF  bool
	err    error
}

// New returns a Lexer over input using the given terminal table. It fails
// with a ConfigError if the table is empty.
func New(input string, terminals []Terminal, opts Options) (*Lexer, error) {
	if len(terminals) == 0 {
		return nil, &ConfigError{Message: "no terminals defined"}
	}
	l := &Lexer{
		sc:        scanner.New(input),
		terminals: terminals,
		ws:        opts.Whitespace,
		comment:   opts.Comment,
		line:      1,
	}
	if l.ws == nil {
		l.ws = defaultWhitespace
	}
	if l.comment == nil {
		l.comment = defaultComment
	}
	return l, nil
}

// First returns the next token without consuming it. At end of input it
// returns (nil, nil). The result is stable until Shift or Recover is called.
func (l *Lexer) First() (*Token, error) {
	if l.peeked != nil || l.atEOF {
		return l.peeked, nil
	}
	if l.err != nil {
		return nil, l.err
	}
	tok, err := l.scanToken()
	if err != nil {
		l.err = err
		return nil, err
	}
	if tok == nil {
		l.atEOF = true
		return nil, nil
	}
	l.peeked = tok
	return tok, nil
}

// Shift returns the next token and consumes it.
func (l *Lexer) Shift() (*Token, error) {
	tok, err := l.First()
	l.peeked = nil
	return tok, err
}

// EachToken calls fn for every remaining token, stopping at end of input or
// on the first lexer error.
func (l *Lexer) EachToken(fn func(Token)) error {
	for {
		tok, err := l.Shift()
		if err != nil {
			return err
		}
		if tok == nil {
			return nil
		}
		fn(*tok)
	}
}

// Recover skips the given pattern, if any, then retries lexing; as long as no
// terminal matches it advances one byte at a time. After Recover the lexer
// either has a valid lookahead, or is at end of input.
func (l *Lexer) Recover(skip *regexp.Regexp) {
	l.err = nil
	if skip != nil {
		if m, ok := l.sc.Scan(skip); ok {
			l.line += strings.Count(m, "\n")
		}
	}
	for {
		tok, err := l.scanToken()
		if err == nil {
			if tok == nil {
				l.atEOF = true
			} else {
				l.peeked = tok
			}
			return
		}
		l.sc.SetPos(l.sc.Pos() + 1)
	}
}

func (l *Lexer) scanToken() (*Token, error) {
	l.skipIgnored()
	if l.sc.EOS() {
		return nil, nil
	}
	start := l.line
	for _, t := range l.terminals {
		m, ok := l.sc.Scan(t.Pattern)
		if !ok {
			continue
		}
		l.line += strings.Count(m, "\n")
		if t.Unescape {
			m = Unescape(m)
		}
		return &Token{Kind: t.Kind, Value: m, Line: start}, nil
	}
	return nil, l.invalidToken()
}

// skipIgnored consumes whitespace and comments, in that order, until neither
// matches, keeping the line count current.
func (l *Lexer) skipIgnored() {
	for {
		n := 0
		if m, ok := l.sc.Scan(l.ws); ok && m != "" {
			l.line += strings.Count(m, "\n")
			n++
		}
		if m, ok := l.sc.Scan(l.comment); ok && m != "" {
			l.line += strings.Count(m, "\n")
			n++
		}
		if n == 0 {
			return
		}
	}
}

func (l *Lexer) invalidToken() *Error {
	rest := l.sc.Rest()
	tok := wordRe.FindString(rest)
	if len(tok) > 100 {
		tok = tok[:100]
	}
	snippet := rest
	if len(snippet) > 100 {
		snippet = snippet[:100]
	}
	return &Error{Snippet: snippet, Token: tok, Line: l.line}
}
