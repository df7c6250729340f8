package lexer

import "fmt"

// ConfigError reports an invalid lexer configuration, such as an empty
// terminal table. It is never recovered from.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "lexer: " + e.Message
}

// Error reports input that no registered terminal can match. Token holds the
// offending whitespace-delimited slice of input, truncated to 100 bytes, and
// Line the line it starts on.
type Error struct {
	Snippet string
	Token   string
	Line    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: invalid token %q", e.Line, e.Token)
}
