package turtle

import (
	"github.com/knakk/turtle/lexer"
	"github.com/knakk/turtle/scanner"
)

// Terminal symbols of the Turtle grammar.
const (
	tIRIRef           = "IRIREF"
	tPNameLN          = "PNAME_LN"
	tPNameNS          = "PNAME_NS"
	tBlankNodeLabel   = "BLANK_NODE_LABEL"
	tLangTag          = "LANGTAG"
	tInteger          = "INTEGER"
	tDecimal          = "DECIMAL"
	tDouble           = "DOUBLE"
	tAnon             = "ANON"
	tStringQuote      = "STRING_LITERAL_QUOTE"
	tStringSingle     = "STRING_LITERAL_SINGLE_QUOTE"
	tStringLongQuote  = "STRING_LITERAL_LONG_QUOTE"
	tStringLongSingle = "STRING_LITERAL_LONG_SINGLE_QUOTE"
	tSparqlPrefix     = "PREFIX"
	tSparqlBase       = "BASE"
)

// Character classes from the Turtle grammar.
const (
	pnCharsBase = `A-Za-z` +
		`\x{00C0}-\x{00D6}\x{00D8}-\x{00F6}\x{00F8}-\x{02FF}` +
		`\x{0370}-\x{037D}\x{037F}-\x{1FFF}\x{200C}-\x{200D}` +
		`\x{2070}-\x{218F}\x{2C00}-\x{2FEF}\x{3001}-\x{D7FF}` +
		`\x{F900}-\x{FDCF}\x{FDF0}-\x{FFFD}\x{10000}-\x{EFFFF}`
	pnCharsU = pnCharsBase + `_`
	pnChars  = pnCharsU + `\-0-9\x{00B7}\x{0300}-\x{036F}\x{203F}-\x{2040}`

	echar = `\\[tbnrf"'\\]`
	uchar = `\\u[0-9A-Fa-f]{4}|\\U[0-9A-Fa-f]{8}`
	plx   = `%[0-9A-Fa-f]{2}|\\[_~.\-!$&'()*+,;=/?#@%]`
)

// Composite lexical forms.
const (
	pnPrefix = `[` + pnCharsBase + `](?:[` + pnChars + `.]*[` + pnChars + `])?`
	pnLocal  = `(?:[` + pnCharsU + `:0-9]|` + plx + `)` +
		`(?:(?:[` + pnChars + `.:]|` + plx + `)*(?:[` + pnChars + `:]|` + plx + `))?`
)

// turtleTokens is the terminal table, in matching priority order. The order
// resolves the overlaps between patterns: prefixed names with a local part
// before bare namespace prefixes, doubles before decimals before integers,
// long string forms before short ones, and the keyword terminal before
// LANGTAG so that "@prefix" and "@base" never lex as language tags.
var turtleTokens = []struct {
	kind     string
	pattern  string
	unescape bool
}{
	{tAnon, `\[[ \t\r\n]*\]`, false},
	{tBlankNodeLabel, `_:[` + pnCharsU + `0-9](?:[` + pnChars + `.]*[` + pnChars + `])?`, false},
	{tIRIRef, `<(?:[^\x00-\x20<>"{}|^` + "`" + `\\]|` + uchar + `)*>`, true},
	{tDouble, `[+-]?(?:[0-9]+\.[0-9]*[eE][+-]?[0-9]+|\.[0-9]+[eE][+-]?[0-9]+|[0-9]+[eE][+-]?[0-9]+)`, false},
	{tDecimal, `[+-]?[0-9]*\.[0-9]+`, false},
	{tInteger, `[+-]?[0-9]+`, false},
	{tPNameLN, `(?:` + pnPrefix + `)?:` + pnLocal, false},
	{tPNameNS, `(?:` + pnPrefix + `)?:`, false},
	{tStringLongSingle, `'''(?:(?:'|'')?(?:[^'\\]|` + echar + `|` + uchar + `))*'''`, true},
	{tStringLongQuote, `"""(?:(?:"|"")?(?:[^"\\]|` + echar + `|` + uchar + `))*"""`, true},
	{tStringSingle, `'(?:[^\x27\x5C\x0A\x0D]|` + echar + `|` + uchar + `)*'`, true},
	{tStringQuote, `"(?:[^\x22\x5C\x0A\x0D]|` + echar + `|` + uchar + `)*"`, true},
	{"", `@prefix|@base|\^\^|true|false|[()\[\];,.]|a`, false},
	{tLangTag, `@[a-zA-Z]+(?:-[a-zA-Z0-9]+)*`, false},
	{tSparqlPrefix, `[Pp][Rr][Ee][Ff][Ii][Xx]`, false},
	{tSparqlBase, `[Bb][Aa][Ss][Ee]`, false},
}

var (
	turtleWhitespace = scanner.Anchored(`[ \t\r\n]+`)
	turtleComment    = scanner.Anchored(`#[^\n\r]*`)
)

// turtleTerminals is the compiled terminal table handed to the lexer.
var turtleTerminals = func() []lexer.Terminal {
	ts := make([]lexer.Terminal, len(turtleTokens))
	for i, t := range turtleTokens {
		ts[i] = lexer.Terminal{Kind: t.kind, Pattern: scanner.Anchored(t.pattern), Unescape: t.unescape}
	}
	return ts
}()
