package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knakk/turtle/lexer"
	"github.com/knakk/turtle/scanner"
)

// The test grammar is a tiny language of nested name lists:
//
//	list  ::= '(' items ')'
//	items ::= item items | ε
//	item  ::= NAME | list
//
// The handlers build the nested slices, so a parse of "(a (b) ())" yields
// ["a", ["b"], []].
func listGrammar(t *testing.T) *Grammar {
	t.Helper()
	b := NewGrammarBuilder()
	b.SetTables(
		map[string]map[string][]string{
			"list": {
				"(": {"(", "items", ")"},
			},
			"items": {
				"NAME":  {"item", "items"},
				"(":     {"item", "items"},
				Epsilon: {},
			},
			"item": {
				"NAME": {"NAME"},
				"(":    {"list"},
			},
		},
		map[string][]string{
			"list":  {"("},
			"items": {"NAME", "("},
			"item":  {"NAME", "("},
		},
		map[string][]string{
			"list":  {"NAME", "(", ")"},
			"items": {")"},
			"item":  {"NAME", "(", ")"},
		},
	)
	b.Terminal("NAME", scanner.Anchored(`[a-z]+`), false, func(prod string, tok lexer.Token, data Data) {
		arr, _ := data["v"].([]interface{})
		data["v"] = append(arr, tok.Value)
	})
	b.Terminal("", scanner.Anchored(`[()]`), false, nil)
	b.Production("list", func(phase Phase, input, current Data) {
		if phase == Finish {
			arr, _ := input["v"].([]interface{})
			v, _ := current["v"].([]interface{})
			if v == nil {
				v = []interface{}{}
			}
			input["v"] = append(arr, v)
		}
	})
	g, err := b.Build("list")
	require.NoError(t, err)
	return g
}

func parseList(t *testing.T, input string, opts Options) (interface{}, error) {
	t.Helper()
	root, err := Parse(input, listGrammar(t), opts)
	if root == nil {
		return nil, err
	}
	return root["v"], err
}

func TestParseNested(t *testing.T) {
	v, err := parseList(t, "(a b (c d) ())", Options{})
	require.NoError(t, err)
	want := []interface{}{
		[]interface{}{"a", "b", []interface{}{"c", "d"}, []interface{}{}},
	}
	assert.Equal(t, want, v)
}

func TestParseEmptyList(t *testing.T) {
	v, err := parseList(t, "()", Options{})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{[]interface{}{}}, v)
}

// The engine never consumes beyond what the grammar requires: trailing
// input is reported as an error after the start production completes.
func TestTrailingInput(t *testing.T) {
	v, err := parseList(t, "(a) b", Options{})
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Len(t, perr.Errs, 1)
	assert.Contains(t, perr.Errs[0], "finished processing before end of file")
	assert.Equal(t, []interface{}{[]interface{}{"a"}}, v)
}

func TestPrematureEOF(t *testing.T) {
	_, err := parseList(t, "(a (b)", Options{})
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, perr.Error(), "end of file")
}

// A lexical error is logged and resynchronized; the rest of the input still
// parses.
func TestLexerErrorIsRecovered(t *testing.T) {
	v, err := parseList(t, "(a %% b)", Options{})
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, []interface{}{[]interface{}{"a", "b"}}, v)
}

// Panic mode discards a token that fits nowhere until the expected token
// comes up, and resumes there: the list still closes.
func TestPanicModeResync(t *testing.T) {
	g := listGrammar(t)
	// ';' lexes (add it as a SEMI terminal) but belongs to no production.
	b := NewGrammarBuilder()
	b.SetTables(g.branch, g.first, g.follow)
	for _, term := range g.terminals {
		b.Terminal(term.Kind, term.Pattern, term.Unescape, g.tokenHandlers[term.Kind])
	}
	b.Terminal("SEMI", scanner.Anchored(`;`), false, nil)
	for sym, pr := range g.prods {
		b.Production(sym, pr.handler)
	}
	g2, err := b.Build("list")
	require.NoError(t, err)

	// The semicolon lexes but fits no production; panic mode discards it
	// and resumes at the closing parenthesis.
	root, err := Parse("(a ; )", g2, Options{})
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Len(t, perr.Errs, 1)
	assert.Contains(t, perr.Errs[0], "syntax error")
	assert.Equal(t, []interface{}{[]interface{}{"a"}}, root["v"])
}

func TestValidateAbortsOnFirstError(t *testing.T) {
	v, err := parseList(t, "(a %% b)", Options{Validate: true})
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Len(t, perr.Errs, 1)
	// Nothing after the error was consumed.
	assert.Equal(t, []interface{}{[]interface{}{"a"}}, v)
}

func TestDeterminism(t *testing.T) {
	const input = "(a (b c) ((d)) e)"
	first, err := parseList(t, input, Options{})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := parseList(t, input, Options{})
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("parse not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestTraceCallback(t *testing.T) {
	var messages []string
	_, err := parseList(t, "(a)", Options{Trace: func(line int, message string) {
		messages = append(messages, message)
	}})
	require.NoError(t, err)
	assert.Contains(t, messages, "enter list")
	assert.Contains(t, messages, "enter item")
}

func TestBuildConfigErrors(t *testing.T) {
	var cfg *ConfigError

	b := NewGrammarBuilder()
	_, err := b.Build("list")
	require.True(t, errors.As(err, &cfg))
	assert.Contains(t, cfg.Error(), "no terminals")

	b = NewGrammarBuilder()
	b.Terminal("NAME", scanner.Anchored(`[a-z]+`), false, nil)
	_, err = b.Build("list")
	require.True(t, errors.As(err, &cfg))
	assert.Contains(t, cfg.Error(), "no branch table")

	b = NewGrammarBuilder()
	b.Terminal("NAME", scanner.Anchored(`[a-z]+`), false, nil)
	b.SetTables(map[string]map[string][]string{"list": {}}, nil, nil)
	_, err = b.Build("nosuch")
	require.True(t, errors.As(err, &cfg))
	assert.Contains(t, cfg.Error(), "unknown start production")
}

// Production handlers fire in document order: start outside-in, finish
// inside-out.
func TestHandlerOrder(t *testing.T) {
	var events []string
	b := NewGrammarBuilder()
	b.SetTables(
		map[string]map[string][]string{
			"pair":  {"(": {"(", "inner", ")"}},
			"inner": {"NAME": {"NAME"}},
		},
		map[string][]string{"pair": {"("}, "inner": {"NAME"}},
		map[string][]string{"pair": {}, "inner": {")"}},
	)
	b.Terminal("NAME", scanner.Anchored(`[a-z]+`), false, func(prod string, tok lexer.Token, data Data) {
		events = append(events, "token "+tok.Value+" in "+prod)
	})
	b.Terminal("", scanner.Anchored(`[()]`), false, nil)
	b.Production("pair", func(phase Phase, input, current Data) {
		if phase == Start {
			events = append(events, "start pair")
		} else {
			events = append(events, "finish pair")
		}
	})
	b.Production("inner", func(phase Phase, input, current Data) {
		if phase == Start {
			events = append(events, "start inner")
		} else {
			events = append(events, "finish inner")
		}
	})
	g, err := b.Build("pair")
	require.NoError(t, err)

	_, err = Parse("(x)", g, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"start pair",
		"start inner",
		"token x in inner",
		"finish inner",
		"finish pair",
	}, events)
}
