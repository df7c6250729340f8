package parser

import (
	"fmt"
	"regexp"

	"github.com/knakk/turtle/lexer"
)

// Epsilon is the branch-table key marking a nullable production.
const Epsilon = "ε"

// Phase marks which edge of a production a handler invocation is on.
type Phase int

// Handler phases.
const (
	Start Phase = iota
	Finish
)

// Data is the per-production state map pushed for each production instance
// that has a registered handler. Handlers read what child productions and
// terminals stored there and hand results up to their parent's map.
type Data = map[string]interface{}

// ProductionHandler is invoked twice per production instance: once with
// Start (current freshly allocated) and once with Finish (current populated).
// input is the enclosing production's Data.
type ProductionHandler func(phase Phase, input, current Data)

// TokenHandler is invoked once per matched token of its terminal, with the
// production whose body the token appears in and the Data of the innermost
// production that has a handler.
type TokenHandler func(prod string, tok lexer.Token, data Data)

type production struct {
	handler   ProductionHandler
	recoverTo *regexp.Regexp
}

// Grammar is a frozen grammar: ordered terminals, the LL(1) branch table,
// FIRST and FOLLOW sets, and the registered handlers. Build one with a
// GrammarBuilder; a Grammar is immutable and safe to share between parses.
type Grammar struct {
	start         string
	terminals     []lexer.Terminal
	branch        map[string]map[string][]string
	first         map[string][]string
	follow        map[string][]string
	prods         map[string]production
	tokenHandlers map[string]TokenHandler
	termKinds     map[string]bool
	whitespace    *regexp.Regexp
	comment       *regexp.Regexp
}

// Terminals returns the grammar's terminal table in registration order.
func (g *Grammar) Terminals() []lexer.Terminal {
	return g.terminals
}

func (g *Grammar) isNonterminal(sym string) bool {
	_, ok := g.branch[sym]
	return ok
}

func (g *Grammar) nullable(prod string) bool {
	_, ok := g.branch[prod][Epsilon]
	return ok
}

// matcher returns the Matcher for a branch-table term: terminal symbols match
// by kind, anything else is a literal matched by value.
func (g *Grammar) matcher(term string) lexer.Matcher {
	if g.termKinds[term] {
		return lexer.ByKind(term)
	}
	return lexer.ByValue(term)
}

// GrammarBuilder collects terminals (ordered), the branch table and recovery
// sets, and the production and token handlers, then freezes them into a
// Grammar. It replaces the mutable per-class registries of the original
// design with an explicit value.
type GrammarBuilder struct {
	terminals     []lexer.Terminal
	branch        map[string]map[string][]string
	first         map[string][]string
	follow        map[string][]string
	prods         map[string]production
	tokenHandlers map[string]TokenHandler
	whitespace    *regexp.Regexp
	comment       *regexp.Regexp
}

// NewGrammarBuilder returns an empty GrammarBuilder.
func NewGrammarBuilder() *GrammarBuilder {
	return &GrammarBuilder{
		prods:         make(map[string]production),
		tokenHandlers: make(map[string]TokenHandler),
	}
}

// SetTables installs the precomputed branch table and the FIRST and FOLLOW
// sets used for error recovery.
func (b *GrammarBuilder) SetTables(branch map[string]map[string][]string, first, follow map[string][]string) {
	b.branch = branch
	b.first = first
	b.follow = follow
}

// SetWhitespace overrides the lexer's whitespace and comment patterns.
func (b *GrammarBuilder) SetWhitespace(ws, comment *regexp.Regexp) {
	b.whitespace = ws
	b.comment = comment
}

// Production registers a handler for a nonterminal.
func (b *GrammarBuilder) Production(sym string, h ProductionHandler) {
	p := b.prods[sym]
	p.handler = h
	b.prods[sym] = p
}

// RecoverTo sets the resynchronization pattern handed to the lexer when a
// lexical error occurs while the given production is open.
func (b *GrammarBuilder) RecoverTo(sym string, re *regexp.Regexp) {
	p := b.prods[sym]
	p.recoverTo = re
	b.prods[sym] = p
}

// Terminal registers a terminal for the lexer, in priority order, together
// with an optional token handler. An empty kind registers an anonymous
// terminal; its handler, if any, acts as the catch-all for literal tokens.
func (b *GrammarBuilder) Terminal(kind string, pattern *regexp.Regexp, unescape bool, h TokenHandler) {
	b.terminals = append(b.terminals, lexer.Terminal{Kind: kind, Pattern: pattern, Unescape: unescape})
	if h != nil {
		b.tokenHandlers[kind] = h
	}
}

// Build freezes the builder into a Grammar with the given start production.
func (b *GrammarBuilder) Build(start string) (*Grammar, error) {
	if len(b.terminals) == 0 {
		return nil, &ConfigError{Message: "no terminals defined"}
	}
	if len(b.branch) == 0 {
		return nil, &ConfigError{Message: "no branch table defined"}
	}
	if _, ok := b.branch[start]; !ok {
		return nil, &ConfigError{Message: fmt.Sprintf("unknown start production %q", start)}
	}
	termKinds := make(map[string]bool, len(b.terminals))
	for _, t := range b.terminals {
		if t.Kind != "" {
			termKinds[t.Kind] = true
		}
	}
	return &Grammar{
		start:         start,
		terminals:     b.terminals,
		branch:        b.branch,
		first:         b.first,
		follow:        b.follow,
		prods:         b.prods,
		tokenHandlers: b.tokenHandlers,
		termKinds:     termKinds,
		whitespace:    b.whitespace,
		comment:       b.comment,
	}, nil
}
