// Package parser implements a grammar-agnostic, table-driven LL(1) parser
// with production and terminal callbacks and FIRST/FOLLOW panic-mode error
// recovery.
package parser

import (
	"fmt"
	"regexp"

	"github.com/knakk/turtle/lexer"
)

// Options configures a single parse.
type Options struct {
	// Validate aborts on the first error instead of recovering.
	Validate bool

	// Trace, when set, receives progress messages with the current line.
	Trace func(line int, message string)
}

// frame is one entry of the parse stack: an open production and the not yet
// consumed symbols of its chosen branch. terms stays nil until the branch is
// selected from the lookahead.
type frame struct {
	prod   string
	terms  []string
	opened bool
}

// Parser drives one parse over one input. It owns its lexer, production
// stack and data stack for the duration of the run.
type Parser struct {
	g    *Grammar
	lex  *lexer.Lexer
	opts Options

	prodStack  []string
	data       []Data
	errs       []string
	recovering bool
	aborted    bool
}

// Parse runs the grammar over input, starting at the grammar's start
// production, and returns the root accumulator Data. Errors logged during
// the parse are returned as one aggregated ParseError.
func Parse(input string, g *Grammar, opts Options) (Data, error) {
	lx, err := lexer.New(input, g.terminals, lexer.Options{Whitespace: g.whitespace, Comment: g.comment})
	if err != nil {
		return nil, err
	}
	root := Data{}
	p := &Parser{g: g, lex: lx, opts: opts, data: []Data{root}}
	return root, p.run()
}

func (p *Parser) run() error {
	todo := []*frame{{prod: p.g.start}}

parse:
	for len(todo) > 0 && !p.aborted {
		top := todo[len(todo)-1]

		if !top.opened {
			top.opened = true
			p.onStart(top.prod)
			tok := p.skipUntilValid(todo)
			if p.aborted {
				break
			}
			if tok == nil {
				break
			}
			if !p.recovering {
				if seq, ok := p.g.branch[top.prod][tok.Repr()]; ok {
					top.terms = append([]string(nil), seq...)
				}
				// Not in the branch table: the production is nullable
				// (skipUntilValid guarantees it), so terms stays empty.
			}
		}

		pushed := false
		for len(top.terms) > 0 && !p.aborted {
			term := top.terms[0]

			if p.g.isNonterminal(term) {
				if p.recovering {
					tok := p.peek()
					if tok == nil || !p.inSet(*tok, p.g.first[term]) {
						top.terms = top.terms[1:]
						continue
					}
					p.recovering = false
				}
				top.terms = top.terms[1:]
				todo = append(todo, &frame{prod: term})
				pushed = true
				break
			}

			if tok := p.accept(term); tok != nil {
				top.terms = top.terms[1:]
				p.recovering = false
				p.onToken(*tok)
				continue
			}
			if p.recovering {
				top.terms = top.terms[1:]
				continue
			}
			tok := p.peek()
			if tok == nil {
				break parse
			}
			p.errorf("%d: syntax error: expected %s in %s, got %s", tok.Line, p.g.matcher(term), top.prod, describe(*tok))
			if p.opts.Validate {
				p.aborted = true
				break
			}
			p.panicMode(todo, []string{term})
		}
		if pushed {
			continue
		}

		if len(top.terms) == 0 {
			todo = todo[:len(todo)-1]
			p.onFinish()
		}
	}

	// Reaching end of input with unconsumed branch symbols left on the
	// stack is a premature EOF.
	if !p.aborted && !p.recovering {
		for i := len(todo) - 1; i >= 0; i-- {
			if len(todo[i].terms) > 0 {
				p.errorf("unexpected end of file in %s", todo[i].prod)
				break
			}
		}
	}

	// Unwind remaining frames, closing each production.
	for len(todo) > 0 {
		todo = todo[:len(todo)-1]
		p.onFinish()
	}

	if !p.aborted {
		if tok := p.peek(); tok != nil {
			p.errorf("%d: finished processing before end of file at %s", tok.Line, describe(*tok))
		}
	}

	if len(p.errs) > 0 {
		return &ParseError{Errs: p.errs}
	}
	return nil
}

// skipUntilValid returns the lookahead for the production on top of todo.
// When the token can start (or skip, for a nullable production) the branch,
// it is returned as is; otherwise an error is logged and tokens are
// discarded until the parse can resynchronize. A nil return means end of
// input.
func (p *Parser) skipUntilValid(todo []*frame) *lexer.Token {
	top := todo[len(todo)-1]
	first := p.g.first[top.prod]

	tok := p.peek()
	if tok == nil {
		if !p.aborted && !p.recovering && !p.g.nullable(top.prod) {
			p.errorf("unexpected end of file in %s", top.prod)
		}
		return nil
	}
	if p.recovering {
		if p.inSet(*tok, first) {
			p.recovering = false
		}
		return tok
	}
	if p.g.nullable(top.prod) || p.inSet(*tok, first) {
		return tok
	}

	p.errorf("%d: syntax error: unexpected %s in %s", tok.Line, describe(*tok), top.prod)
	if p.opts.Validate {
		p.aborted = true
		return tok
	}
	p.panicMode(todo, first)
	return p.peek()
}

// panicMode discards tokens until one can resume the interrupted branch
// (member of first) or abort it (member of the FOLLOW union over all open
// productions). In the latter case the recovering flag makes the driver pop
// frames without consuming their residual terms.
func (p *Parser) panicMode(todo []*frame, first []string) {
	follow := make(map[string]bool)
	for _, f := range todo {
		for _, s := range p.g.follow[f.prod] {
			follow[s] = true
		}
	}
	for {
		tok := p.peek()
		if tok == nil {
			p.recovering = true
			return
		}
		if p.inSet(*tok, first) {
			p.recovering = false
			return
		}
		if follow[tok.Repr()] {
			p.recovering = true
			return
		}
		p.lex.Shift()
	}
}

// peek returns the lookahead without consuming it. Lexer errors are logged
// and resynchronized here, so callers only ever see tokens or end of input.
func (p *Parser) peek() *lexer.Token {
	for {
		tok, err := p.lex.First()
		if err == nil {
			return tok
		}
		p.errorf("%s", err.Error())
		if p.opts.Validate {
			p.aborted = true
			return nil
		}
		p.lex.Recover(p.currentRecoverTo())
	}
}

// accept consumes and returns the lookahead if it matches term.
func (p *Parser) accept(term string) *lexer.Token {
	tok := p.peek()
	if tok == nil || !p.g.matcher(term).Match(*tok) {
		return nil
	}
	t, _ := p.lex.Shift()
	return t
}

func (p *Parser) inSet(tok lexer.Token, set []string) bool {
	r := tok.Repr()
	for _, s := range set {
		if s == r {
			return true
		}
	}
	return false
}

func (p *Parser) currentRecoverTo() *regexp.Regexp {
	for i := len(p.prodStack) - 1; i >= 0; i-- {
		if pr, ok := p.g.prods[p.prodStack[i]]; ok && pr.recoverTo != nil {
			return pr.recoverTo
		}
	}
	return nil
}

func (p *Parser) onStart(prod string) {
	p.prodStack = append(p.prodStack, prod)
	if p.opts.Trace != nil {
		line := 0
		if tok, err := p.lex.First(); err == nil && tok != nil {
			line = tok.Line
		}
		p.opts.Trace(line, "enter "+prod)
	}
	if pr, ok := p.g.prods[prod]; ok && pr.handler != nil {
		parent := p.data[len(p.data)-1]
		current := Data{}
		pr.handler(Start, parent, current)
		p.data = append(p.data, current)
	}
}

func (p *Parser) onFinish() {
	prod := p.prodStack[len(p.prodStack)-1]
	p.prodStack = p.prodStack[:len(p.prodStack)-1]
	if pr, ok := p.g.prods[prod]; ok && pr.handler != nil {
		current := p.data[len(p.data)-1]
		p.data = p.data[:len(p.data)-1]
		parent := p.data[len(p.data)-1]
		pr.handler(Finish, parent, current)
	}
}

func (p *Parser) onToken(tok lexer.Token) {
	prod := p.prodStack[len(p.prodStack)-1]
	data := p.data[len(p.data)-1]
	if h := p.g.tokenHandlers[tok.Kind]; h != nil {
		h(prod, tok, data)
	}
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errs = append(p.errs, fmt.Sprintf(format, args...))
}

func describe(tok lexer.Token) string {
	if tok.Kind != "" {
		return fmt.Sprintf("%s %q", tok.Kind, tok.Value)
	}
	return fmt.Sprintf("%q", tok.Value)
}
