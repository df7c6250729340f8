package turtle

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/knakk/turtle/lexer"
	"github.com/knakk/turtle/parser"
)

// Decoder parses Turtle documents.
//
// For streaming consumption, use the Decode() method to read a single Triple
// at a time. Or, if you want to read the whole source in one go, DecodeAll().
type Decoder struct {
	r io.Reader

	base     string            // base IRI for resolving relative IRI references
	ns       map[string]string // map[prefix]namespace
	bnodeN   int               // anonymous blank node counter
	validate bool              // abort on first error instead of recovering
	trace    func(line int, message string)

	parsed  bool
	pending []Triple // triples queued while parsing one statement
	triples []Triple // complete triples ready to be emitted
	err     error
	errs    []string // binding errors (missing prefixes etc.)
}

// NewDecoder returns a Decoder reading Turtle from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, ns: make(map[string]string)}
}

// SetBase sets the base IRI used to resolve relative IRI references, until
// the document declares its own.
func (d *Decoder) SetBase(base IRI) {
	d.base = base.IRI
}

// SetPrefix seeds the prefix table, as if the document had declared
// @prefix label: <ns> .
func (d *Decoder) SetPrefix(label, ns string) {
	d.ns[label] = ns
}

// SetValidate controls error handling: when validating, the first syntax
// error aborts the parse. Otherwise errors are collected, the parser
// resynchronizes, and the aggregate error is returned after all parseable
// triples have been decoded.
func (d *Decoder) SetValidate(v bool) {
	d.validate = v
}

// SetTrace installs a callback receiving parser progress messages.
func (d *Decoder) SetTrace(fn func(line int, message string)) {
	d.trace = fn
}

// Decode returns the next valid triple, or an error. After the last triple,
// it returns io.EOF on a clean parse, or the aggregated parse error.
func (d *Decoder) Decode() (Triple, error) {
	d.parse()
	if len(d.triples) == 0 {
		if d.err != nil {
			return Triple{}, d.err
		}
		return Triple{}, io.EOF
	}
	t := d.triples[0]
	d.triples = d.triples[1:]
	return t, nil
}

// DecodeAll parses a complete Turtle document and returns its triples. When
// the parse had errors, the triples that did parse are returned along with
// the aggregated error.
func (d *Decoder) DecodeAll() ([]Triple, error) {
	var ts []Triple
	for {
		t, err := d.Decode()
		if err == io.EOF {
			return ts, nil
		}
		if err != nil {
			return ts, err
		}
		ts = append(ts, t)
	}
}

// DecodeFile parses the Turtle document in the named file.
func DecodeFile(path string) ([]Triple, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewDecoder(f).DecodeAll()
}

// DecodeString parses a Turtle document held in a string.
func DecodeString(doc string) ([]Triple, error) {
	return NewDecoder(strings.NewReader(doc)).DecodeAll()
}

// Tokenize runs only the lexer over r and returns the raw token stream.
func Tokenize(r io.Reader) ([]lexer.Token, error) {
	input, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	l, err := lexer.New(string(input), turtleTerminals, lexer.Options{Whitespace: turtleWhitespace, Comment: turtleComment})
	if err != nil {
		return nil, err
	}
	var tokens []lexer.Token
	err = l.EachToken(func(tok lexer.Token) {
		tokens = append(tokens, tok)
	})
	return tokens, err
}

// parse runs the parser once over the whole input and fills the triple
// queue. The aggregated error, if any, is stored for Decode to return after
// the queue drains.
func (d *Decoder) parse() {
	if d.parsed {
		return
	}
	d.parsed = true

	input, err := io.ReadAll(d.r)
	if err != nil {
		d.err = err
		return
	}
	g, err := d.grammar()
	if err != nil {
		d.err = err
		return
	}
	_, perr := parser.Parse(string(input), g, parser.Options{Validate: d.validate, Trace: d.trace})
	if len(d.errs) > 0 {
		if pe, ok := perr.(*parser.ParseError); ok {
			pe.Errs = append(pe.Errs, d.errs...)
		} else if perr == nil {
			perr = &parser.ParseError{Errs: d.errs}
		}
	}
	d.err = perr
}

// grammar wires the Turtle terminals, tables and handlers into a Grammar.
// The handlers close over the decoder, so each Decoder builds its own.
func (d *Decoder) grammar() (*parser.Grammar, error) {
	b := parser.NewGrammarBuilder()
	b.SetTables(turtleBranch, turtleFirst, turtleFollow)
	b.SetWhitespace(turtleWhitespace, turtleComment)

	for _, t := range turtleTerminals {
		b.Terminal(t.Kind, t.Pattern, t.Unescape, d.tokenHandler(t.Kind))
	}

	b.Production("prefixID", d.onPrefixDecl)
	b.Production("sparqlPrefix", d.onPrefixDecl)
	b.Production("base", d.onBaseDecl)
	b.Production("sparqlBase", d.onBaseDecl)
	b.Production("triples", d.onTriplesProd)
	b.Production("subject", d.onSubjectProd)
	b.Production("verb", d.onVerbProd)
	b.Production("object", d.onObjectProd)
	b.Production("RDFLiteral", d.onRDFLiteralProd)
	b.Production("blankNodePropertyList", d.onPropertyListProd)
	b.Production("collection", d.onCollectionProd)

	return b.Build("turtleDoc")
}

func (d *Decoder) tokenHandler(kind string) parser.TokenHandler {
	switch kind {
	case tIRIRef:
		return d.onIRIRef
	case tPNameLN:
		return d.onPNameLN
	case tPNameNS:
		return d.onPNameNS
	case tBlankNodeLabel:
		return func(prod string, tok lexer.Token, data parser.Data) {
			data["resource"] = Blank{ID: strings.TrimPrefix(tok.Value, "_:")}
		}
	case tAnon:
		return func(prod string, tok lexer.Token, data parser.Data) {
			data["resource"] = d.newBlank()
		}
	case tLangTag:
		return func(prod string, tok lexer.Token, data parser.Data) {
			data["lang"] = strings.TrimPrefix(tok.Value, "@")
		}
	case tInteger:
		return d.numericHandler(xsdInteger)
	case tDecimal:
		return d.numericHandler(xsdDecimal)
	case tDouble:
		return d.numericHandler(xsdDouble)
	case tStringQuote, tStringSingle:
		return func(prod string, tok lexer.Token, data parser.Data) {
			data["string"] = tok.Value[1 : len(tok.Value)-1]
		}
	case tStringLongQuote, tStringLongSingle:
		return func(prod string, tok lexer.Token, data parser.Data) {
			data["string"] = tok.Value[3 : len(tok.Value)-3]
		}
	case "":
		return d.onKeyword
	default:
		return nil
	}
}

func (d *Decoder) onIRIRef(prod string, tok lexer.Token, data parser.Data) {
	iri := d.resolve(strings.TrimSuffix(strings.TrimPrefix(tok.Value, "<"), ">"))
	switch prod {
	case "prefixID", "base", "sparqlPrefix", "sparqlBase":
		data["iri"] = iri
	default:
		data["resource"] = IRI{IRI: iri}
	}
}

func (d *Decoder) onPNameNS(prod string, tok lexer.Token, data parser.Data) {
	label := strings.TrimSuffix(tok.Value, ":")
	switch prod {
	case "prefixID", "sparqlPrefix":
		data["prefix"] = label
	default:
		// A bare prefix is a valid name denoting the namespace itself.
		data["resource"] = IRI{IRI: d.expand(label, "", tok.Line)}
	}
}

func (d *Decoder) onPNameLN(prod string, tok lexer.Token, data parser.Data) {
	i := strings.Index(tok.Value, ":")
	prefix, local := tok.Value[:i], unescapePNLocal(tok.Value[i+1:])
	data["resource"] = IRI{IRI: d.expand(prefix, local, tok.Line)}
}

func (d *Decoder) numericHandler(datatype IRI) parser.TokenHandler {
	return func(prod string, tok lexer.Token, data parser.Data) {
		data["resource"] = Literal{Val: tok.Value, DataType: datatype}
	}
}

// onKeyword catches the anonymous punctuation/keyword terminal. Most of its
// tokens drive only the parse; 'a' and the boolean keywords carry values.
func (d *Decoder) onKeyword(prod string, tok lexer.Token, data parser.Data) {
	switch tok.Value {
	case "a":
		if prod == "verb" {
			data["resource"] = rdfType
		}
	case "true", "false":
		data["resource"] = Literal{Val: tok.Value, DataType: xsdBoolean}
	}
}

func (d *Decoder) onPrefixDecl(phase parser.Phase, input, current parser.Data) {
	if phase != parser.Finish {
		return
	}
	prefix, ok := current["prefix"].(string)
	iri, ok2 := current["iri"].(string)
	if ok && ok2 {
		d.ns[prefix] = iri
	}
}

func (d *Decoder) onBaseDecl(phase parser.Phase, input, current parser.Data) {
	if phase != parser.Finish {
		return
	}
	if iri, ok := current["iri"].(string); ok {
		d.base = iri
	}
}

func (d *Decoder) onTriplesProd(phase parser.Phase, input, current parser.Data) {
	if phase == parser.Finish {
		d.triples = append(d.triples, d.pending...)
		d.pending = d.pending[:0]
	}
}

func (d *Decoder) onSubjectProd(phase parser.Phase, input, current parser.Data) {
	if phase != parser.Finish {
		return
	}
	if r, ok := current["resource"].(Term); ok {
		input["subject"] = r
	}
}

func (d *Decoder) onVerbProd(phase parser.Phase, input, current parser.Data) {
	if phase != parser.Finish {
		return
	}
	if r, ok := current["resource"].(Term); ok {
		input["predicate"] = r
	}
}

func (d *Decoder) onObjectProd(phase parser.Phase, input, current parser.Data) {
	if phase != parser.Finish {
		return
	}
	res, ok := current["resource"].(Term)
	if !ok {
		// Recovery left the object incomplete; nothing to emit.
		return
	}
	if items, ok := input["items"].([]Term); ok {
		input["items"] = append(items, res)
		return
	}
	subj, sok := input["subject"].(Term)
	pred, pok := input["predicate"].(Term)
	if !sok || !pok {
		return
	}
	d.pending = append(d.pending, Triple{Subj: subj, Pred: pred, Obj: res})
}

func (d *Decoder) onRDFLiteralProd(phase parser.Phase, input, current parser.Data) {
	if phase != parser.Finish {
		return
	}
	val, ok := current["string"].(string)
	if !ok {
		return
	}
	lit := Literal{Val: val, DataType: xsdString}
	if lang, ok := current["lang"].(string); ok {
		lit.Lang = lang
		lit.DataType = rdfLangString
	} else if dt, ok := current["resource"].(IRI); ok {
		lit.DataType = dt
	}
	input["resource"] = lit
}

// onPropertyListProd allocates the blank node of a [ ... ] property list.
// The node is the subject for the enclosed predicate-object list, and the
// value the list contributes to its surroundings.
func (d *Decoder) onPropertyListProd(phase parser.Phase, input, current parser.Data) {
	if phase == parser.Start {
		current["subject"] = d.newBlank()
		return
	}
	b := current["subject"].(Blank)
	input["resource"] = b
	if _, ok := input["subject"]; !ok {
		input["subject"] = b
	}
}

// onCollectionProd desugars ( ... ) into an rdf:first/rdf:rest chain ending
// in rdf:nil. An empty collection is rdf:nil itself.
func (d *Decoder) onCollectionProd(phase parser.Phase, input, current parser.Data) {
	if phase == parser.Start {
		current["items"] = []Term{}
		return
	}
	items := current["items"].([]Term)
	if len(items) == 0 {
		input["resource"] = rdfNil
		return
	}
	head := d.newBlank()
	cur := head
	for i, item := range items {
		d.pending = append(d.pending, Triple{Subj: cur, Pred: rdfFirst, Obj: item})
		if i == len(items)-1 {
			d.pending = append(d.pending, Triple{Subj: cur, Pred: rdfRest, Obj: rdfNil})
			break
		}
		next := d.newBlank()
		d.pending = append(d.pending, Triple{Subj: cur, Pred: rdfRest, Obj: next})
		cur = next
	}
	input["resource"] = head
}

func (d *Decoder) newBlank() Blank {
	d.bnodeN++
	return Blank{ID: fmt.Sprintf("b%d", d.bnodeN)}
}

var absoluteIRIRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*:`)

// resolve resolves an IRI reference against the current base.
func (d *Decoder) resolve(ref string) string {
	if ref == "" {
		return d.base
	}
	if absoluteIRIRe.MatchString(ref) {
		return ref
	}
	return d.base + ref
}

// expand resolves a prefixed name to a full IRI.
func (d *Decoder) expand(prefix, local string, line int) string {
	ns, ok := d.ns[prefix]
	if !ok {
		d.errs = append(d.errs, fmt.Sprintf("%d: missing namespace for prefix: %q", line, prefix))
	}
	return ns + local
}

// unescapePNLocal removes the backslashes of PN_LOCAL_ESC sequences in the
// local part of a prefixed name.
func unescapePNLocal(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
