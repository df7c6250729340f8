package turtle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrEncoderClosed is the error returned from the write methods after
// WriteEpilogue has committed the output.
var ErrEncoderClosed = errors.New("encoder is closed and cannot encode anymore")

// WriterError reports an invalid IRI or a non-serializable node during
// output.
type WriterError struct {
	Message string
}

func (e *WriterError) Error() string {
	return "turtle: " + e.Message
}

// Encoder serializes an RDF graph into a compact Turtle representation:
// prefixes are discovered and abbreviated to QNames, rdf:first/rdf:rest
// chains are written as collections, and blank nodes referenced at most
// once are nested inline.
//
// Triples are buffered with WriteTriple, WriteStatement or WriteGraph;
// WriteEpilogue commits everything to the output stream.
type Encoder struct {
	// Base, when set, is emitted as @base, and IRIs it prefixes are
	// written relative to it.
	Base string

	// Prefixes is the initial prefix table, mapping prefix to namespace
	// IRI. Only prefixes actually used in the output are emitted.
	Prefixes map[string]string

	// DefaultNamespace is the namespace of the empty prefix; it has the
	// same effect as Prefixes[""].
	DefaultNamespace string

	// StandardPrefixes auto-discovers prefixes from the standard
	// vocabularies (rdf, rdfs, xsd, owl, dc, ...).
	StandardPrefixes bool

	// MaxDepth bounds the nesting depth of inlined blank nodes and
	// collections. The default is 3.
	MaxDepth int

	// Canonicalize applies literal canonicalization before formatting.
	Canonicalize bool

	w     *errWriter
	graph *Graph
	body  strings.Builder

	refs       map[string]int
	serialized map[string]bool
	props      map[string]map[IRI][]Term
	subjects   []Term
	qnames     map[string]string
	qnameNS    map[string]string // IRI -> namespace of its QName
	nsPrefix   map[string]string // namespace -> prefix
	usedNS     map[string]string // namespaces referenced by the body
}

// NewEncoder returns an Encoder writing Turtle to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:        &errWriter{w: bufio.NewWriter(w)},
		Prefixes: make(map[string]string),
		MaxDepth: 3,
		graph:    NewGraph(),
	}
}

// WriteTriple buffers a single triple for serialization.
func (e *Encoder) WriteTriple(s, p, o Term) error {
	if e.w == nil {
		return ErrEncoderClosed
	}
	if s == nil || p == nil || o == nil {
		return &WriterError{Message: "nil term in triple"}
	}
	if s.Type() == TermLiteral {
		return &WriterError{Message: "literal as subject: " + s.String()}
	}
	if p.Type() != TermIRI {
		return &WriterError{Message: "predicate must be an IRI: " + p.String()}
	}
	for _, t := range []Term{s, p, o} {
		if iri, ok := t.(IRI); ok {
			if _, err := NewIRI(iri.IRI); err != nil {
				return &WriterError{Message: fmt.Sprintf("invalid IRI %q: %v", iri.IRI, err)}
			}
		}
	}
	e.graph.Insert(Triple{Subj: s, Pred: p, Obj: o})
	return nil
}

// WriteStatement buffers a triple for serialization.
func (e *Encoder) WriteStatement(t Triple) error {
	return e.WriteTriple(t.Subj, t.Pred, t.Obj)
}

// WriteGraph buffers all triples of a graph.
func (e *Encoder) WriteGraph(g *Graph) error {
	for _, t := range g.Triples() {
		if err := e.WriteStatement(t); err != nil {
			return err
		}
	}
	return nil
}

// WriteEpilogue serializes the buffered graph and flushes the output. The
// encoder cannot encode anymore once WriteEpilogue has been called.
func (e *Encoder) WriteEpilogue() error {
	if e.w == nil {
		return ErrEncoderClosed
	}
	e.preprocess()

	// The body is staged first: which prefixes end up in the preamble
	// depends on what the body actually uses.
	e.body.Reset()
	for _, s := range e.orderedSubjects() {
		if e.serialized[s.String()] {
			continue
		}
		e.writeSubject(s)
	}
	e.writePreamble()
	e.w.write(e.body.String())

	if e.w.err == nil {
		e.w.err = e.w.w.Flush()
	}
	err := e.w.err
	e.w = nil
	return err
}

// preprocess builds the reference counts, the subject property view and the
// QName cache for the buffered graph. It runs once per serialization.
func (e *Encoder) preprocess() {
	e.refs = make(map[string]int)
	e.serialized = make(map[string]bool)
	e.props = make(map[string]map[IRI][]Term)
	e.subjects = nil
	e.qnames = make(map[string]string)
	e.qnameNS = make(map[string]string)
	e.nsPrefix = make(map[string]string)
	e.usedNS = make(map[string]string)
	if e.DefaultNamespace != "" {
		e.Prefixes[""] = e.DefaultNamespace
	}

	for _, t := range e.graph.Triples() {
		e.refs[t.Pred.String()]++
		e.refs[t.Obj.String()]++

		k := t.Subj.String()
		if _, ok := e.props[k]; !ok {
			e.props[k] = make(map[IRI][]Term)
			e.subjects = append(e.subjects, t.Subj)
		}
		pred := t.Pred.(IRI)
		e.props[k][pred] = append(e.props[k][pred], t.Obj)

		e.getQName(t.Subj)
		e.getQName(t.Pred)
		e.getQName(t.Obj)
		if lit, ok := t.Obj.(Literal); ok && e.literalNeedsDatatype(lit) {
			e.getQName(lit.DataType)
		}
	}
}

// getQName returns the abbreviated form of a term, or "" if it has none.
// Results for IRIs are cached; a prefix only counts as used once format
// actually writes one of its QNames.
func (e *Encoder) getQName(t Term) string {
	switch t := t.(type) {
	case Blank:
		return t.String()
	case IRI:
		if q, ok := e.qnames[t.IRI]; ok {
			return q
		}
		q := e.computeQName(t.IRI)
		e.qnames[t.IRI] = q
		return q
	}
	return ""
}

var pnLocalRe = regexp.MustCompile(`^(?:` + pnLocal + `)?$`)

func (e *Encoder) computeQName(uri string) string {
	prefix, ns := "", ""
	for p, n := range e.Prefixes {
		if n != "" && strings.HasPrefix(uri, n) && len(n) > len(ns) {
			prefix, ns = p, n
		}
	}
	if ns == "" && e.StandardPrefixes {
		for _, v := range standardVocabularies {
			if strings.HasPrefix(uri, v.ns) {
				prefix, ns = v.prefix, v.ns
				break
			}
		}
	}
	if ns == "" {
		return ""
	}
	local := uri[len(ns):]
	if !pnLocalRe.MatchString(local) {
		return ""
	}
	e.qnameNS[uri] = ns
	e.nsPrefix[ns] = prefix
	return prefix + ":" + local
}

// literalNeedsDatatype reports whether the literal's lexical form, as given
// (before any canonicalization), needs an explicit ^^datatype; preprocess
// uses it to decide whether to look up the datatype's QName.
func (e *Encoder) literalNeedsDatatype(l Literal) bool {
	if l.Lang != "" {
		return false
	}
	switch l.DataType {
	case IRI{}, xsdString, rdfLangString:
		return false
	case xsdBoolean:
		return !booleanLexRe.MatchString(l.Val)
	case xsdInteger:
		return !integerLexRe.MatchString(l.Val)
	case xsdDecimal:
		return !decimalLexRe.MatchString(l.Val)
	case xsdDouble:
		return !doubleLexRe.MatchString(l.Val)
	}
	return true
}

// Subject ordering: the base IRI first, then instances of the top classes
// sorted by IRI, then everything else with named resources before blank
// nodes and lightly referenced resources first.
func (e *Encoder) orderedSubjects() []Term {
	var out []Term
	done := make(map[string]bool)
	add := func(t Term) {
		k := t.String()
		if !done[k] && e.props[k] != nil {
			done[k] = true
			out = append(out, t)
		}
	}

	if e.Base != "" {
		add(IRI{IRI: e.Base})
	}
	for _, tc := range topClasses {
		var inst []Term
		for _, t := range e.graph.Query(nil, rdfType, tc) {
			inst = append(inst, t.Subj)
		}
		sort.Slice(inst, func(i, j int) bool { return inst[i].String() < inst[j].String() })
		for _, s := range inst {
			add(s)
		}
	}

	rest := make([]Term, 0, len(e.subjects))
	for _, s := range e.subjects {
		if !done[s.String()] {
			rest = append(rest, s)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		bi, bj := boolInt(rest[i].Type() == TermBlank), boolInt(rest[j].Type() == TermBlank)
		if bi != bj {
			return bi < bj
		}
		ri, rj := e.ref(rest[i]), e.ref(rest[j])
		if ri != rj {
			return ri < rj
		}
		return rest[i].String() < rest[j].String()
	})
	for _, s := range rest {
		add(s)
	}
	return out
}

func (e *Encoder) writeSubject(s Term) {
	k := s.String()
	e.serialized[k] = true
	props := e.props[k]

	if s.Type() == TermBlank && e.ref(s) == 0 && !e.isValidList(s) {
		// Nested blank with no references: anonymous subject.
		e.body.WriteString("\n[ " + e.predicateBlock(props, 1, true) + " ] .\n")
		return
	}
	e.body.WriteString("\n" + e.format(s) + " " + e.predicateBlock(props, 1, false) + " .\n")
}

// predicateBlock renders the sorted predicate list of one subject. Inline
// blocks (inside [ ... ]) stay on one line; top-level blocks break after
// each predicate.
func (e *Encoder) predicateBlock(props map[IRI][]Term, depth int, inline bool) string {
	var parts []string
	for _, p := range sortPredicates(props) {
		objs := append([]Term(nil), props[p]...)
		sort.SliceStable(objs, func(i, j int) bool { return objs[i].String() < objs[j].String() })
		var vals []string
		for _, o := range objs {
			vals = append(vals, e.path(o, depth))
		}
		parts = append(parts, e.predicateValue(p)+" "+strings.Join(vals, ", "))
	}
	if inline {
		return strings.Join(parts, " ; ")
	}
	return strings.Join(parts, " ;\n\t")
}

// path picks the representation of one object: a collection for a valid
// list whose nodes are each referenced once, an inline [ ... ] for an
// unreferenced-elsewhere blank node, and the plain formatted value
// otherwise. MaxDepth cuts the recursion; nodes it cuts off are emitted as
// standalone subjects instead.
func (e *Encoder) path(node Term, depth int) string {
	if e.isValidList(node) && !e.serialized[node.String()] && depth <= e.MaxDepth {
		// ( ... ) gives the list nodes no labels, so a list with a node
		// referenced more than once is written by label instead.
		shared := false
		for n := node; !n.Eq(rdfNil); n = e.props[n.String()][rdfRest][0] {
			if e.ref(n) > 1 {
				shared = true
				break
			}
		}
		if !shared {
			return e.collectionValue(node, depth)
		}
	}
	if b, ok := node.(Blank); ok && !e.serialized[b.String()] && e.ref(node) <= 1 && depth <= e.MaxDepth {
		return e.squaredValue(b, depth)
	}
	return e.format(node)
}

func (e *Encoder) collectionValue(node Term, depth int) string {
	var parts []string
	for !node.Eq(rdfNil) {
		k := node.String()
		e.serialized[k] = true
		props := e.props[k]
		parts = append(parts, e.path(props[rdfFirst][0], depth+1))
		node = props[rdfRest][0]
	}
	if len(parts) == 0 {
		return "()"
	}
	return "( " + strings.Join(parts, " ") + " )"
}

func (e *Encoder) squaredValue(b Blank, depth int) string {
	e.serialized[b.String()] = true
	props := e.props[b.String()]
	if len(props) == 0 {
		return "[]"
	}
	return "[ " + e.predicateBlock(props, depth+1, true) + " ]"
}

// isValidList reports whether node heads a well-formed RDF list: it is
// rdf:nil, or a chain of blank nodes carrying exactly one rdf:first and one
// rdf:rest each and nothing else, ending in rdf:nil.
func (e *Encoder) isValidList(node Term) bool {
	seen := make(map[string]bool)
	for {
		if node.Eq(rdfNil) {
			return true
		}
		b, ok := node.(Blank)
		if !ok {
			return false
		}
		k := b.String()
		if seen[k] {
			return false
		}
		seen[k] = true
		props := e.props[k]
		if len(props) != 2 || len(props[rdfFirst]) != 1 || len(props[rdfRest]) != 1 {
			return false
		}
		node = props[rdfRest][0]
	}
}

func (e *Encoder) predicateValue(p IRI) string {
	if p == rdfType {
		return "a"
	}
	return e.format(p)
}

func (e *Encoder) format(node Term) string {
	switch t := node.(type) {
	case IRI:
		q, ok := e.qnames[t.IRI]
		if !ok {
			q = e.getQName(t)
		}
		if q != "" {
			ns := e.qnameNS[t.IRI]
			e.usedNS[ns] = e.nsPrefix[ns]
			return q
		}
		if e.Base != "" && strings.HasPrefix(t.IRI, e.Base) {
			return "<" + t.IRI[len(e.Base):] + ">"
		}
		return "<" + t.IRI + ">"
	case Blank:
		return t.String()
	case Literal:
		return e.formatLiteral(t)
	}
	return node.String()
}

func (e *Encoder) formatLiteral(l Literal) string {
	if e.Canonicalize {
		l = canonicalLiteral(l)
	}
	if l.Lang != "" {
		return quoteString(l.Val) + "@" + l.Lang
	}
	switch l.DataType {
	case IRI{}, xsdString, rdfLangString:
		return quoteString(l.Val)
	case xsdBoolean:
		if booleanLexRe.MatchString(l.Val) {
			return l.Val
		}
	case xsdInteger:
		if integerLexRe.MatchString(l.Val) {
			return l.Val
		}
	case xsdDecimal:
		if decimalLexRe.MatchString(l.Val) {
			return l.Val
		}
	case xsdDouble:
		if doubleLexRe.MatchString(l.Val) {
			return strings.ToLower(l.Val)
		}
	}
	return quoteString(l.Val) + "^^" + e.format(l.DataType)
}

func (e *Encoder) writePreamble() {
	if e.Base != "" {
		e.w.write("@base <" + e.Base + "> .\n")
	}
	type decl struct{ prefix, ns string }
	var decls []decl
	for ns, prefix := range e.usedNS {
		decls = append(decls, decl{prefix, ns})
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].prefix < decls[j].prefix })
	for _, d := range decls {
		e.w.write("@prefix " + d.prefix + ": <" + d.ns + "> .\n")
	}
}

func (e *Encoder) ref(t Term) int {
	return e.refs[t.String()]
}

// Lexical forms that may be written as bare tokens.
var (
	booleanLexRe = regexp.MustCompile(`^(?:true|false)$`)
	integerLexRe = regexp.MustCompile(`^[+-]?[0-9]+$`)
	decimalLexRe = regexp.MustCompile(`^[+-]?[0-9]*\.[0-9]+$`)
	doubleLexRe  = regexp.MustCompile(`^[+-]?(?:[0-9]+\.[0-9]*[eE][+-]?[0-9]+|\.[0-9]+[eE][+-]?[0-9]+|[0-9]+[eE][+-]?[0-9]+)$`)
)

// quoteString renders a literal value: values containing tabs or line
// breaks become triple-quoted long strings, everything else a single-quoted
// string with the standard escapes.
func quoteString(v string) string {
	if strings.ContainsAny(v, "\t\n\r") {
		s := strings.ReplaceAll(v, `\`, `\\`)
		s = strings.ReplaceAll(s, `"""`, `\"\"\"`)
		if strings.HasSuffix(s, `"`) {
			s = s[:len(s)-1] + `\"`
		}
		return `"""` + s + `"""`
	}
	s := strings.ReplaceAll(v, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// canonicalLiteral normalizes a literal before formatting: NFC for the
// lexical form, canonical shapes for the numeric and boolean types.
func canonicalLiteral(l Literal) Literal {
	l.Val = norm.NFC.String(l.Val)
	switch l.DataType {
	case xsdBoolean:
		switch strings.ToLower(l.Val) {
		case "true", "1":
			l.Val = "true"
		case "false", "0":
			l.Val = "false"
		}
	case xsdInteger:
		if i, err := strconv.ParseInt(l.Val, 10, 64); err == nil {
			l.Val = strconv.FormatInt(i, 10)
		}
	case xsdDecimal:
		if f, err := strconv.ParseFloat(l.Val, 64); err == nil {
			s := strconv.FormatFloat(f, 'f', -1, 64)
			if !strings.Contains(s, ".") {
				s += ".0"
			}
			l.Val = s
		}
	case xsdDouble:
		if f, err := strconv.ParseFloat(l.Val, 64); err == nil {
			s := strconv.FormatFloat(f, 'e', -1, 64)
			s = strings.ReplaceAll(s, "e+0", "e")
			s = strings.ReplaceAll(s, "e-0", "e-")
			s = strings.ReplaceAll(s, "e+", "e")
			if !strings.Contains(s, ".") {
				s = strings.Replace(s, "e", ".0e", 1)
			}
			l.Val = s
		}
	}
	return l
}

// Vocabularies recognized by StandardPrefixes, and the classes whose
// instances are ordered first.
var standardVocabularies = []struct{ prefix, ns string }{
	{"rdf", "http://www.w3.org/1999/02/22-rdf-syntax-ns#"},
	{"rdfs", "http://www.w3.org/2000/01/rdf-schema#"},
	{"xsd", "http://www.w3.org/2001/XMLSchema#"},
	{"owl", "http://www.w3.org/2002/07/owl#"},
	{"dc", "http://purl.org/dc/elements/1.1/"},
	{"dcterms", "http://purl.org/dc/terms/"},
	{"foaf", "http://xmlns.com/foaf/0.1/"},
	{"skos", "http://www.w3.org/2004/02/skos/core#"},
	{"schema", "http://schema.org/"},
}

var topClasses = []Term{
	IRI{IRI: "http://www.w3.org/2000/01/rdf-schema#Class"},
}

// Predicate ordering: rdf:type, rdfs:label and dc:title first, then the
// rest lexicographically, with rdf container membership properties
// (rdf:_1, rdf:_2, ...) compared numerically.
var preferredPredicates = []IRI{
	rdfType,
	{IRI: "http://www.w3.org/2000/01/rdf-schema#label"},
	{IRI: "http://purl.org/dc/elements/1.1/title"},
}

func sortPredicates(props map[IRI][]Term) []IRI {
	var preferred, rest []IRI
	inPreferred := make(map[IRI]bool)
	for _, p := range preferredPredicates {
		if _, ok := props[p]; ok {
			preferred = append(preferred, p)
			inPreferred[p] = true
		}
	}
	for p := range props {
		if !inPreferred[p] {
			rest = append(rest, p)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		ni, iok := containerMemberN(rest[i])
		nj, jok := containerMemberN(rest[j])
		if iok && jok {
			return ni < nj
		}
		return rest[i].IRI < rest[j].IRI
	})
	return append(preferred, rest...)
}

func containerMemberN(p IRI) (int, bool) {
	if !strings.HasPrefix(p.IRI, rdfNS+"_") {
		return 0, false
	}
	n, err := strconv.Atoi(p.IRI[len(rdfNS)+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// errWriter latches the first write error so the emission code can stay
// error-free.
type errWriter struct {
	w   *bufio.Writer
	err error
}

func (ew *errWriter) write(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = ew.w.WriteString(s)
}
