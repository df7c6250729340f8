// Package turtle reads and writes the Turtle serialization of RDF graphs.
//
// Reading is done by a regular-expression driven lexer feeding a
// table-driven LL(1) parser; writing by a graph serializer that discovers
// prefixes, abbreviates collections and nests anonymous blank nodes. See
// Decoder and Encoder for the two entry points.
package turtle

import (
	"errors"
	"fmt"
	"strings"
)

// Exported errors.
var (
	ErrBlankNodeMissingID   = errors.New("blank node cannot have an empty ID")
	ErrIRIEmptyInput        = errors.New("IRI cannot be an empty string")
	ErrIRIInvalidCharacters = errors.New(`IRI cannot contain space or any of the characters: <>"{}|\^` + "`")
)

// TermType describes the type of an RDF term.
type TermType int

// Exported RDF term types.
const (
	TermBlank TermType = iota
	TermIRI
	TermLiteral
)

// Term is the interface for the RDF term types: blank node, literal and IRI.
type Term interface {
	// String returns the string representation of the term, in the form
	// used by N-Triples. It is used for sorting and as a map key.
	String() string

	// Eq tests for equality with another RDF term.
	Eq(other Term) bool

	// Type returns the RDF term type.
	Type() TermType
}

// IRI represents an RDF IRI resource.
type IRI struct {
	IRI string
}

// String returns the string representation of an IRI.
func (u IRI) String() string {
	return "<" + u.IRI + ">"
}

// Eq tests an IRI's equality with other RDF terms.
func (u IRI) Eq(other Term) bool {
	return other != nil && other.Type() == TermIRI && u.String() == other.String()
}

// Type returns the TermType of an IRI.
func (u IRI) Type() TermType {
	return TermIRI
}

// NewIRI returns a new IRI, or an error if it's not valid.
func NewIRI(iri string) (IRI, error) {
	if len(strings.TrimSpace(iri)) == 0 {
		return IRI{}, ErrIRIEmptyInput
	}
	for _, r := range iri {
		switch r {
		case ' ', '<', '>', '"', '{', '}', '|', '^', '`', '\\':
			return IRI{}, ErrIRIInvalidCharacters
		}
	}
	return IRI{IRI: iri}, nil
}

// Blank represents an RDF blank node; an unqualified resource with an ID.
type Blank struct {
	ID string
}

// String returns the string representation of a blank node.
func (b Blank) String() string {
	return "_:" + b.ID
}

// Eq tests a blank node's equality with other RDF terms.
func (b Blank) Eq(other Term) bool {
	return other != nil && other.Type() == TermBlank && b.String() == other.String()
}

// Type returns the TermType of a blank node.
func (b Blank) Type() TermType {
	return TermBlank
}

// NewBlank returns a new blank node with a given ID. It returns an error
// only if the supplied ID is blank.
func NewBlank(id string) (Blank, error) {
	if len(strings.TrimSpace(id)) == 0 {
		return Blank{}, ErrBlankNodeMissingID
	}
	return Blank{ID: id}, nil
}

// Literal represents an RDF literal; a value with a datatype and
// (optionally) an associated language tag.
type Literal struct {
	// Val is the lexical form of the literal.
	Val string

	// Lang, if not empty, is the language tag of the literal.
	Lang string

	// DataType is the datatype of the literal. The zero value is treated
	// as xsd:string.
	DataType IRI
}

// String returns the string representation of a Literal.
func (l Literal) String() string {
	switch {
	case l.Lang != "":
		return fmt.Sprintf("%q@%s", l.Val, l.Lang)
	case l.DataType.IRI == "" || l.DataType == xsdString:
		return fmt.Sprintf("%q", l.Val)
	default:
		return fmt.Sprintf("%q^^%s", l.Val, l.DataType)
	}
}

// Eq tests a Literal's equality with other RDF terms.
func (l Literal) Eq(other Term) bool {
	return other != nil && other.Type() == TermLiteral && l.String() == other.String()
}

// Type returns the TermType of a Literal.
func (l Literal) Type() TermType {
	return TermLiteral
}

// NewLangLiteral creates an RDF literal with a given language tag. No
// validation is performed against the BCP 47 spec.
func NewLangLiteral(val, lang string) Literal {
	return Literal{Val: val, Lang: lang, DataType: rdfLangString}
}

// NewTypedLiteral creates an RDF literal with the given datatype.
func NewTypedLiteral(val string, datatype IRI) Literal {
	return Literal{Val: val, DataType: datatype}
}

// Triple represents an RDF triple.
type Triple struct {
	Subj, Pred, Obj Term
}

// String returns the N-Triples representation of the triple.
func (t Triple) String() string {
	return t.Subj.String() + " " + t.Pred.String() + " " + t.Obj.String() + " ."
}

// Eq tests two triples for equality.
func (t Triple) Eq(other Triple) bool {
	return t.Subj.Eq(other.Subj) && t.Pred.Eq(other.Pred) && t.Obj.Eq(other.Obj)
}

// The RDF vocabulary terms the codec itself needs.
const rdfNS = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

var (
	rdfType       = IRI{IRI: rdfNS + "type"}
	rdfFirst      = IRI{IRI: rdfNS + "first"}
	rdfRest       = IRI{IRI: rdfNS + "rest"}
	rdfNil        = IRI{IRI: rdfNS + "nil"}
	rdfLangString = IRI{IRI: rdfNS + "langString"}
)

// The xsd datatypes the codec maps shorthand literals to. The xsd
// subpackage exports these and a few more.
var (
	xsdString  = IRI{IRI: "http://www.w3.org/2001/XMLSchema#string"}
	xsdBoolean = IRI{IRI: "http://www.w3.org/2001/XMLSchema#boolean"}
	xsdInteger = IRI{IRI: "http://www.w3.org/2001/XMLSchema#integer"}
	xsdDecimal = IRI{IRI: "http://www.w3.org/2001/XMLSchema#decimal"}
	xsdDouble  = IRI{IRI: "http://www.w3.org/2001/XMLSchema#double"}
)
