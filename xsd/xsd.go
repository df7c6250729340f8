// Package xsd exports IRIs of xsd datatypes.
package xsd

import "github.com/knakk/turtle"

// The XML schema built-in datatypes (xsd):
// https://dvcs.w3.org/hg/rdf/raw-file/default/rdf-concepts/index.html#xsd-datatypes
var (
	// Core types:

	String  = turtle.IRI{IRI: "http://www.w3.org/2001/XMLSchema#string"}
	Boolean = turtle.IRI{IRI: "http://www.w3.org/2001/XMLSchema#boolean"}
	Decimal = turtle.IRI{IRI: "http://www.w3.org/2001/XMLSchema#decimal"}
	Integer = turtle.IRI{IRI: "http://www.w3.org/2001/XMLSchema#integer"}

	// IEEE floating-point numbers:

	Double = turtle.IRI{IRI: "http://www.w3.org/2001/XMLSchema#double"}
	Float  = turtle.IRI{IRI: "http://www.w3.org/2001/XMLSchema#float"}

	// Time and date:

	Date     = turtle.IRI{IRI: "http://www.w3.org/2001/XMLSchema#date"}
	Time     = turtle.IRI{IRI: "http://www.w3.org/2001/XMLSchema#time"}
	DateTime = turtle.IRI{IRI: "http://www.w3.org/2001/XMLSchema#dateTime"}

	// Limited-range integer numbers:

	Byte = turtle.IRI{IRI: "http://www.w3.org/2001/XMLSchema#byte"}
	Int  = turtle.IRI{IRI: "http://www.w3.org/2001/XMLSchema#int"}
	Long = turtle.IRI{IRI: "http://www.w3.org/2001/XMLSchema#long"}
)
