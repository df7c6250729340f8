package turtle

import "github.com/knakk/turtle/parser"

// The LL(1) tables for the Turtle grammar, in the shape the parser engine
// consumes: BRANCH[nonterminal][token repr] = branch body, plus the FIRST
// and FOLLOW sets used for panic-mode recovery. The grammar is the W3C
// Turtle grammar with its repetitions factored into tail productions.

func union(sets ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, set := range sets {
		for _, s := range set {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

var (
	firstIRI       = []string{tIRIRef, tPNameLN, tPNameNS}
	firstBlank     = []string{tBlankNodeLabel, tAnon}
	firstString    = []string{tStringLongQuote, tStringLongSingle, tStringQuote, tStringSingle}
	firstNumeric   = []string{tInteger, tDecimal, tDouble}
	firstBoolean   = []string{"true", "false"}
	firstLiteral   = union(firstString, firstNumeric, firstBoolean)
	firstVerb      = union(firstIRI, []string{"a"})
	firstSubject   = union(firstIRI, firstBlank, []string{"("})
	firstObject    = union(firstIRI, firstBlank, []string{"(", "["}, firstLiteral)
	firstDirective = []string{"@prefix", "@base", tSparqlPrefix, tSparqlBase}
	firstTriples   = union(firstSubject, []string{"["})
	firstStatement = union(firstDirective, firstTriples)

	followObject = union([]string{",", ";", ".", "]", ")"}, firstObject)
	followIRI    = union(firstVerb, followObject)
)

var turtleBranch = func() map[string]map[string][]string {
	b := make(map[string]map[string][]string)
	add := func(nt string, keys []string, body ...string) {
		row, ok := b[nt]
		if !ok {
			row = make(map[string][]string)
			b[nt] = row
		}
		for _, k := range keys {
			row[k] = body
		}
	}
	nullable := func(nt string) {
		add(nt, []string{parser.Epsilon})
	}

	add("turtleDoc", firstStatement, "statement", "turtleDoc")
	nullable("turtleDoc")

	add("statement", firstDirective, "directive")
	add("statement", firstTriples, "triples", ".")

	add("directive", []string{"@prefix"}, "prefixID")
	add("directive", []string{"@base"}, "base")
	add("directive", []string{tSparqlPrefix}, "sparqlPrefix")
	add("directive", []string{tSparqlBase}, "sparqlBase")

	add("prefixID", []string{"@prefix"}, "@prefix", tPNameNS, tIRIRef, ".")
	add("base", []string{"@base"}, "@base", tIRIRef, ".")
	add("sparqlPrefix", []string{tSparqlPrefix}, tSparqlPrefix, tPNameNS, tIRIRef)
	add("sparqlBase", []string{tSparqlBase}, tSparqlBase, tIRIRef)

	add("triples", firstSubject, "subject", "predicateObjectList")
	add("triples", []string{"["}, "blankNodePropertyList", "predicateObjectListOpt")

	add("predicateObjectListOpt", firstVerb, "predicateObjectList")
	nullable("predicateObjectListOpt")

	add("predicateObjectList", firstVerb, "verb", "objectList", "predicateObjectListTail")
	add("predicateObjectListTail", []string{";"}, ";", "verbObjectListOpt", "predicateObjectListTail")
	nullable("predicateObjectListTail")
	add("verbObjectListOpt", firstVerb, "verb", "objectList")
	nullable("verbObjectListOpt")

	add("objectList", firstObject, "object", "objectListTail")
	add("objectListTail", []string{","}, ",", "object", "objectListTail")
	nullable("objectListTail")

	add("verb", firstIRI, "predicate")
	add("verb", []string{"a"}, "a")
	add("predicate", firstIRI, "iri")

	add("subject", firstIRI, "iri")
	add("subject", firstBlank, "BlankNode")
	add("subject", []string{"("}, "collection")

	add("object", firstIRI, "iri")
	add("object", firstBlank, "BlankNode")
	add("object", []string{"("}, "collection")
	add("object", []string{"["}, "blankNodePropertyList")
	add("object", firstLiteral, "literal")

	add("literal", firstString, "RDFLiteral")
	add("literal", firstNumeric, "NumericLiteral")
	add("literal", firstBoolean, "BooleanLiteral")

	add("RDFLiteral", firstString, "String", "literalSuffix")
	add("literalSuffix", []string{tLangTag}, tLangTag)
	add("literalSuffix", []string{"^^"}, "^^", "iri")
	nullable("literalSuffix")

	add("NumericLiteral", []string{tInteger}, tInteger)
	add("NumericLiteral", []string{tDecimal}, tDecimal)
	add("NumericLiteral", []string{tDouble}, tDouble)
	add("BooleanLiteral", []string{"true"}, "true")
	add("BooleanLiteral", []string{"false"}, "false")
	for _, k := range firstString {
		add("String", []string{k}, k)
	}

	add("iri", []string{tIRIRef}, tIRIRef)
	add("iri", []string{tPNameLN, tPNameNS}, "PrefixedName")
	add("PrefixedName", []string{tPNameLN}, tPNameLN)
	add("PrefixedName", []string{tPNameNS}, tPNameNS)

	add("BlankNode", []string{tBlankNodeLabel}, tBlankNodeLabel)
	add("BlankNode", []string{tAnon}, tAnon)

	add("blankNodePropertyList", []string{"["}, "[", "predicateObjectList", "]")
	add("collection", []string{"("}, "(", "collectionItems", ")")
	add("collectionItems", firstObject, "object", "collectionItems")
	nullable("collectionItems")

	return b
}()

var turtleFirst = map[string][]string{
	"turtleDoc":               firstStatement,
	"statement":               firstStatement,
	"directive":               firstDirective,
	"prefixID":                {"@prefix"},
	"base":                    {"@base"},
	"sparqlPrefix":            {tSparqlPrefix},
	"sparqlBase":              {tSparqlBase},
	"triples":                 firstTriples,
	"predicateObjectListOpt":  firstVerb,
	"predicateObjectList":     firstVerb,
	"predicateObjectListTail": {";"},
	"verbObjectListOpt":       firstVerb,
	"objectList":              firstObject,
	"objectListTail":          {","},
	"verb":                    firstVerb,
	"predicate":               firstIRI,
	"subject":                 firstSubject,
	"object":                  firstObject,
	"literal":                 firstLiteral,
	"RDFLiteral":              firstString,
	"literalSuffix":           {tLangTag, "^^"},
	"NumericLiteral":          firstNumeric,
	"BooleanLiteral":          firstBoolean,
	"String":                  firstString,
	"iri":                     firstIRI,
	"PrefixedName":            {tPNameLN, tPNameNS},
	"BlankNode":               firstBlank,
	"blankNodePropertyList":   {"["},
	"collection":              {"("},
	"collectionItems":         firstObject,
}

var turtleFollow = map[string][]string{
	"turtleDoc":               {},
	"statement":               firstStatement,
	"directive":               firstStatement,
	"prefixID":                firstStatement,
	"base":                    firstStatement,
	"sparqlPrefix":            firstStatement,
	"sparqlBase":              firstStatement,
	"triples":                 {"."},
	"subject":                 firstVerb,
	"predicateObjectList":     {".", "]"},
	"predicateObjectListOpt":  {"."},
	"predicateObjectListTail": {".", "]"},
	"verbObjectListOpt":       {";", ".", "]"},
	"objectList":              {";", ".", "]"},
	"objectListTail":          {";", ".", "]"},
	"verb":                    firstObject,
	"predicate":               firstObject,
	"object":                  followObject,
	"literal":                 followObject,
	"RDFLiteral":              followObject,
	"literalSuffix":           followObject,
	"NumericLiteral":          followObject,
	"BooleanLiteral":          followObject,
	"String":                  union([]string{tLangTag, "^^"}, followObject),
	"iri":                     followIRI,
	"PrefixedName":            followIRI,
	"BlankNode":               union(firstVerb, followObject),
	"collection":              union(firstVerb, followObject),
	"blankNodePropertyList":   union(firstVerb, []string{"."}, followObject),
	"collectionItems":         {")"},
}
