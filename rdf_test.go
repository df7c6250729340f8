package turtle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knakk/turtle"
	"github.com/knakk/turtle/xsd"
)

func TestTermConstructors(t *testing.T) {
	_, err := turtle.NewIRI("")
	assert.Equal(t, turtle.ErrIRIEmptyInput, err)

	_, err = turtle.NewIRI("http://example.org/a b")
	assert.Equal(t, turtle.ErrIRIInvalidCharacters, err)

	iri, err := turtle.NewIRI("http://example.org/resource")
	require.NoError(t, err)
	assert.Equal(t, "<http://example.org/resource>", iri.String())

	_, err = turtle.NewBlank("  ")
	assert.Equal(t, turtle.ErrBlankNodeMissingID, err)

	b, err := turtle.NewBlank("b1")
	require.NoError(t, err)
	assert.Equal(t, "_:b1", b.String())
}

func TestTermEq(t *testing.T) {
	a := turtle.IRI{IRI: "http://e/a"}
	assert.True(t, a.Eq(turtle.IRI{IRI: "http://e/a"}))
	assert.False(t, a.Eq(turtle.IRI{IRI: "http://e/b"}))
	assert.False(t, a.Eq(turtle.Blank{ID: "a"}))

	l1 := turtle.NewLangLiteral("hi", "en")
	l2 := turtle.NewLangLiteral("hi", "no")
	assert.False(t, l1.Eq(l2))
	assert.True(t, l1.Eq(turtle.NewLangLiteral("hi", "en")))

	typed := turtle.NewTypedLiteral("1", xsd.Integer)
	plain := turtle.NewTypedLiteral("1", xsd.String)
	assert.False(t, typed.Eq(plain))
}

func TestGraph(t *testing.T) {
	s := turtle.IRI{IRI: "http://e/s"}
	p := turtle.IRI{IRI: "http://e/p"}
	q := turtle.IRI{IRI: "http://e/q"}
	o1 := turtle.IRI{IRI: "http://e/o1"}
	o2 := turtle.NewTypedLiteral("x", xsd.String)

	g := turtle.NewGraph()
	g.Insert(turtle.Triple{Subj: s, Pred: p, Obj: o1})
	g.Insert(turtle.Triple{Subj: s, Pred: p, Obj: o1}) // duplicate
	g.Insert(turtle.Triple{Subj: s, Pred: q, Obj: o2})
	g.Insert(turtle.Triple{Subj: o1, Pred: p, Obj: o2})

	assert.Equal(t, 3, g.Len())
	assert.Len(t, g.Query(s, nil, nil), 2)
	assert.Len(t, g.Query(nil, p, nil), 2)
	assert.Len(t, g.Query(nil, nil, o2), 2)
	assert.Len(t, g.Query(s, p, o1), 1)
	assert.Empty(t, g.Query(o2, nil, nil))

	props := g.Properties(s)
	require.Len(t, props, 2)
	assert.Equal(t, []turtle.Term{o1}, props[p])
	assert.Equal(t, []turtle.Term{o2}, props[q])

	subjects := g.Subjects()
	assert.Equal(t, []turtle.Term{s, o1}, subjects)
}

func TestFormatRegistration(t *testing.T) {
	f := turtle.TurtleFormat
	assert.Equal(t, "text/turtle", f.ContentTypes[0])
	assert.True(t, f.MatchesContentType("text/turtle"))
	assert.True(t, f.MatchesContentType("application/x-turtle; charset=utf-8"))
	assert.False(t, f.MatchesContentType("application/rdf+xml"))
	assert.True(t, f.MatchesFilename("data.TTL"))
	assert.False(t, f.MatchesFilename("data.nt"))
	assert.Equal(t, "utf-8", f.Encoding)
}
