// Command turtle reads Turtle documents and writes them back as pretty
// printed Turtle, or dumps the token stream or the triple count for
// debugging.
//
//	turtle [OPTIONS] [FILE ...]
//
// With no files, input is read from stdin.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pborman/getopt"

	"github.com/knakk/turtle"
)

func main() {
	var (
		output       string
		base         string
		lexOnly      bool
		parseOnly    bool
		validate     bool
		canonicalize bool
		verbose      bool
		quiet        bool
		help         bool
	)
	getopt.StringVarLong(&output, "output", 'o', "write output to FILE instead of stdout", "FILE")
	getopt.StringVarLong(&base, "base", 0, "base IRI for resolving relative references", "IRI")
	getopt.BoolVarLong(&lexOnly, "lex-only", 0, "dump the token stream and exit")
	getopt.BoolVarLong(&parseOnly, "parse-only", 0, "parse and report the triple count, but write nothing")
	getopt.BoolVarLong(&validate, "validate", 0, "stop at the first syntax error")
	getopt.BoolVarLong(&canonicalize, "canonicalize", 0, "canonicalize literals in the output")
	getopt.BoolVarLong(&verbose, "verbose", 'v', "trace parser progress to stderr")
	getopt.BoolVarLong(&quiet, "quiet", 'q', "suppress error details")
	getopt.BoolVarLong(&help, "help", '?', "display help")
	getopt.SetParameters("[FILE ...]")
	getopt.Parse()

	if help {
		getopt.PrintUsage(os.Stdout)
		return
	}

	in, name, err := openInput(getopt.Args())
	if err != nil {
		fail(quiet, err)
	}
	defer in.Close()

	out := io.Writer(os.Stdout)
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			fail(quiet, err)
		}
		defer f.Close()
		out = f
	}

	if name != "" && verbose && !turtle.TurtleFormat.MatchesFilename(name) {
		fmt.Fprintf(os.Stderr, "%s: not a %s extension, reading as Turtle anyway\n", name, turtle.TurtleFormat.Extensions[0])
	}

	if lexOnly {
		tokens, err := turtle.Tokenize(in)
		for _, tok := range tokens {
			kind := tok.Kind
			if kind == "" {
				kind = "KEYWORD"
			}
			fmt.Fprintf(out, "%d\t%s\t%q\n", tok.Line, kind, tok.Value)
		}
		if err != nil {
			fail(quiet, err)
		}
		return
	}

	dec := turtle.NewDecoder(in)
	dec.SetValidate(validate)
	if base != "" {
		iri, err := turtle.NewIRI(base)
		if err != nil {
			fail(quiet, err)
		}
		dec.SetBase(iri)
	}
	if verbose {
		dec.SetTrace(func(line int, message string) {
			fmt.Fprintf(os.Stderr, "%d: %s\n", line, message)
		})
	}

	triples, err := dec.DecodeAll()
	if err != nil {
		fail(quiet, err)
	}

	if parseOnly {
		fmt.Fprintf(out, "%d triples\n", len(triples))
		return
	}

	enc := turtle.NewEncoder(out)
	enc.StandardPrefixes = true
	enc.Canonicalize = canonicalize
	enc.Base = base
	for _, t := range triples {
		if err := enc.WriteStatement(t); err != nil {
			fail(quiet, err)
		}
	}
	if err := enc.WriteEpilogue(); err != nil {
		fail(quiet, err)
	}
}

func openInput(args []string) (io.ReadCloser, string, error) {
	if len(args) == 0 {
		return io.NopCloser(os.Stdin), "", nil
	}
	if len(args) == 1 {
		f, err := os.Open(args[0])
		return f, args[0], err
	}
	// Concatenate multiple inputs into one document.
	var readers []io.Reader
	var closers []io.Closer
	for _, a := range args {
		f, err := os.Open(a)
		if err != nil {
			for _, c := range closers {
				c.Close()
			}
			return nil, "", err
		}
		readers = append(readers, f, io.Reader(newline{}))
		closers = append(closers, f)
	}
	return &multiFile{Reader: io.MultiReader(readers...), closers: closers}, args[0], nil
}

type newline struct{}

func (newline) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = '\n'
	return 1, io.EOF
}

type multiFile struct {
	io.Reader
	closers []io.Closer
}

func (m *multiFile) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func fail(quiet bool, err error) {
	if !quiet {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}
