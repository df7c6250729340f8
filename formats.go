package turtle

import "strings"

// Format describes a serialization format handled by this package.
type Format struct {
	Name         string
	ContentTypes []string
	Extensions   []string
	Encoding     string
}

// TurtleFormat is the format this package reads and writes. The first
// content type is the canonical one.
var TurtleFormat = Format{
	Name: "Turtle",
	ContentTypes: []string{
		"text/turtle",
		"text/rdf+turtle",
		"application/turtle",
		"application/x-turtle",
	},
	Extensions: []string{".ttl"},
	Encoding:   "utf-8",
}

// MatchesContentType reports whether the format is registered for the given
// MIME type. Any parameters (e.g. ;charset=) are ignored.
func (f Format) MatchesContentType(ct string) bool {
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.ToLower(strings.TrimSpace(ct))
	for _, t := range f.ContentTypes {
		if t == ct {
			return true
		}
	}
	return false
}

// MatchesFilename reports whether the format is registered for the file
// extension of the given filename.
func (f Format) MatchesFilename(name string) bool {
	for _, ext := range f.Extensions {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			return true
		}
	}
	return false
}
