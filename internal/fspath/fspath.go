package fspath

import (
	"fmt"
	"strings"

	"flame/cli/internal/apperr"
)

func segments(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsDocumentPath reports whether path has an even number of segments.
// The empty path counts as even; use Parse to reject it.
func IsDocumentPath(path string) bool {
	return len(segments(path))%2 == 0
}

// DocumentID returns the trailing segment of a document path.
func DocumentID(path string) (string, bool) {
	segs := segments(path)
	if len(segs) == 0 || len(segs)%2 != 0 {
		return "", false
	}
	return segs[len(segs)-1], true
}

// Path is a parsed, non-empty Firestore path.
type Path struct {
	segs []string
}

func Parse(path string) (Path, error) {
	segs := segments(path)
	if len(segs) == 0 {
		return Path{}, fmt.Errorf("%w: path %q has no segments", apperr.ErrValidation, path)
	}
	return Path{segs: segs}, nil
}

func (p Path) Segments() []string {
	out := make([]string, len(p.segs))
	copy(out, p.segs)
	return out
}

func (p Path) IsDocument() bool   { return len(p.segs)%2 == 0 }
func (p Path) IsCollection() bool { return len(p.segs)%2 == 1 }

// ID is the trailing segment: the document id or the collection id.
func (p Path) ID() string {
	if len(p.segs) == 0 {
		return ""
	}
	return p.segs[len(p.segs)-1]
}

// Parent returns the enclosing path, or false for a root collection.
func (p Path) Parent() (Path, bool) {
	if len(p.segs) <= 1 {
		return Path{}, false
	}
	return Path{segs: p.segs[:len(p.segs)-1]}, true
}

func (p Path) Child(id string) Path {
	segs := make([]string, 0, len(p.segs)+1)
	segs = append(segs, p.segs...)
	return Path{segs: append(segs, id)}
}

func (p Path) Kind() string {
	if p.IsDocument() {
		return "document"
	}
	return "collection"
}

func (p Path) String() string { return strings.Join(p.segs, "/") }
