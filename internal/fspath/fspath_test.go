package fspath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flame/cli/internal/apperr"
)

func TestIsDocumentPath(t *testing.T) {
	cases := []struct {
		path string
		doc  bool
	}{
		{"users", false},
		{"users/", false},
		{"/users", false},
		{"users/u1", true},
		{"/users/u1/", true},
		{"users//u1", true},
		{"users/u1/posts", false},
		{"users/u1/posts/p1", true},
		{"", true},
	}
	for _, c := range cases {
		assert.Equal(t, c.doc, IsDocumentPath(c.path), c.path)
	}
}

func TestDocumentID(t *testing.T) {
	id, ok := DocumentID("users/u1")
	assert.True(t, ok)
	assert.Equal(t, "u1", id)

	id, ok = DocumentID("/users/u1/posts/p9/")
	assert.True(t, ok)
	assert.Equal(t, "p9", id)

	for _, p := range []string{"users", "users/u1/posts", ""} {
		_, ok := DocumentID(p)
		assert.False(t, ok, p)
	}
}

func TestParse(t *testing.T) {
	p, err := Parse("/users/u1/posts/")
	require.NoError(t, err)
	assert.Equal(t, "users/u1/posts", p.String())
	assert.True(t, p.IsCollection())
	assert.Equal(t, "collection", p.Kind())
	assert.Equal(t, "posts", p.ID())

	parent, ok := p.Parent()
	require.True(t, ok)
	assert.Equal(t, "users/u1", parent.String())
	assert.True(t, parent.IsDocument())

	child := p.Child("p1")
	assert.Equal(t, "users/u1/posts/p1", child.String())
	assert.Equal(t, "users/u1/posts", p.String(), "Child must not alias the receiver")

	root, _ := Parse("users")
	_, ok = root.Parent()
	assert.False(t, ok)
}

func TestParseRejectsEmpty(t *testing.T) {
	for _, in := range []string{"", "/", "///"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, apperr.ErrValidation, in)
	}
}
