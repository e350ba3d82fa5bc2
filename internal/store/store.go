package store

import (
	"context"
	"time"

	"flame/cli/internal/value"
)

// Document is a fetched document. Data is never nil for an existing document.
type Document struct {
	ID   string
	Path string
	Data *value.Map
}

// Snapshot is the result of a point read. Exists is false for a missing document.
type Snapshot struct {
	Exists bool
	Document
}

type SetOptions struct {
	Merge bool
}

type WriteResult struct {
	UpdateTime time.Time
}

// Query selects documents of one collection ordered by id ascending.
// Limit <= 0 means no limit.
type Query struct {
	Limit int
}

// Store is the database capability the engines consume. Paths are slash
// separated and already validated by the caller.
type Store interface {
	Get(ctx context.Context, path string) (*Snapshot, error)
	Set(ctx context.Context, path string, data *value.Map, opts SetOptions) (WriteResult, error)
	Delete(ctx context.Context, path string) error
	Add(ctx context.Context, collection string, data *value.Map) (string, WriteResult, error)
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	ListCollections(ctx context.Context) ([]string, error)
}

// Tx is the view of a store inside a transaction. Reads must precede writes.
type Tx interface {
	Get(path string) (*Snapshot, error)
	Set(path string, data *value.Map) error
	Delete(path string) error
}

// Transactional stores can run fn atomically. An error returned by fn aborts
// the transaction and is returned unchanged when it carries an apperr kind.
type Transactional interface {
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
