// Package memstore is an in-memory store.Store. It records every call so
// tests can assert on the exact writes an engine issued.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"flame/cli/internal/apperr"
	"flame/cli/internal/store"
	"flame/cli/internal/value"
)

type Op string

const (
	OpGet    Op = "get"
	OpSet    Op = "set"
	OpDelete Op = "delete"
	OpAdd    Op = "add"
	OpQuery  Op = "query"
	OpTxn    Op = "transaction"
)

type Call struct {
	Op    Op
	Path  string
	Data  *value.Map
	Merge bool
	Limit int
}

type Option func(*Store)

// WithClock fixes the write times reported by the store.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	mu       sync.Mutex
	docs     map[string]*value.Map
	calls    []Call
	failures map[failKey]error
	now      func() time.Time
}

type failKey struct {
	op   Op
	path string
}

func New(opts ...Option) *Store {
	s := &Store{
		docs:     map[string]*value.Map{},
		failures: map[failKey]error{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Put seeds a document without recording a call.
func (s *Store) Put(path string, data *value.Map) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[clean(path)] = data.Clone()
}

// Data returns a copy of the document at path.
func (s *Store) Data(path string) (*value.Map, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[clean(path)]
	if !ok {
		return nil, false
	}
	return d.Clone(), true
}

// FailOn makes the next and all later calls of op on path return err.
func (s *Store) FailOn(op Op, path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[failKey{op: op, path: clean(path)}] = err
}

func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsOf returns the recorded calls of a single kind.
func (s *Store) CallsOf(op Op) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func clean(path string) string {
	return strings.Trim(path, "/")
}

func parentOf(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return ""
	}
	return path[:i]
}

func idOf(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}

// must be called with mu held.
func (s *Store) record(c Call) error {
	c.Path = clean(c.Path)
	s.calls = append(s.calls, c)
	if err, ok := s.failures[failKey{op: c.Op, path: c.Path}]; ok {
		return fmt.Errorf("%w: %s %s: %w", apperr.ErrConnection, c.Op, c.Path, err)
	}
	return nil
}

func (s *Store) snapshot(path string) *store.Snapshot {
	d, ok := s.docs[path]
	if !ok {
		return &store.Snapshot{Exists: false, Document: store.Document{ID: idOf(path), Path: path}}
	}
	return &store.Snapshot{Exists: true, Document: store.Document{ID: idOf(path), Path: path, Data: d.Clone()}}
}

func (s *Store) write(path string, data *value.Map, merge bool) {
	if existing, ok := s.docs[path]; ok && merge {
		existing.Merge(data)
		return
	}
	s.docs[path] = data.Clone()
}

func (s *Store) Get(ctx context.Context, path string) (*store.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(Call{Op: OpGet, Path: path}); err != nil {
		return nil, err
	}
	return s.snapshot(clean(path)), nil
}

func (s *Store) Set(ctx context.Context, path string, data *value.Map, opts store.SetOptions) (store.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(Call{Op: OpSet, Path: path, Data: data.Clone(), Merge: opts.Merge}); err != nil {
		return store.WriteResult{}, err
	}
	s.write(clean(path), data, opts.Merge)
	return store.WriteResult{UpdateTime: s.now()}, nil
}

func (s *Store) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(Call{Op: OpDelete, Path: path}); err != nil {
		return err
	}
	delete(s.docs, clean(path))
	return nil
}

func (s *Store) Add(ctx context.Context, collection string, data *value.Map) (string, store.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(Call{Op: OpAdd, Path: collection, Data: data.Clone()}); err != nil {
		return "", store.WriteResult{}, err
	}
	id := newID()
	for s.docs[clean(collection)+"/"+id] != nil {
		id = newID()
	}
	s.docs[clean(collection)+"/"+id] = data.Clone()
	return id, store.WriteResult{UpdateTime: s.now()}, nil
}

// newID mimics Firestore's 20 character auto ids.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}

func (s *Store) Query(ctx context.Context, collection string, q store.Query) ([]store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(Call{Op: OpQuery, Path: collection, Limit: q.Limit}); err != nil {
		return nil, err
	}
	col := clean(collection)
	var paths []string
	for p := range s.docs {
		if parentOf(p) == col {
			paths = append(paths, p)
		}
	}
	sort.Slice(paths, func(i, j int) bool { return idOf(paths[i]) < idOf(paths[j]) })
	if q.Limit > 0 && len(paths) > q.Limit {
		paths = paths[:q.Limit]
	}
	out := make([]store.Document, 0, len(paths))
	for _, p := range paths {
		out = append(out, s.snapshot(p).Document)
	}
	return out, nil
}

func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	for p := range s.docs {
		seen[strings.SplitN(p, "/", 2)[0]] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

// RunTransaction holds the store lock for the whole of fn and applies the
// buffered writes only when fn succeeds.
func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(Call{Op: OpTxn}); err != nil {
		return err
	}
	tx := &memTx{s: s}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for _, w := range tx.writes {
		if w.del {
			delete(s.docs, w.path)
			continue
		}
		s.write(w.path, w.data, false)
	}
	return nil
}

type pendingWrite struct {
	path string
	data *value.Map
	del  bool
}

type memTx struct {
	s      *Store
	writes []pendingWrite
}

func (t *memTx) Get(path string) (*store.Snapshot, error) {
	if len(t.writes) > 0 {
		return nil, fmt.Errorf("%w: transaction reads must precede writes", apperr.ErrValidation)
	}
	if err := t.s.record(Call{Op: OpGet, Path: path}); err != nil {
		return nil, err
	}
	return t.s.snapshot(clean(path)), nil
}

func (t *memTx) Set(path string, data *value.Map) error {
	if err := t.s.record(Call{Op: OpSet, Path: path, Data: data.Clone()}); err != nil {
		return err
	}
	t.writes = append(t.writes, pendingWrite{path: clean(path), data: data.Clone()})
	return nil
}

func (t *memTx) Delete(path string) error {
	if err := t.s.record(Call{Op: OpDelete, Path: path}); err != nil {
		return err
	}
	t.writes = append(t.writes, pendingWrite{path: clean(path), del: true})
	return nil
}

// Plain hides RunTransaction, for exercising callers against a backend
// without transactions.
func (s *Store) Plain() store.Store {
	return plain{s}
}

type plain struct {
	store.Store
}

var (
	_ store.Store         = (*Store)(nil)
	_ store.Transactional = (*Store)(nil)
)
