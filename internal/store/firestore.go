package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"flame/cli/internal/apperr"
	"flame/cli/internal/value"
)

// ClientProvider hands out the process-wide Firestore client, creating it on
// first use.
type ClientProvider interface {
	Firestore(ctx context.Context) (*firestore.Client, error)
}

type Firestore struct {
	clients ClientProvider
}

func NewFirestore(clients ClientProvider) *Firestore {
	return &Firestore{clients: clients}
}

func (s *Firestore) client(ctx context.Context) (*firestore.Client, error) {
	c, err := s.clients.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: firestore client: %w", apperr.ErrConnection, err)
	}
	return c, nil
}

func (s *Firestore) doc(ctx context.Context, path string) (*firestore.DocumentRef, error) {
	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	ref := c.Doc(path)
	if ref == nil {
		return nil, fmt.Errorf("%w: %q is not a document path", apperr.ErrValidation, path)
	}
	return ref, nil
}

func (s *Firestore) collection(ctx context.Context, path string) (*firestore.CollectionRef, error) {
	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	ref := c.Collection(path)
	if ref == nil {
		return nil, fmt.Errorf("%w: %q is not a collection path", apperr.ErrValidation, path)
	}
	return ref, nil
}

func (s *Firestore) Get(ctx context.Context, path string) (*Snapshot, error) {
	ref, err := s.doc(ctx, path)
	if err != nil {
		return nil, err
	}
	snap, err := ref.Get(ctx)
	return snapshotFrom(path, snap, err)
}

func snapshotFrom(path string, snap *firestore.DocumentSnapshot, err error) (*Snapshot, error) {
	if status.Code(err) == codes.NotFound || (err == nil && !snap.Exists()) {
		return &Snapshot{Exists: false, Document: Document{Path: path}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", apperr.ErrConnection, path, err)
	}
	return &Snapshot{Exists: true, Document: toDocument(snap)}, nil
}

func (s *Firestore) Set(ctx context.Context, path string, data *value.Map, opts SetOptions) (WriteResult, error) {
	ref, err := s.doc(ctx, path)
	if err != nil {
		return WriteResult{}, err
	}
	res, err := ref.Set(ctx, data.Native(), setOptions(data, opts)...)
	if err != nil {
		return WriteResult{}, fmt.Errorf("%w: set %s: %w", apperr.ErrConnection, path, err)
	}
	return WriteResult{UpdateTime: res.UpdateTime}, nil
}

// setOptions maps a merge onto the top-level fields of data, so nested maps
// are replaced rather than merged leaf by leaf.
func setOptions(data *value.Map, opts SetOptions) []firestore.SetOption {
	if !opts.Merge {
		return nil
	}
	if data.Len() == 0 {
		return []firestore.SetOption{firestore.MergeAll}
	}
	paths := make([]firestore.FieldPath, 0, data.Len())
	for _, k := range data.Keys() {
		paths = append(paths, firestore.FieldPath{k})
	}
	return []firestore.SetOption{firestore.Merge(paths...)}
}

func (s *Firestore) Delete(ctx context.Context, path string) error {
	ref, err := s.doc(ctx, path)
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("%w: delete %s: %w", apperr.ErrConnection, path, err)
	}
	return nil
}

func (s *Firestore) Add(ctx context.Context, collection string, data *value.Map) (string, WriteResult, error) {
	col, err := s.collection(ctx, collection)
	if err != nil {
		return "", WriteResult{}, err
	}
	ref, res, err := col.Add(ctx, data.Native())
	if err != nil {
		return "", WriteResult{}, fmt.Errorf("%w: add to %s: %w", apperr.ErrConnection, collection, err)
	}
	return ref.ID, WriteResult{UpdateTime: res.UpdateTime}, nil
}

func (s *Firestore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	col, err := s.collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	query := col.OrderBy(firestore.DocumentID, firestore.Asc)
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	it := query.Documents(ctx)
	defer it.Stop()

	out := []Document{}
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: query %s: %w", apperr.ErrConnection, collection, err)
		}
		out = append(out, toDocument(snap))
	}
	return out, nil
}

func (s *Firestore) ListCollections(ctx context.Context) ([]string, error) {
	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	it := c.Collections(ctx)
	out := []string{}
	for {
		col, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: list collections: %w", apperr.ErrConnection, err)
		}
		out = append(out, col.ID)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Firestore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	c, err := s.client(ctx)
	if err != nil {
		return err
	}
	err = c.RunTransaction(ctx, func(ctx context.Context, t *firestore.Transaction) error {
		return fn(ctx, &firestoreTx{client: c, tx: t})
	})
	if err == nil || kindOf(err) {
		return err
	}
	return fmt.Errorf("%w: transaction: %w", apperr.ErrConnection, err)
}

// kindOf reports whether err already carries an apperr kind.
func kindOf(err error) bool {
	for _, kind := range []error{
		apperr.ErrValidation, apperr.ErrNotFound, apperr.ErrFormat,
		apperr.ErrConnection, apperr.ErrPartialBatch, apperr.ErrPartialMove,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

type firestoreTx struct {
	client *firestore.Client
	tx     *firestore.Transaction
}

func (t *firestoreTx) ref(path string) (*firestore.DocumentRef, error) {
	ref := t.client.Doc(path)
	if ref == nil {
		return nil, fmt.Errorf("%w: %q is not a document path", apperr.ErrValidation, path)
	}
	return ref, nil
}

func (t *firestoreTx) Get(path string) (*Snapshot, error) {
	ref, err := t.ref(path)
	if err != nil {
		return nil, err
	}
	snap, err := t.tx.Get(ref)
	return snapshotFrom(path, snap, err)
}

func (t *firestoreTx) Set(path string, data *value.Map) error {
	ref, err := t.ref(path)
	if err != nil {
		return err
	}
	return t.tx.Set(ref, data.Native())
}

func (t *firestoreTx) Delete(path string) error {
	ref, err := t.ref(path)
	if err != nil {
		return err
	}
	return t.tx.Delete(ref)
}

var (
	_ Store         = (*Firestore)(nil)
	_ Transactional = (*Firestore)(nil)
)
