package upload

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"flame/cli/internal/apperr"
	"flame/cli/internal/fspath"
	"flame/cli/internal/store"
	"flame/cli/internal/value"
)

type Service struct {
	store store.Store
	log   *zap.Logger
}

func NewService(s store.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: s, log: log}
}

// Upload parses raw as JSON and writes it to target. Array payloads are
// written item by item; a failed item does not stop the rest, and the
// returned error is then a *apperr.PartialBatchError next to a full Result.
func (s *Service) Upload(ctx context.Context, target, raw string, opts Options) (*Result, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: no document data found, supply it with --data or through stdin", apperr.ErrFormat)
	}
	payload, err := value.Parse([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrFormat, err)
	}

	path, err := fspath.Parse(target)
	if err != nil {
		return nil, err
	}

	switch payload.Kind() {
	case value.Array:
		if path.IsDocument() {
			return nil, fmt.Errorf("%w: cannot upload array to a document path", apperr.ErrValidation)
		}
		return s.uploadMany(ctx, path, payload.Items(), opts)
	case value.Object:
		if path.IsDocument() {
			return s.uploadToDocument(ctx, path, payload.Object(), opts)
		}
		return s.uploadToCollection(ctx, path, payload.Object(), opts)
	}
	return nil, fmt.Errorf("%w: payload must be a JSON object or an array of objects, got %s", apperr.ErrValidation, payload.Kind())
}

func (s *Service) uploadToDocument(ctx context.Context, path fspath.Path, data *value.Map, opts Options) (*Result, error) {
	s.log.Debug("adding document", zap.String("path", path.String()), zap.Bool("merge", opts.Merge))
	res, err := s.store.Set(ctx, path.String(), data, store.SetOptions{Merge: opts.Merge})
	if err != nil {
		return nil, err
	}
	return &Result{
		Target: path.String(),
		Items: []ItemOutcome{{
			ID:        path.ID(),
			Path:      path.String(),
			WriteTime: res.UpdateTime,
			Status:    StatusWritten,
		}},
	}, nil
}

func (s *Service) uploadToCollection(ctx context.Context, col fspath.Path, data *value.Map, opts Options) (*Result, error) {
	if opts.IDField == "" {
		return nil, fmt.Errorf("%w: must specify a document ID field with --id-field to upload a document to a collection", apperr.ErrValidation)
	}
	id, err := idFrom(data, opts.IDField)
	if err != nil {
		return nil, err
	}
	path := col.Child(id)
	res, err := s.store.Set(ctx, path.String(), data, store.SetOptions{Merge: opts.Merge})
	if err != nil {
		return nil, err
	}
	s.log.Info("added document", zap.String("path", path.String()))
	return &Result{
		Target: col.String(),
		Items: []ItemOutcome{{
			ID:        id,
			Path:      path.String(),
			WriteTime: res.UpdateTime,
			Status:    StatusWritten,
		}},
	}, nil
}

func (s *Service) uploadMany(ctx context.Context, col fspath.Path, items []value.Value, opts Options) (*Result, error) {
	result := &Result{Target: col.String(), Multi: true, Items: make([]ItemOutcome, 0, len(items))}
	var failures []apperr.ItemError

	for i, item := range items {
		out := s.uploadItem(ctx, col, i, item, opts)
		result.Items = append(result.Items, out)
		if out.Err != nil {
			s.log.Error("failed to write document",
				zap.Int("index", i), zap.String("path", out.Path), zap.Error(out.Err))
			failures = append(failures, apperr.ItemError{Index: i, Path: out.Path, Err: out.Err})
			continue
		}
		s.log.Info("added document", zap.Int("index", i), zap.String("path", out.Path))
	}

	return result, apperr.NewPartialBatch(len(items), failures)
}

func (s *Service) uploadItem(ctx context.Context, col fspath.Path, i int, item value.Value, opts Options) ItemOutcome {
	out := ItemOutcome{Index: i, Path: col.String(), Status: StatusFailed}
	if item.Kind() != value.Object {
		out.Err = fmt.Errorf("%w: document %d is a %s, not an object", apperr.ErrValidation, i, item.Kind())
		return out
	}
	data := item.Object()

	if opts.IDField == "" {
		id, res, err := s.store.Add(ctx, col.String(), data)
		if err != nil {
			out.Err = err
			return out
		}
		out.ID, out.Path, out.WriteTime, out.Status = id, col.Child(id).String(), res.UpdateTime, StatusAdded
		return out
	}

	id, err := idFrom(data, opts.IDField)
	if err != nil {
		out.Err = fmt.Errorf("document %d: %w", i, err)
		return out
	}
	path := col.Child(id)
	out.ID, out.Path = id, path.String()
	res, err := s.store.Set(ctx, path.String(), data, store.SetOptions{Merge: opts.Merge})
	if err != nil {
		out.Err = err
		return out
	}
	out.WriteTime, out.Status = res.UpdateTime, StatusWritten
	return out
}

// idFrom reads a document id out of data[field]. Scalars are used in their
// JSON text form; null, empty, nested values and ids containing "/" are rejected.
func idFrom(data *value.Map, field string) (string, error) {
	v, ok := data.Get(field)
	if !ok || v.IsNull() {
		return "", fmt.Errorf("%w: document does not have ID field %s", apperr.ErrValidation, field)
	}
	id, ok := v.Scalar()
	if !ok {
		return "", fmt.Errorf("%w: ID field %s must be a string or number, got %s", apperr.ErrValidation, field, v.Kind())
	}
	if id == "" {
		return "", fmt.Errorf("%w: ID field %s is empty", apperr.ErrValidation, field)
	}
	if strings.Contains(id, "/") {
		return "", fmt.Errorf("%w: ID %q must not contain '/'", apperr.ErrValidation, id)
	}
	return id, nil
}
