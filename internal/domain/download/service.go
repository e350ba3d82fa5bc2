package download

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"flame/cli/internal/apperr"
	"flame/cli/internal/formatter"
	"flame/cli/internal/fspath"
	"flame/cli/internal/store"
	"flame/cli/internal/value"
)

type Options struct {
	// Limit caps the number of documents read from a collection; 0 means all.
	Limit     int
	IncludeID bool
}

type Result struct {
	Path string
	// Single is true for a document path.
	Single    bool
	Empty     bool
	Documents []store.Document
	Rendered  value.Value
}

func (r *Result) Count() int { return len(r.Documents) }

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

// Download fetches one document or a whole collection ordered by id. A
// missing document is ErrNotFound; an empty collection is an Empty result
// rendering as an empty sequence.
func (s *Service) Download(ctx context.Context, target string, opts Options) (*Result, error) {
	path, err := fspath.Parse(target)
	if err != nil {
		return nil, err
	}
	if opts.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", apperr.ErrValidation)
	}

	if path.IsDocument() {
		s.log.Debug("fetching document", zap.String("path", path.String()))
		snap, err := s.store.Get(ctx, path.String())
		if err != nil {
			return nil, err
		}
		if !snap.Exists {
			return nil, fmt.Errorf("%w: document not found: %s", apperr.ErrNotFound, path)
		}
		return &Result{
			Path:      path.String(),
			Single:    true,
			Documents: []store.Document{snap.Document},
			Rendered:  value.ObjectValue(formatter.FormatOne(snap.Document, opts.IncludeID)),
		}, nil
	}

	s.log.Debug("fetching collection", zap.String("path", path.String()), zap.Int("limit", opts.Limit))
	docs, err := s.store.Query(ctx, path.String(), store.Query{Limit: opts.Limit})
	if err != nil {
		return nil, err
	}
	return &Result{
		Path:      path.String(),
		Empty:     len(docs) == 0,
		Documents: docs,
		Rendered:  formatter.FormatMany(docs, opts.IncludeID),
	}, nil
}
