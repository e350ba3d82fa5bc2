package deletion

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"flame/cli/internal/apperr"
	"flame/cli/internal/fspath"
	"flame/cli/internal/store"
)

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

type Options struct {
	// Force skips the confirmation prompt.
	Force bool
	// StopOnError halts a collection delete at the first failed document.
	// By default every document is attempted.
	StopOnError bool
}

type Result struct {
	Path      string
	Kind      string
	Cancelled bool
	Empty     bool
	Total     int
	Deleted   int
	Failures  []apperr.ItemError
}

type Service struct {
	store       store.Store
	prompt      Prompter
	environment string
	log         *zap.Logger
}

// NewService takes the environment label (EMULATOR or REMOTE) shown in the
// confirmation prompt.
func NewService(s store.Store, prompt Prompter, environment string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: s, prompt: prompt, environment: environment, log: log}
}

func (s *Service) confirm(ctx context.Context, path fspath.Path) (bool, error) {
	if s.prompt == nil {
		return false, fmt.Errorf("%w: no prompt available, pass --force to delete", apperr.ErrValidation)
	}
	msg := fmt.Sprintf("Are you sure you want to delete the %s at %s? You are currently targeting the %s.",
		path.Kind(), path, s.environment)
	return s.prompt.Confirm(ctx, msg)
}

func (s *Service) Delete(ctx context.Context, target string, opts Options) (*Result, error) {
	path, err := fspath.Parse(target)
	if err != nil {
		return nil, err
	}
	res := &Result{Path: path.String(), Kind: path.Kind()}

	if !opts.Force {
		ok, err := s.confirm(ctx, path)
		if err != nil {
			return nil, err
		}
		if !ok {
			res.Cancelled = true
			return res, nil
		}
	}

	if path.IsDocument() {
		return s.deleteDocument(ctx, path, res)
	}
	return s.deleteCollection(ctx, path, res, opts)
}

func (s *Service) deleteDocument(ctx context.Context, path fspath.Path, res *Result) (*Result, error) {
	snap, err := s.store.Get(ctx, path.String())
	if err != nil {
		return nil, err
	}
	if !snap.Exists {
		return nil, fmt.Errorf("%w: document not found: %s", apperr.ErrNotFound, path)
	}
	res.Total = 1
	if err := s.store.Delete(ctx, path.String()); err != nil {
		return nil, err
	}
	res.Deleted = 1
	s.log.Info("deleted document", zap.String("path", path.String()))
	return res, nil
}

func (s *Service) deleteCollection(ctx context.Context, path fspath.Path, res *Result, opts Options) (*Result, error) {
	docs, err := s.store.Query(ctx, path.String(), store.Query{})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		res.Empty = true
		return res, nil
	}

	res.Total = len(docs)
	for i, doc := range docs {
		docPath := path.Child(doc.ID).String()
		s.log.Debug("deleting document", zap.Int("n", i+1), zap.Int("total", res.Total), zap.String("path", docPath))
		if err := s.store.Delete(ctx, docPath); err != nil {
			s.log.Error("failed to delete document", zap.String("path", docPath), zap.Error(err))
			res.Failures = append(res.Failures, apperr.ItemError{Index: i, Path: docPath, Err: err})
			if opts.StopOnError {
				break
			}
			continue
		}
		res.Deleted++
		s.log.Info("deleted document", zap.String("id", doc.ID))
	}

	return res, apperr.NewPartialBatch(res.Total, res.Failures)
}
