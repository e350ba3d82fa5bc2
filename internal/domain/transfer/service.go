package transfer

import (
	"context"
	"fmt"

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

func resolve(req Request) (src, dst fspath.Path, err error) {
	src, errSrc := fspath.Parse(req.Source)
	dst, errDst := fspath.Parse(req.Destination)
	if errSrc != nil || errDst != nil || !src.IsDocument() || !dst.IsDocument() {
		return src, dst, fmt.Errorf("%w: source and destination paths must be documents", apperr.ErrValidation)
	}
	return src, dst, nil
}

// payload copies data and injects the destination id under idField.
func payload(data *value.Map, dst fspath.Path, idField string) *value.Map {
	out := value.NewMap()
	if data != nil {
		out = data.Clone()
	}
	if idField != "" {
		out.Set(idField, value.StringValue(dst.ID()))
	}
	return out
}

// Copy writes the source document's data over the destination. The source is
// left untouched.
func (s *Service) Copy(ctx context.Context, req Request) (*Outcome, error) {
	src, dst, err := resolve(req)
	if err != nil {
		return nil, err
	}

	s.log.Debug("fetching source document", zap.String("source", src.String()))
	snap, err := s.store.Get(ctx, src.String())
	if err != nil {
		return nil, err
	}
	if !snap.Exists {
		return nil, fmt.Errorf("%w: document %s does not exist", apperr.ErrNotFound, src)
	}

	s.log.Debug("copying to destination", zap.String("destination", dst.String()))
	res, err := s.store.Set(ctx, dst.String(), payload(snap.Data, dst, req.IDField), store.SetOptions{})
	if err != nil {
		return nil, err
	}

	s.log.Info("copied document", zap.String("source", src.String()), zap.String("destination", dst.String()))
	return &Outcome{
		Source:      src.String(),
		Destination: dst.String(),
		WriteTime:   res.UpdateTime,
	}, nil
}

// Move copies the source to the destination and deletes the source in one
// transaction. Stores without transactions get a compensating sequence that
// may leave the document at both paths (ErrPartialMove) but never at neither.
func (s *Service) Move(ctx context.Context, req Request) (*Outcome, error) {
	src, dst, err := resolve(req)
	if err != nil {
		return nil, err
	}
	if src.String() == dst.String() {
		return nil, fmt.Errorf("%w: source and destination are the same document", apperr.ErrValidation)
	}

	txStore, ok := s.store.(store.Transactional)
	if !ok {
		return s.moveCompensating(ctx, src, dst, req.IDField)
	}

	s.log.Debug("moving document", zap.String("source", src.String()), zap.String("destination", dst.String()))
	err = txStore.RunTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		snap, err := tx.Get(src.String())
		if err != nil {
			return err
		}
		if !snap.Exists {
			return fmt.Errorf("%w: document %s does not exist", apperr.ErrNotFound, src)
		}
		if err := tx.Set(dst.String(), payload(snap.Data, dst, req.IDField)); err != nil {
			return err
		}
		return tx.Delete(src.String())
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("moved document", zap.String("source", src.String()), zap.String("destination", dst.String()))
	return &Outcome{Source: src.String(), Destination: dst.String(), Transactional: true}, nil
}

func (s *Service) moveCompensating(ctx context.Context, src, dst fspath.Path, idField string) (*Outcome, error) {
	s.log.Warn("store has no transactions, moving without atomicity",
		zap.String("source", src.String()), zap.String("destination", dst.String()))

	snap, err := s.store.Get(ctx, src.String())
	if err != nil {
		return nil, err
	}
	if !snap.Exists {
		return nil, fmt.Errorf("%w: document %s does not exist", apperr.ErrNotFound, src)
	}

	res, err := s.store.Set(ctx, dst.String(), payload(snap.Data, dst, idField), store.SetOptions{})
	if err != nil {
		// nothing was written; the source is intact
		return nil, err
	}

	check, err := s.store.Get(ctx, dst.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %s written but not verified, source %s kept: %w", apperr.ErrPartialMove, dst, src, err)
	}
	if !check.Exists {
		return nil, fmt.Errorf("%w: %s missing after write, source %s kept", apperr.ErrPartialMove, dst, src)
	}

	if err := s.store.Delete(ctx, src.String()); err != nil {
		return nil, fmt.Errorf("%w: copied to %s but could not delete %s: %w", apperr.ErrPartialMove, dst, src, err)
	}

	s.log.Info("moved document", zap.String("source", src.String()), zap.String("destination", dst.String()))
	return &Outcome{Source: src.String(), Destination: dst.String(), WriteTime: res.UpdateTime}, nil
}
