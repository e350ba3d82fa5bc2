package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation   = errors.New("invalid request")
	ErrNotFound     = errors.New("not found")
	ErrFormat       = errors.New("malformed input")
	ErrConnection   = errors.New("database error")
	ErrPartialBatch = errors.New("some items failed")
	ErrPartialMove  = errors.New("move incomplete")
	ErrConfig       = errors.New("configuration error")
)

func IsValidation(err error) bool   { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsFormat(err error) bool       { return errors.Is(err, ErrFormat) }
func IsConnection(err error) bool   { return errors.Is(err, ErrConnection) }
func IsPartialBatch(err error) bool { return errors.Is(err, ErrPartialBatch) }
func IsPartialMove(err error) bool  { return errors.Is(err, ErrPartialMove) }
func IsConfig(err error) bool       { return errors.Is(err, ErrConfig) }

// ItemError is the failure of one item in a multi-document operation.
type ItemError struct {
	Index int
	Path  string
	Err   error
}

func (e ItemError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("item %d (%s): %v", e.Index, e.Path, e.Err)
	}
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e ItemError) Unwrap() error { return e.Err }

// PartialBatchError reports the items of a batch that failed while the rest
// were still attempted.
type PartialBatchError struct {
	Total    int
	Failures []ItemError
}

func (e *PartialBatchError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Error())
	}
	return fmt.Sprintf("%d of %d item(s) failed: %s", len(e.Failures), e.Total, strings.Join(msgs, "; "))
}

func (e *PartialBatchError) Unwrap() error { return ErrPartialBatch }

func (e *PartialBatchError) Failed() int { return len(e.Failures) }

// NewPartialBatch returns nil when failures is empty.
func NewPartialBatch(total int, failures []ItemError) error {
	if len(failures) == 0 {
		return nil
	}
	return &PartialBatchError{Total: total, Failures: failures}
}
