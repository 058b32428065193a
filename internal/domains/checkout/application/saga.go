package application

import (
	"context"
	"errors"
	"log/slog"
)

type compensation struct {
	record string
	undo   func(ctx context.Context) error
}

// saga records an undo action for every completed write so a
// non-transactional store can be returned to its previous state.
type saga struct {
	step string
	done []compensation
	log  *slog.Logger
}

func newSaga(logger *slog.Logger) *saga {
	return &saga{log: logger}
}

// begin names the step currently executing, for error reporting.
func (s *saga) begin(step string) { s.step = step }

func (s *saga) completed(record string, undo func(ctx context.Context) error) {
	s.done = append(s.done, compensation{record: record, undo: undo})
}

// abort runs compensations in reverse and wraps cause. The result is a
// *SagaError only when something could not be undone.
func (s *saga) abort(ctx context.Context, cause error) error {
	ctx = context.WithoutCancel(ctx)
	var residual []string
	for i := len(s.done) - 1; i >= 0; i-- {
		c := s.done[i]
		if err := c.undo(ctx); err != nil {
			residual = append(residual, c.record)
			s.log.LogAttrs(ctx, slog.LevelError, "compensation failed",
				slog.String("checkout.record", c.record), slog.String("error", err.Error()))
		}
	}
	if len(residual) == 0 {
		return cause
	}
	return &SagaError{Step: s.step, Cause: cause, Residual: residual}
}

// IsSagaError reports whether err carries residual records.
func IsSagaError(err error) (*SagaError, bool) {
	var se *SagaError
	ok := errors.As(err, &se)
	return se, ok
}
