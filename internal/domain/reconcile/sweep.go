// Package reconcile provides the reconciliation sweep: a batch process that
// walks all realized variant tuples and ensures each has an invariable,
// tolerating partial failure.
package reconcile

import (
	"context"
	"fmt"

	"varicat/internal/core/id"
	"varicat/internal/domain/invariable"
	"varicat/pkg/logger"
)

// TupleSource streams every realized (item, offer-const, variation-const,
// modification-const) tuple currently present in the variant tree store.
// Enumeration is lazy and bounded-memory; fn is invoked once per tuple.
// Implemented by the variant tree store with keyset pagination.
type TupleSource interface {
	IterateTuples(ctx context.Context, batchSize int, fn func(invariable.Tuple) error) error
}

// Registry is the invariable seam; implemented by invariable.Registry.
type Registry interface {
	FindOrCreate(ctx context.Context, t invariable.Tuple) (invariable.Result, error)
}

// Outcome reports the result of one tuple. Err is set for failed tuples; the
// sweep keeps going regardless.
type Outcome struct {
	Tuple        invariable.Tuple
	InvariableID id.ID
	Created      bool
	Err          error
}

// Summary totals one sweep run.
type Summary struct {
	Processed int
	Created   int
	Failed    int
}

// DefaultBatchSize bounds how many items one page of the tuple stream covers.
const DefaultBatchSize = 200

// Sweep walks all realized tuples and registers each with the invariable
// registry. Re-running it at any time is safe: a run over an unchanged
// catalog performs only find hits and creates nothing.
type Sweep struct {
	source    TupleSource
	registry  Registry
	batchSize int
}

// NewSweep creates a reconciliation sweep.
func NewSweep(source TupleSource, registry Registry) *Sweep {
	return &Sweep{
		source:    source,
		registry:  registry,
		batchSize: DefaultBatchSize,
	}
}

// WithBatchSize overrides the streaming page size (for tests and tuning).
func (s *Sweep) WithBatchSize(n int) *Sweep {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// Run processes every realized tuple independently. A failure for one tuple
// is logged, reported through sink, and never aborts the sweep. Cancellation
// is cooperative: the context is checked between tuples, and a cancelled run
// returns the context error together with the partial summary.
//
// sink may be nil when the caller only needs the summary.
func (s *Sweep) Run(ctx context.Context, sink func(Outcome)) (Summary, error) {
	var sum Summary

	err := s.source.IterateTuples(ctx, s.batchSize, func(t invariable.Tuple) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		sum.Processed++
		out := Outcome{Tuple: t}

		res, err := s.registry.FindOrCreate(ctx, t)
		if err != nil {
			sum.Failed++
			out.Err = err
			logger.Warn(ctx, "reconcile tuple failed",
				"item_id", t.ItemID,
				"error", err,
			)
		} else {
			out.InvariableID = res.ID
			out.Created = res.Created
			if res.Created {
				sum.Created++
			}
		}

		if sink != nil {
			sink(out)
		}
		return nil
	})
	if err != nil {
		return sum, fmt.Errorf("iterate tuples: %w", err)
	}

	logger.Info(ctx, "reconciliation sweep finished",
		"processed", sum.Processed,
		"created", sum.Created,
		"failed", sum.Failed,
	)

	return sum, nil
}
