package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varicat/internal/core/id"
	"varicat/internal/domain/invariable"
)

type sliceSource struct {
	tuples []invariable.Tuple
}

func (s *sliceSource) IterateTuples(_ context.Context, _ int, fn func(invariable.Tuple) error) error {
	for _, t := range s.tuples {
		if err := fn(t); err != nil {
			return err
		}
	}
	return nil
}

type mockRegistry struct {
	findOrCreate func(t invariable.Tuple) (invariable.Result, error)
}

func (m *mockRegistry) FindOrCreate(_ context.Context, t invariable.Tuple) (invariable.Result, error) {
	return m.findOrCreate(t)
}

func tuples(n int) []invariable.Tuple {
	out := make([]invariable.Tuple, n)
	for i := range out {
		out[i] = invariable.Tuple{ItemID: id.New()}
	}
	return out
}

func TestRun_ReportsOutcomes(t *testing.T) {
	ctx := context.Background()

	source := &sliceSource{tuples: tuples(3)}
	created := map[id.ID]bool{}
	registry := &mockRegistry{
		findOrCreate: func(tup invariable.Tuple) (invariable.Result, error) {
			// First sight of a tuple mints, later sightings find.
			if created[tup.ItemID] {
				return invariable.Result{ID: id.New()}, nil
			}
			created[tup.ItemID] = true
			return invariable.Result{ID: id.New(), Created: true}, nil
		},
	}

	var outcomes []Outcome
	sum, err := NewSweep(source, registry).Run(ctx, func(o Outcome) {
		outcomes = append(outcomes, o)
	})

	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 3, Created: 3, Failed: 0}, sum)
	require.Len(t, outcomes, 3)
	for _, o := range outcomes {
		assert.NoError(t, o.Err)
		assert.True(t, o.Created)
		assert.False(t, id.IsNil(o.InvariableID))
	}
}

func TestRun_SecondPassCreatesNothing(t *testing.T) {
	ctx := context.Background()

	source := &sliceSource{tuples: tuples(4)}
	ids := map[id.ID]id.ID{}
	registry := &mockRegistry{
		findOrCreate: func(tup invariable.Tuple) (invariable.Result, error) {
			if existing, ok := ids[tup.ItemID]; ok {
				return invariable.Result{ID: existing}, nil
			}
			fresh := id.New()
			ids[tup.ItemID] = fresh
			return invariable.Result{ID: fresh, Created: true}, nil
		},
	}

	sweep := NewSweep(source, registry)

	first, err := sweep.Run(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Created)

	second, err := sweep.Run(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 4, Created: 0, Failed: 0}, second)
}

func TestRun_FailureDoesNotAbort(t *testing.T) {
	ctx := context.Background()

	ts := tuples(3)
	source := &sliceSource{tuples: ts}
	boom := errors.New("registry unavailable")
	registry := &mockRegistry{
		findOrCreate: func(tup invariable.Tuple) (invariable.Result, error) {
			if tup.ItemID == ts[1].ItemID {
				return invariable.Result{}, boom
			}
			return invariable.Result{ID: id.New(), Created: true}, nil
		},
	}

	var failed []Outcome
	sum, err := NewSweep(source, registry).Run(ctx, func(o Outcome) {
		if o.Err != nil {
			failed = append(failed, o)
		}
	})

	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 3, Created: 2, Failed: 1}, sum)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0].Err, boom)
	assert.Equal(t, ts[1].ItemID, failed[0].Tuple.ItemID)
}

func TestRun_CancellationStopsBetweenTuples(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	source := &sliceSource{tuples: tuples(10)}
	processed := 0
	registry := &mockRegistry{
		findOrCreate: func(invariable.Tuple) (invariable.Result, error) {
			processed++
			if processed == 3 {
				cancel()
			}
			return invariable.Result{ID: id.New()}, nil
		},
	}

	sum, err := NewSweep(source, registry).Run(ctx, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, processed, "no tuple must start after cancellation")
	assert.Equal(t, 3, sum.Processed)
}

func TestWithBatchSize(t *testing.T) {
	s := NewSweep(&sliceSource{}, &mockRegistry{})
	assert.Equal(t, DefaultBatchSize, s.batchSize)

	s.WithBatchSize(50)
	assert.Equal(t, 50, s.batchSize)

	s.WithBatchSize(0)
	assert.Equal(t, 50, s.batchSize, "non-positive sizes are ignored")
}
