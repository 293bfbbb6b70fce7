package inventory

import (
	"context"

	"varicat/internal/core/id"
	"varicat/internal/core/types"
	"varicat/internal/domain/catalog"
)

// Repository defines the guarded balance arithmetic of the variant store.
//
// Adjust* execute a single conditional UPDATE: the non-negativity and
// reserve <= quantity guards are evaluated by the store atomically with the
// write, so the operation is correct under concurrent adjusters without any
// application-level locking. Zero rows affected means the guard rejected the
// operation; it is reported as a count, never as an error.
type Repository interface {
	// AdjustNode applies deltas to one variant node row. A nil delta leaves
	// that counter untouched; at least one must be set. Rows whose pair is
	// not populated are never matched.
	AdjustNode(ctx context.Context, level catalog.Level, rowID id.ID, quantityDelta, reserveDelta *types.Quantity) (int64, error)

	// AdjustItem applies deltas to the item-base pair.
	AdjustItem(ctx context.Context, itemID id.ID, quantityDelta, reserveDelta *types.Quantity) (int64, error)

	// TreeBalances aggregates the populated pairs of the item's active
	// revision per level. Returns a NOT_FOUND AppError when the item cannot
	// be located; an unpublished item yields empty node levels.
	TreeBalances(ctx context.Context, itemID id.ID) (TreeBalances, error)
}
