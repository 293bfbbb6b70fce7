package invariable

import (
	"context"

	"varicat/internal/core/id"
)

// Repository defines store operations for the invariable registry.
type Repository interface {
	// FindByTuple returns the invariable with an exact tuple match
	// (NULL-for-NULL on unset levels), or a NOT_FOUND AppError.
	FindByTuple(ctx context.Context, t Tuple) (*Invariable, error)

	// Insert persists a freshly minted invariable. When a concurrent caller
	// already inserted the same tuple, the store's uniqueness constraint
	// rejects the row and a DUPLICATE_ENTRY AppError is returned.
	Insert(ctx context.Context, inv Invariable) error
}

// ItemSource checks that a tuple references a real item.
// Implemented by the variant tree store.
type ItemSource interface {
	ItemExists(ctx context.Context, itemID id.ID) (bool, error)
}
