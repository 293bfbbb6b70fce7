package catalog

import (
	"context"

	"varicat/internal/core/id"
)

// Repository defines read access to the variant tree store.
// Mutation of items and revisions belongs to the (external) edit pipeline;
// the core only reads the tree and adjusts balance pairs through the
// inventory ledger's guarded updates.
type Repository interface {
	// GetItem retrieves an item by id. Soft-deleted items are not returned.
	GetItem(ctx context.Context, itemID id.ID) (*Item, error)

	// ItemExists reports whether a live (not soft-deleted) item exists.
	ItemExists(ctx context.Context, itemID id.ID) (bool, error)

	// GetRevision retrieves a revision header by id (active or historical).
	GetRevision(ctx context.Context, revisionID id.ID) (*Revision, error)

	// ListOffers returns all offers of a revision ordered by sort.
	ListOffers(ctx context.Context, revisionID id.ID) ([]Offer, error)

	// ListVariations returns all variations of a revision ordered by sort.
	ListVariations(ctx context.Context, revisionID id.ID) ([]Variation, error)

	// ListModifications returns all modifications of a revision ordered by sort.
	ListModifications(ctx context.Context, revisionID id.ID) ([]Modification, error)
}
