package identity

import (
	"context"
	"fmt"

	"varicat/internal/core/apperror"
	"varicat/internal/core/id"
)

// Ref is a possibly-stale variant reference held by an external system.
// RevisionID is required and may point to a historical revision; the node
// row ids are optional and define the requested resolution depth.
type Ref struct {
	RevisionID     id.ID
	OfferID        *id.ID
	VariationID    *id.ID
	ModificationID *id.ID
}

// Validate checks the reference shape. Depth must be contiguous: a variation
// cannot be referenced without its offer, nor a modification without its
// variation.
func (r Ref) Validate() error {
	if id.IsNil(r.RevisionID) {
		return apperror.NewValidation("revision id is required").WithDetail("field", "revisionId")
	}
	if r.VariationID != nil && r.OfferID == nil {
		return apperror.NewValidation("variation reference requires an offer reference")
	}
	if r.ModificationID != nil && r.VariationID == nil {
		return apperror.NewValidation("modification reference requires a variation reference")
	}
	return nil
}

// CurrentIDs is the result of resolution: row ids belonging to the item's
// currently active revision. A nil node id means the caller referenced that
// level but the node was removed by a later edit (expected, not fatal).
type CurrentIDs struct {
	ItemID         id.ID
	RevisionID     id.ID
	OfferID        *id.ID
	VariationID    *id.ID
	ModificationID *id.ID
}

// DeepestNodeID returns the deepest resolved node id, or nil when resolution
// stopped at the item level.
func (c CurrentIDs) DeepestNodeID() *id.ID {
	if c.ModificationID != nil {
		return c.ModificationID
	}
	if c.VariationID != nil {
		return c.VariationID
	}
	return c.OfferID
}

// Resolver translates stale references into current row ids. Pure read; it is
// called as a precondition by both the inventory ledger and the invariable
// registry so mutation never targets a stale row.
type Resolver struct {
	repo Repository
}

// NewResolver creates a resolver over the variant tree store.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve maps ref onto the owning item's active revision, depth-first.
// Each deeper level is attempted only when the caller supplied an id at that
// depth and the parent level resolved. Returns a NOT_FOUND AppError only when
// the item or its active revision cannot be located.
func (r *Resolver) Resolve(ctx context.Context, ref Ref) (CurrentIDs, error) {
	if err := ref.Validate(); err != nil {
		return CurrentIDs{}, err
	}

	item, err := r.repo.ItemByRevision(ctx, ref.RevisionID)
	if err != nil {
		return CurrentIDs{}, fmt.Errorf("locate item by revision: %w", err)
	}

	cur := CurrentIDs{
		ItemID:     item.ItemID,
		RevisionID: item.ActiveRevisionID,
	}

	if ref.OfferID == nil {
		return cur, nil
	}
	cur.OfferID, err = r.repo.CurrentOfferID(ctx, item.ActiveRevisionID, *ref.OfferID)
	if err != nil {
		return CurrentIDs{}, fmt.Errorf("resolve offer: %w", err)
	}

	// The offer may have been deleted in a later edit; deeper levels can
	// only live under a resolved parent.
	if cur.OfferID == nil || ref.VariationID == nil {
		return cur, nil
	}
	cur.VariationID, err = r.repo.CurrentVariationID(ctx, *cur.OfferID, *ref.VariationID)
	if err != nil {
		return CurrentIDs{}, fmt.Errorf("resolve variation: %w", err)
	}

	if cur.VariationID == nil || ref.ModificationID == nil {
		return cur, nil
	}
	cur.ModificationID, err = r.repo.CurrentModificationID(ctx, *cur.VariationID, *ref.ModificationID)
	if err != nil {
		return CurrentIDs{}, fmt.Errorf("resolve modification: %w", err)
	}

	return cur, nil
}
