// Package identity provides the current-identifier resolver: the only place
// that crosses between revision-scoped row ids and revision-independent
// const ids.
package identity

import (
	"context"

	"varicat/internal/core/id"
)

// ItemRef locates an item and its currently active revision.
type ItemRef struct {
	ItemID           id.ID `db:"item_id"`
	ActiveRevisionID id.ID `db:"active_revision_id"`
}

// Repository defines the store lookups the resolver needs.
//
// The Current* methods translate a stale row id into the row id of the node
// in the active revision sharing the same const, scoped under the already
// resolved parent. They return nil (not an error) when the node no longer
// exists in the live revision.
type Repository interface {
	// ItemByRevision finds the item owning any (possibly historical)
	// revision, together with its active revision. Returns a NOT_FOUND
	// AppError when the item is deleted, unknown, or has no active revision.
	ItemByRevision(ctx context.Context, revisionID id.ID) (ItemRef, error)

	// CurrentOfferID maps a stale offer row onto the active revision.
	CurrentOfferID(ctx context.Context, activeRevisionID, staleOfferID id.ID) (*id.ID, error)

	// CurrentVariationID maps a stale variation row onto the resolved
	// current offer.
	CurrentVariationID(ctx context.Context, currentOfferID, staleVariationID id.ID) (*id.ID, error)

	// CurrentModificationID maps a stale modification row onto the resolved
	// current variation.
	CurrentModificationID(ctx context.Context, currentVariationID, staleModificationID id.ID) (*id.ID, error)
}
