package variant_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"varicat/internal/core/apperror"
	"varicat/internal/core/id"
	"varicat/internal/domain/identity"
)

// itemByRevisionSQL finds the item owning any revision, active or historical.
// A reference to a no-longer-active revision is expected, not an error.
const itemByRevisionSQL = `
	SELECT i.id AS item_id, i.active_revision_id
	FROM cat_items i
	JOIN cat_revisions r ON r.item_id = i.id
	WHERE r.id = $1 AND i.deletion_mark = false
`

// ItemByRevision implements identity.Repository.
func (r *VariantRepo) ItemByRevision(ctx context.Context, revisionID id.ID) (identity.ItemRef, error) {
	var row struct {
		ItemID           id.ID  `db:"item_id"`
		ActiveRevisionID *id.ID `db:"active_revision_id"`
	}

	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &row, itemByRevisionSQL, revisionID); err != nil {
		if pgxscan.NotFound(err) {
			return identity.ItemRef{}, apperror.NewNotFound("item", revisionID.String()).
				WithDetail("revision_id", revisionID.String())
		}
		return identity.ItemRef{}, fmt.Errorf("item by revision: %w", err)
	}

	if row.ActiveRevisionID == nil {
		// The item exists but was never published (or got unpublished);
		// callers cannot resolve against it.
		return identity.ItemRef{}, apperror.NewNotFound("active revision", row.ItemID.String()).
			WithDetail("item_id", row.ItemID.String())
	}

	return identity.ItemRef{ItemID: row.ItemID, ActiveRevisionID: *row.ActiveRevisionID}, nil
}

// The current-id queries cross the two identifier spaces in one statement:
// fetch the const of the stale row, then find the node sharing that const in
// the live scope. No row means the node was removed by a later edit.

const currentOfferSQL = `
	SELECT cur.id
	FROM cat_offers old
	JOIN cat_offers cur ON cur.const_id = old.const_id
	WHERE old.id = $1 AND cur.revision_id = $2
`

// CurrentOfferID implements identity.Repository.
func (r *VariantRepo) CurrentOfferID(ctx context.Context, activeRevisionID, staleOfferID id.ID) (*id.ID, error) {
	return r.scanCurrentID(ctx, currentOfferSQL, staleOfferID, activeRevisionID)
}

const currentVariationSQL = `
	SELECT cur.id
	FROM cat_variations old
	JOIN cat_variations cur ON cur.const_id = old.const_id
	WHERE old.id = $1 AND cur.offer_id = $2
`

// CurrentVariationID implements identity.Repository.
func (r *VariantRepo) CurrentVariationID(ctx context.Context, currentOfferID, staleVariationID id.ID) (*id.ID, error) {
	return r.scanCurrentID(ctx, currentVariationSQL, staleVariationID, currentOfferID)
}

const currentModificationSQL = `
	SELECT cur.id
	FROM cat_modifications old
	JOIN cat_modifications cur ON cur.const_id = old.const_id
	WHERE old.id = $1 AND cur.variation_id = $2
`

// CurrentModificationID implements identity.Repository.
func (r *VariantRepo) CurrentModificationID(ctx context.Context, currentVariationID, staleModificationID id.ID) (*id.ID, error) {
	return r.scanCurrentID(ctx, currentModificationSQL, staleModificationID, currentVariationID)
}

func (r *VariantRepo) scanCurrentID(ctx context.Context, sql string, staleID, scopeID id.ID) (*id.ID, error) {
	querier := r.txm.GetQuerier(ctx)

	var current id.ID
	err := querier.QueryRow(ctx, sql, staleID, scopeID).Scan(&current)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan current id: %w", err)
	}

	return &current, nil
}
