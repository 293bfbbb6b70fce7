package variant_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"varicat/internal/core/id"
	"varicat/internal/domain/invariable"
)

// itemPageSQL pages published live items by id (keyset pagination, UUIDv7
// ids are time-ordered so the walk is stable under concurrent inserts).
const itemPageSQL = `
	SELECT id, active_revision_id
	FROM cat_items
	WHERE deletion_mark = false
	  AND active_revision_id IS NOT NULL
	  AND id > $1
	ORDER BY id
	LIMIT $2
`

// itemTuplesSQL enumerates every realized tuple of one item's active
// revision: the item-level tuple plus one row per offer, variation and
// modification, shallowest first.
const itemTuplesSQL = `
	SELECT offer_const, variation_const, modification_const
	FROM (
		SELECT NULL::uuid AS offer_const, NULL::uuid AS variation_const, NULL::uuid AS modification_const,
		       0 AS depth, NULL::uuid AS ord
		UNION ALL
		SELECT o.const_id, NULL, NULL, 1, o.const_id
		FROM cat_offers o
		WHERE o.revision_id = $1
		UNION ALL
		SELECT o.const_id, v.const_id, NULL, 2, v.const_id
		FROM cat_variations v
		JOIN cat_offers o ON o.id = v.offer_id
		WHERE v.revision_id = $1
		UNION ALL
		SELECT o.const_id, v.const_id, m.const_id, 3, m.const_id
		FROM cat_modifications m
		JOIN cat_variations v ON v.id = m.variation_id
		JOIN cat_offers o ON o.id = v.offer_id
		WHERE m.revision_id = $1
	) t
	ORDER BY depth, ord
`

// IterateTuples implements reconcile.TupleSource. Items are walked in keyset
// pages of batchSize, one tuple query per item, so memory stays bounded by a
// single item's variant count regardless of catalog size. fn returning an
// error stops the walk and surfaces that error.
func (r *VariantRepo) IterateTuples(ctx context.Context, batchSize int, fn func(invariable.Tuple) error) error {
	if batchSize <= 0 {
		batchSize = 100
	}

	querier := r.txm.GetQuerier(ctx)
	cursor := id.Nil()

	for {
		var page []struct {
			ID               id.ID `db:"id"`
			ActiveRevisionID id.ID `db:"active_revision_id"`
		}
		if err := pgxscan.Select(ctx, querier, &page, itemPageSQL, cursor, batchSize); err != nil {
			return fmt.Errorf("page items: %w", err)
		}
		if len(page) == 0 {
			return nil
		}

		for _, item := range page {
			if err := r.iterateItemTuples(ctx, item.ID, item.ActiveRevisionID, fn); err != nil {
				return err
			}
		}

		cursor = page[len(page)-1].ID
	}
}

// iterateItemTuples reads one item's tuples fully before invoking fn, so fn
// may run its own queries without fighting over the connection when the walk
// happens inside a transaction. An item's tuple count is bounded by its
// variant count, which keeps the buffer small.
func (r *VariantRepo) iterateItemTuples(ctx context.Context, itemID, revisionID id.ID, fn func(invariable.Tuple) error) error {
	querier := r.txm.GetQuerier(ctx)

	rows, err := querier.Query(ctx, itemTuplesSQL, revisionID)
	if err != nil {
		return fmt.Errorf("query item tuples: %w", err)
	}
	defer rows.Close()

	var tuples []invariable.Tuple
	for rows.Next() {
		t := invariable.Tuple{ItemID: itemID}
		if err := rows.Scan(&t.OfferConst, &t.VariationConst, &t.ModificationConst); err != nil {
			return fmt.Errorf("scan tuple: %w", err)
		}
		tuples = append(tuples, t)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate item tuples: %w", err)
	}
	rows.Close()

	for _, t := range tuples {
		if err := fn(t); err != nil {
			return err
		}
	}

	return nil
}
