// Package inventory_repo provides the PostgreSQL guarded balance arithmetic.
//
// Every adjustment is a single conditional UPDATE: the floor guards and the
// write are one statement, so concurrent adjusters of the same row serialize
// on the store's row-level lock and no read-modify-write race is possible.
package inventory_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"varicat/internal/core/apperror"
	"varicat/internal/core/id"
	"varicat/internal/core/types"
	"varicat/internal/domain/catalog"
	"varicat/internal/domain/inventory"
	"varicat/internal/infrastructure/storage/postgres"
)

const itemsTable = "cat_items"

// nodeTables maps variant levels to their balance-bearing tables.
var nodeTables = map[catalog.Level]string{
	catalog.LevelOffer:        "cat_offers",
	catalog.LevelVariation:    "cat_variations",
	catalog.LevelModification: "cat_modifications",
}

// InventoryRepo implements inventory.Repository.
type InventoryRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewInventoryRepo creates a new inventory repository.
func NewInventoryRepo(txm *postgres.TxManager) *InventoryRepo {
	return &InventoryRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// AdjustNode applies deltas to one variant node row in a single guarded
// statement. On node tables the pair columns are nullable; for a row with an
// unpopulated pair the guard expressions evaluate to NULL and match nothing,
// which correctly reports zero rows affected.
func (r *InventoryRepo) AdjustNode(ctx context.Context, level catalog.Level, rowID id.ID, quantityDelta, reserveDelta *types.Quantity) (int64, error) {
	table, ok := nodeTables[level]
	if !ok {
		return 0, apperror.NewValidation("level does not address a variant node").
			WithDetail("level", string(level))
	}

	q, err := r.guardedUpdate(table, rowID, quantityDelta, reserveDelta)
	if err != nil {
		return 0, err
	}

	return r.execAffected(ctx, q)
}

// AdjustItem applies deltas to the item-base pair.
func (r *InventoryRepo) AdjustItem(ctx context.Context, itemID id.ID, quantityDelta, reserveDelta *types.Quantity) (int64, error) {
	q, err := r.guardedUpdate(itemsTable, itemID, quantityDelta, reserveDelta)
	if err != nil {
		return 0, err
	}
	q = q.Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"deletion_mark": false})

	return r.execAffected(ctx, q)
}

// guardedUpdate builds the single-statement conditional UPDATE. The guards
// keep 0 <= reserve <= quantity after the write: additions pass the floor
// checks trivially, subtractions that would break a floor match zero rows.
func (r *InventoryRepo) guardedUpdate(table string, rowID id.ID, quantityDelta, reserveDelta *types.Quantity) (squirrel.UpdateBuilder, error) {
	if quantityDelta == nil && reserveDelta == nil {
		return squirrel.UpdateBuilder{}, apperror.NewValidation("at least one delta is required")
	}

	var qd, rd int64
	q := r.builder.Update(table)
	if quantityDelta != nil {
		qd = quantityDelta.Int64()
		q = q.Set("quantity", squirrel.Expr("quantity + ?", qd))
	}
	if reserveDelta != nil {
		rd = reserveDelta.Int64()
		q = q.Set("reserve", squirrel.Expr("reserve + ?", rd))
	}

	q = q.Where(squirrel.Eq{"id": rowID}).
		Where(squirrel.Expr("quantity + ? >= 0", qd)).
		Where(squirrel.Expr("reserve + ? >= 0", rd)).
		Where(squirrel.Expr("reserve + ? <= quantity + ?", rd, qd))

	return q, nil
}

func (r *InventoryRepo) execAffected(ctx context.Context, q squirrel.UpdateBuilder) (int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("execute guarded update: %w", err)
	}

	return result.RowsAffected(), nil
}

// treeBalancesSQL aggregates the populated pairs of the item's active
// revision per level. This is the only query feeding the fallback chain;
// the chain itself is decided by inventory.EffectiveBalance.
// SUM(bigint) yields numeric, hence the bigint casts.
const treeBalancesSQL = `
	SELECT
		i.quantity AS item_quantity,
		i.reserve  AS item_reserve,
		COALESCE(o.pair_count, 0)         AS offer_rows,
		COALESCE(o.quantity, 0)::bigint   AS offer_quantity,
		COALESCE(o.reserve, 0)::bigint    AS offer_reserve,
		COALESCE(v.pair_count, 0)         AS variation_rows,
		COALESCE(v.quantity, 0)::bigint   AS variation_quantity,
		COALESCE(v.reserve, 0)::bigint    AS variation_reserve,
		COALESCE(m.pair_count, 0)         AS modification_rows,
		COALESCE(m.quantity, 0)::bigint   AS modification_quantity,
		COALESCE(m.reserve, 0)::bigint    AS modification_reserve
	FROM cat_items i
	LEFT JOIN LATERAL (
		SELECT COUNT(quantity) AS pair_count, SUM(quantity) AS quantity, SUM(reserve) AS reserve
		FROM cat_offers WHERE revision_id = i.active_revision_id
	) o ON true
	LEFT JOIN LATERAL (
		SELECT COUNT(quantity) AS pair_count, SUM(quantity) AS quantity, SUM(reserve) AS reserve
		FROM cat_variations WHERE revision_id = i.active_revision_id
	) v ON true
	LEFT JOIN LATERAL (
		SELECT COUNT(quantity) AS pair_count, SUM(quantity) AS quantity, SUM(reserve) AS reserve
		FROM cat_modifications WHERE revision_id = i.active_revision_id
	) m ON true
	WHERE i.id = $1 AND i.deletion_mark = false
`

// TreeBalances implements inventory.Repository. An unpublished item yields
// zero rows on every node level, so the chain falls through to the item base.
func (r *InventoryRepo) TreeBalances(ctx context.Context, itemID id.ID) (inventory.TreeBalances, error) {
	var row struct {
		ItemQuantity         types.Quantity `db:"item_quantity"`
		ItemReserve          types.Quantity `db:"item_reserve"`
		OfferRows            int64          `db:"offer_rows"`
		OfferQuantity        types.Quantity `db:"offer_quantity"`
		OfferReserve         types.Quantity `db:"offer_reserve"`
		VariationRows        int64          `db:"variation_rows"`
		VariationQuantity    types.Quantity `db:"variation_quantity"`
		VariationReserve     types.Quantity `db:"variation_reserve"`
		ModificationRows     int64          `db:"modification_rows"`
		ModificationQuantity types.Quantity `db:"modification_quantity"`
		ModificationReserve  types.Quantity `db:"modification_reserve"`
	}

	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &row, treeBalancesSQL, itemID); err != nil {
		if pgxscan.NotFound(err) {
			return inventory.TreeBalances{}, apperror.NewNotFound(itemsTable, itemID.String())
		}
		return inventory.TreeBalances{}, fmt.Errorf("tree balances: %w", err)
	}

	return inventory.TreeBalances{
		Item:         inventory.LevelTotals{Rows: 1, Quantity: row.ItemQuantity, Reserve: row.ItemReserve},
		Offer:        inventory.LevelTotals{Rows: row.OfferRows, Quantity: row.OfferQuantity, Reserve: row.OfferReserve},
		Variation:    inventory.LevelTotals{Rows: row.VariationRows, Quantity: row.VariationQuantity, Reserve: row.VariationReserve},
		Modification: inventory.LevelTotals{Rows: row.ModificationRows, Quantity: row.ModificationQuantity, Reserve: row.ModificationReserve},
	}, nil
}

// Ensure interface compliance.
var _ inventory.Repository = (*InventoryRepo)(nil)
