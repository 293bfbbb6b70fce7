// Package variant_repo provides the PostgreSQL variant tree store: items,
// revisions and the Offer -> Variation -> Modification hierarchy.
//
// The tree is stored as flat tables keyed by parent id; traversal is always a
// parent-to-child join. Each level's parent belongs to the same revision, so
// the tree is acyclic by construction.
package variant_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"varicat/internal/core/apperror"
	"varicat/internal/core/id"
	"varicat/internal/domain/catalog"
	"varicat/internal/domain/identity"
	"varicat/internal/domain/invariable"
	"varicat/internal/domain/reconcile"
	"varicat/internal/infrastructure/storage/postgres"
)

const (
	itemsTable         = "cat_items"
	revisionsTable     = "cat_revisions"
	offersTable        = "cat_offers"
	variationsTable    = "cat_variations"
	modificationsTable = "cat_modifications"
)

// VariantRepo implements catalog.Repository, identity.Repository,
// invariable.ItemSource and reconcile.TupleSource.
type VariantRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType

	itemCols         []string
	offerCols        []string
	variationCols    []string
	modificationCols []string
}

// NewVariantRepo creates a new variant tree repository.
func NewVariantRepo(txm *postgres.TxManager) *VariantRepo {
	return &VariantRepo{
		txm:              txm,
		builder:          squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		itemCols:         postgres.ExtractDBColumns[catalog.Item](),
		offerCols:        postgres.ExtractDBColumns[catalog.Offer](),
		variationCols:    postgres.ExtractDBColumns[catalog.Variation](),
		modificationCols: postgres.ExtractDBColumns[catalog.Modification](),
	}
}

// GetItem retrieves an item by id. Soft-deleted items are not returned.
func (r *VariantRepo) GetItem(ctx context.Context, itemID id.ID) (*catalog.Item, error) {
	q := r.builder.Select(r.itemCols...).
		From(itemsTable).
		Where(squirrel.Eq{"id": itemID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var item catalog.Item
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(itemsTable, itemID.String())
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	return &item, nil
}

// ItemExists reports whether a live item exists.
func (r *VariantRepo) ItemExists(ctx context.Context, itemID id.ID) (bool, error) {
	q := r.builder.Select("1").
		From(itemsTable).
		Where(squirrel.Eq{"id": itemID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	var exists int
	err = querier.QueryRow(ctx, sql, args...).Scan(&exists)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("item exists: %w", err)
	}

	return true, nil
}

// GetRevision retrieves a revision header by id (active or historical).
func (r *VariantRepo) GetRevision(ctx context.Context, revisionID id.ID) (*catalog.Revision, error) {
	q := r.builder.Select("id", "item_id", "created_at").
		From(revisionsTable).
		Where(squirrel.Eq{"id": revisionID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rev catalog.Revision
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &rev, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(revisionsTable, revisionID.String())
		}
		return nil, fmt.Errorf("get revision: %w", err)
	}

	return &rev, nil
}

// ListOffers returns all offers of a revision ordered by sort.
func (r *VariantRepo) ListOffers(ctx context.Context, revisionID id.ID) ([]catalog.Offer, error) {
	q := r.builder.Select(r.offerCols...).
		From(offersTable).
		Where(squirrel.Eq{"revision_id": revisionID}).
		OrderBy("sort", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var offers []catalog.Offer
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &offers, sql, args...); err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}

	return offers, nil
}

// ListVariations returns all variations of a revision ordered by sort.
func (r *VariantRepo) ListVariations(ctx context.Context, revisionID id.ID) ([]catalog.Variation, error) {
	q := r.builder.Select(r.variationCols...).
		From(variationsTable).
		Where(squirrel.Eq{"revision_id": revisionID}).
		OrderBy("sort", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var variations []catalog.Variation
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &variations, sql, args...); err != nil {
		return nil, fmt.Errorf("list variations: %w", err)
	}

	return variations, nil
}

// ListModifications returns all modifications of a revision ordered by sort.
func (r *VariantRepo) ListModifications(ctx context.Context, revisionID id.ID) ([]catalog.Modification, error) {
	q := r.builder.Select(r.modificationCols...).
		From(modificationsTable).
		Where(squirrel.Eq{"revision_id": revisionID}).
		OrderBy("sort", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var modifications []catalog.Modification
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &modifications, sql, args...); err != nil {
		return nil, fmt.Errorf("list modifications: %w", err)
	}

	return modifications, nil
}

// Ensure interface compliance.
var (
	_ catalog.Repository    = (*VariantRepo)(nil)
	_ identity.Repository   = (*VariantRepo)(nil)
	_ invariable.ItemSource = (*VariantRepo)(nil)
	_ reconcile.TupleSource = (*VariantRepo)(nil)
)
