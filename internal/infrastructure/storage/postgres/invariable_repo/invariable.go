// Package invariable_repo provides the PostgreSQL invariable registry store.
//
// The table carries a unique index over the full tuple with NULLS NOT
// DISTINCT, so unset levels compare as NULL, not as a wildcard, and the
// registry's optimistic create can rely on the store rejecting duplicates.
package invariable_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"varicat/internal/core/apperror"
	"varicat/internal/core/id"
	"varicat/internal/domain/invariable"
	"varicat/internal/infrastructure/storage/postgres"
)

const invariablesTable = "cat_invariables"

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

// InvariableRepo implements invariable.Repository.
type InvariableRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
	cols    []string
}

// NewInvariableRepo creates a new invariable repository.
func NewInvariableRepo(txm *postgres.TxManager) *InvariableRepo {
	return &InvariableRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		cols:    postgres.ExtractDBColumns[invariable.Invariable](),
	}
}

// findQuery builds the exact tuple match query.
func (r *InvariableRepo) findQuery(t invariable.Tuple) squirrel.SelectBuilder {
	q := r.builder.Select(r.cols...).
		From(invariablesTable).
		Where(squirrel.Eq{"item_id": t.ItemID}).
		Limit(1)
	q = whereConst(q, "offer_const", t.OfferConst)
	q = whereConst(q, "variation_const", t.VariationConst)
	q = whereConst(q, "modification_const", t.ModificationConst)
	return q
}

// FindByTuple returns the invariable with an exact tuple match.
func (r *InvariableRepo) FindByTuple(ctx context.Context, t invariable.Tuple) (*invariable.Invariable, error) {
	sql, args, err := r.findQuery(t).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var inv invariable.Invariable
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &inv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(invariablesTable, t.ItemID.String())
		}
		return nil, fmt.Errorf("find invariable: %w", err)
	}

	return &inv, nil
}

// Insert persists a freshly minted invariable. Invariables are append-only:
// there is no update or delete counterpart in this repository.
func (r *InvariableRepo) Insert(ctx context.Context, inv invariable.Invariable) error {
	q := r.builder.Insert(invariablesTable).
		SetMap(postgres.StructToMap(inv))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.NewDuplicate("invariable", "tuple", inv.ItemID.String()).
				WithCause(err)
		}
		return fmt.Errorf("insert invariable: %w", err)
	}

	return nil
}

// whereConst adds a NULL-for-NULL tuple condition: a nil const must match
// only rows where the column IS NULL, never act as a wildcard.
func whereConst(q squirrel.SelectBuilder, column string, value *id.ID) squirrel.SelectBuilder {
	if value == nil {
		return q.Where(squirrel.Eq{column: nil})
	}
	return q.Where(squirrel.Eq{column: *value})
}

// Ensure interface compliance.
var _ invariable.Repository = (*InvariableRepo)(nil)
