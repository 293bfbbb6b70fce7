// Package inventory provides the race-safe inventory ledger: guarded
// quantity/reserve arithmetic against whichever revision is currently live.
package inventory

import (
	"context"
	"fmt"

	"varicat/internal/core/apperror"
	"varicat/internal/core/id"
	"varicat/internal/core/types"
	"varicat/internal/domain/catalog"
	"varicat/internal/domain/identity"
	"varicat/internal/domain/sections"
	"varicat/pkg/logger"
)

// CurrentResolver is the resolver seam; implemented by identity.Resolver.
type CurrentResolver interface {
	Resolve(ctx context.Context, ref identity.Ref) (identity.CurrentIDs, error)
}

// AdjustInput describes one balance adjustment. Ref may be stale; it is
// resolved onto the active revision before anything is written. Callers are
// expected to pass the deepest reference whose level tracks quantity.
type AdjustInput struct {
	Ref identity.Ref

	// QuantityDelta/ReserveDelta are signed; nil leaves the counter
	// untouched. Both set adjust the same row in one statement.
	QuantityDelta *types.Quantity
	ReserveDelta  *types.Quantity
}

func (in AdjustInput) validate() error {
	if in.QuantityDelta == nil && in.ReserveDelta == nil {
		return apperror.NewValidation("at least one of quantityDelta, reserveDelta is required")
	}
	return nil
}

// Ledger performs guarded balance mutations. It holds no locks: correctness
// under concurrency comes from the store's single-statement conditional
// updates.
type Ledger struct {
	resolver CurrentResolver
	repo     Repository
	config   sections.Provider
}

// NewLedger creates an inventory ledger.
func NewLedger(resolver CurrentResolver, repo Repository, config sections.Provider) *Ledger {
	return &Ledger{resolver: resolver, repo: repo, config: config}
}

// Adjust resolves the caller's reference and applies the deltas to the
// targeted row. Mutation always targets the specific level the caller
// referenced, at its current row id.
//
// Returns the number of rows the store actually changed. Zero is a normal
// outcome: either the guard rejected a subtraction (insufficient balance) or
// the referenced node no longer exists in the live revision. A NOT_FOUND
// AppError is returned only when the item or its active revision cannot be
// located.
func (l *Ledger) Adjust(ctx context.Context, in AdjustInput) (int64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}

	cur, err := l.resolver.Resolve(ctx, in.Ref)
	if err != nil {
		return 0, err
	}

	level, rowID, vanished := targetLevel(in.Ref, cur)
	if vanished {
		logger.Debug(ctx, "adjust target vanished from live revision",
			"item_id", cur.ItemID,
			"level", level,
		)
		return 0, nil
	}

	var rows int64
	if level == catalog.LevelItem {
		rows, err = l.repo.AdjustItem(ctx, cur.ItemID, in.QuantityDelta, in.ReserveDelta)
	} else {
		rows, err = l.repo.AdjustNode(ctx, level, *rowID, in.QuantityDelta, in.ReserveDelta)
	}
	if err != nil {
		return 0, fmt.Errorf("adjust %s balance: %w", level, err)
	}

	logger.Debug(ctx, "adjusted balance",
		"item_id", cur.ItemID,
		"level", level,
		"rows_affected", rows,
	)

	return rows, nil
}

// targetLevel picks the deepest level the caller referenced. vanished is true
// when that level was referenced but its node did not survive into the live
// revision.
func targetLevel(ref identity.Ref, cur identity.CurrentIDs) (catalog.Level, *id.ID, bool) {
	switch {
	case ref.ModificationID != nil:
		return catalog.LevelModification, cur.ModificationID, cur.ModificationID == nil
	case ref.VariationID != nil:
		return catalog.LevelVariation, cur.VariationID, cur.VariationID == nil
	case ref.OfferID != nil:
		return catalog.LevelOffer, cur.OfferID, cur.OfferID == nil
	}
	return catalog.LevelItem, nil, false
}

// GetEffectiveBalance returns the item's displayed balance: the deepest level
// that tracks quantity and has populated pairs in the live revision, through
// the single EffectiveBalance fallback definition.
func (l *Ledger) GetEffectiveBalance(ctx context.Context, itemID id.ID) (Balance, error) {
	if id.IsNil(itemID) {
		return Balance{}, apperror.NewValidation("item id is required")
	}

	cfg, err := l.config.SettingsForItem(ctx, itemID)
	if err != nil {
		return Balance{}, fmt.Errorf("load section settings: %w", err)
	}

	tb, err := l.repo.TreeBalances(ctx, itemID)
	if err != nil {
		return Balance{}, fmt.Errorf("load tree balances: %w", err)
	}

	return EffectiveBalance(tb, cfg), nil
}
