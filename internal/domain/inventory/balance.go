package inventory

import (
	"varicat/internal/core/types"
	"varicat/internal/domain/catalog"
	"varicat/internal/domain/sections"
)

// LevelTotals aggregates the populated balance pairs of one variant level
// within an item's active revision.
type LevelTotals struct {
	// Rows counts nodes with a populated quantity pair at this level.
	Rows int64 `db:"rows"`

	Quantity types.Quantity `db:"quantity"`
	Reserve  types.Quantity `db:"reserve"`
}

// TreeBalances carries the per-level aggregates of an item's live tree.
// The item level is always populated (Rows == 1).
type TreeBalances struct {
	Item         LevelTotals
	Offer        LevelTotals
	Variation    LevelTotals
	Modification LevelTotals
}

// Balance is the effective displayed balance of an item.
type Balance struct {
	Level    catalog.Level
	Quantity types.Quantity
	Reserve  types.Quantity
}

// Available returns quantity minus reserve.
func (b Balance) Available() types.Quantity {
	return b.Quantity - b.Reserve
}

// EffectiveBalance is the single definition of the quantity fallback chain:
// modification, else variation, else offer, else item-base. A level is
// eligible when its section flag tracks quantity AND the live revision has at
// least one populated pair there; presence is decided by the pair being
// populated, not by the quantity being positive. Every read path must go
// through this function.
func EffectiveBalance(tb TreeBalances, cfg sections.Settings) Balance {
	for _, c := range []struct {
		level  catalog.Level
		totals LevelTotals
	}{
		{catalog.LevelModification, tb.Modification},
		{catalog.LevelVariation, tb.Variation},
		{catalog.LevelOffer, tb.Offer},
	} {
		if cfg.TracksQuantity(c.level) && c.totals.Rows > 0 {
			return Balance{Level: c.level, Quantity: c.totals.Quantity, Reserve: c.totals.Reserve}
		}
	}
	return Balance{Level: catalog.LevelItem, Quantity: tb.Item.Quantity, Reserve: tb.Item.Reserve}
}
