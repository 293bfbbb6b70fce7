// Package invariable provides the permanent-identity registry. An invariable
// is a stable UUID minted once per logical (item, offer-const, variation-const,
// modification-const) tuple; external aggregates store it instead of any
// revision-scoped row id, so their references survive catalog edits.
package invariable

import (
	"time"

	"varicat/internal/core/apperror"
	"varicat/internal/core/id"
)

// Tuple is the logical key of an invariable. Unset levels are nil and compare
// as NULL in the store, never as a wildcard: an offer-less tuple matches only
// rows where offer_const IS NULL.
type Tuple struct {
	ItemID            id.ID
	OfferConst        *id.ID
	VariationConst    *id.ID
	ModificationConst *id.ID
}

// Validate checks the tuple shape. Depth must be contiguous, mirroring the
// tree: a variation const without an offer const cannot exist.
func (t Tuple) Validate() error {
	if id.IsNil(t.ItemID) {
		return apperror.NewValidation("item id is required").WithDetail("field", "itemId")
	}
	if t.VariationConst != nil && t.OfferConst == nil {
		return apperror.NewValidation("variation const requires an offer const")
	}
	if t.ModificationConst != nil && t.VariationConst == nil {
		return apperror.NewValidation("modification const requires a variation const")
	}
	return nil
}

// Equal compares tuples with NULL-for-NULL semantics.
func (t Tuple) Equal(o Tuple) bool {
	return t.ItemID == o.ItemID &&
		id.PtrEqual(t.OfferConst, o.OfferConst) &&
		id.PtrEqual(t.VariationConst, o.VariationConst) &&
		id.PtrEqual(t.ModificationConst, o.ModificationConst)
}

// Invariable is a permanently assigned identity for a logical variant tuple.
// Rows are created lazily and never updated or deleted while referenced.
type Invariable struct {
	ID                id.ID     `db:"id" json:"id"`
	ItemID            id.ID     `db:"item_id" json:"itemId"`
	OfferConst        *id.ID    `db:"offer_const" json:"offerConst,omitempty"`
	VariationConst    *id.ID    `db:"variation_const" json:"variationConst,omitempty"`
	ModificationConst *id.ID    `db:"modification_const" json:"modificationConst,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
}

// New mints an invariable for a tuple with a fresh stable id.
func New(t Tuple) Invariable {
	return Invariable{
		ID:                id.New(),
		ItemID:            t.ItemID,
		OfferConst:        t.OfferConst,
		VariationConst:    t.VariationConst,
		ModificationConst: t.ModificationConst,
		CreatedAt:         time.Now().UTC(),
	}
}

// Tuple returns the logical key of the invariable.
func (i Invariable) Tuple() Tuple {
	return Tuple{
		ItemID:            i.ItemID,
		OfferConst:        i.OfferConst,
		VariationConst:    i.VariationConst,
		ModificationConst: i.ModificationConst,
	}
}
