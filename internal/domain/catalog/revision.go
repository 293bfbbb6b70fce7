package catalog

import (
	"time"

	"varicat/internal/core/id"
	"varicat/internal/core/types"
)

// Revision is an immutable snapshot of an item's full variant tree.
// A new revision is created on every edit; exactly one is active per item.
// Revisions and their nodes are never updated in place (except the guarded
// quantity/reserve arithmetic performed by the inventory ledger).
type Revision struct {
	ID        id.ID     `db:"id" json:"id"`
	ItemID    id.ID     `db:"item_id" json:"itemId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewRevision creates a revision snapshot header for an item.
func NewRevision(itemID id.ID) Revision {
	return Revision{
		ID:        id.New(),
		ItemID:    itemID,
		CreatedAt: time.Now().UTC(),
	}
}

// Level identifies a depth in the variant hierarchy.
type Level string

const (
	LevelItem         Level = "item"
	LevelOffer        Level = "offer"
	LevelVariation    Level = "variation"
	LevelModification Level = "modification"
)

// Deeper returns the next level down the hierarchy, or "" at the bottom.
func (l Level) Deeper() Level {
	switch l {
	case LevelItem:
		return LevelOffer
	case LevelOffer:
		return LevelVariation
	case LevelVariation:
		return LevelModification
	}
	return ""
}

// Offer is a top-level sellable variant under an item revision.
type Offer struct {
	// ID is the physical row id, valid only within its revision.
	ID id.ID `db:"id" json:"id"`

	// RevisionID scopes the row to one snapshot.
	RevisionID id.ID `db:"revision_id" json:"revisionId"`

	// ConstID is the logical key: equal across revisions of the same offer.
	ConstID id.ID `db:"const_id" json:"constId"`

	Name  string      `db:"name" json:"name"`
	Price types.Money `db:"price" json:"price"`

	// Quantity/Reserve are populated only when the offer level tracks
	// quantity for the item's section; nil otherwise.
	Quantity *types.Quantity `db:"quantity" json:"quantity,omitempty"`
	Reserve  *types.Quantity `db:"reserve" json:"reserve,omitempty"`

	Sort int `db:"sort" json:"sort"`
}

// Variation is a second-level variant nested under an offer.
type Variation struct {
	ID         id.ID `db:"id" json:"id"`
	OfferID    id.ID `db:"offer_id" json:"offerId"`
	RevisionID id.ID `db:"revision_id" json:"revisionId"`
	ConstID    id.ID `db:"const_id" json:"constId"`

	Name  string      `db:"name" json:"name"`
	Price types.Money `db:"price" json:"price"`

	Quantity *types.Quantity `db:"quantity" json:"quantity,omitempty"`
	Reserve  *types.Quantity `db:"reserve" json:"reserve,omitempty"`

	Sort int `db:"sort" json:"sort"`
}

// Modification is the deepest variant level, nested under a variation.
type Modification struct {
	ID          id.ID `db:"id" json:"id"`
	VariationID id.ID `db:"variation_id" json:"variationId"`
	RevisionID  id.ID `db:"revision_id" json:"revisionId"`
	ConstID     id.ID `db:"const_id" json:"constId"`

	Name  string      `db:"name" json:"name"`
	Price types.Money `db:"price" json:"price"`

	Quantity *types.Quantity `db:"quantity" json:"quantity,omitempty"`
	Reserve  *types.Quantity `db:"reserve" json:"reserve,omitempty"`

	Sort int `db:"sort" json:"sort"`
}

// HasBalancePair reports whether the offer carries a populated quantity pair.
func (o *Offer) HasBalancePair() bool { return o.Quantity != nil && o.Reserve != nil }

// HasBalancePair reports whether the variation carries a populated quantity pair.
func (v *Variation) HasBalancePair() bool { return v.Quantity != nil && v.Reserve != nil }

// HasBalancePair reports whether the modification carries a populated quantity pair.
func (m *Modification) HasBalancePair() bool { return m.Quantity != nil && m.Reserve != nil }
