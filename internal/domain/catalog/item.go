// Package catalog provides the variant tree model: items, revisions and the
// three-level Offer -> Variation -> Modification hierarchy.
//
// Two identifier spaces coexist here. Every tree node carries a row id that is
// unique to one revision, and a const id that stays equal across all revisions
// of the item. External systems must never store row ids; they store either a
// revision-scoped reference (translated by the identity resolver) or a
// permanent invariable id.
package catalog

import (
	"context"
	"time"

	"varicat/internal/core/apperror"
	"varicat/internal/core/entity"
	"varicat/internal/core/id"
	"varicat/internal/core/types"
)

// Item is the catalog aggregate root (a sellable product/material).
type Item struct {
	entity.BaseEntity

	// Code is the item article/SKU
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// SectionID references the category/section the item belongs to.
	// Section settings decide which variant levels track quantity.
	SectionID id.ID `db:"section_id" json:"sectionId"`

	// ActiveRevisionID points to the currently active snapshot.
	// Nil only for an item that has never been published.
	ActiveRevisionID *id.ID `db:"active_revision_id" json:"activeRevisionId,omitempty"`

	// Quantity and Reserve form the item-base balance pair, the final
	// fallback when no variant level tracks quantity.
	Quantity types.Quantity `db:"quantity" json:"quantity"`
	Reserve  types.Quantity `db:"reserve" json:"reserve"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewItem creates a new Item with required fields.
func NewItem(code, name string, sectionID id.ID) *Item {
	now := time.Now().UTC()
	return &Item{
		BaseEntity: entity.NewBaseEntity(),
		Code:       code,
		Name:       name,
		SectionID:  sectionID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate implements entity.Validatable.
func (i *Item) Validate(ctx context.Context) error {
	if i.Code == "" {
		return apperror.NewValidation("item code is required").WithDetail("field", "code")
	}
	if i.Name == "" {
		return apperror.NewValidation("item name is required").WithDetail("field", "name")
	}
	if id.IsNil(i.SectionID) {
		return apperror.NewValidation("item section is required").WithDetail("field", "sectionId")
	}
	if i.Quantity.IsNegative() || i.Reserve.IsNegative() || i.Reserve > i.Quantity {
		return apperror.NewValidation("item balance pair violates 0 <= reserve <= quantity").
			WithDetail("quantity", i.Quantity.Int64()).
			WithDetail("reserve", i.Reserve.Int64())
	}
	return nil
}

// IsPublished reports whether the item has an active revision.
func (i *Item) IsPublished() bool {
	return i.ActiveRevisionID != nil && !id.IsNil(*i.ActiveRevisionID)
}

// Available returns quantity minus reserve at the item-base level.
func (i *Item) Available() types.Quantity {
	return i.Quantity - i.Reserve
}
