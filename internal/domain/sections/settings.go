// Package sections provides per-section quantity-tracking configuration.
// The catalog core does not administer sections; it only consumes the flags
// that tell the inventory ledger which variant levels carry balance pairs.
package sections

import (
	"context"

	"varicat/internal/core/id"
	"varicat/internal/domain/catalog"
)

// Settings holds the quantity-tracking flags of one section.
// The item-base level always tracks quantity; it is the final fallback and
// has no flag.
type Settings struct {
	SectionID id.ID `db:"section_id" json:"sectionId"`

	OfferQuantity        bool `db:"offer_quantity" json:"offerQuantity"`
	VariationQuantity    bool `db:"variation_quantity" json:"variationQuantity"`
	ModificationQuantity bool `db:"modification_quantity" json:"modificationQuantity"`
}

// DefaultSettings are used for sections with no stored configuration:
// only the item-base pair tracks quantity.
func DefaultSettings(sectionID id.ID) Settings {
	return Settings{SectionID: sectionID}
}

// TracksQuantity reports whether a level carries balance pairs in this section.
func (s Settings) TracksQuantity(level catalog.Level) bool {
	switch level {
	case catalog.LevelItem:
		return true
	case catalog.LevelOffer:
		return s.OfferQuantity
	case catalog.LevelVariation:
		return s.VariationQuantity
	case catalog.LevelModification:
		return s.ModificationQuantity
	}
	return false
}

// Provider supplies tracking settings for an item's section.
type Provider interface {
	// SettingsForItem returns the section settings governing an item,
	// falling back to DefaultSettings when the section has no row.
	SettingsForItem(ctx context.Context, itemID id.ID) (Settings, error)
}
