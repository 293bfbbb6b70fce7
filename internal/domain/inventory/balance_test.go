package inventory

import (
	"testing"

	"varicat/internal/core/types"
	"varicat/internal/domain/catalog"
	"varicat/internal/domain/sections"
)

func TestEffectiveBalance_FallbackChain(t *testing.T) {
	full := TreeBalances{
		Item:         LevelTotals{Rows: 1, Quantity: 100, Reserve: 10},
		Offer:        LevelTotals{Rows: 3, Quantity: 80, Reserve: 8},
		Variation:    LevelTotals{Rows: 5, Quantity: 60, Reserve: 6},
		Modification: LevelTotals{Rows: 7, Quantity: 40, Reserve: 4},
	}

	tests := []struct {
		name         string
		tb           TreeBalances
		cfg          sections.Settings
		wantLevel    catalog.Level
		wantQuantity types.Quantity
	}{
		{
			name:         "all levels tracked picks modification",
			tb:           full,
			cfg:          sections.Settings{OfferQuantity: true, VariationQuantity: true, ModificationQuantity: true},
			wantLevel:    catalog.LevelModification,
			wantQuantity: 40,
		},
		{
			name:         "modification untracked falls to variation",
			tb:           full,
			cfg:          sections.Settings{OfferQuantity: true, VariationQuantity: true},
			wantLevel:    catalog.LevelVariation,
			wantQuantity: 60,
		},
		{
			name:         "only offers tracked",
			tb:           full,
			cfg:          sections.Settings{OfferQuantity: true},
			wantLevel:    catalog.LevelOffer,
			wantQuantity: 80,
		},
		{
			name:         "nothing tracked falls to item base",
			tb:           full,
			cfg:          sections.Settings{},
			wantLevel:    catalog.LevelItem,
			wantQuantity: 100,
		},
		{
			name: "tracked level with no populated pairs is skipped",
			tb: TreeBalances{
				Item:  LevelTotals{Rows: 1, Quantity: 100, Reserve: 10},
				Offer: LevelTotals{Rows: 3, Quantity: 80, Reserve: 8},
			},
			cfg:          sections.Settings{OfferQuantity: true, ModificationQuantity: true},
			wantLevel:    catalog.LevelOffer,
			wantQuantity: 80,
		},
		{
			name: "populated pair with zero quantity still counts as present",
			tb: TreeBalances{
				Item:  LevelTotals{Rows: 1, Quantity: 100, Reserve: 10},
				Offer: LevelTotals{Rows: 2, Quantity: 0, Reserve: 0},
			},
			cfg:          sections.Settings{OfferQuantity: true},
			wantLevel:    catalog.LevelOffer,
			wantQuantity: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectiveBalance(tt.tb, tt.cfg)
			if got.Level != tt.wantLevel {
				t.Errorf("level mismatch\nwant: %s\ngot:  %s", tt.wantLevel, got.Level)
			}
			if got.Quantity != tt.wantQuantity {
				t.Errorf("quantity mismatch\nwant: %d\ngot:  %d", tt.wantQuantity, got.Quantity)
			}
		})
	}
}

func TestBalanceAvailable(t *testing.T) {
	b := Balance{Level: catalog.LevelItem, Quantity: 10, Reserve: 4}
	if got := b.Available(); got != 6 {
		t.Errorf("expected available 6, got %d", got)
	}
}
