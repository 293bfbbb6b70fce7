package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"varicat/internal/core/apperror"
	"varicat/internal/core/id"
	"varicat/internal/core/types"
)

func TestItemValidate(t *testing.T) {
	ctx := context.Background()

	valid := func() *Item { return NewItem("SKU-001", "Widget", id.New()) }

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate(ctx))
	})

	t.Run("missing code", func(t *testing.T) {
		item := valid()
		item.Code = ""
		assert.True(t, apperror.IsValidation(item.Validate(ctx)))
	})

	t.Run("missing section", func(t *testing.T) {
		item := valid()
		item.SectionID = id.Nil()
		assert.True(t, apperror.IsValidation(item.Validate(ctx)))
	})

	t.Run("reserve above quantity", func(t *testing.T) {
		item := valid()
		item.Quantity = 3
		item.Reserve = 5
		assert.True(t, apperror.IsValidation(item.Validate(ctx)))
	})
}

func TestItemPublishing(t *testing.T) {
	item := NewItem("SKU-001", "Widget", id.New())
	assert.False(t, item.IsPublished())

	revID := id.New()
	item.ActiveRevisionID = &revID
	assert.True(t, item.IsPublished())
}

func TestItemAvailable(t *testing.T) {
	item := NewItem("SKU-001", "Widget", id.New())
	item.Quantity = 10
	item.Reserve = 4
	assert.Equal(t, types.Quantity(6), item.Available())
}

func TestLevelDeeper(t *testing.T) {
	assert.Equal(t, LevelOffer, LevelItem.Deeper())
	assert.Equal(t, LevelVariation, LevelOffer.Deeper())
	assert.Equal(t, LevelModification, LevelVariation.Deeper())
	assert.Equal(t, Level(""), LevelModification.Deeper())
}

func TestHasBalancePair(t *testing.T) {
	q := types.Quantity(5)
	r := types.Quantity(1)

	o := &Offer{}
	assert.False(t, o.HasBalancePair())

	o.Quantity = &q
	o.Reserve = &r
	assert.True(t, o.HasBalancePair())
}
