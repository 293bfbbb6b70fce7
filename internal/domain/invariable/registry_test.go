package invariable

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varicat/internal/core/apperror"
	"varicat/internal/core/id"
)

type mockRepo struct {
	findByTuple func(t Tuple) (*Invariable, error)
	insert      func(inv Invariable) error
}

func (m *mockRepo) FindByTuple(_ context.Context, t Tuple) (*Invariable, error) {
	return m.findByTuple(t)
}

func (m *mockRepo) Insert(_ context.Context, inv Invariable) error {
	return m.insert(inv)
}

type mockItems struct {
	exists bool
	err    error
}

func (m *mockItems) ItemExists(_ context.Context, _ id.ID) (bool, error) {
	return m.exists, m.err
}

func idPtr(v id.ID) *id.ID { return &v }

func TestFindOrCreate_FindHit(t *testing.T) {
	ctx := context.Background()

	existing := New(Tuple{ItemID: id.New(), OfferConst: idPtr(id.New())})
	repo := &mockRepo{
		findByTuple: func(Tuple) (*Invariable, error) {
			return &existing, nil
		},
		insert: func(Invariable) error {
			t.Fatal("insert must not run on a find hit")
			return nil
		},
	}

	res, err := NewRegistry(repo, &mockItems{exists: true}).FindOrCreate(ctx, existing.Tuple())

	require.NoError(t, err)
	assert.Equal(t, existing.ID, res.ID)
	assert.False(t, res.Created)
}

func TestFindOrCreate_MintsOnMiss(t *testing.T) {
	ctx := context.Background()

	tuple := Tuple{ItemID: id.New(), OfferConst: idPtr(id.New()), VariationConst: idPtr(id.New())}
	var inserted Invariable
	repo := &mockRepo{
		findByTuple: func(Tuple) (*Invariable, error) {
			return nil, apperror.NewNotFound("invariable", "tuple")
		},
		insert: func(inv Invariable) error {
			inserted = inv
			return nil
		},
	}

	res, err := NewRegistry(repo, &mockItems{exists: true}).FindOrCreate(ctx, tuple)

	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, inserted.ID, res.ID)
	assert.False(t, id.IsNil(res.ID))
	assert.True(t, tuple.Equal(inserted.Tuple()))
}

func TestFindOrCreate_DuplicateRaceReturnsWinner(t *testing.T) {
	ctx := context.Background()

	tuple := Tuple{ItemID: id.New()}
	winner := New(tuple)
	finds := 0
	repo := &mockRepo{
		findByTuple: func(Tuple) (*Invariable, error) {
			finds++
			if finds == 1 {
				return nil, apperror.NewNotFound("invariable", "tuple")
			}
			return &winner, nil
		},
		insert: func(Invariable) error {
			return apperror.NewDuplicate("invariable", "tuple", tuple.ItemID.String())
		},
	}

	res, err := NewRegistry(repo, &mockItems{exists: true}).FindOrCreate(ctx, tuple)

	require.NoError(t, err)
	assert.Equal(t, winner.ID, res.ID)
	assert.False(t, res.Created, "the race loser must not report Created")
	assert.Equal(t, 2, finds)
}

func TestFindOrCreate_DuplicateThenMissIsConflict(t *testing.T) {
	ctx := context.Background()

	tuple := Tuple{ItemID: id.New()}
	repo := &mockRepo{
		findByTuple: func(Tuple) (*Invariable, error) {
			return nil, apperror.NewNotFound("invariable", "tuple")
		},
		insert: func(Invariable) error {
			return apperror.NewDuplicate("invariable", "tuple", tuple.ItemID.String())
		},
	}

	_, err := NewRegistry(repo, &mockItems{exists: true}).FindOrCreate(ctx, tuple)

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestFindOrCreate_UnknownItem(t *testing.T) {
	ctx := context.Background()

	repo := &mockRepo{
		findByTuple: func(Tuple) (*Invariable, error) {
			t.Fatal("find must not run for an unknown item")
			return nil, nil
		},
	}

	_, err := NewRegistry(repo, &mockItems{exists: false}).FindOrCreate(ctx, Tuple{ItemID: id.New()})

	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestFindOrCreate_InsertErrorPassthrough(t *testing.T) {
	ctx := context.Background()

	dbErr := errors.New("connection reset")
	repo := &mockRepo{
		findByTuple: func(Tuple) (*Invariable, error) {
			return nil, apperror.NewNotFound("invariable", "tuple")
		},
		insert: func(Invariable) error {
			return dbErr
		},
	}

	_, err := NewRegistry(repo, &mockItems{exists: true}).FindOrCreate(ctx, Tuple{ItemID: id.New()})

	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
}

func TestTupleValidate(t *testing.T) {
	tests := []struct {
		name    string
		tuple   Tuple
		wantErr bool
	}{
		{
			name:    "item only",
			tuple:   Tuple{ItemID: id.New()},
			wantErr: false,
		},
		{
			name:    "full depth",
			tuple:   Tuple{ItemID: id.New(), OfferConst: idPtr(id.New()), VariationConst: idPtr(id.New()), ModificationConst: idPtr(id.New())},
			wantErr: false,
		},
		{
			name:    "nil item",
			tuple:   Tuple{},
			wantErr: true,
		},
		{
			name:    "variation const without offer const",
			tuple:   Tuple{ItemID: id.New(), VariationConst: idPtr(id.New())},
			wantErr: true,
		},
		{
			name:    "modification const without variation const",
			tuple:   Tuple{ItemID: id.New(), OfferConst: idPtr(id.New()), ModificationConst: idPtr(id.New())},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tuple.Validate()
			if tt.wantErr {
				assert.True(t, apperror.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTupleEqual(t *testing.T) {
	item := id.New()
	offer := id.New()

	a := Tuple{ItemID: item, OfferConst: idPtr(offer)}
	b := Tuple{ItemID: item, OfferConst: idPtr(offer)}
	assert.True(t, a.Equal(b), "same values behind distinct pointers must compare equal")

	c := Tuple{ItemID: item}
	assert.False(t, a.Equal(c), "a nil const must not match a set const")
	assert.True(t, c.Equal(Tuple{ItemID: item}))
}
