package invariable

import (
	"context"
	"fmt"

	"varicat/internal/core/apperror"
	"varicat/internal/core/id"
	"varicat/pkg/logger"
)

// Result is the outcome of FindOrCreate.
type Result struct {
	// ID is the permanent identity of the tuple.
	ID id.ID

	// Created reports whether this call minted the row. False on a find hit
	// and when a concurrent caller won the insert race.
	Created bool
}

// Registry mints and remembers permanent identities per logical tuple.
//
// Creation is optimistic: no locks are taken. Concurrent FindOrCreate calls
// for the same tuple may both attempt insertion; the store's uniqueness
// constraint rejects the loser, which re-queries once and returns the
// winner's id.
type Registry struct {
	repo  Repository
	items ItemSource
}

// NewRegistry creates a registry over the invariable store.
func NewRegistry(repo Repository, items ItemSource) *Registry {
	return &Registry{repo: repo, items: items}
}

// FindOrCreate returns the permanent id for a tuple, minting it on first use.
// Safe to call concurrently from many callers referencing the same tuple; a
// duplicate-key race is resolved internally and never surfaced.
//
// Fails fast with VALIDATION_ERROR on a malformed tuple and NOT_FOUND when
// the tuple does not reference a real item; neither is retried.
func (r *Registry) FindOrCreate(ctx context.Context, t Tuple) (Result, error) {
	if err := t.Validate(); err != nil {
		return Result{}, err
	}

	exists, err := r.items.ItemExists(ctx, t.ItemID)
	if err != nil {
		return Result{}, fmt.Errorf("check item: %w", err)
	}
	if !exists {
		return Result{}, apperror.NewNotFound("item", t.ItemID.String())
	}

	inv, err := r.repo.FindByTuple(ctx, t)
	if err == nil {
		return Result{ID: inv.ID}, nil
	}
	if !apperror.IsNotFound(err) {
		return Result{}, fmt.Errorf("find invariable: %w", err)
	}

	fresh := New(t)
	err = r.repo.Insert(ctx, fresh)
	if err == nil {
		logger.Debug(ctx, "minted invariable",
			"invariable_id", fresh.ID,
			"item_id", t.ItemID,
		)
		return Result{ID: fresh.ID, Created: true}, nil
	}
	if !apperror.IsDuplicate(err) {
		return Result{}, fmt.Errorf("insert invariable: %w", err)
	}

	// A concurrent caller won the race: the winner's row must be visible
	// now. Retry-once, not a loop; a second miss means the row was deleted
	// underneath us, which the registry never does itself.
	winner, err := r.repo.FindByTuple(ctx, t)
	if err != nil {
		if apperror.IsNotFound(err) {
			return Result{}, apperror.NewConflict("invariable vanished after duplicate insert").
				WithDetail("item_id", t.ItemID.String()).
				WithCause(err)
		}
		return Result{}, fmt.Errorf("re-find invariable after duplicate: %w", err)
	}

	return Result{ID: winner.ID}, nil
}
