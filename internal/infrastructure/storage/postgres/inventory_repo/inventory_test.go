package inventory_repo

import (
	"context"
	"testing"

	"varicat/internal/core/id"
	"varicat/internal/core/types"
	"varicat/internal/domain/catalog"
)

func qty(v int64) *types.Quantity {
	q := types.Quantity(v)
	return &q
}

func TestGuardedUpdate_BothDeltas(t *testing.T) {
	repo := NewInventoryRepo(nil)
	rowID := id.New()

	q, err := repo.guardedUpdate("cat_offers", rowID, qty(-3), qty(-3))
	if err != nil {
		t.Fatalf("guardedUpdate failed: %v", err)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	wantSQL := "UPDATE cat_offers SET quantity = quantity + $1, reserve = reserve + $2 " +
		"WHERE id = $3 AND quantity + $4 >= 0 AND reserve + $5 >= 0 AND reserve + $6 <= quantity + $7"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}

	wantArgs := []any{int64(-3), int64(-3), rowID, int64(-3), int64(-3), int64(-3), int64(-3)}
	if len(args) != len(wantArgs) {
		t.Fatalf("Args count mismatch\nwant: %d\ngot:  %d", len(wantArgs), len(args))
	}
	for i := range wantArgs {
		if args[i] != wantArgs[i] {
			t.Errorf("Arg %d mismatch\nwant: %v\ngot:  %v", i, wantArgs[i], args[i])
		}
	}
}

func TestGuardedUpdate_QuantityOnlyStillGuardsReserve(t *testing.T) {
	repo := NewInventoryRepo(nil)

	q, err := repo.guardedUpdate("cat_modifications", id.New(), qty(-5), nil)
	if err != nil {
		t.Fatalf("guardedUpdate failed: %v", err)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	// The cross guard still applies: lowering quantity below the reserve
	// must match zero rows even when reserve itself is untouched.
	wantSQL := "UPDATE cat_modifications SET quantity = quantity + $1 " +
		"WHERE id = $2 AND quantity + $3 >= 0 AND reserve + $4 >= 0 AND reserve + $5 <= quantity + $6"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}

	if args[3] != int64(0) || args[4] != int64(0) {
		t.Errorf("untouched reserve delta must guard with zero, got %v and %v", args[3], args[4])
	}
	if args[5] != int64(-5) {
		t.Errorf("quantity delta must feed the cross guard, got %v", args[5])
	}
}

func TestGuardedUpdate_RequiresADelta(t *testing.T) {
	repo := NewInventoryRepo(nil)

	if _, err := repo.guardedUpdate("cat_offers", id.New(), nil, nil); err == nil {
		t.Fatal("expected validation error for empty deltas")
	}
}

func TestAdjustNode_UnknownLevel(t *testing.T) {
	repo := NewInventoryRepo(nil)

	_, err := repo.AdjustNode(context.Background(), catalog.LevelItem, id.New(), qty(1), nil)
	if err == nil {
		t.Fatal("expected validation error: item balances go through AdjustItem")
	}
}
