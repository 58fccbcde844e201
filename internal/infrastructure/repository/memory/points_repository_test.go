package memory

import (
	"context"
	"testing"

	"github.com/greenloop/recycle-league/internal/domain/points"
)

func TestPointsRepository_VersionedUpsert(t *testing.T) {
	t.Parallel()

	repo := NewPointsRepository()
	ctx := context.Background()

	// Fresh row: only a zero version inserts.
	ok, err := repo.UpsertWithVersion(ctx, points.Counters{UserID: "user-1", Recycle: 5, Version: 3})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if ok {
		t.Fatalf("insert with stale version must fail")
	}

	ok, err = repo.UpsertWithVersion(ctx, points.Counters{UserID: "user-1", Recycle: 5})
	if err != nil || !ok {
		t.Fatalf("initial insert: ok=%t err=%v", ok, err)
	}

	stored, exists, err := repo.Get(ctx, "user-1")
	if err != nil || !exists {
		t.Fatalf("get: exists=%t err=%v", exists, err)
	}
	if stored.Version != 1 || stored.Recycle != 5 {
		t.Fatalf("unexpected stored row: %+v", stored)
	}

	// Update passes only with the current version and bumps it.
	ok, err = repo.UpsertWithVersion(ctx, points.Counters{UserID: "user-1", Recycle: 9, Version: 1})
	if err != nil || !ok {
		t.Fatalf("versioned update: ok=%t err=%v", ok, err)
	}
	stored, _, _ = repo.Get(ctx, "user-1")
	if stored.Version != 2 || stored.Recycle != 9 {
		t.Fatalf("unexpected row after update: %+v", stored)
	}

	// A writer holding the old version loses.
	ok, err = repo.UpsertWithVersion(ctx, points.Counters{UserID: "user-1", Recycle: 99, Version: 1})
	if err != nil {
		t.Fatalf("stale update: %v", err)
	}
	if ok {
		t.Fatalf("stale version must be rejected")
	}
	stored, _, _ = repo.Get(ctx, "user-1")
	if stored.Recycle != 9 {
		t.Fatalf("stale write mutated the row: %+v", stored)
	}
}

func TestPointsRepository_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	repo := NewPointsRepository()
	ctx := context.Background()

	if ok, err := repo.UpsertWithVersion(ctx, points.Counters{UserID: "user-1", Recycle: 5}); err != nil || !ok {
		t.Fatalf("insert: ok=%t err=%v", ok, err)
	}

	first, _, _ := repo.Get(ctx, "user-1")
	first.Recycle = 100

	second, _, _ := repo.Get(ctx, "user-1")
	if second.Recycle != 5 {
		t.Fatalf("caller mutation leaked into the store: %+v", second)
	}
}
