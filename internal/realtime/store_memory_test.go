package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestMemoryStore_PutIsIdempotentUpsert(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(clock)
	ctx := context.Background()

	first := ConnectionRecord{
		ConnectionID:  "A",
		Scope:         ScopeClinic,
		EstablishedAt: clock.Now(),
		ExpiresAt:     clock.Now().Add(time.Hour),
	}
	if err := store.Put(ctx, first); err != nil {
		t.Fatalf("put: %v", err)
	}

	second := first
	second.Scope = ScopeDoctor("D1")
	second.EstablishedAt = clock.Now().Add(time.Minute)
	if err := store.Put(ctx, second); err != nil {
		t.Fatalf("second put: %v", err)
	}

	all, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one record after double put, got %d", len(all))
	}
	if all[0].Scope != ScopeDoctor("D1") {
		t.Errorf("expected latest scope to win, got %q", all[0].Scope)
	}
	if !all[0].EstablishedAt.Equal(second.EstablishedAt) {
		t.Errorf("expected latest established_at to win")
	}
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(clock)
	ctx := context.Background()

	if err := store.Delete(ctx, "missing"); err != nil {
		t.Fatalf("deleting an unknown id must not error, got %v", err)
	}

	recA := ConnectionRecord{ConnectionID: "A", ExpiresAt: clock.Now().Add(time.Hour)}
	if err := store.Put(ctx, recA); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, "A"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "A"); err != nil {
		t.Fatalf("repeat delete must not error, got %v", err)
	}

	all, _ := store.ListAll(ctx)
	if len(all) != 0 {
		t.Errorf("expected empty store, got %d records", len(all))
	}
}

func TestMemoryStore_ListByScope(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(clock)
	ctx := context.Background()
	exp := clock.Now().Add(time.Hour)

	store.Put(ctx, ConnectionRecord{ConnectionID: "A", Scope: ScopeDoctor("D1"), ExpiresAt: exp})
	store.Put(ctx, ConnectionRecord{ConnectionID: "B", Scope: ScopeClinic, ExpiresAt: exp})
	store.Put(ctx, ConnectionRecord{ConnectionID: "C", Scope: ScopeDoctor("D2"), ExpiresAt: exp})

	d1, err := store.ListByScope(ctx, ScopeDoctor("D1"))
	if err != nil {
		t.Fatalf("list by scope: %v", err)
	}
	if len(d1) != 1 || d1[0].ConnectionID != "A" {
		t.Errorf("expected only A for doctor D1, got %v", d1)
	}

	all, _ := store.ListAll(ctx)
	if len(all) != 3 {
		t.Errorf("expected 3 records in ListAll, got %d", len(all))
	}
}

func TestMemoryStore_ExpiredRecordsAreInvisible(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(clock)
	ctx := context.Background()

	store.Put(ctx, ConnectionRecord{ConnectionID: "A", ExpiresAt: clock.Now().Add(time.Minute)})
	store.Put(ctx, ConnectionRecord{ConnectionID: "B", ExpiresAt: clock.Now().Add(time.Hour)})

	clock.Advance(30 * time.Minute)

	all, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].ConnectionID != "B" {
		t.Errorf("expected only unexpired B, got %v", all)
	}
}
