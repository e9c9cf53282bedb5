package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"
)

func TestTreapStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(WithEdition("test"))

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	inserted, err := store.Upsert(ctx, Entry{ModelID: "m1", Name: "Chalk", Champion: "Houston", Points: 97})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inserted {
		t.Error("expected first upsert to insert")
	}
	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	entry, err := store.Rank(ctx, "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 1 || entry.Points != 97 || entry.Champion != "Houston" || entry.Name != "Chalk" {
		t.Errorf("unexpected entry %+v", entry)
	}

	entries, err := store.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].ModelID != "m1" {
		t.Errorf("unexpected top entries %+v", entries)
	}
}

func TestTreapStore_UpsertMoves(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	mustUpsert(t, store, Entry{ModelID: "a", Points: 50})
	mustUpsert(t, store, Entry{ModelID: "b", Points: 80})

	if e, _ := store.Rank(ctx, "a"); e.Rank != 2 {
		t.Fatalf("expected a at rank 2, got %d", e.Rank)
	}

	// Re-scoring replaces the old value, even when lower.
	inserted, err := store.Upsert(ctx, Entry{ModelID: "b", Points: 10})
	if err != nil {
		t.Fatal(err)
	}
	if inserted {
		t.Error("expected update, not insert")
	}
	if e, _ := store.Rank(ctx, "a"); e.Rank != 1 {
		t.Fatalf("expected a at rank 1, got %d", e.Rank)
	}
	if e, _ := store.Rank(ctx, "b"); e.Rank != 2 || e.Points != 10 {
		t.Fatalf("unexpected b entry %+v", e)
	}
	if store.Count(ctx) != 2 {
		t.Fatalf("expected 2 entries, got %d", store.Count(ctx))
	}
}

func TestTreapStore_Ties(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	mustUpsert(t, store, Entry{ModelID: "c", Points: 100})
	mustUpsert(t, store, Entry{ModelID: "a", Points: 100})
	mustUpsert(t, store, Entry{ModelID: "b", Points: 90})
	mustUpsert(t, store, Entry{ModelID: "d", Points: 100})

	top, err := store.TopN(ctx, 4)
	if err != nil {
		t.Fatal(err)
	}
	wantIDs := []string{"a", "c", "d", "b"}
	wantRanks := []int{1, 1, 1, 4}
	for i := range top {
		if top[i].ModelID != wantIDs[i] || top[i].Rank != wantRanks[i] {
			t.Errorf("position %d: got %s/%d, want %s/%d", i, top[i].ModelID, top[i].Rank, wantIDs[i], wantRanks[i])
		}
	}

	if e, _ := store.Rank(ctx, "d"); e.Rank != 1 {
		t.Errorf("tied model should share rank 1, got %d", e.Rank)
	}
	if e, _ := store.Rank(ctx, "b"); e.Rank != 4 {
		t.Errorf("expected competition rank 4, got %d", e.Rank)
	}
}

func TestTreapStore_Remove(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	mustUpsert(t, store, Entry{ModelID: "a", Points: 10})
	mustUpsert(t, store, Entry{ModelID: "b", Points: 20})

	removed, err := store.Remove(ctx, "b")
	if err != nil || !removed {
		t.Fatalf("expected removal, got %v %v", removed, err)
	}
	removed, _ = store.Remove(ctx, "b")
	if removed {
		t.Error("second removal should report false")
	}
	if _, err := store.Rank(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if e, _ := store.Rank(ctx, "a"); e.Rank != 1 {
		t.Errorf("expected a to move up, got %d", e.Rank)
	}

	store.Reset(ctx)
	if store.Count(ctx) != 0 {
		t.Errorf("expected empty board after reset")
	}
}

func TestTreapStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	if _, err := store.TopN(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
	if _, err := store.Upsert(ctx, Entry{Points: 3}); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry for empty id, got %v", err)
	}
	if _, err := store.Upsert(ctx, Entry{ModelID: "x", Points: -1}); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry for negative points, got %v", err)
	}
	if _, err := store.Rank(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// Ranks from the tree must match a brute-force sort after random churn.
func TestTreapStore_MatchesSortedOrder(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()
	rng := rand.New(rand.NewSource(7))
	want := make(map[string]int)

	for i := 0; i < 2000; i++ {
		id := fmt.Sprintf("m%03d", rng.Intn(300))
		if rng.Intn(5) == 0 {
			_, _ = store.Remove(ctx, id)
			delete(want, id)
			continue
		}
		pts := rng.Intn(145)
		mustUpsert(t, store, Entry{ModelID: id, Points: pts})
		want[id] = pts
	}

	ids := make([]string, 0, len(want))
	for id := range want {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return less(want[ids[i]], ids[i], want[ids[j]], ids[j]) })

	top, err := store.TopN(ctx, len(ids)+10)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != len(ids) {
		t.Fatalf("expected %d entries, got %d", len(ids), len(top))
	}
	for i, id := range ids {
		if top[i].ModelID != id {
			t.Fatalf("position %d: got %s want %s", i, top[i].ModelID, id)
		}
		e, err := store.Rank(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if e.Rank != top[i].Rank {
			t.Fatalf("%s: Rank()=%d TopN rank=%d", id, e.Rank, top[i].Rank)
		}
	}
	if nsize(store.root) != len(ids) {
		t.Fatalf("tree size %d does not match %d ids", nsize(store.root), len(ids))
	}
}

func TestTreapStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("g%d-%d", g, i)
				_, _ = store.Upsert(ctx, Entry{ModelID: id, Points: i % 144})
				_, _ = store.Rank(ctx, id)
				_, _ = store.TopN(ctx, 5)
			}
		}(g)
	}
	wg.Wait()

	if store.Count(ctx) != 1600 {
		t.Fatalf("expected 1600 entries, got %d", store.Count(ctx))
	}
}

func mustUpsert(t *testing.T, s *TreapStore, e Entry) {
	t.Helper()
	if _, err := s.Upsert(context.Background(), e); err != nil {
		t.Fatalf("upsert %s: %v", e.ModelID, err)
	}
}

func BenchmarkTreapStore_Upsert(b *testing.B) {
	ctx := context.Background()
	store := NewTreapStore()
	ids := make([]string, 10000)
	for i := range ids {
		ids[i] = fmt.Sprintf("model-%05d", i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.Upsert(ctx, Entry{ModelID: ids[i%len(ids)], Points: i % 145})
	}
}

func BenchmarkTreapStore_Rank(b *testing.B) {
	ctx := context.Background()
	store := NewTreapStore()
	for i := 0; i < 10000; i++ {
		_, _ = store.Upsert(ctx, Entry{ModelID: fmt.Sprintf("model-%05d", i), Points: i % 145})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.Rank(ctx, fmt.Sprintf("model-%05d", i%10000))
	}
}
