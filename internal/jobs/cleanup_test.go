package jobs

import (
	"context"
	"strconv"
	"testing"
	"time"

	"pet-medical-records/internal/adapters/storage/memory"
	"pet-medical-records/internal/domain/grants"
)

func TestCleanupJob_PurgesOnlyStaleUnused(t *testing.T) {
	store := memory.NewGrantStore()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	// Viejo y sin usar: se purga.
	_ = store.CreateToken(ctx, grants.Token{Value: "stale", Kind: grants.TokenKindShare, PetID: "pet-1", CreatedAt: now.Add(-11 * time.Minute)})
	// Viejo pero usado: se conserva como rastro del canje.
	_ = store.CreateToken(ctx, grants.Token{Value: "used", Kind: grants.TokenKindShare, PetID: "pet-1", CreatedAt: now.Add(-11 * time.Minute), Used: true})
	// Fresco: todavía canjeable, no se toca.
	_ = store.CreateToken(ctx, grants.Token{Value: "fresh", Kind: grants.TokenKindVet, PetID: "pet-1", CreatedAt: now.Add(-5 * time.Minute)})

	job := NewCleanupJob(store)
	job.now = func() time.Time { return now }

	if err := job.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	if _, err := store.GetToken(ctx, grants.TokenKindShare, "stale"); err == nil {
		t.Fatal("stale unused token must be purged")
	}
	if _, err := store.GetToken(ctx, grants.TokenKindShare, "used"); err != nil {
		t.Fatalf("used token must survive: %v", err)
	}
	if _, err := store.GetToken(ctx, grants.TokenKindVet, "fresh"); err != nil {
		t.Fatalf("fresh token must survive: %v", err)
	}
}

func TestCleanupJob_DrainsInBatches(t *testing.T) {
	store := &countingStore{GrantStore: memory.NewGrantStore()}
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	for i := 0; i < purgeBatchSize+10; i++ {
		_ = store.CreateToken(ctx, grants.Token{
			Value:     "t-" + strconv.Itoa(i),
			Kind:      grants.TokenKindShare,
			PetID:     "pet-1",
			CreatedAt: now.Add(-time.Hour),
		})
	}

	job := NewCleanupJob(store)
	job.now = func() time.Time { return now }

	if err := job.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	// Un lote lleno fuerza una pasada más hasta agotar.
	if store.purgeCalls[grants.TokenKindShare] < 2 {
		t.Fatalf("expected at least 2 purge batches, got %d", store.purgeCalls[grants.TokenKindShare])
	}
}

type countingStore struct {
	*memory.GrantStore
	purgeCalls map[grants.TokenKind]int
}

func (s *countingStore) PurgeExpiredUnused(ctx context.Context, kind grants.TokenKind, olderThan time.Time, limit int) (int, error) {
	if s.purgeCalls == nil {
		s.purgeCalls = map[grants.TokenKind]int{}
	}
	s.purgeCalls[kind]++
	return s.GrantStore.PurgeExpiredUnused(ctx, kind, olderThan, limit)
}
