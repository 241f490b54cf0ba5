package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"sellmypi/internal/models"
	"sellmypi/internal/repository"
)

func testClock() func() time.Time {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func seedOrder(t *testing.T, store *repository.MemoryStore, ownerID string, status models.Status) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		OwnerID:     ownerID,
		PiAmount:    decimal.NewFromInt(10),
		UsdValue:    "5.00",
		InrValue:    "425.00",
		SellRateUsd: "0.5",
		SellRateInr: "42.5",
		UpiID:       "owner@upi",
		ImageURL:    "https://img.example/proof.png",
		Status:      models.StatusPending,
		UserInfo: models.UserInfo{
			Username: "owner-" + ownerID,
			Email:    ownerID + "@example.com",
			Phone:    "+910000000000",
		},
	}
	if err := store.Create(context.Background(), tx); err != nil {
		t.Fatalf("seed create: %v", err)
	}
	if status != models.StatusPending {
		if _, err := store.Update(context.Background(), tx.ID, map[string]any{"status": status}); err != nil {
			t.Fatalf("seed status: %v", err)
		}
		tx.Status = status
	}
	return tx
}

func TestTransitionTable(t *testing.T) {
	all := models.Statuses
	valid := map[models.Status][]models.Status{
		models.StatusPending:    {models.StatusProcessing, models.StatusRejected},
		models.StatusProcessing: {models.StatusApproved, models.StatusRejected},
		models.StatusApproved:   {models.StatusCompleted, models.StatusRejected},
		models.StatusCompleted:  {},
		models.StatusRejected:   {},
	}

	for _, from := range all {
		for _, to := range all {
			allowed := false
			for _, s := range valid[from] {
				if s == to {
					allowed = true
				}
			}

			store := repository.NewMemoryStore().WithClock(testClock())
			lifecycle := NewLifecycle(store, NewNoopStatsCache(), zaptest.NewLogger(t))
			tx := seedOrder(t, store, "u1", from)

			updated, err := lifecycle.Transition(context.Background(), tx.ID, to)
			if allowed {
				if err != nil {
					t.Fatalf("transition %s -> %s: unexpected error %v", from, to, err)
				}
				if updated.Status != to {
					t.Fatalf("transition %s -> %s: got status %s", from, to, updated.Status)
				}
				persisted, _ := store.Get(context.Background(), tx.ID)
				if persisted.Status != to {
					t.Fatalf("transition %s -> %s: status not persisted", from, to)
				}
				continue
			}

			var transitionErr *models.InvalidTransitionError
			if !errors.As(err, &transitionErr) {
				t.Fatalf("transition %s -> %s: want InvalidTransitionError, got %v", from, to, err)
			}
			if transitionErr.From != from || transitionErr.To != to {
				t.Fatalf("transition %s -> %s: error reports %s -> %s", from, to, transitionErr.From, transitionErr.To)
			}
			persisted, _ := store.Get(context.Background(), tx.ID)
			if persisted.Status != from {
				t.Fatalf("transition %s -> %s: status changed on failure", from, to)
			}
		}
	}
}

func TestTransitionTerminalStatesNeverChange(t *testing.T) {
	for _, terminal := range []models.Status{models.StatusCompleted, models.StatusRejected} {
		store := repository.NewMemoryStore().WithClock(testClock())
		lifecycle := NewLifecycle(store, NewNoopStatsCache(), zaptest.NewLogger(t))
		tx := seedOrder(t, store, "u1", terminal)

		for _, target := range models.Statuses {
			if _, err := lifecycle.Transition(context.Background(), tx.ID, target); err == nil {
				t.Fatalf("transition out of terminal %s to %s succeeded", terminal, target)
			}
			persisted, _ := store.Get(context.Background(), tx.ID)
			if persisted.Status != terminal {
				t.Fatalf("terminal %s mutated to %s", terminal, persisted.Status)
			}
		}
	}
}

func TestTransitionUnknownTargetAndMissingID(t *testing.T) {
	store := repository.NewMemoryStore()
	lifecycle := NewLifecycle(store, NewNoopStatsCache(), zaptest.NewLogger(t))

	if _, err := lifecycle.Transition(context.Background(), "missing", models.StatusProcessing); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	tx := seedOrder(t, store, "u1", models.StatusPending)
	if _, err := lifecycle.Transition(context.Background(), tx.ID, models.Status("shipped")); !errors.Is(err, models.ErrUnknownStatus) {
		t.Fatalf("want ErrUnknownStatus, got %v", err)
	}
}

func TestForceSetStatusSkipsTable(t *testing.T) {
	store := repository.NewMemoryStore().WithClock(testClock())
	lifecycle := NewLifecycle(store, NewNoopStatsCache(), zaptest.NewLogger(t))
	tx := seedOrder(t, store, "u1", models.StatusCompleted)

	updated, err := lifecycle.ForceSetStatus(context.Background(), tx.ID, models.StatusPending)
	if err != nil {
		t.Fatalf("force set: %v", err)
	}
	if updated.Status != models.StatusPending {
		t.Fatalf("force set: got %s", updated.Status)
	}

	if _, err := lifecycle.ForceSetStatus(context.Background(), tx.ID, models.Status("archived")); !errors.Is(err, models.ErrUnknownStatus) {
		t.Fatalf("force set unknown status: got %v", err)
	}
}

type countingCache struct {
	StatsCache
	invalidations int
}

func (c *countingCache) Invalidate(ctx context.Context) error {
	c.invalidations++
	return c.StatsCache.Invalidate(ctx)
}

func TestTransitionInvalidatesStatsCache(t *testing.T) {
	store := repository.NewMemoryStore().WithClock(testClock())
	cache := &countingCache{StatsCache: NewNoopStatsCache()}
	lifecycle := NewLifecycle(store, cache, zaptest.NewLogger(t))
	tx := seedOrder(t, store, "u1", models.StatusPending)

	if _, err := lifecycle.Transition(context.Background(), tx.ID, models.StatusProcessing); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if cache.invalidations != 1 {
		t.Fatalf("want 1 cache invalidation, got %d", cache.invalidations)
	}
}
