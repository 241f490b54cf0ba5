package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"sellmypi/internal/models"
	"sellmypi/internal/repository"
)

func newOrdersFixture(t *testing.T) (*Orders, *Lifecycle, *Deleter, *repository.MemoryStore) {
	t.Helper()

	store := repository.NewMemoryStore().WithClock(testClock())
	logger := zaptest.NewLogger(t)
	agg := NewAggregator(nil, logger)
	cache := NewNoopStatsCache()
	orders := NewOrders(store, agg, cache, logger)
	lifecycle := NewLifecycle(store, cache, logger)
	deleter := NewDeleter(store, newFakeImageStore(), cache, logger)
	return orders, lifecycle, deleter, store
}

func sellOrderInput(owner string, pi int64) CreateOrderInput {
	return CreateOrderInput{
		OwnerID:     owner,
		Username:    "user-" + owner,
		Email:       owner + "@example.com",
		Phone:       "9876543210",
		PiAmount:    decimal.NewFromInt(pi),
		UpiID:       owner + "@upi",
		ImageURL:    "https://img.example/" + owner + ".png",
		SellRateUsd: "0.5",
		SellRateInr: "42.5",
	}
}

func TestCreateComputesQuoteFromRateSnapshot(t *testing.T) {
	orders, _, _, _ := newOrdersFixture(t)

	tx, err := orders.Create(context.Background(), sellOrderInput("u1", 100))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tx.ID == "" {
		t.Fatal("create must assign an id")
	}
	if tx.Status != models.StatusPending {
		t.Fatalf("new order must be pending, got %s", tx.Status)
	}
	if tx.UsdValue != "50.00" {
		t.Fatalf("usd quote: want 50.00, got %s", tx.UsdValue)
	}
	if tx.InrValue != "4250.00" {
		t.Fatalf("inr quote: want 4250.00, got %s", tx.InrValue)
	}
	if tx.SellRateUsd != "0.5" || tx.SellRateInr != "42.5" {
		t.Fatalf("rate snapshot not recorded: %s / %s", tx.SellRateUsd, tx.SellRateInr)
	}
}

func TestCreateValidation(t *testing.T) {
	orders, _, _, _ := newOrdersFixture(t)

	cases := []struct {
		name   string
		mutate func(*CreateOrderInput)
		field  string
	}{
		{"missing owner", func(in *CreateOrderInput) { in.OwnerID = " " }, "ownerId"},
		{"zero amount", func(in *CreateOrderInput) { in.PiAmount = decimal.Zero }, "piAmount"},
		{"negative amount", func(in *CreateOrderInput) { in.PiAmount = decimal.NewFromInt(-5) }, "piAmount"},
		{"missing upi", func(in *CreateOrderInput) { in.UpiID = "" }, "upiId"},
		{"bad usd rate", func(in *CreateOrderInput) { in.SellRateUsd = "n/a" }, "sellRateUsd"},
		{"bad inr rate", func(in *CreateOrderInput) { in.SellRateInr = "" }, "sellRateInr"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := sellOrderInput("u1", 100)
			tc.mutate(&in)
			_, err := orders.Create(context.Background(), in)
			var vErr *models.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("want ValidationError, got %v", err)
			}
			if vErr.Field != tc.field {
				t.Fatalf("want field %s, got %s", tc.field, vErr.Field)
			}
		})
	}
}

func TestOrderLifecycleEndToEnd(t *testing.T) {
	orders, lifecycle, deleter, _ := newOrdersFixture(t)
	ctx := context.Background()

	tx, err := orders.Create(ctx, sellOrderInput("u1", 100))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, target := range []models.Status{models.StatusProcessing, models.StatusApproved, models.StatusCompleted} {
		if _, err := lifecycle.Transition(ctx, tx.ID, target); err != nil {
			t.Fatalf("transition to %s: %v", target, err)
		}
	}

	stats, err := orders.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalOrders != 1 || stats.CompletedOrders != 1 {
		t.Fatalf("stats after completion: %+v", stats)
	}
	if stats.TotalUsdValue.StringFixed(2) != "50.00" {
		t.Fatalf("realized usd: want 50.00, got %s", stats.TotalUsdValue)
	}

	if _, err := deleter.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	txs, err := orders.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("deleted order still listed: %+v", txs)
	}
	after, err := orders.Stats(ctx)
	if err != nil {
		t.Fatalf("stats after delete: %v", err)
	}
	if after.TotalOrders != 0 {
		t.Fatalf("stats must drop to zero after delete, got %d", after.TotalOrders)
	}
}

func TestListForOwnerIsIsolatedAndNewestFirst(t *testing.T) {
	orders, _, _, _ := newOrdersFixture(t)
	ctx := context.Background()

	first, _ := orders.Create(ctx, sellOrderInput("u1", 10))
	second, _ := orders.Create(ctx, sellOrderInput("u1", 20))
	if _, err := orders.Create(ctx, sellOrderInput("u2", 30)); err != nil {
		t.Fatalf("create: %v", err)
	}

	history, err := orders.ListForOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("list for owner: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("want 2 orders for u1, got %d", len(history))
	}
	if history[0].ID != second.ID || history[1].ID != first.ID {
		t.Fatalf("history not newest first: %s, %s", history[0].ID, history[1].ID)
	}
}

func TestAdminViewRejectsUnknownStatusFilter(t *testing.T) {
	orders, _, _, _ := newOrdersFixture(t)

	_, err := orders.AdminView(context.Background(), "", "shipped", 0, 10)
	var vErr *models.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "status" {
		t.Fatalf("want status ValidationError, got %v", err)
	}
}

func TestAdminViewFiltersAndPages(t *testing.T) {
	orders, _, _, _ := newOrdersFixture(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		if _, err := orders.Create(ctx, sellOrderInput("u1", int64(i+1))); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	view, err := orders.AdminView(ctx, "", StatusFilterAll, 1, 10)
	if err != nil {
		t.Fatalf("admin view: %v", err)
	}
	if view.TotalCount != 12 || view.PageCount != 2 || len(view.Items) != 2 {
		t.Fatalf("admin view paging: %+v", view)
	}
}

// mapStatsCache is an in-process stand-in for the redis snapshot.
type mapStatsCache struct {
	mu    sync.Mutex
	stats *models.DashboardStats
	gets  int
	sets  int
}

func (c *mapStatsCache) Get(context.Context) (*models.DashboardStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return c.stats, nil
}

func (c *mapStatsCache) Set(_ context.Context, stats models.DashboardStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.stats = &stats
	return nil
}

func (c *mapStatsCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = nil
	return nil
}

func TestStatsCacheMissComputeAndHit(t *testing.T) {
	store := repository.NewMemoryStore().WithClock(testClock())
	logger := zaptest.NewLogger(t)
	cache := &mapStatsCache{}
	orders := NewOrders(store, NewAggregator(nil, logger), cache, logger)
	ctx := context.Background()

	if _, err := orders.Create(ctx, sellOrderInput("u1", 100)); err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := orders.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("miss must populate cache, sets=%d", cache.sets)
	}

	second, err := orders.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("hit must not rewrite cache, sets=%d", cache.sets)
	}
	if first.TotalOrders != second.TotalOrders || first.PendingOrders != second.PendingOrders {
		t.Fatalf("cached stats diverge: %+v vs %+v", first, second)
	}

	// A write drops the snapshot; the next read recomputes.
	if _, err := orders.Create(ctx, sellOrderInput("u2", 50)); err != nil {
		t.Fatalf("create: %v", err)
	}
	fresh, err := orders.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if fresh.TotalOrders != 2 || cache.sets != 2 {
		t.Fatalf("invalidation not honored: total=%d sets=%d", fresh.TotalOrders, cache.sets)
	}
}
