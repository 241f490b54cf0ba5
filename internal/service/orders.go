package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sellmypi/internal/models"
	"sellmypi/internal/repository"
)

// CreateOrderInput carries a submitted sell order. The image has already been
// uploaded by the client; only its reference arrives here.
type CreateOrderInput struct {
	OwnerID     string
	Username    string
	Email       string
	Phone       string
	PiAmount    decimal.Decimal
	UpiID       string
	ImageURL    string
	SellRateUsd string
	SellRateInr string
}

// Orders provides order creation and read paths over the store.
type Orders struct {
	store  repository.Store
	agg    *Aggregator
	cache  StatsCache
	logger *zap.Logger
}

// NewOrders builds the order service.
func NewOrders(store repository.Store, agg *Aggregator, cache StatsCache, logger *zap.Logger) *Orders {
	return &Orders{store: store, agg: agg, cache: cache, logger: logger}
}

// Create validates the payload, computes the quote from the rate snapshot and
// persists a pending order.
func (o *Orders) Create(ctx context.Context, in CreateOrderInput) (*models.Transaction, error) {
	if strings.TrimSpace(in.OwnerID) == "" {
		return nil, &models.ValidationError{Field: "ownerId", Reason: "required"}
	}
	if !in.PiAmount.IsPositive() {
		return nil, &models.ValidationError{Field: "piAmount", Reason: "must be greater than zero"}
	}
	if strings.TrimSpace(in.UpiID) == "" {
		return nil, &models.ValidationError{Field: "upiId", Reason: "required"}
	}

	rateUsd, err := decimal.NewFromString(in.SellRateUsd)
	if err != nil {
		return nil, &models.ValidationError{Field: "sellRateUsd", Reason: "not a decimal"}
	}
	rateInr, err := decimal.NewFromString(in.SellRateInr)
	if err != nil {
		return nil, &models.ValidationError{Field: "sellRateInr", Reason: "not a decimal"}
	}

	tx := &models.Transaction{
		OwnerID:     in.OwnerID,
		PiAmount:    in.PiAmount,
		UsdValue:    in.PiAmount.Mul(rateUsd).StringFixed(2),
		InrValue:    in.PiAmount.Mul(rateInr).StringFixed(2),
		SellRateUsd: in.SellRateUsd,
		SellRateInr: in.SellRateInr,
		UpiID:       in.UpiID,
		ImageURL:    in.ImageURL,
		Status:      models.StatusPending,
		UserInfo: models.UserInfo{
			Username: in.Username,
			Email:    in.Email,
			Phone:    in.Phone,
		},
	}

	if err := o.store.Create(ctx, tx); err != nil {
		return nil, &models.DependencyError{Op: "create transaction", Err: err}
	}

	if err := o.cache.Invalidate(ctx); err != nil {
		o.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}

	o.logger.Info("order created",
		zap.String("tx_id", tx.ID),
		zap.String("owner_id", tx.OwnerID),
		zap.String("pi_amount", tx.PiAmount.String()),
		zap.String("usd_value", tx.UsdValue),
	)
	return tx, nil
}

// Get returns one order.
func (o *Orders) Get(ctx context.Context, id string) (*models.Transaction, error) {
	return o.store.Get(ctx, id)
}

// ListForOwner returns one owner's history, newest first.
func (o *Orders) ListForOwner(ctx context.Context, ownerID string) ([]models.Transaction, error) {
	return o.store.ListByOwner(ctx, ownerID)
}

// ListAll returns the full transaction set, newest first.
func (o *Orders) ListAll(ctx context.Context) ([]models.Transaction, error) {
	return o.store.List(ctx)
}

// AdminView returns the filtered, paged admin listing.
func (o *Orders) AdminView(ctx context.Context, filter, statusFilter string, page, pageSize int) (View, error) {
	if statusFilter != "" && statusFilter != StatusFilterAll && !models.KnownStatus(models.Status(statusFilter)) {
		return View{}, &models.ValidationError{Field: "status", Reason: "unknown status filter"}
	}

	txs, err := o.store.List(ctx)
	if err != nil {
		return View{}, &models.DependencyError{Op: "list transactions", Err: err}
	}
	return BuildView(txs, filter, statusFilter, page, pageSize), nil
}

// Stats returns dashboard stats, preferring the cache. Recomputation always
// reads a fresh store snapshot, so the result reflects every committed write.
func (o *Orders) Stats(ctx context.Context) (models.DashboardStats, error) {
	if cached, err := o.cache.Get(ctx); err != nil {
		o.logger.Warn("stats cache read failed, recomputing", zap.Error(err))
	} else if cached != nil {
		return *cached, nil
	}

	txs, err := o.store.List(ctx)
	if err != nil {
		return models.DashboardStats{}, &models.DependencyError{Op: "list transactions", Err: err}
	}
	stats := o.agg.DashboardStats(txs)

	if err := o.cache.Set(ctx, stats); err != nil {
		o.logger.Warn("stats cache write failed", zap.Error(err))
	}
	return stats, nil
}

// Users returns per-owner summaries ordered by most recent order.
func (o *Orders) Users(ctx context.Context) ([]models.UserSummary, error) {
	txs, err := o.store.List(ctx)
	if err != nil {
		return nil, &models.DependencyError{Op: "list transactions", Err: err}
	}
	return o.agg.SortedUserSummaries(txs), nil
}
