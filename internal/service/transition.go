package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"sellmypi/internal/models"
	"sellmypi/internal/repository"
)

// transitions maps each status to the statuses reachable from it. pending,
// processing and approved advance one step and may bail out to rejected;
// completed and rejected are terminal.
var transitions = map[models.Status][]models.Status{
	models.StatusPending:    {models.StatusProcessing, models.StatusRejected},
	models.StatusProcessing: {models.StatusApproved, models.StatusRejected},
	models.StatusApproved:   {models.StatusCompleted, models.StatusRejected},
	models.StatusCompleted:  {},
	models.StatusRejected:   {},
}

// CanTransition reports whether target is reachable from current.
func CanTransition(current, target models.Status) bool {
	for _, s := range transitions[current] {
		if s == target {
			return true
		}
	}
	return false
}

// Lifecycle validates and applies status changes. All status writes go through
// here; nothing else mutates a transaction's status.
type Lifecycle struct {
	store  repository.Store
	cache  StatsCache
	logger *zap.Logger
}

// NewLifecycle builds the transition engine.
func NewLifecycle(store repository.Store, cache StatsCache, logger *zap.Logger) *Lifecycle {
	return &Lifecycle{store: store, cache: cache, logger: logger}
}

// Transition moves a transaction to target when the state table allows it,
// persists the change and drops the cached dashboard stats.
func (l *Lifecycle) Transition(ctx context.Context, id string, target models.Status) (*models.Transaction, error) {
	if !models.KnownStatus(target) {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownStatus, target)
	}

	tx, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(tx.Status, target) {
		return nil, &models.InvalidTransitionError{ID: id, From: tx.Status, To: target}
	}

	return l.setStatus(ctx, id, tx.Status, target)
}

// ForceSetStatus is the operational override: it reassigns any known status
// without consulting the transition table. It is intentionally a separate
// operation from Transition and carries weaker consistency guarantees.
func (l *Lifecycle) ForceSetStatus(ctx context.Context, id string, target models.Status) (*models.Transaction, error) {
	if !models.KnownStatus(target) {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownStatus, target)
	}

	tx, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return l.setStatus(ctx, id, tx.Status, target)
}

func (l *Lifecycle) setStatus(ctx context.Context, id string, from, target models.Status) (*models.Transaction, error) {
	updated, err := l.store.Update(ctx, id, map[string]any{"status": target})
	if err != nil {
		return nil, err
	}

	// Aggregates are always re-derivable from the store, so a failed cache
	// drop never fails the caller's write.
	if err := l.cache.Invalidate(ctx); err != nil {
		l.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}

	l.logger.Info("order status changed",
		zap.String("tx_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
	)
	return updated, nil
}
