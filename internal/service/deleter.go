package service

import (
	"context"

	"go.uber.org/zap"

	"sellmypi/internal/models"
	"sellmypi/internal/repository"
)

// ImageStore is the proof-image storage collaborator. Delete removes the
// object behind the given reference.
type ImageStore interface {
	Delete(ctx context.Context, imageURL string) error
}

// DeleteWarning surfaces a non-fatal problem encountered during a delete,
// alongside the overall success.
type DeleteWarning struct {
	TxID   string `json:"txId"`
	Op     string `json:"op"`
	Reason string `json:"reason"`
}

// Deleter orchestrates image deletion, record deletion and aggregate
// invalidation as one backend-owned operation, so deletion correctness never
// depends on a client completing multiple sequential calls.
type Deleter struct {
	store  repository.Store
	images ImageStore
	cache  StatsCache
	logger *zap.Logger
}

// NewDeleter builds the cascading delete coordinator.
func NewDeleter(store repository.Store, images ImageStore, cache StatsCache, logger *zap.Logger) *Deleter {
	return &Deleter{store: store, images: images, cache: cache, logger: logger}
}

// DeleteTransaction removes one order. Image deletion is best effort: an
// orphaned storage object is preferable to a record that can never be deleted
// because of an unrelated storage outage. Any image failure comes back as a
// warning next to the overall success. A store delete failure is hard: the
// record stayed put, and the partially-applied image deletion is reported.
func (d *Deleter) DeleteTransaction(ctx context.Context, id string) ([]DeleteWarning, error) {
	tx, err := d.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	warnings := d.deleteImage(ctx, tx)

	if err := d.store.Delete(ctx, id); err != nil {
		if len(warnings) == 0 && tx.ImageURL != "" {
			// Image is gone but the record is not: distinct from full failure.
			warnings = append(warnings, DeleteWarning{
				TxID:   id,
				Op:     "delete record",
				Reason: "proof image already deleted, record remains",
			})
		}
		return warnings, &models.DependencyError{Op: "delete transaction " + id, Err: err}
	}

	if err := d.cache.Invalidate(ctx); err != nil {
		d.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}

	d.logger.Info("order deleted", zap.String("tx_id", id), zap.Int("warnings", len(warnings)))
	return warnings, nil
}

// DeleteUserTransactions removes every order owned by ownerID, collecting
// per-item outcomes. When some items fail the error is a PartialFailureError
// naming the failed ids so the caller can retry just those.
func (d *Deleter) DeleteUserTransactions(ctx context.Context, ownerID string) (int, []DeleteWarning, error) {
	txs, err := d.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return 0, nil, &models.DependencyError{Op: "list transactions for owner " + ownerID, Err: err}
	}

	var (
		deleted  int
		warnings []DeleteWarning
		failed   []string
	)
	for _, tx := range txs {
		warnings = append(warnings, d.deleteImage(ctx, &tx)...)
		if err := d.store.Delete(ctx, tx.ID); err != nil {
			d.logger.Error("failed to delete order during user purge",
				zap.String("tx_id", tx.ID), zap.String("owner_id", ownerID), zap.Error(err))
			failed = append(failed, tx.ID)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		if err := d.cache.Invalidate(ctx); err != nil {
			d.logger.Warn("failed to invalidate stats cache", zap.Error(err))
		}
	}

	if len(failed) > 0 {
		return deleted, warnings, &models.PartialFailureError{Attempted: len(txs), FailedIDs: failed}
	}

	d.logger.Info("user orders deleted", zap.String("owner_id", ownerID), zap.Int("count", deleted))
	return deleted, warnings, nil
}

// deleteImage requests storage deletion for the proof image, once, before the
// record delete. On success the dangling reference is cleared so a later
// record-delete failure cannot leave a record pointing at a missing object.
func (d *Deleter) deleteImage(ctx context.Context, tx *models.Transaction) []DeleteWarning {
	if tx.ImageURL == "" {
		return nil
	}

	if err := d.images.Delete(ctx, tx.ImageURL); err != nil {
		d.logger.Warn("failed to delete proof image, proceeding with record delete",
			zap.String("tx_id", tx.ID), zap.Error(err))
		return []DeleteWarning{{
			TxID:   tx.ID,
			Op:     "delete proof image",
			Reason: err.Error(),
		}}
	}

	if _, err := d.store.Update(ctx, tx.ID, map[string]any{"imageUrl": ""}); err != nil {
		d.logger.Warn("failed to clear proof image reference",
			zap.String("tx_id", tx.ID), zap.Error(err))
	}
	return nil
}
