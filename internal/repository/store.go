package repository

import (
	"context"
	"fmt"

	"sellmypi/internal/models"
)

// Store persists sell orders. Every successful Create/Update/Delete is
// observable by subsequent Get/List calls within the process.
type Store interface {
	// Create assigns an id and version and persists the transaction.
	Create(ctx context.Context, tx *models.Transaction) error
	// Get returns the transaction or models.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Transaction, error)
	// List returns all transactions, newest first.
	List(ctx context.Context) ([]models.Transaction, error)
	// ListByOwner returns one owner's transactions, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Transaction, error)
	// Update applies a field patch and bumps the record version. Patched
	// fields are named by their JSON name; write-once fields are rejected
	// with models.ImmutableFieldError.
	Update(ctx context.Context, id string, fields map[string]any) (*models.Transaction, error)
	// Delete removes the transaction or returns models.ErrNotFound.
	Delete(ctx context.Context, id string) error
	// DeleteByOwner removes all transactions of one owner, returning the count.
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}

// immutableFields are write-once: monetary quote fields, owner identity,
// creation metadata and store-managed bookkeeping.
var immutableFields = map[string]struct{}{
	"id":          {},
	"ownerId":     {},
	"piAmount":    {},
	"usdValue":    {},
	"inrValue":    {},
	"sellRateUsd": {},
	"sellRateInr": {},
	"upiId":       {},
	"userInfo":    {},
	"version":     {},
	"createdAt":   {},
	"updatedAt":   {},
}

// patch is the validated form of an Update field map.
type patch struct {
	status   *models.Status
	imageURL *string
}

func parsePatch(fields map[string]any) (*patch, error) {
	if len(fields) == 0 {
		return nil, &models.ValidationError{Field: "update", Reason: "no fields to update"}
	}

	p := &patch{}
	for name, value := range fields {
		if _, ok := immutableFields[name]; ok {
			return nil, &models.ImmutableFieldError{Field: name}
		}
		switch name {
		case "status":
			status, err := statusValue(value)
			if err != nil {
				return nil, err
			}
			p.status = &status
		case "imageUrl":
			ref, ok := value.(string)
			if !ok {
				return nil, &models.ValidationError{Field: "imageUrl", Reason: "must be a string"}
			}
			p.imageURL = &ref
		default:
			return nil, &models.ValidationError{Field: name, Reason: "unknown field"}
		}
	}
	return p, nil
}

func statusValue(value any) (models.Status, error) {
	var status models.Status
	switch v := value.(type) {
	case models.Status:
		status = v
	case string:
		status = models.Status(v)
	default:
		return "", &models.ValidationError{Field: "status", Reason: "must be a string"}
	}
	if !models.KnownStatus(status) {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownStatus, status)
	}
	return status, nil
}
