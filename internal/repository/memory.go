package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"sellmypi/internal/models"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs unit tests and the
// `memory` backend for local development.
type MemoryStore struct {
	mu  sync.Mutex
	txs map[string]models.Transaction
	now func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		txs: make(map[string]models.Transaction),
		now: time.Now,
	}
}

// WithClock overrides the store clock, for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// Create assigns id, version and timestamps and stores a copy.
func (s *MemoryStore) Create(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx.ID = uuid.NewString()
	tx.Version = 1
	now := s.now().UTC()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	s.txs[tx.ID] = *tx
	return nil
}

// Get returns a copy of the transaction.
func (s *MemoryStore) Get(_ context.Context, id string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.txs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &tx, nil
}

// List returns all transactions, newest first.
func (s *MemoryStore) List(_ context.Context) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(func(models.Transaction) bool { return true }), nil
}

// ListByOwner returns one owner's transactions, newest first.
func (s *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(func(tx models.Transaction) bool { return tx.OwnerID == ownerID }), nil
}

// Update applies a validated patch and bumps the version.
func (s *MemoryStore) Update(_ context.Context, id string, fields map[string]any) (*models.Transaction, error) {
	p, err := parsePatch(fields)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.txs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if p.status != nil {
		tx.Status = *p.status
	}
	if p.imageURL != nil {
		tx.ImageURL = *p.imageURL
	}
	tx.Version++
	tx.UpdatedAt = s.now().UTC()
	s.txs[id] = tx
	return &tx, nil
}

// Delete removes the transaction.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.txs[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.txs, id)
	return nil
}

// DeleteByOwner removes all transactions of one owner.
func (s *MemoryStore) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, tx := range s.txs {
		if tx.OwnerID == ownerID {
			delete(s.txs, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStore) snapshot(keep func(models.Transaction) bool) []models.Transaction {
	txs := make([]models.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		if keep(tx) {
			txs = append(txs, tx)
		}
	}
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].CreatedAt.Equal(txs[j].CreatedAt) {
			return txs[i].ID > txs[j].ID
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
	return txs
}
