package repository

import (
	"fmt"
	"sync"
	"time"

	apperrors "github.com/ajharbinger/annuity-review-api/internal/errors"
	"github.com/ajharbinger/annuity-review-api/internal/models"
)

const defaultTransactionListLimit = 50

// transactionRepository implements TransactionRepository in memory
type transactionRepository struct {
	mu    sync.RWMutex
	now   func() time.Time
	byID  map[string]*models.StoredTransaction
	order []string
}

// NewTransactionRepository creates an empty transaction store
func NewTransactionRepository(now func() time.Time) TransactionRepository {
	if now == nil {
		now = time.Now
	}
	return &transactionRepository{
		now:  now,
		byID: make(map[string]*models.StoredTransaction),
	}
}

// Get retrieves a transaction by ID
func (r *transactionRepository) Get(transactionID string) (*models.StoredTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	txn, ok := r.byID[transactionID]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("Transaction %s not found", transactionID), nil)
	}
	return txn.Clone(), nil
}

// Save inserts or replaces a transaction. expectedVersion 0 accepts any stored version.
func (r *transactionRepository) Save(txn *models.StoredTransaction, expectedVersion int64) (*models.StoredTransaction, error) {
	if txn == nil || txn.Payload.TransactionID == "" {
		return nil, apperrors.InvalidInput("transactionId is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := txn.Payload.TransactionID
	var previous int64
	if current, ok := r.byID[id]; ok {
		if err := checkVersion("transaction", id, current.Version, expectedVersion); err != nil {
			return nil, err
		}
		previous = current.Version
	} else {
		r.order = append(r.order, id)
	}

	next := txn.Clone()
	next.Version = previous + 1
	next.UpdatedAt = r.now().UTC()
	if next.CreatedAt.IsZero() {
		next.CreatedAt = next.UpdatedAt
	}
	r.byID[id] = next
	return next.Clone(), nil
}

// List returns transactions in insertion order, filtered and capped at filters.Limit
func (r *transactionRepository) List(filters TransactionFilters) ([]models.StoredTransaction, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = defaultTransactionListLimit
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.StoredTransaction, 0)
	for _, id := range r.order {
		txn := r.byID[id]
		if filters.ClientAccountNumber != "" && txn.Payload.ExternalSystemRefs["clientAccountNumber"] != filters.ClientAccountNumber {
			continue
		}
		if filters.Status != "" && txn.Status != filters.Status {
			continue
		}
		out = append(out, *txn.Clone())
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
