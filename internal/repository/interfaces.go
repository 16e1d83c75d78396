package repository

import (
	"github.com/ajharbinger/annuity-review-api/internal/models"
)

// CatalogRepository defines access to clients, policies, products and position snapshots.
// Reads return copies; writes replace the stored record and bump its version.
type CatalogRepository interface {
	// Client operations
	GetClient(accountNumber string) (*models.Client, error)
	GetAllClients() ([]models.Client, error)
	UpdateClientSuitability(accountNumber string, update models.SuitabilityUpdate, updatedBy string, expectedVersion int64) (*models.Client, error)

	// Policy operations
	GetPolicy(policyID string) (*models.Policy, error)
	GetAllPolicies() ([]models.Policy, error)
	GetPoliciesByClient(accountNumber string) ([]models.Policy, error)
	UpdatePolicy(policy *models.Policy, expectedVersion int64) (*models.Policy, error)
	ReplacePolicyAlerts(policyID string, alerts []models.Alert) (*models.Policy, error)

	// Product operations
	GetAllProducts() ([]models.Product, error)
	GetProduct(productID string) (*models.Product, error)
	GetProductsByType(productType string) ([]models.Product, error)
	GetProductsByCarrier(carrier string) ([]models.Product, error)

	// Position operations
	GetPosition(accountNumber string) (*models.ClientPosition, error)
	GetAllPositions() ([]models.ClientPosition, error)
	ReplacePositionAlerts(accountNumber string, alerts []models.Alert) (*models.ClientPosition, error)
}

// TransactionRepository stores replacement transactions by ID
type TransactionRepository interface {
	Get(transactionID string) (*models.StoredTransaction, error)
	Save(txn *models.StoredTransaction, expectedVersion int64) (*models.StoredTransaction, error)
	List(filters TransactionFilters) ([]models.StoredTransaction, error)
}

// Repositories groups all repository interfaces
type Repositories struct {
	Catalog      CatalogRepository
	Transactions TransactionRepository
}

// TransactionFilters narrows a transaction listing
type TransactionFilters struct {
	ClientAccountNumber string
	Status              models.TransactionStatus
	Limit               int
}
