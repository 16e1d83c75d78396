package repository

import (
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "github.com/ajharbinger/annuity-review-api/internal/errors"
	"github.com/ajharbinger/annuity-review-api/internal/models"
)

// catalogRepository implements CatalogRepository over in-memory maps.
// Insertion order from the source files is kept for listings.
type catalogRepository struct {
	mu  sync.RWMutex
	now func() time.Time

	clients     map[string]*models.Client
	clientOrder []string

	policies    map[string]*models.Policy
	policyOrder []string

	products     map[string]*models.Product
	productOrder []string

	positions     map[string]*models.ClientPosition
	positionOrder []string
}

// NewCatalogRepository creates a catalog repository seeded from loaded data
func NewCatalogRepository(data *CatalogData, now func() time.Time) CatalogRepository {
	if now == nil {
		now = time.Now
	}
	r := &catalogRepository{
		now:       now,
		clients:   make(map[string]*models.Client),
		policies:  make(map[string]*models.Policy),
		products:  make(map[string]*models.Product),
		positions: make(map[string]*models.ClientPosition),
	}
	if data == nil {
		return r
	}

	for i := range data.Clients {
		c := data.Clients[i].Clone()
		key := c.AccountNumber()
		if _, dup := r.clients[key]; !dup {
			r.clientOrder = append(r.clientOrder, key)
		}
		c.Version = 1
		r.clients[key] = c
	}
	for i := range data.Policies {
		p := data.Policies[i].Clone()
		if _, dup := r.policies[p.PolicyID]; !dup {
			r.policyOrder = append(r.policyOrder, p.PolicyID)
		}
		p.Version = 1
		r.policies[p.PolicyID] = p
	}
	for i := range data.Products {
		p := data.Products[i]
		if _, dup := r.products[p.ProductID]; !dup {
			r.productOrder = append(r.productOrder, p.ProductID)
		}
		r.products[p.ProductID] = &p
	}
	for i := range data.Positions {
		p := data.Positions[i].Clone()
		key := p.ClientAccountNumber
		if _, dup := r.positions[key]; !dup {
			r.positionOrder = append(r.positionOrder, key)
		}
		p.Version = 1
		r.positions[key] = p
	}
	return r
}

// GetClient retrieves a client by account number
func (r *catalogRepository) GetClient(accountNumber string) (*models.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[accountNumber]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("Client %s not found", accountNumber), nil)
	}
	return c.Clone(), nil
}

// GetAllClients returns every client in source order
func (r *catalogRepository) GetAllClients() ([]models.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Client, 0, len(r.clientOrder))
	for _, key := range r.clientOrder {
		out = append(out, *r.clients[key].Clone())
	}
	return out, nil
}

// UpdateClientSuitability applies a patch to a copy of the profile and stores it
func (r *catalogRepository) UpdateClientSuitability(accountNumber string, update models.SuitabilityUpdate, updatedBy string, expectedVersion int64) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.clients[accountNumber]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("Client %s not found", accountNumber), nil)
	}
	if err := checkVersion("client", accountNumber, current.Version, expectedVersion); err != nil {
		return nil, err
	}

	next := current.Clone()
	update.ApplyTo(&next.Suitability)
	stamp := r.now().UTC()
	next.Version = current.Version + 1
	next.UpdatedAt = &stamp
	next.UpdatedBy = updatedBy

	r.clients[accountNumber] = next
	return next.Clone(), nil
}

// GetPolicy retrieves a policy by ID
func (r *catalogRepository) GetPolicy(policyID string) (*models.Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.policies[policyID]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("Policy %s not found", policyID), nil)
	}
	return p.Clone(), nil
}

// GetAllPolicies returns every policy in source order
func (r *catalogRepository) GetAllPolicies() ([]models.Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Policy, 0, len(r.policyOrder))
	for _, id := range r.policyOrder {
		out = append(out, *r.policies[id].Clone())
	}
	return out, nil
}

// GetPoliciesByClient returns the client's policies; an unknown client yields an empty list
func (r *catalogRepository) GetPoliciesByClient(accountNumber string) ([]models.Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Policy
	for _, id := range r.policyOrder {
		if p := r.policies[id]; p.ClientAccountNumber == accountNumber {
			out = append(out, *p.Clone())
		}
	}
	return out, nil
}

// UpdatePolicy replaces the stored policy with a copy of the given one
func (r *catalogRepository) UpdatePolicy(policy *models.Policy, expectedVersion int64) (*models.Policy, error) {
	if policy == nil {
		return nil, apperrors.InvalidInput("policy is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.policies[policy.PolicyID]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("Policy %s not found", policy.PolicyID), nil)
	}
	if err := checkVersion("policy", policy.PolicyID, current.Version, expectedVersion); err != nil {
		return nil, err
	}

	next := policy.Clone()
	r.stampPolicy(next, current.Version)
	r.policies[next.PolicyID] = next
	return next.Clone(), nil
}

// ReplacePolicyAlerts overwrites the alert list of a policy
func (r *catalogRepository) ReplacePolicyAlerts(policyID string, alerts []models.Alert) (*models.Policy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.policies[policyID]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("Policy %s not found", policyID), nil)
	}

	next := current.Clone()
	next.Alerts = models.CloneAlerts(alerts)
	if next.Alerts == nil {
		next.Alerts = []models.Alert{}
	}
	r.stampPolicy(next, current.Version)
	r.policies[policyID] = next
	return next.Clone(), nil
}

func (r *catalogRepository) stampPolicy(p *models.Policy, previousVersion int64) {
	stamp := r.now().UTC()
	p.Version = previousVersion + 1
	p.UpdatedAt = &stamp
}

// GetAllProducts returns the full catalog in source order
func (r *catalogRepository) GetAllProducts() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Product, 0, len(r.productOrder))
	for _, id := range r.productOrder {
		out = append(out, *r.products[id])
	}
	return out, nil
}

// GetProduct retrieves a product by ID
func (r *catalogRepository) GetProduct(productID string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[productID]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("Product %s not found", productID), nil)
	}
	out := *p
	return &out, nil
}

// GetProductsByType returns products with an exact product type match
func (r *catalogRepository) GetProductsByType(productType string) ([]models.Product, error) {
	return r.filterProducts(func(p *models.Product) bool {
		return p.ProductType == productType
	}), nil
}

// GetProductsByCarrier matches the carrier name case-insensitively
func (r *catalogRepository) GetProductsByCarrier(carrier string) ([]models.Product, error) {
	return r.filterProducts(func(p *models.Product) bool {
		return strings.EqualFold(p.Carrier, carrier)
	}), nil
}

func (r *catalogRepository) filterProducts(keep func(p *models.Product) bool) []models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Product
	for _, id := range r.productOrder {
		if p := r.products[id]; keep(p) {
			out = append(out, *p)
		}
	}
	return out
}

// GetPosition retrieves a client's position snapshot
func (r *catalogRepository) GetPosition(accountNumber string) (*models.ClientPosition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.positions[accountNumber]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("Positions for client %s not found", accountNumber), nil)
	}
	return p.Clone(), nil
}

// GetAllPositions returns every position snapshot in source order
func (r *catalogRepository) GetAllPositions() ([]models.ClientPosition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ClientPosition, 0, len(r.positionOrder))
	for _, key := range r.positionOrder {
		out = append(out, *r.positions[key].Clone())
	}
	return out, nil
}

// ReplacePositionAlerts overwrites the acquisition alerts of a snapshot
func (r *catalogRepository) ReplacePositionAlerts(accountNumber string, alerts []models.Alert) (*models.ClientPosition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.positions[accountNumber]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("Positions for client %s not found", accountNumber), nil)
	}

	next := current.Clone()
	next.Alerts = models.CloneAlerts(alerts)
	if next.Alerts == nil {
		next.Alerts = []models.Alert{}
	}
	next.Version = current.Version + 1
	r.positions[accountNumber] = next
	return next.Clone(), nil
}

// checkVersion rejects a write whose caller saw an older record; expected <= 0 skips the check
func checkVersion(kind, key string, stored, expected int64) error {
	if expected <= 0 || stored == expected {
		return nil
	}
	return apperrors.Conflict(
		fmt.Sprintf("%s %s was modified concurrently", kind, key),
		nil,
	).WithDetails(fmt.Sprintf("expected version %d, current version %d", expected, stored))
}
