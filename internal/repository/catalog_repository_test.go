package repository

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ajharbinger/annuity-review-api/internal/errors"
	"github.com/ajharbinger/annuity-review-api/internal/logger"
	"github.com/ajharbinger/annuity-review-api/internal/models"
)

var fixedNow = func() time.Time { return time.Date(2026, 2, 25, 12, 0, 0, 0, time.UTC) }

func seedData() *CatalogData {
	return &CatalogData{
		Clients: []models.Client{
			{Client: models.ClientIdentity{AccountNumber: "ACC-1", Name: "Ann Lee"}, Suitability: models.SuitabilityProfile{Age: 61, PrimaryObjective: "Growth"}},
			{Client: models.ClientIdentity{AccountNumber: "ACC-2", Name: "Bob Ray"}},
		},
		Policies: []models.Policy{
			{PolicyID: "POL-1", ClientAccountNumber: "ACC-1", ProductType: "FIA", CurrentCapRate: models.Float64(3.0)},
			{PolicyID: "POL-2", ClientAccountNumber: "ACC-1", ProductType: "Fixed"},
			{PolicyID: "POL-3", ClientAccountNumber: "ACC-2", ProductType: "FIA"},
		},
		Products: []models.Product{
			{ProductID: "PROD-1", Carrier: "Symetra", ProductType: "FIA"},
			{ProductID: "PROD-2", Carrier: "Athene", ProductType: "Fixed"},
		},
		Positions: []models.ClientPosition{
			{ClientAccountNumber: "ACC-1", TotalPortfolioValue: 500000},
		},
	}
}

func TestCatalogRepository_Reads(t *testing.T) {
	repo := NewCatalogRepository(seedData(), fixedNow)

	client, err := repo.GetClient("ACC-1")
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", client.Client.Name)
	assert.Equal(t, int64(1), client.Version)

	_, err = repo.GetClient("ACC-404")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))

	policies, err := repo.GetPoliciesByClient("ACC-1")
	require.NoError(t, err)
	require.Len(t, policies, 2)
	assert.Equal(t, "POL-1", policies[0].PolicyID)

	none, err := repo.GetPoliciesByClient("ACC-404")
	require.NoError(t, err)
	assert.Empty(t, none)

	byCarrier, err := repo.GetProductsByCarrier("symetra")
	require.NoError(t, err)
	require.Len(t, byCarrier, 1)
	assert.Equal(t, "PROD-1", byCarrier[0].ProductID)

	byType, err := repo.GetProductsByType("Fixed")
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "PROD-2", byType[0].ProductID)
}

func TestCatalogRepository_ReadsReturnCopies(t *testing.T) {
	repo := NewCatalogRepository(seedData(), fixedNow)

	p, err := repo.GetPolicy("POL-1")
	require.NoError(t, err)
	*p.CurrentCapRate = 9.9
	p.Alerts = append(p.Alerts, models.Alert{AlertID: "local"})

	again, err := repo.GetPolicy("POL-1")
	require.NoError(t, err)
	assert.Equal(t, 3.0, *again.CurrentCapRate)
	assert.Empty(t, again.Alerts)
}

func TestCatalogRepository_UpdatePolicyVersioning(t *testing.T) {
	repo := NewCatalogRepository(seedData(), fixedNow)

	p, err := repo.GetPolicy("POL-1")
	require.NoError(t, err)
	p.Notes = "reviewed"

	updated, err := repo.UpdatePolicy(p, p.Version)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	require.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, fixedNow(), *updated.UpdatedAt)

	// Writer that read version 1 is now stale
	p.Notes = "stale write"
	_, err = repo.UpdatePolicy(p, 1)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeConflict))

	// expected version 0 skips the check
	forced, err := repo.UpdatePolicy(p, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), forced.Version)

	_, err = repo.UpdatePolicy(&models.Policy{PolicyID: "POL-404"}, 0)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))
}

func TestCatalogRepository_UpdateClientSuitability(t *testing.T) {
	repo := NewCatalogRepository(seedData(), fixedNow)
	income := "Income"

	updated, err := repo.UpdateClientSuitability("ACC-1", models.SuitabilityUpdate{PrimaryObjective: &income}, "advisor-7", 1)
	require.NoError(t, err)
	assert.Equal(t, "Income", updated.Suitability.PrimaryObjective)
	assert.Equal(t, 61, updated.Suitability.Age)
	assert.Equal(t, "advisor-7", updated.UpdatedBy)
	assert.Equal(t, int64(2), updated.Version)

	_, err = repo.UpdateClientSuitability("ACC-1", models.SuitabilityUpdate{PrimaryObjective: &income}, "advisor-7", 1)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeConflict))
}

func TestCatalogRepository_ReplaceAlertsOverwrites(t *testing.T) {
	repo := NewCatalogRepository(seedData(), fixedNow)

	_, err := repo.ReplacePolicyAlerts("POL-1", []models.Alert{{AlertID: "A"}, {AlertID: "B"}})
	require.NoError(t, err)
	p, err := repo.ReplacePolicyAlerts("POL-1", []models.Alert{{AlertID: "C"}})
	require.NoError(t, err)
	require.Len(t, p.Alerts, 1)
	assert.Equal(t, "C", p.Alerts[0].AlertID)

	cleared, err := repo.ReplacePolicyAlerts("POL-1", nil)
	require.NoError(t, err)
	assert.NotNil(t, cleared.Alerts)
	assert.Empty(t, cleared.Alerts)

	pos, err := repo.ReplacePositionAlerts("ACC-1", []models.Alert{{AlertID: "ACQ-EXL-ACC1"}})
	require.NoError(t, err)
	assert.Len(t, pos.Alerts, 1)
	assert.Equal(t, int64(2), pos.Version)
}

func TestCatalogRepository_ConcurrentWrites(t *testing.T) {
	repo := NewCatalogRepository(seedData(), fixedNow)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.ReplacePolicyAlerts("POL-2", []models.Alert{{AlertID: "X"}})
		}()
	}
	wg.Wait()

	p, err := repo.GetPolicy("POL-2")
	require.NoError(t, err)
	assert.Equal(t, int64(21), p.Version)
}

func TestLoadCatalogData(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PoliciesFile),
		[]byte(`[{"policyId":"POL-9","clientAccountNumber":"ACC-9","productType":"FIA","currentCapRate":4.1,"alerts":[]}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProductsFile),
		[]byte(`[{"productId":"PROD-9","productType":"FIA"}]`), 0o644))

	data, err := LoadCatalogData(dir, logger.NewNop())
	require.NoError(t, err)
	assert.Empty(t, data.Clients)
	require.Len(t, data.Policies, 1)
	assert.Equal(t, 4.1, *data.Policies[0].CurrentCapRate)
	require.Len(t, data.Products, 1)
	assert.Equal(t, 85, data.Products[0].AgeMax)
	assert.Equal(t, float64(10000), data.Products[0].MinimumPremium)
}

func TestLoadCatalogData_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ClientsFile), []byte(`{not json`), 0o644))

	_, err := LoadCatalogData(dir, logger.NewNop())
	assert.Error(t, err)
}
