package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ajharbinger/annuity-review-api/internal/errors"
	"github.com/ajharbinger/annuity-review-api/internal/logger"
	"github.com/ajharbinger/annuity-review-api/internal/models"
	"github.com/ajharbinger/annuity-review-api/internal/repository"
	"github.com/ajharbinger/annuity-review-api/internal/scoring"
	"github.com/ajharbinger/annuity-review-api/pkg/config"
)

var fixedNow = time.Date(2026, 2, 25, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// stubRecorder captures every metric call
type stubRecorder struct {
	mu           sync.Mutex
	alerts       map[models.AlertType]int
	runs         []string
	chats        []string
	transactions []string
}

func newStubRecorder() *stubRecorder {
	return &stubRecorder{alerts: make(map[models.AlertType]int)}
}

func (r *stubRecorder) RecordAlerts(alerts []models.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range alerts {
		r.alerts[a.Type]++
	}
}

func (r *stubRecorder) ObserveAlertRun(scope string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, scope)
}

func (r *stubRecorder) ObserveChat(provider, outcome string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats = append(r.chats, provider+":"+outcome)
}

func (r *stubRecorder) RecordTransaction(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = append(r.transactions, outcome)
}

func completeNonFinancial() *models.NonFinancialData {
	return &models.NonFinancialData{
		OwnerName: "Mary Ann Jones",
		OwnerSSN:  "123-45-6789",
		PrimaryBeneficiary: &models.Beneficiary{
			Name:              "Tom Jones",
			Relationship:      "Spouse",
			SSN:               "987-65-4321",
			DateOfBirth:       "1962-04-01",
			AllocationPercent: 100,
		},
		ContactInfo: &models.ContactInfo{
			Address: "12 Elm St, Austin, TX",
			Email:   "mary@example.com",
			Phone:   "555-0100",
		},
		TaxWithholding: &models.TaxWithholding{Federal: models.Float64(10)},
		LastUpdated:    "2025-06-01",
	}
}

func testCatalogData() *repository.CatalogData {
	profile := func(age int, name, acct string) models.Client {
		return models.Client{
			Client: models.ClientIdentity{AccountNumber: acct, Name: name},
			Suitability: models.SuitabilityProfile{
				Age:                 age,
				LifeStage:           "Retired",
				RiskTolerance:       "Moderate",
				PrimaryObjective:    "Income",
				LiquidityImportance: "Medium",
				CurrentIncomeNeed:   "Later",
				State:               "TX",
			},
		}
	}

	return &repository.CatalogData{
		Clients: []models.Client{
			profile(62, "Mary Ann Jones", "ACC-1"),
			profile(45, "Bob Smith", "ACC-2"),
		},
		Policies: []models.Policy{
			{
				PolicyID: "POL-1", ClientAccountNumber: "ACC-1", PolicyLabel: "Legacy FIA",
				Carrier: "Allianz", ProductType: "FIA", IssueDate: "2023-03-01",
				ApplicationState: "TX", AccountValue: 150000, RiderType: "None",
				SurrenderEndDate: "2029-03-01", CurrentCapRate: models.Float64(2.0),
				Alerts: []models.Alert{
					{AlertID: "ALT-POL-1-REP", Type: models.AlertReplacement, Severity: models.SeverityHigh, Title: "Replacement"},
					{AlertID: "ALT-POL-1-MISS", Type: models.AlertMissingInfo, Severity: models.SeverityMedium, Title: "Missing info"},
				},
			},
			{
				PolicyID: "POL-2", ClientAccountNumber: "ACC-1", PolicyLabel: "Newer FIA",
				Carrier: "Symetra", ProductType: "FIA", IssueDate: "2023-03-01",
				ApplicationState: "TX", AccountValue: 90000, RiderType: "None",
				SurrenderEndDate: "2030-03-01", CurrentCapRate: models.Float64(5.0),
				NonFinancialData: completeNonFinancial(),
				Alerts:           []models.Alert{},
			},
			{
				PolicyID: "POL-3", ClientAccountNumber: "ACC-GHOST", PolicyLabel: "Orphan",
				Carrier: "Athene", ProductType: "Fixed", IssueDate: "2022-01-01",
				Alerts: []models.Alert{
					{AlertID: "ALT-POL-3-MISS", Type: models.AlertMissingInfo, Severity: models.SeverityLow},
				},
			},
			{
				PolicyID: "POL-4", ClientAccountNumber: "ACC-2", PolicyLabel: "Fixed",
				Carrier: "Athene", ProductType: "Fixed", IssueDate: "2024-01-01",
				NonFinancialData: completeNonFinancial(),
				Alerts:           []models.Alert{},
			},
		},
		Products: []models.Product{
			{ProductID: "P-A", Carrier: "Symetra", ProductName: "Edge", ProductType: "FIA", AgeMax: 85, MinimumPremium: 10000},
			{ProductID: "P-B", Carrier: "Athene", ProductName: "Max", ProductType: "Fixed", AgeMax: 85, MinimumPremium: 10000},
		},
		Positions: []models.ClientPosition{
			{
				ClientAccountNumber: "ACC-1",
				AsOfDate:            "2026-02-20",
				TotalPortfolioValue: 250000,
				Summary: models.PortfolioSummary{
					CashAllocation:   0.4,
					EquityAllocation: 0.3,
					TotalCash:        100000,
				},
			},
			{ClientAccountNumber: "ACC-2", TotalPortfolioValue: 20000},
		},
	}
}

func newTestServices(t *testing.T) (*Services, *repository.Repositories, *stubRecorder) {
	t.Helper()
	repos := &repository.Repositories{
		Catalog:      repository.NewCatalogRepository(testCatalogData(), clock),
		Transactions: repository.NewTransactionRepository(clock),
	}
	rec := newStubRecorder()
	cfg := &config.Config{AIProvider: config.ProviderMock, PreferredCarriers: "Symetra"}
	svcs := NewServices(repos, cfg, Dependencies{
		Engine:   scoring.NewEngine(scoring.DefaultThresholds(), clock),
		Recorder: rec,
		Logger:   logger.NewNop(),
		Now:      clock,
	})
	return svcs, repos, rec
}

// interleavingCatalog rewrites a policy's alerts right after every read,
// the way a concurrent pipeline cycle would
type interleavingCatalog struct {
	repository.CatalogRepository
}

func (c *interleavingCatalog) GetPolicy(policyID string) (*models.Policy, error) {
	policy, err := c.CatalogRepository.GetPolicy(policyID)
	if err != nil {
		return nil, err
	}
	if _, err := c.CatalogRepository.ReplacePolicyAlerts(policyID, policy.Alerts); err != nil {
		return nil, err
	}
	return policy, nil
}

func alertTypes(alerts []models.Alert) []models.AlertType {
	out := make([]models.AlertType, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Type)
	}
	return out
}

func TestPolicyService_GetGroupedByClient(t *testing.T) {
	svcs, _, _ := newTestServices(t)

	groups, err := svcs.Policy.GetGroupedByClient()
	require.NoError(t, err)
	require.Len(t, groups, 3)

	assert.Equal(t, "Mary Ann Jones", groups[0].ClientName)
	assert.Equal(t, 2, groups[0].TotalAlerts)
	assert.Equal(t, 1, groups[0].HighSeverityCount)
	assert.Equal(t, 1, groups[0].MediumSeverityCount)
	assert.Len(t, groups[0].Policies, 2)

	assert.Equal(t, UnknownClientName, groups[1].ClientName)
	assert.Equal(t, "ACC-GHOST", groups[1].ClientAccountNumber)
	assert.Equal(t, 1, groups[1].LowSeverityCount)

	assert.Equal(t, "Bob Smith", groups[2].ClientName)
	assert.Equal(t, 0, groups[2].TotalAlerts)
}

func TestPolicyService_UpdateNonFinancial(t *testing.T) {
	t.Run("resolved deficiencies drop MISSING_INFO", func(t *testing.T) {
		svcs, _, _ := newTestServices(t)

		updated, err := svcs.Policy.UpdateNonFinancial("POL-1", completeNonFinancial(), 0)
		require.NoError(t, err)

		assert.Equal(t, int64(2), updated.Version)
		assert.Equal(t, []models.AlertType{models.AlertReplacement}, alertTypes(updated.Alerts))
		assert.Equal(t, "mary@example.com", updated.NonFinancialData.ContactInfo.Email)

		stored, err := svcs.Policy.GetByID("POL-1")
		require.NoError(t, err)
		assert.Equal(t, updated.Alerts, stored.Alerts)
	})

	t.Run("remaining deficiencies refresh MISSING_INFO", func(t *testing.T) {
		svcs, _, _ := newTestServices(t)

		data := completeNonFinancial()
		data.ContactInfo.Email = ""
		data.LastUpdated = ""

		updated, err := svcs.Policy.UpdateNonFinancial("POL-2", data, 1)
		require.NoError(t, err)

		require.Equal(t, []models.AlertType{models.AlertMissingInfo}, alertTypes(updated.Alerts))
		assert.Contains(t, updated.Alerts[0].Reasons, "Owner email address missing")
		assert.Equal(t, "2026-02-25", updated.NonFinancialData.LastUpdated)
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		svcs, _, _ := newTestServices(t)

		_, err := svcs.Policy.UpdateNonFinancial("POL-1", completeNonFinancial(), 7)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeConflict))
	})

	t.Run("omitted version ignores an intervening alert write", func(t *testing.T) {
		_, repos, _ := newTestServices(t)
		catalog := &interleavingCatalog{CatalogRepository: repos.Catalog}
		svc := newPolicyService(catalog, scoring.NewEngine(scoring.DefaultThresholds(), clock), nil, logger.NewNop())

		updated, err := svc.UpdateNonFinancial("POL-1", completeNonFinancial(), 0)
		require.NoError(t, err)
		assert.Equal(t, int64(3), updated.Version)

		_, err = svc.UpdateNonFinancial("POL-1", completeNonFinancial(), updated.Version)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeConflict), "an explicit version is still checked")
	})

	t.Run("unknown client keeps stored alerts", func(t *testing.T) {
		svcs, _, _ := newTestServices(t)

		updated, err := svcs.Policy.UpdateNonFinancial("POL-3", completeNonFinancial(), 0)
		require.NoError(t, err)
		assert.Equal(t, []models.AlertType{models.AlertMissingInfo}, alertTypes(updated.Alerts))
	})

	t.Run("nil data and unknown policy", func(t *testing.T) {
		svcs, _, _ := newTestServices(t)

		_, err := svcs.Policy.UpdateNonFinancial("POL-1", nil, 0)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidInput))

		_, err = svcs.Policy.UpdateNonFinancial("POL-404", completeNonFinancial(), 0)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))
	})
}

func TestPolicyService_PreviewAlertsDoesNotWrite(t *testing.T) {
	svcs, repos, _ := newTestServices(t)

	preview, err := svcs.Policy.PreviewAlerts("POL-1")
	require.NoError(t, err)
	assert.Contains(t, alertTypes(preview), models.AlertReplacement)
	assert.Contains(t, alertTypes(preview), models.AlertMissingInfo)

	stored, err := repos.Catalog.GetPolicy("POL-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
	assert.Equal(t, "ALT-POL-1-REP", stored.Alerts[0].AlertID)
	assert.Empty(t, stored.Alerts[0].Reasons)

	_, err = svcs.Policy.PreviewAlerts("POL-3")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))
}

func TestPolicyService_GetAlternatives(t *testing.T) {
	svcs, _, _ := newTestServices(t)

	comparison, err := svcs.Policy.GetAlternatives("POL-1", 0)
	require.NoError(t, err)
	require.Len(t, comparison.Alternatives, 1)
	assert.Equal(t, "P-A", comparison.Alternatives[0].ProductID)
	assert.Equal(t, "POL-1", comparison.CurrentPolicy.PolicyID)

	_, err = svcs.Policy.GetAlternatives("POL-404", 3)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))
}

func TestClientService(t *testing.T) {
	svcs, _, _ := newTestServices(t)

	t.Run("list and lookup", func(t *testing.T) {
		all, err := svcs.Client.GetAll()
		require.NoError(t, err)
		assert.Len(t, all, 2)

		view, err := svcs.Client.GetByAccount("ACC-1")
		require.NoError(t, err)
		assert.Equal(t, "Mary", view.FirstName)
		assert.Equal(t, "Ann Jones", view.LastName)

		_, err = svcs.Client.GetByAccount("ACC-404")
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))
	})

	t.Run("suitability patch", func(t *testing.T) {
		_, err := svcs.Client.UpdateSuitability("ACC-2", models.SuitabilityUpdate{}, "", 0)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidInput))

		risk := "Conservative"
		view, err := svcs.Client.UpdateSuitability("ACC-2", models.SuitabilityUpdate{RiskTolerance: &risk}, "", 0)
		require.NoError(t, err)
		assert.Equal(t, "Conservative", view.Suitability.RiskTolerance)
		assert.Equal(t, "Income", view.Suitability.PrimaryObjective)
		assert.Equal(t, "Advisor", view.Suitability.UpdatedBy)
		assert.Equal(t, int64(2), view.Version)
	})

	t.Run("policy summaries", func(t *testing.T) {
		summaries, err := svcs.Client.GetPolicies("ACC-1")
		require.NoError(t, err)
		assert.Len(t, summaries, 2)

		_, err = svcs.Client.GetPolicies("ACC-NONE")
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))
	})
}

func TestClientService_AcquisitionAlerts(t *testing.T) {
	svcs, _, _ := newTestServices(t)

	all, err := svcs.Client.GetAllAcquisitionAlerts()
	require.NoError(t, err)
	assert.Empty(t, all, "nothing has been scored yet")

	_, err = svcs.Alerts.RunOnce(context.Background(), PipelineConfig{Scope: ScopeAcquisition})
	require.NoError(t, err)

	summary, err := svcs.Client.GetAcquisitionAlerts("ACC-1")
	require.NoError(t, err)
	assert.Equal(t, "Mary Ann Jones", summary.ClientName)
	assert.Contains(t, alertTypes(summary.Alerts), models.AlertExcessLiquidity)
	assert.Equal(t, len(summary.Alerts), summary.AlertCount)

	all, err = svcs.Client.GetAllAcquisitionAlerts()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "ACC-1", all[0].ClientAccountNumber)

	empty, err := svcs.Client.GetAcquisitionAlerts("ACC-2")
	require.NoError(t, err)
	assert.NotNil(t, empty.Alerts)
	assert.Equal(t, 0, empty.AlertCount)
}

func TestProductService(t *testing.T) {
	svcs, _, _ := newTestServices(t)

	tests := []struct {
		name        string
		productType string
		carrier     string
		expected    []string
	}{
		{"no filters", "", "", []string{"P-A", "P-B"}},
		{"by type", "FIA", "", []string{"P-A"}},
		{"carrier is case-insensitive", "", "athene", []string{"P-B"}},
		{"both filters", "Fixed", "Symetra", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := svcs.Product.GetAll(tt.productType, tt.carrier)
			require.NoError(t, err)
			ids := []string{}
			for _, p := range products {
				ids = append(ids, p.ProductID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}

	_, err := svcs.Product.GetByCarrier("Nobody Life")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))

	p, err := svcs.Product.GetByID("P-B")
	require.NoError(t, err)
	assert.Equal(t, "Athene", p.Carrier)
}

func TestTransactionService_RecordsOutcomes(t *testing.T) {
	svcs, _, rec := newTestServices(t)

	result := svcs.Transaction.Validate(&models.ReplacementTransaction{TransactionID: "TXN-1"})
	assert.False(t, result.IsValid)

	_, err := svcs.Transaction.Submit(&models.ReplacementTransaction{TransactionID: "TXN-1"})
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidationError, appErr.Code)
	assert.NotEmpty(t, appErr.Errors)

	_, err = svcs.Transaction.Submit(nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidInput))

	assert.Equal(t, []string{outcomeValidated, outcomeRejected}, rec.transactions)

	_, err = svcs.Transaction.GetStatus("TXN-1")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))
}

func TestChatService_UsesMockProvider(t *testing.T) {
	svcs, _, rec := newTestServices(t)

	resp, err := svcs.Chat.Chat(context.Background(), "Why is this a replacement?", nil,
		map[string]interface{}{"activeAlertType": "REPLACEMENT"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", resp.Provider)
	assert.NotEmpty(t, resp.Message)

	info := svcs.Chat.ProviderInfo()
	assert.Equal(t, "mock", info.Mode)
	assert.Equal(t, int64(1), info.Health.SuccessfulCalls)
	assert.Equal(t, []string{"mock:success"}, rec.chats)
}
