package transaction

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ajharbinger/annuity-review-api/internal/errors"
	"github.com/ajharbinger/annuity-review-api/internal/models"
	"github.com/ajharbinger/annuity-review-api/internal/repository"
)

var fixedNow = func() time.Time { return time.Date(2026, 2, 25, 12, 0, 0, 0, time.UTC) }

func testCatalog() repository.CatalogRepository {
	return repository.NewCatalogRepository(&repository.CatalogData{
		Clients: []models.Client{{
			Client: models.ClientIdentity{AccountNumber: "ACC-1", Name: "Mary Ann Jones"},
			Suitability: models.SuitabilityProfile{
				Age: 61, State: "TX", Citizenship: "USA", RiskTolerance: "Moderate",
				PrimaryObjective: "Income", CurrentIncomeNeed: "Now", InvestmentHorizon: "7-10 years",
			},
		}},
		Policies: []models.Policy{{
			PolicyID:            "POL-1",
			ClientAccountNumber: "ACC-1",
			PolicyLabel:         "Legacy FIA 10",
			Carrier:             "Legacy Life",
			ProductType:         "FIA",
			AccountValue:        150000,
			RiderType:           "Income Rider",
			IncomeBase:          models.Float64(180000),
			NonFinancialData:    &models.NonFinancialData{OwnerName: "Mary Ann Jones", OwnerSSN: "123-45-6789"},
			Alerts: []models.Alert{
				{Type: models.AlertReplacement, ReasonShort: "Cap rate below market"},
				{Type: models.AlertIncomeActivation, ReasonShort: "Income window opening"},
				{Type: models.AlertSuitabilityDrift, ReasonShort: "Objective shifted"},
				{Type: models.AlertMissingInfo, ReasonShort: "Email missing"},
			},
		}},
		Products: []models.Product{{
			ProductID: "P-A", Carrier: "Symetra", ProductName: "Edge 7", ProductType: "FIA",
			BonusRate: models.Float64(5),
		}},
	}, fixedNow)
}

func newTestWorkflow() *Workflow {
	w := NewWorkflow(repository.NewTransactionRepository(fixedNow), testCatalog(), fixedNow)
	w.token = func() string { return "0A1B2C3D" }
	return w
}

func TestSubmit_Accepted(t *testing.T) {
	w := newTestWorkflow()

	result, err := w.Submit(validPayload())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "CONF-0A1B2C3D", result.ConfirmationNumber)
	assert.Equal(t, models.StatusSubmitted, result.Status)
	assert.Equal(t, []string{
		"1035 exchange form will be sent to surrendering carrier",
		"Client will receive confirmation within 2 business days",
		"Application will be submitted to new carrier",
		"Expect processing time of 5-10 business days",
		"Free look period: 30 days from delivery",
	}, result.NextSteps)
	assert.Empty(t, result.Errors)

	stored, err := w.Get(result.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, stored.Status)
	assert.Equal(t, fixedNow(), *stored.SubmittedAt)
	assert.Equal(t, "2026-02-25", stored.Payload.SubmittedDate)

	status, err := w.Status(result.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, "CONF-0A1B2C3D", status.ConfirmationNumber)
	assert.Equal(t, fixedNow(), status.LastUpdated)
}

func TestSubmit_NonExchangeNextSteps(t *testing.T) {
	w := newTestWorkflow()
	p := validPayload()
	p.ExchangeType = models.ExchangeNonQualified
	p.ComplianceChecklist.FreeLookPeriodDisclosed = false

	result, err := w.Submit(p)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Application will be submitted to new carrier",
		"Expect processing time of 5-10 business days",
	}, result.NextSteps)
}

func TestSubmit_RejectedCarriesLists(t *testing.T) {
	w := newTestWorkflow()
	p := validPayload()
	p.TaxWithholding.W9OnFile = false
	p.Advisor.HasProductTraining = false

	_, err := w.Submit(p)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeValidationError))

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"W-9 form not on file"}, appErr.Errors)
	assert.Equal(t, []string{"Advisor has not completed product training"}, appErr.Warnings)

	_, err = w.Get(p.TransactionID)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))
}

func TestSubmit_Resubmission(t *testing.T) {
	w := newTestWorkflow()
	_, err := w.Submit(validPayload())
	require.NoError(t, err)

	_, err = w.Submit(validPayload())
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeConflict))
}

func TestSubmit_RequiresTransactionID(t *testing.T) {
	w := newTestWorkflow()
	p := validPayload()
	p.TransactionID = " "

	_, err := w.Submit(p)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidInput))
}

func TestList_Filters(t *testing.T) {
	w := newTestWorkflow()

	first := validPayload()
	first.ExternalSystemRefs = map[string]string{"clientAccountNumber": "ACC-1"}
	second := validPayload()
	second.TransactionID = "TXN-20260225-00000002"
	second.ExternalSystemRefs = map[string]string{"clientAccountNumber": "ACC-2"}

	for _, p := range []*models.ReplacementTransaction{first, second} {
		_, err := w.Submit(p)
		require.NoError(t, err)
	}

	all, err := w.List("", "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "Mary Jones", all[0].Client)
	assert.Equal(t, "Symetra", all[0].NewCarrier)
	assert.True(t, decimal.RequireFromString("160000.50").Equal(all[0].Amount))

	mine, err := w.List("ACC-2", models.StatusSubmitted, 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "TXN-20260225-00000002", mine[0].TransactionID)

	none, err := w.List("", models.StatusCompleted, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCreateFromContext(t *testing.T) {
	w := NewWorkflow(repository.NewTransactionRepository(fixedNow), testCatalog(), fixedNow)

	tmpl, err := w.CreateFromContext("POL-1", "P-A", "ACC-1")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^TXN-20260225-[0-9A-F]{8}$`), tmpl.TransactionID)
	assert.Len(t, tmpl.Notes, 4)

	p := tmpl.Template
	assert.Equal(t, tmpl.TransactionID, p.TransactionID)
	assert.Equal(t, models.StatusInitiated, p.Status)
	assert.Equal(t, "Mary", p.Client.FirstName)
	assert.Equal(t, "Ann Jones", p.Client.LastName)
	assert.Equal(t, maskedSSN, p.Client.SSN)
	assert.True(t, p.SuitabilityProfile.CurrentIncomeNeeded)

	assert.Equal(t, "Mary Ann Jones", p.CurrentPolicy.OwnerName)
	assert.True(t, p.CurrentPolicy.HasIncomeRider)
	assert.True(t, decimal.NewFromInt(120000).Equal(*p.CurrentPolicy.CostBasis))
	assert.Equal(t, []string{"Cap rate below market", "Income window opening", "Objective shifted"}, p.CurrentPolicy.ReplacementReason)

	assert.True(t, decimal.NewFromInt(150000).Equal(p.NewProduct.InitialPremium))
	assert.True(t, decimal.NewFromInt(7500).Equal(*p.NewProduct.BonusAmount))
	assert.Equal(t, "TX", p.Advisor.LicenseState)
	assert.Equal(t, "ACC-1", p.ExternalSystemRefs["clientAccountNumber"])

	// the template starts with premium arithmetic intact but the checklist open
	result := Validate(p)
	assert.False(t, result.IsValid)
	assert.NotContains(t, result.Errors, "Initial premium does not equal exchange amount plus additional premium")
	assert.Contains(t, result.Errors, "State replacement form not signed")
}

func TestCreateFromContext_NotFound(t *testing.T) {
	w := newTestWorkflow()

	tests := []struct {
		name                      string
		policy, product, clientID string
	}{
		{"policy", "POL-X", "P-A", "ACC-1"},
		{"product", "POL-1", "P-X", "ACC-1"},
		{"client", "POL-1", "P-A", "ACC-X"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.CreateFromContext(tt.policy, tt.product, tt.clientID)
			assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))
		})
	}
}
