package transaction

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/ajharbinger/annuity-review-api/internal/errors"
	"github.com/ajharbinger/annuity-review-api/internal/models"
	"github.com/ajharbinger/annuity-review-api/internal/repository"
)

const (
	sourceSystem       = "AnnuityReviewAI"
	maxReplacementTags = 3
	costBasisRatio     = 0.8
	defaultFreeLook    = 30
	maskedSSN          = "***-**-****"
)

// Catalog is the read side of the entity store the workflow needs
type Catalog interface {
	GetClient(accountNumber string) (*models.Client, error)
	GetPolicy(policyID string) (*models.Policy, error)
	GetProduct(productID string) (*models.Product, error)
}

// SubmitResult is returned for an accepted submission
type SubmitResult struct {
	Success                 bool                     `json:"success"`
	TransactionID           string                   `json:"transactionId"`
	ConfirmationNumber      string                   `json:"confirmationNumber"`
	Status                  models.TransactionStatus `json:"status"`
	Message                 string                   `json:"message"`
	NextSteps               []string                 `json:"nextSteps"`
	EstimatedCompletionDate *string                  `json:"estimatedCompletionDate"`
	Errors                  []string                 `json:"errors"`
	Warnings                []string                 `json:"warnings"`
}

// StatusView is the lightweight status lookup
type StatusView struct {
	TransactionID      string                   `json:"transactionId"`
	Status             models.TransactionStatus `json:"status"`
	ConfirmationNumber string                   `json:"confirmationNumber,omitempty"`
	SubmittedAt        *time.Time               `json:"submittedAt"`
	LastUpdated        time.Time                `json:"lastUpdated"`
}

// ListItem is one row of a transaction listing
type ListItem struct {
	TransactionID      string                   `json:"transactionId"`
	Status             models.TransactionStatus `json:"status"`
	CreatedAt          string                   `json:"createdAt"`
	SubmittedAt        *time.Time               `json:"submittedAt"`
	ConfirmationNumber string                   `json:"confirmationNumber,omitempty"`
	Client             string                   `json:"client"`
	NewCarrier         string                   `json:"newCarrier"`
	Amount             decimal.Decimal          `json:"amount"`
}

// Template is a prefilled payload built from stored context
type Template struct {
	Message       string                         `json:"message"`
	TransactionID string                         `json:"transactionId"`
	Template      *models.ReplacementTransaction `json:"template"`
	Notes         []string                       `json:"notes"`
}

var templateNotes = []string{
	"This is a TEMPLATE with default values",
	"UI must populate missing required fields",
	"Compliance checklist items must be completed",
	"Client confirmations required before submission",
}

// Workflow validates, records and looks up replacement transactions. It never
// executes an external transfer.
type Workflow struct {
	store   repository.TransactionRepository
	catalog Catalog
	now     func() time.Time
	token   func() string
}

// NewWorkflow creates a workflow over the given stores. A nil clock uses time.Now.
func NewWorkflow(store repository.TransactionRepository, catalog Catalog, now func() time.Time) *Workflow {
	if now == nil {
		now = time.Now
	}
	return &Workflow{store: store, catalog: catalog, now: now, token: randomToken}
}

// randomToken returns 8 upper-case hex characters
func randomToken() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Validate checks a payload without storing it
func (w *Workflow) Validate(p *models.ReplacementTransaction) ValidationResult {
	return Validate(p)
}

// Submit re-validates the payload and records it as SUBMITTED. Any validation
// error rejects the submission with the full error and warning lists.
func (w *Workflow) Submit(p *models.ReplacementTransaction) (*SubmitResult, error) {
	if p == nil || strings.TrimSpace(p.TransactionID) == "" {
		return nil, apperrors.InvalidInput("transactionId is required", nil)
	}

	payload := *p
	payload.ApplyDefaults()

	result := Validate(&payload)
	if !result.IsValid {
		return nil, apperrors.ValidationError("Transaction validation failed", nil).
			WithOperation("Workflow.Submit").
			WithLists(result.Errors, result.Warnings)
	}

	existing, err := w.store.Get(payload.TransactionID)
	var expected int64
	switch {
	case err == nil:
		if existing.Status != models.StatusInitiated {
			return nil, apperrors.Conflict(fmt.Sprintf("Transaction %s already %s", payload.TransactionID, existing.Status), nil)
		}
		expected = existing.Version
	case !apperrors.Is(err, apperrors.ErrCodeNotFound):
		return nil, err
	}

	submittedAt := w.now().UTC()
	payload.Status = models.StatusSubmitted
	payload.SubmittedDate = submittedAt.Format("2006-01-02")

	stored, err := w.store.Save(&models.StoredTransaction{
		Payload:            payload,
		Status:             models.StatusSubmitted,
		SubmittedAt:        &submittedAt,
		ConfirmationNumber: "CONF-" + w.token(),
		ValidationWarnings: result.Warnings,
	}, expected)
	if err != nil {
		return nil, err
	}

	return &SubmitResult{
		Success:            true,
		TransactionID:      stored.Payload.TransactionID,
		ConfirmationNumber: stored.ConfirmationNumber,
		Status:             stored.Status,
		Message:            "Transaction submitted successfully",
		NextSteps:          nextSteps(&payload),
		Errors:             []string{},
		Warnings:           result.Warnings,
	}, nil
}

func nextSteps(p *models.ReplacementTransaction) []string {
	var steps []string
	if p.ExchangeType.Is1035() {
		steps = append(steps,
			"1035 exchange form will be sent to surrendering carrier",
			"Client will receive confirmation within 2 business days",
		)
	}
	steps = append(steps,
		"Application will be submitted to new carrier",
		"Expect processing time of 5-10 business days",
	)
	if p.ComplianceChecklist.FreeLookPeriodDisclosed {
		steps = append(steps, fmt.Sprintf("Free look period: %d days from delivery", p.ComplianceChecklist.FreeLookDays))
	}
	return steps
}

// Get returns the stored transaction
func (w *Workflow) Get(transactionID string) (*models.StoredTransaction, error) {
	return w.store.Get(transactionID)
}

// Status returns the status view of a stored transaction
func (w *Workflow) Status(transactionID string) (*StatusView, error) {
	txn, err := w.store.Get(transactionID)
	if err != nil {
		return nil, err
	}
	return &StatusView{
		TransactionID:      txn.Payload.TransactionID,
		Status:             txn.Status,
		ConfirmationNumber: txn.ConfirmationNumber,
		SubmittedAt:        txn.SubmittedAt,
		LastUpdated:        txn.UpdatedAt,
	}, nil
}

// List returns listing rows filtered by client account and status
func (w *Workflow) List(clientAccountNumber string, status models.TransactionStatus, limit int) ([]ListItem, error) {
	txns, err := w.store.List(repository.TransactionFilters{
		ClientAccountNumber: clientAccountNumber,
		Status:              status,
		Limit:               limit,
	})
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, 0, len(txns))
	for _, txn := range txns {
		p := txn.Payload
		items = append(items, ListItem{
			TransactionID:      p.TransactionID,
			Status:             txn.Status,
			CreatedAt:          p.CreatedTimestamp,
			SubmittedAt:        txn.SubmittedAt,
			ConfirmationNumber: txn.ConfirmationNumber,
			Client:             strings.TrimSpace(p.Client.FirstName + " " + p.Client.LastName),
			NewCarrier:         p.NewProduct.Carrier,
			Amount:             p.NewProduct.InitialPremium,
		})
	}
	return items, nil
}

// CreateFromContext builds a template payload from a stored policy, catalog
// product and client profile. The template is returned, not stored.
func (w *Workflow) CreateFromContext(policyID, productID, clientAccountNumber string) (*Template, error) {
	policy, err := w.catalog.GetPolicy(policyID)
	if err != nil {
		return nil, err
	}
	product, err := w.catalog.GetProduct(productID)
	if err != nil {
		return nil, err
	}
	client, err := w.catalog.GetClient(clientAccountNumber)
	if err != nil {
		return nil, err
	}

	now := w.now()
	id := fmt.Sprintf("TXN-%s-%s", now.Format("20060102"), w.token())
	profile := client.Suitability
	accountValue := decimal.NewFromFloat(policy.AccountValue)

	payload := &models.ReplacementTransaction{
		TransactionID:    id,
		TransactionType:  models.TxnExternal1035Exchange,
		ExchangeType:     models.ExchangeFull1035,
		PremiumSource:    models.PremiumExchangeProceeds,
		Status:           models.StatusInitiated,
		CreatedDate:      now.Format("2006-01-02"),
		CreatedTimestamp: now.UTC().Format(time.RFC3339),
		SourceSystem:     sourceSystem,
		CurrentPolicy:    currentPolicyInfo(policy, accountValue),
		NewProduct:       newProductSelection(product, accountValue),
		Client: models.TransactionClient{
			FirstName:        client.FirstName(),
			LastName:         client.LastName(),
			SSN:              maskedSSN,
			Age:              profile.Age,
			Gender:           "M",
			Citizenship:      profile.Citizenship,
			State:            profile.State,
			AnnualIncome:     profile.AnnualIncomeRange,
			NetWorth:         profile.NetWorthRange,
			LiquidNetWorth:   profile.LiquidNetWorthRange,
			TaxBracket:       profile.TaxBracket,
			EmploymentStatus: "Employed",
		},
		Annuitant:     models.AnnuitantInfo{IsSameAsOwner: true},
		Beneficiaries: []models.BeneficiaryDesignation{},
		SuitabilityProfile: models.TransactionSuitability{
			RiskTolerance:             profile.RiskTolerance,
			InvestmentObjective:       profile.PrimaryObjective,
			InvestmentExperience:      profile.InvestmentExperience,
			InvestmentHorizon:         profile.InvestmentHorizon,
			LiquidityNeeds:            profile.LiquidityImportance,
			TimeHorizon:               profile.InvestmentHorizon,
			SurrenderChargeAcceptance: true,
			CurrentIncomeNeeded:       profile.CurrentIncomeNeed == "Now",
			FutureIncomeNeeded:        true,
			IncomeStartYear:           profile.RetirementTargetYear,
		},
		ComplianceChecklist: models.ComplianceChecklist{
			Is1035Exchange: true,
			FreeLookDays:   defaultFreeLook,
		},
		Advisor: models.AdvisorInfo{
			AdvisorID:     "ADV-12345",
			FirstName:     "Jane",
			LastName:      "Advisor",
			Email:         "jadvisor@firm.com",
			Phone:         "555-1234",
			LicenseNumber: "LIC-12345",
			LicenseState:  profile.State,
			CompletedCE:   true,
			FirmName:      "Advisory Firm LLC",
		},
		QualifiedStatus: "NON_QUALIFIED",
		Documents:       []map[string]string{},
		ExternalSystemRefs: map[string]string{
			"policyId":            policyID,
			"productId":           productID,
			"clientAccountNumber": clientAccountNumber,
		},
	}

	return &Template{
		Message:       "Transaction template created from context",
		TransactionID: id,
		Template:      payload,
		Notes:         append([]string(nil), templateNotes...),
	}, nil
}

func currentPolicyInfo(policy *models.Policy, accountValue decimal.Decimal) models.CurrentPolicyInfo {
	zero := decimal.Zero
	costBasis := accountValue.Mul(decimal.NewFromFloat(costBasisRatio))

	info := models.CurrentPolicyInfo{
		PolicyNumber:      policy.PolicyID,
		Carrier:           policy.Carrier,
		ProductName:       policy.PolicyLabel,
		ProductType:       policy.ProductType,
		AccountValue:      accountValue,
		SurrenderValue:    accountValue,
		SurrenderCharge:   &zero,
		IssueDate:         policy.IssueDate,
		QualifiedStatus:   "NON_QUALIFIED",
		CostBasis:         &costBasis,
		IsIncomeActivated: policy.IncomeActivated,
		ReplacementReason: []string{},
	}

	if nf := policy.NonFinancialData; nf != nil {
		info.OwnerName = nf.OwnerName
		info.OwnerSSN = nf.OwnerSSN
		info.AnnuitantName = nf.OwnerName
	}
	if policy.RiderType != "" && policy.RiderType != "None" {
		info.HasIncomeRider = true
		info.IncomeRiderName = policy.RiderType
	}
	if policy.IncomeBase != nil {
		base := decimal.NewFromFloat(*policy.IncomeBase)
		info.IncomeBase = &base
	}
	for i, alert := range policy.Alerts {
		if i == maxReplacementTags {
			break
		}
		info.ReplacementReason = append(info.ReplacementReason, alert.ReasonShort)
	}
	return info
}

func newProductSelection(product *models.Product, accountValue decimal.Decimal) models.NewProductSelection {
	selection := models.NewProductSelection{
		ProductID:            product.ProductID,
		Carrier:              product.Carrier,
		ProductName:          product.ProductName,
		ProductType:          product.ProductType,
		InitialPremium:       accountValue,
		ExchangeAmount:       accountValue,
		AdditionalPremium:    decimal.Zero,
		SelectedIndexOptions: []map[string]interface{}{},
		SelectedRiders:       []map[string]interface{}{},
		BonusRate:            product.BonusRate,
	}
	if product.BonusRate != nil && *product.BonusRate != 0 {
		bonus := accountValue.Mul(decimal.NewFromFloat(*product.BonusRate)).Div(decimal.NewFromInt(100))
		selection.BonusAmount = &bonus
	}
	return selection
}
