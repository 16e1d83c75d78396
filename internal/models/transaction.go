package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType describes how the replacement moves money
type TransactionType string

const (
	TxnInternalExchange     TransactionType = "INTERNAL_EXCHANGE"
	TxnExternal1035Exchange TransactionType = "EXTERNAL_1035_EXCHANGE"
	TxnPartial1035Exchange  TransactionType = "PARTIAL_1035_EXCHANGE"
	TxnSurrenderAndNew      TransactionType = "SURRENDER_AND_NEW"
)

// ExchangeType is the IRS 1035 classification
type ExchangeType string

const (
	ExchangeFull1035     ExchangeType = "FULL_1035"
	ExchangePartial1035  ExchangeType = "PARTIAL_1035"
	ExchangeNonQualified ExchangeType = "NON_QUALIFIED"
)

// Is1035 reports whether the exchange type carries 1035 paperwork requirements
func (e ExchangeType) Is1035() bool {
	return e == ExchangeFull1035 || e == ExchangePartial1035
}

// PremiumSource is where the new contract's premium comes from
type PremiumSource string

const (
	PremiumExchangeProceeds  PremiumSource = "EXCHANGE_PROCEEDS"
	PremiumAdditionalPremium PremiumSource = "ADDITIONAL_PREMIUM"
	PremiumCombination       PremiumSource = "COMBINATION"
)

// TransactionStatus is the linear lifecycle of a replacement
type TransactionStatus string

const (
	StatusInitiated     TransactionStatus = "INITIATED"
	StatusPendingReview TransactionStatus = "PENDING_REVIEW"
	StatusApproved      TransactionStatus = "APPROVED"
	StatusSubmitted     TransactionStatus = "SUBMITTED"
	StatusInProcess     TransactionStatus = "IN_PROCESS"
	StatusCompleted     TransactionStatus = "COMPLETED"
	StatusRejected      TransactionStatus = "REJECTED"
	StatusCancelled     TransactionStatus = "CANCELLED"
)

// Valid reports whether s is one of the known lifecycle states
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusInitiated, StatusPendingReview, StatusApproved, StatusSubmitted,
		StatusInProcess, StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Beneficiary designation types
const (
	BeneficiaryPrimary    = "PRIMARY"
	BeneficiaryContingent = "CONTINGENT"
)

// ReplacementTransaction is the full payload for one proposed replacement
type ReplacementTransaction struct {
	TransactionID       string            `json:"transactionId"`
	TransactionType     TransactionType   `json:"transactionType"`
	ExchangeType        ExchangeType      `json:"exchangeType"`
	PremiumSource       PremiumSource     `json:"premiumSource"`
	Status              TransactionStatus `json:"status"`
	CreatedDate         string            `json:"createdDate"`
	CreatedTimestamp    string            `json:"createdTimestamp"`
	SubmittedDate       string            `json:"submittedDate,omitempty"`
	SourceSystem        string            `json:"sourceSystem"`
	SourceSystemVersion string            `json:"sourceSystemVersion,omitempty"`

	CurrentPolicy CurrentPolicyInfo        `json:"currentPolicy"`
	NewProduct    NewProductSelection      `json:"newProduct"`
	Client        TransactionClient        `json:"client"`
	Annuitant     AnnuitantInfo            `json:"annuitant"`
	Beneficiaries []BeneficiaryDesignation `json:"beneficiaries"`

	SuitabilityProfile  TransactionSuitability  `json:"suitabilityProfile"`
	ComplianceChecklist ComplianceChecklist     `json:"complianceChecklist"`
	Advisor             AdvisorInfo             `json:"advisor"`
	TaxWithholding      TaxWithholdingElections `json:"taxWithholding"`

	QualifiedStatus        string `json:"qualifiedStatus"`
	QualificationType      string `json:"qualificationType,omitempty"`
	CustodianName          string `json:"custodianName,omitempty"`
	CustodianAccountNumber string `json:"custodianAccountNumber,omitempty"`

	Documents           []map[string]string `json:"documents"`
	SpecialInstructions string              `json:"specialInstructions,omitempty"`
	InternalNotes       string              `json:"internalNotes,omitempty"`
	ClientNotes         string              `json:"clientNotes,omitempty"`

	ApprovalRequired bool   `json:"approvalRequired"`
	ApprovedBy       string `json:"approvedBy,omitempty"`
	ApprovalDate     string `json:"approvalDate,omitempty"`
	ApprovalNotes    string `json:"approvalNotes,omitempty"`

	ExternalSystemRefs map[string]string `json:"externalSystemRefs"`
}

// CurrentPolicyInfo describes the contract being replaced
type CurrentPolicyInfo struct {
	PolicyNumber                 string           `json:"policyNumber"`
	Carrier                      string           `json:"carrier"`
	CarrierCode                  string           `json:"carrierCode,omitempty"`
	ProductName                  string           `json:"productName"`
	ProductType                  string           `json:"productType"`
	AccountValue                 decimal.Decimal  `json:"accountValue"`
	SurrenderValue               decimal.Decimal  `json:"surrenderValue"`
	SurrenderCharge              *decimal.Decimal `json:"surrenderCharge,omitempty"`
	SurrenderChargePercent       *float64         `json:"surrenderChargePercent,omitempty"`
	IssueDate                    string           `json:"issueDate"`
	OwnerName                    string           `json:"ownerName"`
	OwnerSSN                     string           `json:"ownerSSN"`
	AnnuitantName                string           `json:"annuitantName"`
	AnnuitantDOB                 string           `json:"annuitantDOB"`
	QualifiedStatus              string           `json:"qualifiedStatus"`
	QualificationType            string           `json:"qualificationType,omitempty"`
	CostBasis                    *decimal.Decimal `json:"costBasis,omitempty"`
	GainLoss                     *decimal.Decimal `json:"gainLoss,omitempty"`
	HasIncomeRider               bool             `json:"hasIncomeRider"`
	IncomeRiderName              string           `json:"incomeRiderName,omitempty"`
	IncomeBase                   *decimal.Decimal `json:"incomeBase,omitempty"`
	IsIncomeActivated            bool             `json:"isIncomeActivated"`
	ReplacementReason            []string         `json:"replacementReason"`
	SurrenderChargeJustification string           `json:"surrenderChargeJustification,omitempty"`
}

// NewProductSelection is the replacement product and premium allocation
type NewProductSelection struct {
	ProductID            string                   `json:"productId"`
	Carrier              string                   `json:"carrier"`
	CarrierCode          string                   `json:"carrierCode,omitempty"`
	ProductName          string                   `json:"productName"`
	ProductType          string                   `json:"productType"`
	InitialPremium       decimal.Decimal          `json:"initialPremium"`
	ExchangeAmount       decimal.Decimal          `json:"exchangeAmount"`
	AdditionalPremium    decimal.Decimal          `json:"additionalPremium"`
	SelectedIndexOptions []map[string]interface{} `json:"selectedIndexOptions"`
	SelectedRiders       []map[string]interface{} `json:"selectedRiders"`
	BonusRate            *float64                 `json:"bonusRate,omitempty"`
	BonusAmount          *decimal.Decimal         `json:"bonusAmount,omitempty"`
}

// TransactionClient is the owner of the new contract
type TransactionClient struct {
	FirstName        string `json:"firstName"`
	MiddleName       string `json:"middleName,omitempty"`
	LastName         string `json:"lastName"`
	Suffix           string `json:"suffix,omitempty"`
	SSN              string `json:"ssn"`
	DateOfBirth      string `json:"dateOfBirth"`
	Age              int    `json:"age"`
	Gender           string `json:"gender"`
	Citizenship      string `json:"citizenship"`
	Address          string `json:"address"`
	City             string `json:"city"`
	State            string `json:"state"`
	ZipCode          string `json:"zipCode"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	AnnualIncome     string `json:"annualIncome"`
	NetWorth         string `json:"netWorth"`
	LiquidNetWorth   string `json:"liquidNetWorth"`
	TaxBracket       string `json:"taxBracket"`
	EmploymentStatus string `json:"employmentStatus"`
	Occupation       string `json:"occupation,omitempty"`
	Employer         string `json:"employer,omitempty"`
}

// AnnuitantInfo when the annuitant differs from the owner
type AnnuitantInfo struct {
	IsSameAsOwner bool   `json:"isSameAsOwner"`
	FirstName     string `json:"firstName,omitempty"`
	MiddleName    string `json:"middleName,omitempty"`
	LastName      string `json:"lastName,omitempty"`
	SSN           string `json:"ssn,omitempty"`
	DateOfBirth   string `json:"dateOfBirth,omitempty"`
	Gender        string `json:"gender,omitempty"`
	Relationship  string `json:"relationship,omitempty"`
}

// BeneficiaryDesignation on the new contract
type BeneficiaryDesignation struct {
	BeneficiaryType   string  `json:"beneficiaryType"`
	FirstName         string  `json:"firstName"`
	MiddleName        string  `json:"middleName,omitempty"`
	LastName          string  `json:"lastName"`
	Suffix            string  `json:"suffix,omitempty"`
	Relationship      string  `json:"relationship"`
	SSN               string  `json:"ssn,omitempty"`
	DateOfBirth       string  `json:"dateOfBirth,omitempty"`
	AllocationPercent float64 `json:"allocationPercent"`
	Address           string  `json:"address,omitempty"`
	City              string  `json:"city,omitempty"`
	State             string  `json:"state,omitempty"`
	ZipCode           string  `json:"zipCode,omitempty"`
	Phone             string  `json:"phone,omitempty"`
	Email             string  `json:"email,omitempty"`
}

// TransactionSuitability is the suitability assessment captured with the replacement
type TransactionSuitability struct {
	RiskTolerance             string           `json:"riskTolerance"`
	InvestmentObjective       string           `json:"investmentObjective"`
	InvestmentExperience      string           `json:"investmentExperience"`
	InvestmentHorizon         string           `json:"investmentHorizon"`
	LiquidityNeeds            string           `json:"liquidityNeeds"`
	TimeHorizon               string           `json:"timeHorizon"`
	SurrenderChargeAcceptance bool             `json:"surrenderChargeAcceptance"`
	CurrentIncomeNeeded       bool             `json:"currentIncomeNeeded"`
	FutureIncomeNeeded        bool             `json:"futureIncomeNeeded"`
	IncomeStartYear           *int             `json:"incomeStartYear,omitempty"`
	TotalAnnuityHoldings      *decimal.Decimal `json:"totalAnnuityHoldings,omitempty"`
	PercentageInAnnuities     *float64         `json:"percentageInAnnuities,omitempty"`
	UnderstandsReplacement    bool             `json:"understandsReplacement"`
	ComparedAlternatives      bool             `json:"comparedAlternatives"`
	ReviewedSurrenderCharges  bool             `json:"reviewedSurrenderCharges"`
}

// ComplianceChecklist records the disclosures and reviews completed
type ComplianceChecklist struct {
	ReplacementFormSigned        bool   `json:"replacementFormSigned"`
	ReplacementFormDate          string `json:"replacementFormDate,omitempty"`
	SuitabilityReviewCompleted   bool   `json:"suitabilityReviewCompleted"`
	SuitabilityDeterminationDate string `json:"suitabilityDeterminationDate,omitempty"`
	IsSuitable                   bool   `json:"isSuitable"`
	SuitabilityNotes             string `json:"suitabilityNotes,omitempty"`
	BestInterestDetermination    bool   `json:"bestInterestDetermination"`
	AlternativesConsidered       int    `json:"alternativesConsidered"`
	Is1035Exchange               bool   `json:"is1035Exchange"`
	ExchangeFormCompleted        bool   `json:"exchangeFormCompleted"`
	StateApprovalRequired        bool   `json:"stateApprovalRequired"`
	StateApprovalReceived        bool   `json:"stateApprovalReceived"`
	FreeLookPeriodDisclosed      bool   `json:"freeLookPeriodDisclosed"`
	FreeLookDays                 int    `json:"freeLookDays"`
	SeniorProtectionApplies      bool   `json:"seniorProtectionApplies"`
	LongerFreeLookApplies        bool   `json:"longerFreeLookApplies"`
}

// AdvisorInfo is the writing agent
type AdvisorInfo struct {
	AdvisorID             string `json:"advisorId"`
	FirstName             string `json:"firstName"`
	LastName              string `json:"lastName"`
	Email                 string `json:"email"`
	Phone                 string `json:"phone"`
	LicenseNumber         string `json:"licenseNumber"`
	LicenseState          string `json:"licenseState"`
	HasCarrierAppointment bool   `json:"hasCarrierAppointment"`
	AppointmentNumber     string `json:"appointmentNumber,omitempty"`
	HasProductTraining    bool   `json:"hasProductTraining"`
	CompletedCE           bool   `json:"completedCE"`
	FirmName              string `json:"firmName"`
	FirmAddress           string `json:"firmAddress,omitempty"`
	BDName                string `json:"bdName,omitempty"`
	BDCRD                 string `json:"bdCRD,omitempty"`
}

// TaxWithholdingElections for distributions from the new contract
type TaxWithholdingElections struct {
	FederalWithholding bool             `json:"federalWithholding"`
	FederalPercent     *float64         `json:"federalPercent,omitempty"`
	FederalFlatAmount  *decimal.Decimal `json:"federalFlatAmount,omitempty"`
	StateWithholding   bool             `json:"stateWithholding"`
	StatePercent       *float64         `json:"statePercent,omitempty"`
	StateFlatAmount    *decimal.Decimal `json:"stateFlatAmount,omitempty"`
	W9OnFile           bool             `json:"w9OnFile"`
	W9Date             string           `json:"w9Date,omitempty"`
}

// ApplyDefaults fills values the payload format defines when absent
func (t *ReplacementTransaction) ApplyDefaults() {
	if t.Status == "" {
		t.Status = StatusInitiated
	}
	if t.SourceSystem == "" {
		t.SourceSystem = "AnnuityReviewAI"
	}
	if t.ComplianceChecklist.FreeLookDays == 0 {
		t.ComplianceChecklist.FreeLookDays = 30
	}
	if t.Client.Citizenship == "" {
		t.Client.Citizenship = "USA"
	}
}

// StoredTransaction is a submitted or drafted payload plus workflow metadata
type StoredTransaction struct {
	Payload            ReplacementTransaction `json:"payload"`
	Status             TransactionStatus      `json:"status"`
	CreatedAt          time.Time              `json:"createdAt"`
	SubmittedAt        *time.Time             `json:"submittedAt,omitempty"`
	ConfirmationNumber string                 `json:"confirmationNumber,omitempty"`
	ValidationWarnings []string               `json:"validationWarnings"`

	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a copy whose top-level slices and maps are not shared
func (s *StoredTransaction) Clone() *StoredTransaction {
	if s == nil {
		return nil
	}
	out := *s
	out.ValidationWarnings = append([]string(nil), s.ValidationWarnings...)
	out.Payload.Beneficiaries = append([]BeneficiaryDesignation(nil), s.Payload.Beneficiaries...)
	out.Payload.CurrentPolicy.ReplacementReason = append([]string(nil), s.Payload.CurrentPolicy.ReplacementReason...)
	if s.SubmittedAt != nil {
		ts := *s.SubmittedAt
		out.SubmittedAt = &ts
	}
	if s.Payload.ExternalSystemRefs != nil {
		out.Payload.ExternalSystemRefs = make(map[string]string, len(s.Payload.ExternalSystemRefs))
		for k, v := range s.Payload.ExternalSystemRefs {
			out.Payload.ExternalSystemRefs[k] = v
		}
	}
	return &out
}
