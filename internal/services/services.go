package services

import (
	"context"
	"time"

	"github.com/ajharbinger/annuity-review-api/internal/chat"
	"github.com/ajharbinger/annuity-review-api/internal/logger"
	"github.com/ajharbinger/annuity-review-api/internal/matcher"
	"github.com/ajharbinger/annuity-review-api/internal/models"
	"github.com/ajharbinger/annuity-review-api/internal/repository"
	"github.com/ajharbinger/annuity-review-api/internal/scoring"
	"github.com/ajharbinger/annuity-review-api/internal/transaction"
	"github.com/ajharbinger/annuity-review-api/pkg/config"
)

// Services contains all application services
type Services struct {
	Policy      PolicyService
	Client      ClientService
	Product     ProductService
	Transaction TransactionService
	Chat        ChatService
	Alerts      *AlertPipeline
}

// PolicyService defines the policy review operations
type PolicyService interface {
	GetGroupedByClient() ([]models.ClientPolicyGroup, error)
	GetByID(policyID string) (*models.Policy, error)
	UpdateNonFinancial(policyID string, data *models.NonFinancialData, expectedVersion int64) (*models.Policy, error)
	GetAlternatives(policyID string, maxResults int) (*matcher.Comparison, error)
	PreviewAlerts(policyID string) ([]models.Alert, error)
}

// ClientService defines client profile and opportunity operations
type ClientService interface {
	GetAll() ([]models.ClientView, error)
	GetByAccount(accountNumber string) (*models.ClientView, error)
	UpdateSuitability(accountNumber string, update models.SuitabilityUpdate, updatedBy string, expectedVersion int64) (*models.ClientView, error)
	GetPolicies(accountNumber string) ([]models.PolicySummary, error)
	GetAcquisitionAlerts(accountNumber string) (*models.AcquisitionSummary, error)
	GetAllAcquisitionAlerts() ([]models.AcquisitionSummary, error)
}

// ProductService defines catalog lookups
type ProductService interface {
	GetAll(productType, carrier string) ([]models.Product, error)
	GetByID(productID string) (*models.Product, error)
	GetByCarrier(carrier string) ([]models.Product, error)
}

// TransactionService defines the replacement transaction workflow
type TransactionService interface {
	Validate(payload *models.ReplacementTransaction) transaction.ValidationResult
	Submit(payload *models.ReplacementTransaction) (*transaction.SubmitResult, error)
	GetByID(transactionID string) (*models.StoredTransaction, error)
	GetStatus(transactionID string) (*transaction.StatusView, error)
	List(clientAccountNumber string, status models.TransactionStatus, limit int) ([]transaction.ListItem, error)
	CreateFromContext(policyID, productID, clientAccountNumber string) (*transaction.Template, error)
}

// ChatService defines the advisor copilot operations
type ChatService interface {
	Chat(ctx context.Context, message string, history []chat.Message, ctxData map[string]interface{}, temperature *float64) (*chat.Response, error)
	QuickActions(alertType string) []string
	ProviderInfo() chat.ProviderInfo
	Close()
}

// Recorder receives the service-level metrics. *metrics.Metrics satisfies it.
type Recorder interface {
	AlertRecorder
	chat.Recorder
	RecordTransaction(outcome string)
}

// Dependencies are the collaborators NewServices wires together
type Dependencies struct {
	Engine       *scoring.Engine
	ChatProvider chat.Provider
	Recorder     Recorder
	Logger       logger.Logger
	// Now stamps stored records; nil uses wall time
	Now func() time.Time
}

// NewServices creates a new Services instance with all dependencies
func NewServices(repos *repository.Repositories, cfg *config.Config, deps Dependencies) *Services {
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Engine == nil {
		deps.Engine = scoring.NewEngine(scoring.DefaultThresholds(), cfg.Clock())
	}
	if deps.ChatProvider == nil {
		deps.ChatProvider = chat.NewProvider(cfg)
	}

	var alertRecorder AlertRecorder
	var chatRecorder chat.Recorder
	if deps.Recorder != nil {
		alertRecorder = deps.Recorder
		chatRecorder = deps.Recorder
	}

	workflow := transaction.NewWorkflow(repos.Transactions, repos.Catalog, deps.Now)
	productMatcher := matcher.New(repos.Catalog, cfg.GetPreferredCarriers())

	return &Services{
		Policy:      newPolicyService(repos.Catalog, deps.Engine, productMatcher, deps.Logger),
		Client:      newClientService(repos.Catalog),
		Product:     newProductService(repos.Catalog),
		Transaction: newTransactionService(workflow, deps.Recorder, deps.Logger),
		Chat: chat.NewOrchestrator(deps.ChatProvider, chat.Options{
			Model:     cfg.AIModel,
			MaxTokens: cfg.AIMaxTokens,
			Timeout:   cfg.AITimeout(),
			Recorder:  chatRecorder,
			Logger:    deps.Logger.With("component", "chat"),
		}),
		Alerts: NewAlertPipeline(repos.Catalog, deps.Engine, alertRecorder, deps.Logger),
	}
}
