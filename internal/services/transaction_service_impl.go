package services

import (
	apperrors "github.com/ajharbinger/annuity-review-api/internal/errors"
	"github.com/ajharbinger/annuity-review-api/internal/logger"
	"github.com/ajharbinger/annuity-review-api/internal/models"
	"github.com/ajharbinger/annuity-review-api/internal/transaction"
)

// Transaction outcomes reported to the recorder
const (
	outcomeValidated = "validated"
	outcomeSubmitted = "submitted"
	outcomeRejected  = "rejected"
)

// transactionRecorder is the slice of Recorder the workflow reports to
type transactionRecorder interface {
	RecordTransaction(outcome string)
}

// transactionServiceImpl implements TransactionService on top of the workflow
type transactionServiceImpl struct {
	workflow *transaction.Workflow
	recorder transactionRecorder
	log      logger.Logger
}

func newTransactionService(workflow *transaction.Workflow, recorder transactionRecorder, log logger.Logger) TransactionService {
	return &transactionServiceImpl{
		workflow: workflow,
		recorder: recorder,
		log:      log.With("component", "transactions"),
	}
}

// Validate checks a payload without storing it
func (s *transactionServiceImpl) Validate(payload *models.ReplacementTransaction) transaction.ValidationResult {
	result := s.workflow.Validate(payload)
	s.record(outcomeValidated)
	return result
}

// Submit validates and stores the transaction. No transfer is executed.
func (s *transactionServiceImpl) Submit(payload *models.ReplacementTransaction) (*transaction.SubmitResult, error) {
	result, err := s.workflow.Submit(payload)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCodeValidationError) {
			s.record(outcomeRejected)
			s.log.Warn("Transaction rejected", "transaction_id", payload.TransactionID, "error", err.Error())
		}
		return nil, err
	}

	s.record(outcomeSubmitted)
	s.log.Info("Transaction submitted",
		"transaction_id", result.TransactionID,
		"confirmation_number", result.ConfirmationNumber,
		"warnings", len(result.Warnings))
	return result, nil
}

func (s *transactionServiceImpl) GetByID(transactionID string) (*models.StoredTransaction, error) {
	return s.workflow.Get(transactionID)
}

func (s *transactionServiceImpl) GetStatus(transactionID string) (*transaction.StatusView, error) {
	return s.workflow.Status(transactionID)
}

func (s *transactionServiceImpl) List(clientAccountNumber string, status models.TransactionStatus, limit int) ([]transaction.ListItem, error) {
	return s.workflow.List(clientAccountNumber, status, limit)
}

// CreateFromContext builds a prefilled payload from stored policy, product and client
func (s *transactionServiceImpl) CreateFromContext(policyID, productID, clientAccountNumber string) (*transaction.Template, error) {
	return s.workflow.CreateFromContext(policyID, productID, clientAccountNumber)
}

func (s *transactionServiceImpl) record(outcome string) {
	if s.recorder != nil {
		s.recorder.RecordTransaction(outcome)
	}
}
