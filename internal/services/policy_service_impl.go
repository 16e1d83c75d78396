package services

import (
	"fmt"
	"sort"

	apperrors "github.com/ajharbinger/annuity-review-api/internal/errors"
	"github.com/ajharbinger/annuity-review-api/internal/logger"
	"github.com/ajharbinger/annuity-review-api/internal/matcher"
	"github.com/ajharbinger/annuity-review-api/internal/models"
	"github.com/ajharbinger/annuity-review-api/internal/repository"
	"github.com/ajharbinger/annuity-review-api/internal/scoring"
)

// UnknownClientName labels policies whose client record is missing
const UnknownClientName = "Unknown Client"

// policyServiceImpl implements PolicyService
type policyServiceImpl struct {
	catalog repository.CatalogRepository
	engine  *scoring.Engine
	matcher *matcher.Matcher
	log     logger.Logger
}

// newPolicyService creates a new policy service implementation
func newPolicyService(catalog repository.CatalogRepository, engine *scoring.Engine, m *matcher.Matcher, log logger.Logger) PolicyService {
	return &policyServiceImpl{
		catalog: catalog,
		engine:  engine,
		matcher: m,
		log:     log,
	}
}

// GetGroupedByClient builds the dashboard rows, most alerts first
func (s *policyServiceImpl) GetGroupedByClient() ([]models.ClientPolicyGroup, error) {
	policies, err := s.catalog.GetAllPolicies()
	if err != nil {
		return nil, fmt.Errorf("failed to get policies: %w", err)
	}

	groups := make(map[string]*models.ClientPolicyGroup)
	var order []string
	for i := range policies {
		policy := &policies[i]
		account := policy.ClientAccountNumber

		group, ok := groups[account]
		if !ok {
			name := UnknownClientName
			if client, err := s.catalog.GetClient(account); err == nil {
				name = client.Client.Name
			}
			group = &models.ClientPolicyGroup{
				ClientAccountNumber: account,
				ClientName:          name,
				Policies:            []models.PolicySummary{},
			}
			groups[account] = group
			order = append(order, account)
		}
		group.Add(policy)
	}

	result := make([]models.ClientPolicyGroup, 0, len(order))
	for _, account := range order {
		result = append(result, *groups[account])
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].TotalAlerts != result[j].TotalAlerts {
			return result[i].TotalAlerts > result[j].TotalAlerts
		}
		return result[i].ClientName < result[j].ClientName
	})
	return result, nil
}

// GetByID retrieves full policy detail
func (s *policyServiceImpl) GetByID(policyID string) (*models.Policy, error) {
	return s.catalog.GetPolicy(policyID)
}

// UpdateNonFinancial replaces the policy's administrative data and re-evaluates
// MISSING_INFO: the alert is refreshed while deficiencies remain and dropped once
// they are resolved
func (s *policyServiceImpl) UpdateNonFinancial(policyID string, data *models.NonFinancialData, expectedVersion int64) (*models.Policy, error) {
	if data == nil {
		return nil, apperrors.InvalidInput("non-financial data is required", nil).WithOperation("PolicyService.UpdateNonFinancial")
	}

	policy, err := s.catalog.GetPolicy(policyID)
	if err != nil {
		return nil, err
	}

	next := policy.Clone()
	next.NonFinancialData = data.Clone()
	if next.NonFinancialData.LastUpdated == "" {
		next.NonFinancialData.LastUpdated = s.engine.Now().Format("2006-01-02")
	}

	client, err := s.catalog.GetClient(policy.ClientAccountNumber)
	switch {
	case err == nil:
		next.Alerts = replaceAlert(next.Alerts, models.AlertMissingInfo, s.evaluate(models.AlertMissingInfo, next, client))
	case apperrors.Is(err, apperrors.ErrCodeNotFound):
		// nothing to score against; keep the stored alerts
		s.log.Warn("Client not found for policy; alerts left unchanged", "policy_id", policyID)
	default:
		return nil, err
	}

	return s.catalog.UpdatePolicy(next, expectedVersion)
}

func (s *policyServiceImpl) evaluate(kind models.AlertType, policy *models.Policy, client *models.Client) *models.Alert {
	alert, ok := s.engine.Evaluate(kind, scoring.Subject{Policy: policy, Client: client})
	if !ok {
		return nil
	}
	return alert
}

// replaceAlert swaps the alert of the given type in place, appends it when new,
// or removes it when replacement is nil
func replaceAlert(alerts []models.Alert, kind models.AlertType, replacement *models.Alert) []models.Alert {
	out := make([]models.Alert, 0, len(alerts)+1)
	replaced := false
	for _, a := range alerts {
		if a.Type != kind {
			out = append(out, a)
			continue
		}
		if replacement != nil && !replaced {
			out = append(out, *replacement)
			replaced = true
		}
	}
	if replacement != nil && !replaced {
		out = append(out, *replacement)
	}
	return out
}

// GetAlternatives compares the policy against ranked catalog products
func (s *policyServiceImpl) GetAlternatives(policyID string, maxResults int) (*matcher.Comparison, error) {
	policy, client, err := s.policyWithClient(policyID)
	if err != nil {
		return nil, err
	}
	return s.matcher.CreateComparison(policy, client, matcher.ClampMaxResults(maxResults))
}

// PreviewAlerts evaluates every policy rule without storing the result
func (s *policyServiceImpl) PreviewAlerts(policyID string) ([]models.Alert, error) {
	policy, client, err := s.policyWithClient(policyID)
	if err != nil {
		return nil, err
	}
	return s.engine.EvaluatePolicy(policy, client), nil
}

func (s *policyServiceImpl) policyWithClient(policyID string) (*models.Policy, *models.Client, error) {
	policy, err := s.catalog.GetPolicy(policyID)
	if err != nil {
		return nil, nil, err
	}
	client, err := s.catalog.GetClient(policy.ClientAccountNumber)
	if err != nil {
		return nil, nil, err
	}
	return policy, client, nil
}
