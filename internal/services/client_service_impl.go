package services

import (
	"fmt"
	"sort"

	apperrors "github.com/ajharbinger/annuity-review-api/internal/errors"
	"github.com/ajharbinger/annuity-review-api/internal/models"
	"github.com/ajharbinger/annuity-review-api/internal/repository"
)

// clientServiceImpl implements ClientService
type clientServiceImpl struct {
	catalog repository.CatalogRepository
}

func newClientService(catalog repository.CatalogRepository) ClientService {
	return &clientServiceImpl{catalog: catalog}
}

// GetAll returns every client in the advisor UI shape
func (s *clientServiceImpl) GetAll() ([]models.ClientView, error) {
	clients, err := s.catalog.GetAllClients()
	if err != nil {
		return nil, fmt.Errorf("failed to get clients: %w", err)
	}
	views := make([]models.ClientView, 0, len(clients))
	for i := range clients {
		views = append(views, clients[i].View())
	}
	return views, nil
}

// GetByAccount retrieves one client view
func (s *clientServiceImpl) GetByAccount(accountNumber string) (*models.ClientView, error) {
	client, err := s.catalog.GetClient(accountNumber)
	if err != nil {
		return nil, err
	}
	view := client.View()
	return &view, nil
}

// UpdateSuitability applies the named fields. An empty patch is rejected.
func (s *clientServiceImpl) UpdateSuitability(accountNumber string, update models.SuitabilityUpdate, updatedBy string, expectedVersion int64) (*models.ClientView, error) {
	if update.IsEmpty() {
		return nil, apperrors.InvalidInput("No suitability fields provided for update", nil).WithOperation("ClientService.UpdateSuitability")
	}
	if updatedBy == "" {
		updatedBy = "Advisor"
	}

	client, err := s.catalog.UpdateClientSuitability(accountNumber, update, updatedBy, expectedVersion)
	if err != nil {
		return nil, err
	}
	view := client.View()
	return &view, nil
}

// GetPolicies lists the client's policy summaries
func (s *clientServiceImpl) GetPolicies(accountNumber string) ([]models.PolicySummary, error) {
	policies, err := s.catalog.GetPoliciesByClient(accountNumber)
	if err != nil {
		return nil, err
	}
	if len(policies) == 0 {
		return nil, apperrors.NotFound(fmt.Sprintf("No policies found for client %s", accountNumber), nil)
	}

	summaries := make([]models.PolicySummary, 0, len(policies))
	for i := range policies {
		summaries = append(summaries, policies[i].Summary())
	}
	return summaries, nil
}

// GetAcquisitionAlerts returns the opportunities on one client's outside holdings
func (s *clientServiceImpl) GetAcquisitionAlerts(accountNumber string) (*models.AcquisitionSummary, error) {
	position, err := s.catalog.GetPosition(accountNumber)
	if err != nil {
		return nil, err
	}
	summary := s.acquisitionSummary(position)
	return &summary, nil
}

// GetAllAcquisitionAlerts lists clients with at least one opportunity, most first
func (s *clientServiceImpl) GetAllAcquisitionAlerts() ([]models.AcquisitionSummary, error) {
	positions, err := s.catalog.GetAllPositions()
	if err != nil {
		return nil, fmt.Errorf("failed to get positions: %w", err)
	}

	out := make([]models.AcquisitionSummary, 0, len(positions))
	for i := range positions {
		if len(positions[i].Alerts) == 0 {
			continue
		}
		out = append(out, s.acquisitionSummary(&positions[i]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AlertCount != out[j].AlertCount {
			return out[i].AlertCount > out[j].AlertCount
		}
		return out[i].ClientName < out[j].ClientName
	})
	return out, nil
}

func (s *clientServiceImpl) acquisitionSummary(position *models.ClientPosition) models.AcquisitionSummary {
	name := UnknownClientName
	if client, err := s.catalog.GetClient(position.ClientAccountNumber); err == nil {
		name = client.Client.Name
	}
	alerts := position.Alerts
	if alerts == nil {
		alerts = []models.Alert{}
	}
	return models.AcquisitionSummary{
		ClientAccountNumber: position.ClientAccountNumber,
		ClientName:          name,
		TotalPortfolioValue: position.TotalPortfolioValue,
		AlertCount:          len(alerts),
		Alerts:              alerts,
	}
}
