package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajharbinger/annuity-review-api/internal/models"
	"github.com/ajharbinger/annuity-review-api/internal/repository"
	"github.com/ajharbinger/annuity-review-api/pkg/config"
)

func writeSourceData(t *testing.T, dir string) {
	t.Helper()
	clients := []models.Client{{
		Client: models.ClientIdentity{AccountNumber: "ACC-1", Name: "Mary Ann Jones"},
		Suitability: models.SuitabilityProfile{
			Age: 62, LifeStage: "Retired", RiskTolerance: "Moderate",
			PrimaryObjective: "Income", LiquidityImportance: "Medium", State: "TX",
		},
	}}
	policies := []models.Policy{{
		PolicyID: "POL-1", ClientAccountNumber: "ACC-1", PolicyLabel: "Legacy FIA",
		Carrier: "Allianz", ProductType: "FIA", IssueDate: "2023-03-01",
		AccountValue: 150000, CurrentCapRate: models.Float64(2.0),
		Alerts: []models.Alert{},
	}}
	positions := []models.ClientPosition{{
		ClientAccountNumber: "ACC-1",
		TotalPortfolioValue: 250000,
		Summary:             models.PortfolioSummary{CashAllocation: 0.4, TotalCash: 100000},
	}}

	require.NoError(t, repository.WriteJSONFile(filepath.Join(dir, repository.ClientsFile), clients))
	require.NoError(t, repository.WriteJSONFile(filepath.Join(dir, repository.PoliciesFile), policies))
	require.NoError(t, repository.WriteJSONFile(filepath.Join(dir, repository.PositionsFile), positions))
}

func testOptions(dataDir, outputDir string) *batchOptions {
	return &batchOptions{
		dataDir:       dataDir,
		outputDir:     outputDir,
		referenceDate: "2026-02-25",
		batchSize:     10,
		maxConcurrent: 2,
	}
}

func TestRunBatch_AllScopes(t *testing.T) {
	dataDir := t.TempDir()
	outputDir := t.TempDir()
	writeSourceData(t, dataDir)

	before, err := os.ReadFile(filepath.Join(dataDir, repository.PoliciesFile))
	require.NoError(t, err)

	cfg := &config.Config{LogLevel: "error"}
	require.NoError(t, runBatch(context.Background(), "all", cfg, testOptions(dataDir, outputDir)))

	raw, err := os.ReadFile(filepath.Join(outputDir, policyAlertsFile))
	require.NoError(t, err)
	var policies []models.Policy
	require.NoError(t, json.Unmarshal(raw, &policies))
	require.Len(t, policies, 1)
	assert.NotEmpty(t, policies[0].Alerts)

	raw, err = os.ReadFile(filepath.Join(outputDir, acquisitionAlertsFile))
	require.NoError(t, err)
	var positions []models.ClientPosition
	require.NoError(t, json.Unmarshal(raw, &positions))
	require.Len(t, positions, 1)
	assert.NotEmpty(t, positions[0].Alerts)

	after, err := os.ReadFile(filepath.Join(dataDir, repository.PoliciesFile))
	require.NoError(t, err)
	assert.Equal(t, before, after, "source files are not modified")
}

func TestRunBatch_PolicyScopeOnly(t *testing.T) {
	dataDir := t.TempDir()
	writeSourceData(t, dataDir)

	cfg := &config.Config{LogLevel: "error"}
	require.NoError(t, runBatch(context.Background(), "policies", cfg, testOptions(dataDir, "")))

	assert.FileExists(t, filepath.Join(dataDir, policyAlertsFile))
	assert.NoFileExists(t, filepath.Join(dataDir, acquisitionAlertsFile))
}

func TestRunBatch_BadScoringConfig(t *testing.T) {
	dataDir := t.TempDir()
	writeSourceData(t, dataDir)

	opts := testOptions(dataDir, "")
	opts.scoringConfig = filepath.Join(dataDir, "missing.yaml")

	err := runBatch(context.Background(), "all", &config.Config{LogLevel: "error"}, opts)
	assert.Error(t, err)
}
