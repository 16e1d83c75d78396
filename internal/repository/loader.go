package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ajharbinger/annuity-review-api/internal/logger"
	"github.com/ajharbinger/annuity-review-api/internal/models"
)

// Source file names inside the data directory
const (
	ClientsFile   = "clients_profile.json"
	PoliciesFile  = "policies.json"
	ProductsFile  = "products.json"
	PositionsFile = "positions.json"
)

// CatalogData is the raw content of the data directory
type CatalogData struct {
	Clients   []models.Client
	Policies  []models.Policy
	Products  []models.Product
	Positions []models.ClientPosition
}

// LoadCatalogData reads every source file from dataDir. A missing file yields an
// empty collection; a malformed file is an error.
func LoadCatalogData(dataDir string, log logger.Logger) (*CatalogData, error) {
	data := &CatalogData{}

	sources := []struct {
		name string
		dest interface{}
	}{
		{ClientsFile, &data.Clients},
		{PoliciesFile, &data.Policies},
		{ProductsFile, &data.Products},
		{PositionsFile, &data.Positions},
	}

	for _, src := range sources {
		path := filepath.Join(dataDir, src.name)
		found, err := readJSONFile(path, src.dest)
		if err != nil {
			return nil, err
		}
		if !found {
			log.Warn("Data file not found, starting with an empty collection", "file", path)
		}
	}

	for i := range data.Products {
		data.Products[i].ApplyDefaults()
	}

	log.Info("Catalog data loaded",
		"data_dir", dataDir,
		"clients", len(data.Clients),
		"policies", len(data.Policies),
		"products", len(data.Products),
		"positions", len(data.Positions))

	return data, nil
}

func readJSONFile(path string, dest interface{}) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return true, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return true, nil
}

// WriteJSONFile writes v as indented JSON, replacing any existing file
func WriteJSONFile(path string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}
