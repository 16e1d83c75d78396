package services

import (
	"fmt"
	"strings"

	apperrors "github.com/ajharbinger/annuity-review-api/internal/errors"
	"github.com/ajharbinger/annuity-review-api/internal/models"
	"github.com/ajharbinger/annuity-review-api/internal/repository"
)

type productServiceImpl struct {
	catalog repository.CatalogRepository
}

func newProductService(catalog repository.CatalogRepository) ProductService {
	return &productServiceImpl{catalog: catalog}
}

// GetAll returns the catalog, optionally narrowed by exact product type and
// case-insensitive carrier
func (s *productServiceImpl) GetAll(productType, carrier string) ([]models.Product, error) {
	products, err := s.catalog.GetAllProducts()
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if productType != "" && p.ProductType != productType {
			continue
		}
		if carrier != "" && !strings.EqualFold(p.Carrier, carrier) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *productServiceImpl) GetByID(productID string) (*models.Product, error) {
	return s.catalog.GetProduct(productID)
}

// GetByCarrier returns NOT_FOUND when the carrier has no products
func (s *productServiceImpl) GetByCarrier(carrier string) ([]models.Product, error) {
	products, err := s.catalog.GetProductsByCarrier(carrier)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, apperrors.NotFound(fmt.Sprintf("No products found for carrier '%s'", carrier), nil)
	}
	return products, nil
}
