package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/annuity-review-api/internal/services"
)

// ProductHandler serves catalog lookups
type ProductHandler struct {
	productService services.ProductService
}

func NewProductHandler(productService services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// GetProducts returns the catalog, filtered by product_type and carrier
func (h *ProductHandler) GetProducts(c *gin.Context) {
	products, err := h.productService.GetAll(c.Query("product_type"), c.Query("carrier"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetProductsByCarrier(c *gin.Context) {
	products, err := h.productService.GetByCarrier(c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}
