package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	productsvc "storefront/internal/service/product"
)

type productRequest struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	PriceCents    int64  `json:"price_cents" binding:"min=0"`
	Image         string `json:"image"`
	PurchaseLimit int    `json:"purchase_limit" binding:"min=0"`
	Status        string `json:"status" binding:"required"`
}

type productResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	PriceCents    int64  `json:"price_cents"`
	Image         string `json:"image"`
	PurchaseLimit int    `json:"purchase_limit"`
	Status        string `json:"status"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		PriceCents:    p.PriceCents,
		Image:         p.Image,
		PurchaseLimit: p.PurchaseLimit,
		Status:        string(p.Status),
	}
}

func listProductsHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.List(c.Request.Context())
		if err != nil {
			respondServiceError(c, err)
			return
		}
		out := make([]productResponse, 0, len(products))
		for _, p := range products {
			out = append(out, toProductResponse(p))
		}
		c.JSON(http.StatusOK, out)
	}
}

func getProductHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, toProductResponse(*p))
	}
}

func createProductHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		p, err := svc.Create(c.Request.Context(), domain.Product{
			Name:          req.Name,
			Description:   req.Description,
			PriceCents:    req.PriceCents,
			Image:         req.Image,
			PurchaseLimit: req.PurchaseLimit,
			Status:        domain.ProductStatus(req.Status),
		})
		if err != nil {
			respondProductError(c, err)
			return
		}
		c.JSON(http.StatusCreated, toProductResponse(*p))
	}
}

func updateProductHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		p, err := svc.Update(c.Request.Context(), domain.Product{
			ID:            c.Param("id"),
			Name:          req.Name,
			Description:   req.Description,
			PriceCents:    req.PriceCents,
			Image:         req.Image,
			PurchaseLimit: req.PurchaseLimit,
			Status:        domain.ProductStatus(req.Status),
		})
		if err != nil {
			respondProductError(c, err)
			return
		}
		c.JSON(http.StatusOK, toProductResponse(*p))
	}
}

func deleteProductHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondServiceError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func respondProductError(c *gin.Context, err error) {
	if errors.Is(err, productsvc.ErrInvalidProduct) {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	respondServiceError(c, err)
}
