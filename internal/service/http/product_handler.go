package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
	"github.com/vladislavdragonenkov/customer-orders/internal/service/product"
)

// ProductHandler отдаёт REST-операции над каталогом товаров.
type ProductHandler struct {
	svc *product.Service
}

// NewProductHandler создаёт handler каталога.
func NewProductHandler(svc *product.Service) *ProductHandler {
	return &ProductHandler{svc: svc}
}

type productReq struct {
	Name  string          `json:"name" binding:"required"`
	Price decimal.Decimal `json:"price"`
}

// Create обрабатывает POST /v1/products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	created, err := h.svc.Create(ctx, product.CreateProductInput{
		Name:  req.Name,
		Price: req.Price,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(created))
}

// Update обрабатывает PUT /v1/products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	updated, err := h.svc.Update(ctx, c.Param("id"), product.UpdateProductInput{
		Name:  req.Name,
		Price: req.Price,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(updated))
}

// Delete обрабатывает DELETE /v1/products/:id.
func (h *ProductHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Delete(ctx, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get обрабатывает GET /v1/products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	got, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(got))
}

// List обрабатывает GET /v1/products (поиск ?q= по названию, пагинация).
func (h *ProductHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	page, size, lp := pageFromQuery(c)
	products, total, err := h.svc.List(ctx, domain.ProductFilter{
		NameQuery: c.Query("q"),
		Page:      lp,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	results := make([]productResponse, 0, len(products))
	for _, p := range products {
		results = append(results, toProductResponse(p))
	}
	c.JSON(http.StatusOK, pageResponse{Total: total, Page: page, Size: size, Results: results})
}
