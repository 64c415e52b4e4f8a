package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
	"github.com/vladislavdragonenkov/customer-orders/internal/service/customer"
)

// CustomerHandler отдаёт REST-операции над клиентами.
type CustomerHandler struct {
	svc *customer.Service
}

// NewCustomerHandler создаёт handler клиентов.
func NewCustomerHandler(svc *customer.Service) *CustomerHandler {
	return &CustomerHandler{svc: svc}
}

type customerReq struct {
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
}

// Create обрабатывает POST /v1/customers.
func (h *CustomerHandler) Create(c *gin.Context) {
	var req customerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	created, err := h.svc.Create(ctx, customer.CreateCustomerInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Address:    req.Address,
		PostalCode: req.PostalCode,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCustomerResponse(created))
}

// Update обрабатывает PUT /v1/customers/:id.
func (h *CustomerHandler) Update(c *gin.Context) {
	var req customerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	updated, err := h.svc.Update(ctx, c.Param("id"), customer.UpdateCustomerInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Address:    req.Address,
		PostalCode: req.PostalCode,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(updated))
}

// Delete обрабатывает DELETE /v1/customers/:id.
func (h *CustomerHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Delete(ctx, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get обрабатывает GET /v1/customers/:id.
func (h *CustomerHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	got, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(got))
}

// List обрабатывает GET /v1/customers (поиск ?q= по имени, пагинация).
func (h *CustomerHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	page, size, lp := pageFromQuery(c)
	customers, total, err := h.svc.List(ctx, domain.CustomerFilter{
		NameQuery: c.Query("q"),
		Page:      lp,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	results := make([]customerResponse, 0, len(customers))
	for _, cust := range customers {
		results = append(results, toCustomerResponse(cust))
	}
	c.JSON(http.StatusOK, pageResponse{Total: total, Page: page, Size: size, Results: results})
}
