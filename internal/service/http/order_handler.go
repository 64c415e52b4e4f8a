package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
	"github.com/vladislavdragonenkov/customer-orders/internal/service/order"
)

// OrderHandler отдаёт REST-операции над заказами.
type OrderHandler struct {
	svc *order.Service
}

// NewOrderHandler создаёт handler заказов.
func NewOrderHandler(svc *order.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type orderItemReq struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int32  `json:"quantity" binding:"required"`
}

type orderReq struct {
	CustomerID string         `json:"customer_id" binding:"required"`
	OrderDate  time.Time      `json:"order_date" binding:"required"`
	Items      []orderItemReq `json:"items"`
}

func (r orderReq) items() []order.ItemInput {
	items := make([]order.ItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, order.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return items
}

// Create обрабатывает POST /v1/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req orderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	created, err := h.svc.Create(ctx, order.CreateOrderInput{
		CustomerID: req.CustomerID,
		OrderDate:  req.OrderDate,
		Items:      req.items(),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(created))
}

// Update обрабатывает PUT /v1/orders/:id: заголовок перезаписывается,
// позиции согласуются с желаемым набором по product_id.
func (h *OrderHandler) Update(c *gin.Context) {
	var req orderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	updated, err := h.svc.Update(ctx, c.Param("id"), order.UpdateOrderInput{
		CustomerID: req.CustomerID,
		OrderDate:  req.OrderDate,
		Items:      req.items(),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(updated))
}

// Delete обрабатывает DELETE /v1/orders/:id.
func (h *OrderHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Delete(ctx, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get обрабатывает GET /v1/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	got, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(got))
}

// List обрабатывает GET /v1/orders (фильтр ?customer_id=, пагинация ?page/?size).
func (h *OrderHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	page, size, lp := pageFromQuery(c)
	orders, total, err := h.svc.List(ctx, domain.OrderFilter{
		CustomerID: c.Query("customer_id"),
		Page:       lp,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	results := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		results = append(results, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, pageResponse{Total: total, Page: page, Size: size, Results: results})
}
