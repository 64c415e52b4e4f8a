package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/customer-orders/internal/health"
	"github.com/vladislavdragonenkov/customer-orders/internal/service/customer"
	"github.com/vladislavdragonenkov/customer-orders/internal/service/order"
	"github.com/vladislavdragonenkov/customer-orders/internal/service/product"
	"github.com/vladislavdragonenkov/customer-orders/internal/storage/memory"
)

func newTestRouter(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := log.New()
	logger.SetLevel(log.WarnLevel)
	entry := logger.WithField("component", "http-test")

	store := memory.NewStore()
	healthHandler := health.NewHandler("test")
	router := NewRouter(Handlers{
		Orders:    NewOrderHandler(order.NewServiceWithoutMetrics(store, entry)),
		Customers: NewCustomerHandler(customer.NewService(store, entry)),
		Products:  NewProductHandler(product.NewService(store, entry)),
		Health:    healthHandler,
	}, entry)
	return router, store
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func seedProductHTTP(t *testing.T, router *gin.Engine, name, price string) productResponse {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/v1/products", gin.H{"name": name, "price": price})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp productResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestOrderEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	p1 := seedProductHTTP(t, router, "widget", "10.00")
	p2 := seedProductHTTP(t, router, "gadget", "20.00")

	w := doJSON(t, router, http.MethodPost, "/v1/orders", gin.H{
		"customer_id": "customer-1",
		"order_date":  "2026-04-02T00:00:00Z",
		"items": []gin.H{
			{"product_id": p1.ID, "quantity": 2},
			{"product_id": p2.ID, "quantity": 3},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created orderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.True(t, created.TotalPrice.Equal(decimal.RequireFromString("80.00")),
		"expected total 80.00, got %s", created.TotalPrice)
	require.Len(t, created.Items, 2)

	w = doJSON(t, router, http.MethodGet, "/v1/orders/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPut, "/v1/orders/"+created.ID, gin.H{
		"customer_id": "customer-1",
		"order_date":  "2026-04-03T00:00:00Z",
		"items": []gin.H{
			{"product_id": p1.ID, "quantity": 5},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated orderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.True(t, updated.TotalPrice.Equal(decimal.RequireFromString("50.00")))
	require.Len(t, updated.Items, 1)

	w = doJSON(t, router, http.MethodGet, "/v1/orders?customer_id=customer-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page pageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Equal(t, 1, page.Total)

	w = doJSON(t, router, http.MethodDelete, "/v1/orders/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/v1/orders/"+created.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderEndpoints_ErrorMapping(t *testing.T) {
	router, _ := newTestRouter(t)

	p1 := seedProductHTTP(t, router, "widget", "10.00")

	// Отсутствующий товар в позиции — 404.
	w := doJSON(t, router, http.MethodPost, "/v1/orders", gin.H{
		"customer_id": "customer-1",
		"order_date":  "2026-04-02T00:00:00Z",
		"items":       []gin.H{{"product_id": "ghost", "quantity": 1}},
	})
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())

	// Невалидное количество — 400.
	w = doJSON(t, router, http.MethodPost, "/v1/orders", gin.H{
		"customer_id": "customer-1",
		"order_date":  "2026-04-02T00:00:00Z",
		"items":       []gin.H{{"product_id": p1.ID, "quantity": -1}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	// Битый JSON — 400.
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Update/delete несуществующего заказа — 404.
	w = doJSON(t, router, http.MethodPut, "/v1/orders/ghost", gin.H{
		"customer_id": "customer-1",
		"order_date":  "2026-04-02T00:00:00Z",
	})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/v1/orders/ghost", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCustomerEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/v1/customers", gin.H{
		"first_name":  "Ivan",
		"last_name":   "Petrov",
		"address":     "Nevsky 1",
		"postal_code": "190000",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created customerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	w = doJSON(t, router, http.MethodPut, "/v1/customers/"+created.ID, gin.H{
		"first_name": "Ivan",
		"last_name":  "Sidorov",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/v1/customers?q=sidorov", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page pageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Equal(t, 1, page.Total)

	w = doJSON(t, router, http.MethodDelete, "/v1/customers/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/v1/customers/"+created.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductEndpoints_Pagination(t *testing.T) {
	router, _ := newTestRouter(t)

	for i := 0; i < 5; i++ {
		seedProductHTTP(t, router, fmt.Sprintf("bolt m%d", i), "0.10")
	}

	w := doJSON(t, router, http.MethodGet, "/v1/products?page=2&size=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page pageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Equal(t, 5, page.Total)
	require.Equal(t, 2, page.Page)
	require.Equal(t, 2, page.Size)

	results, ok := page.Results.([]any)
	require.True(t, ok)
	require.Len(t, results, 2)
}

func TestProductEndpoints_Validation(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/v1/products", gin.H{"price": "1.00"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/v1/products", gin.H{"name": "widget", "price": "-1.00"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/livez", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	router, store := newTestRouter(t)
	_ = store

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/livez", nil).WithContext(ctx)
	req.Header.Set("X-Request-Id", "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, "req-42", w.Header().Get("X-Request-Id"))
}
