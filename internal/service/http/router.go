package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/customer-orders/internal/health"
)

// Handlers собирает все HTTP-обработчики сервиса.
type Handlers struct {
	Orders    *OrderHandler
	Customers *CustomerHandler
	Products  *ProductHandler
	Health    *health.Handler
}

// NewRouter строит gin-роутер со всеми маршрутами API.
func NewRouter(h Handlers, logger *log.Entry) *gin.Engine {
	if logger == nil {
		logger = log.New().WithField("component", "http")
	}

	r := gin.New()
	r.Use(gin.Recovery(), accessLog(logger))

	r.GET("/livez", gin.WrapF(health.LivenessHandler))
	if h.Health != nil {
		r.GET("/healthz", gin.WrapH(h.Health))
		r.GET("/readyz", gin.WrapF(h.Health.ReadinessHandler))
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.POST("/orders", h.Orders.Create)
		v1.GET("/orders", h.Orders.List)
		v1.GET("/orders/:id", h.Orders.Get)
		v1.PUT("/orders/:id", h.Orders.Update)
		v1.DELETE("/orders/:id", h.Orders.Delete)

		v1.POST("/customers", h.Customers.Create)
		v1.GET("/customers", h.Customers.List)
		v1.GET("/customers/:id", h.Customers.Get)
		v1.PUT("/customers/:id", h.Customers.Update)
		v1.DELETE("/customers/:id", h.Customers.Delete)

		v1.POST("/products", h.Products.Create)
		v1.GET("/products", h.Products.List)
		v1.GET("/products/:id", h.Products.Get)
		v1.PUT("/products/:id", h.Products.Update)
		v1.DELETE("/products/:id", h.Products.Delete)
	}

	return r
}

// accessLog пишет структурированный access-лог и проставляет request id.
func accessLog(logger *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header("X-Request-Id", reqID)

		c.Next()

		entry := logger.WithFields(log.Fields{
			"req_id": reqID,
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
			"dur_ms": time.Since(start).Milliseconds(),
			"remote": c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("http request")
			return
		}
		entry.Info("http request")
	}
}
