package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
	"github.com/vladislavdragonenkov/customer-orders/internal/service/customer"
	"github.com/vladislavdragonenkov/customer-orders/internal/service/order"
	"github.com/vladislavdragonenkov/customer-orders/internal/service/outbox"
	"github.com/vladislavdragonenkov/customer-orders/internal/service/product"
	"github.com/vladislavdragonenkov/customer-orders/internal/storage/memory"
)

// capturePublisher собирает опубликованные события вместо брокера.
type capturePublisher struct {
	mu        sync.Mutex
	published []domain.OutboxMessage
	err       error
}

func (p *capturePublisher) Publish(event domain.OutboxMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, event)
	return nil
}

func (p *capturePublisher) events() []domain.OutboxMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.OutboxMessage, len(p.published))
	copy(out, p.published)
	return out
}

// OrderLifecycleTestSuite тестирует полный жизненный цикл заказа:
// CRUD через сервисы и доставку событий через outbox-воркер.
type OrderLifecycleTestSuite struct {
	suite.Suite
	store     *memory.Store
	orders    *order.Service
	customers *customer.Service
	products  *product.Service
	publisher *capturePublisher
	worker    *outbox.Worker
}

func (suite *OrderLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // Уменьшаем шум в тестах
	logger := baseLogger.WithField("component", "integration-test")

	suite.store = memory.NewStore()
	suite.orders = order.NewServiceWithoutMetrics(suite.store, logger)
	suite.customers = customer.NewService(suite.store, logger)
	suite.products = product.NewService(suite.store, logger)

	suite.publisher = &capturePublisher{}
	suite.worker = outbox.NewWorker(
		suite.store,
		suite.publisher,
		outbox.WithLogger(logger),
		outbox.WithMaxAttempts(2),
		outbox.WithRetryBaseDelay(time.Millisecond),
	)
}

func (suite *OrderLifecycleTestSuite) TestSuccessfulOrderLifecycle() {
	ctx := context.Background()
	t := suite.T()

	// 1. Клиент и каталог
	cust, err := suite.customers.Create(ctx, customer.CreateCustomerInput{
		FirstName:  "Олег",
		LastName:   "Смирнов",
		Address:    "Невский проспект, 1",
		PostalCode: "191186",
	})
	require.NoError(t, err)

	laptop, err := suite.products.Create(ctx, product.CreateProductInput{
		Name:  "laptop-pro",
		Price: decimal.RequireFromString("1999.00"),
	})
	require.NoError(t, err)
	mouse, err := suite.products.Create(ctx, product.CreateProductInput{
		Name:  "mouse-wireless",
		Price: decimal.RequireFromString("49.99"),
	})
	require.NoError(t, err)

	// 2. Создаём заказ, итог производный от каталога
	created, err := suite.orders.Create(ctx, order.CreateOrderInput{
		CustomerID: cust.ID,
		OrderDate:  time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
		Items: []order.ItemInput{
			{ProductID: laptop.ID, Quantity: 1},
			{ProductID: mouse.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("2098.98").Equal(created.TotalPrice),
		"total %s", created.TotalPrice)

	// 3. Обновляем: мышь убираем, ноутбуков два; цена ноутбука к этому
	// моменту уже другая — итог пересчитывается по текущему каталогу
	_, err = suite.products.Update(ctx, laptop.ID, product.UpdateProductInput{
		Name:  laptop.Name,
		Price: decimal.RequireFromString("1899.00"),
	})
	require.NoError(t, err)

	updated, err := suite.orders.Update(ctx, created.ID, order.UpdateOrderInput{
		CustomerID: cust.ID,
		OrderDate:  created.OrderDate,
		Items: []order.ItemInput{
			{ProductID: laptop.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("3798.00").Equal(updated.TotalPrice),
		"total %s", updated.TotalPrice)
	require.Len(t, updated.Items, 1)
	keptBefore, ok := created.ItemByProduct(laptop.ID)
	require.True(t, ok)
	require.Equal(t, keptBefore.ID, updated.Items[0].ID,
		"существующая позиция обновляется, а не пересоздаётся")

	// 4. Удаляем заказ вместе с позициями
	require.NoError(t, suite.orders.Delete(ctx, created.ID))
	_, err = suite.orders.Get(ctx, created.ID)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	// 5. Воркер доставляет накопленные события в порядке возникновения
	suite.worker.ProcessOnce(ctx)

	events := suite.publisher.events()
	require.Len(t, events, 3)
	require.Equal(t, "order.created", events[0].EventType)
	require.Equal(t, "order.updated", events[1].EventType)
	require.Equal(t, "order.deleted", events[2].EventType)
	for _, event := range events {
		require.Equal(t, "order", event.AggregateType)
		require.Equal(t, created.ID, event.AggregateID)
	}

	stats, err := suite.store.Stats()
	require.NoError(t, err)
	require.Zero(t, stats.PendingCount, "outbox должен быть пуст после доставки")
}

func (suite *OrderLifecycleTestSuite) TestDeletedProductBlocksOrderUpdate() {
	ctx := context.Background()
	t := suite.T()

	cust, err := suite.customers.Create(ctx, customer.CreateCustomerInput{
		FirstName: "Анна",
		LastName:  "Иванова",
	})
	require.NoError(t, err)

	bolt, err := suite.products.Create(ctx, product.CreateProductInput{
		Name:  "bolt-m8",
		Price: decimal.RequireFromString("0.50"),
	})
	require.NoError(t, err)

	created, err := suite.orders.Create(ctx, order.CreateOrderInput{
		CustomerID: cust.ID,
		OrderDate:  time.Now().UTC(),
		Items:      []order.ItemInput{{ProductID: bolt.ID, Quantity: 100}},
	})
	require.NoError(t, err)

	// Товар исчезает из каталога, заказ остаётся как есть
	require.NoError(t, suite.products.Delete(ctx, bolt.ID))

	_, err = suite.orders.Update(ctx, created.ID, order.UpdateOrderInput{
		CustomerID: cust.ID,
		OrderDate:  created.OrderDate,
		Items:      []order.ItemInput{{ProductID: bolt.ID, Quantity: 200}},
	})
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	current, err := suite.orders.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, int32(100), current.Items[0].Quantity,
		"неудавшийся update не должен менять заказ")
	require.True(t, decimal.RequireFromString("50.00").Equal(current.TotalPrice))
}

func (suite *OrderLifecycleTestSuite) TestBrokerFailureRoutesToDLQ() {
	ctx := context.Background()
	t := suite.T()

	dlq := &capturePublisher{}
	suite.publisher.err = errors.New("broker unavailable")
	worker := outbox.NewWorker(
		suite.store,
		suite.publisher,
		outbox.WithMaxAttempts(2),
		outbox.WithRetryBaseDelay(time.Millisecond),
		outbox.WithDLQPublisher(dlq),
	)

	cust, err := suite.customers.Create(ctx, customer.CreateCustomerInput{
		FirstName: "Пётр",
		LastName:  "Козлов",
	})
	require.NoError(t, err)
	prod, err := suite.products.Create(ctx, product.CreateProductInput{
		Name:  "cable-usb",
		Price: decimal.RequireFromString("5.00"),
	})
	require.NoError(t, err)

	created, err := suite.orders.Create(ctx, order.CreateOrderInput{
		CustomerID: cust.ID,
		OrderDate:  time.Now().UTC(),
		Items:      []order.ItemInput{{ProductID: prod.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	worker.ProcessOnce(ctx)

	require.Empty(t, suite.publisher.events())
	deadLetters := dlq.events()
	require.Len(t, deadLetters, 1)
	require.Equal(t, created.ID, deadLetters[0].AggregateID)

	stats, err := suite.store.Stats()
	require.NoError(t, err)
	require.Zero(t, stats.PendingCount, "сообщение не должно остаться в pending после DLQ")
}

func TestOrderLifecycle(t *testing.T) {
	suite.Run(t, new(OrderLifecycleTestSuite))
}
