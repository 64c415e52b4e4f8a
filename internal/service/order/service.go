package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
	"github.com/vladislavdragonenkov/customer-orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/customer-orders/internal/metrics"
)

// ItemInput — желаемая позиция заказа со стороны вызывающего.
type ItemInput struct {
	ProductID string
	Quantity  int32
}

// CreateOrderInput — входные данные создания заказа.
type CreateOrderInput struct {
	CustomerID string
	OrderDate  time.Time
	Items      []ItemInput
}

// UpdateOrderInput — входные данные обновления заказа. Поля заголовка
// перезаписываются безусловно, позиции согласуются по product_id.
type UpdateOrderInput struct {
	CustomerID string
	OrderDate  time.Time
	Items      []ItemInput
}

// Service реализует жизненный цикл заказа: create, update, delete и чтения.
// Каждая операция — короткая независимая единица работы поверх одного
// unit of work; собственных блокировок сервис не держит, границей
// сериализации служит commit хранилища.
//
// Повтор create после ErrCommitFailed может создать дубликат заказа —
// create не идемпотентен по построению, это ответственность вызывающего.
// Update и delete идемпотентны по идентификатору заказа. Параллельные
// update одного заказа — гонка "последний commit побеждает"; optimistic
// locking здесь сознательно не реализован.
type Service struct {
	factory domain.UnitOfWorkFactory
	logger  *log.Entry
	metrics *metrics.OrderMetrics
}

// NewService конструирует сервис заказов с метриками.
func NewService(factory domain.UnitOfWorkFactory, logger *log.Entry) *Service {
	return newService(factory, logger, metrics.NewOrderMetrics())
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(factory domain.UnitOfWorkFactory, logger *log.Entry) *Service {
	return newService(factory, logger, nil)
}

func newService(factory domain.UnitOfWorkFactory, logger *log.Entry, m *metrics.OrderMetrics) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	return &Service{factory: factory, logger: logger, metrics: m}
}

// Create создаёт заказ с позициями и производным итогом одним commit.
// Итог всегда вычисляется по текущим ценам каталога; при отсутствии любого
// товара операция завершается ErrProductNotFound без частичных записей.
func (s *Service) Create(ctx context.Context, in CreateOrderInput) (domain.Order, error) {
	start := time.Now()
	order, err := s.create(ctx, in)
	s.finish(metrics.OpCreate, start, err)
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"items":       len(order.Items),
		"total_price": order.TotalPrice.String(),
	}).Info("order created")
	return order, nil
}

func (s *Service) create(ctx context.Context, in CreateOrderInput) (domain.Order, error) {
	if in.CustomerID == "" {
		return domain.Order{}, domain.ErrCustomerRequired
	}

	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	now := time.Now().UTC()
	order := domain.Order{
		ID:         uuid.NewString(),
		CustomerID: in.CustomerID,
		OrderDate:  in.OrderDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// Фаза валидации и вычисления: только чтения, любой отказ — до записей.
	diff, err := domain.ReconcileItems(
		ctx,
		domain.CatalogFromRepository(uow.Products()),
		order.ID,
		nil,
		toSpecs(in.Items),
	)
	if err != nil {
		return domain.Order{}, err
	}
	order.TotalPrice = diff.Total

	// Фаза применения: заголовок, позиции и событие — один батч.
	if err := uow.Orders().Add(ctx, &order); err != nil {
		return domain.Order{}, err
	}
	items := make([]domain.LineItem, 0, len(diff.Creates))
	for _, item := range diff.Creates {
		item.CreatedAt = now
		if err := uow.LineItems().Add(ctx, &item); err != nil {
			return domain.Order{}, err
		}
		items = append(items, item)
	}
	order.Items = items

	if err := s.enqueueEvent(ctx, uow, kafka.EventTypeOrderCreated, order); err != nil {
		return domain.Order{}, err
	}

	if _, err := uow.Commit(ctx); err != nil {
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordReconciled(0, 0, len(diff.Creates))
	}
	return order, nil
}

// Update перезаписывает заголовок заказа, согласует позиции с желаемым
// набором и пересчитывает итог; всё применяется одним commit.
func (s *Service) Update(ctx context.Context, orderID string, in UpdateOrderInput) (domain.Order, error) {
	start := time.Now()
	order, err := s.update(ctx, orderID, in)
	s.finish(metrics.OpUpdate, start, err)
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"items":       len(order.Items),
		"total_price": order.TotalPrice.String(),
	}).Info("order updated")
	return order, nil
}

func (s *Service) update(ctx context.Context, orderID string, in UpdateOrderInput) (domain.Order, error) {
	if in.CustomerID == "" {
		return domain.Order{}, domain.ErrCustomerRequired
	}

	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	order, err := uow.Orders().Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	diff, err := domain.ReconcileItems(
		ctx,
		domain.CatalogFromRepository(uow.Products()),
		order.ID,
		order.Items,
		toSpecs(in.Items),
	)
	if err != nil {
		return domain.Order{}, err
	}

	now := time.Now().UTC()
	order.CustomerID = in.CustomerID
	order.OrderDate = in.OrderDate
	order.TotalPrice = diff.Total
	order.UpdatedAt = now

	for _, item := range diff.Removals {
		if err := uow.LineItems().Delete(ctx, item.ID); err != nil {
			return domain.Order{}, err
		}
	}
	items := make([]domain.LineItem, 0, len(diff.Updates)+len(diff.Creates))
	for _, item := range diff.Updates {
		if err := uow.LineItems().Update(ctx, item); err != nil {
			return domain.Order{}, err
		}
		items = append(items, item)
	}
	for _, item := range diff.Creates {
		item.CreatedAt = now
		if err := uow.LineItems().Add(ctx, &item); err != nil {
			return domain.Order{}, err
		}
		items = append(items, item)
	}
	order.Items = items

	if err := uow.Orders().Update(ctx, order); err != nil {
		return domain.Order{}, err
	}
	if err := s.enqueueEvent(ctx, uow, kafka.EventTypeOrderUpdated, order); err != nil {
		return domain.Order{}, err
	}

	if _, err := uow.Commit(ctx); err != nil {
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordReconciled(len(diff.Removals), len(diff.Updates), len(diff.Creates))
	}
	return order, nil
}

// Delete удаляет заказ вместе со всеми позициями одним commit.
// Позиции удаляются явно: каскад на стороне хранилища не предполагается.
func (s *Service) Delete(ctx context.Context, orderID string) error {
	start := time.Now()
	err := s.delete(ctx, orderID)
	s.finish(metrics.OpDelete, start, err)
	if err != nil {
		return err
	}

	s.logger.WithField("order_id", orderID).Info("order deleted")
	return nil
}

func (s *Service) delete(ctx context.Context, orderID string) error {
	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	order, err := uow.Orders().Get(ctx, orderID)
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		if err := uow.LineItems().Delete(ctx, item.ID); err != nil {
			return err
		}
	}
	if err := uow.Orders().Delete(ctx, order.ID); err != nil {
		return err
	}
	if err := s.enqueueEvent(ctx, uow, kafka.EventTypeOrderDeleted, order); err != nil {
		return err
	}

	_, err = uow.Commit(ctx)
	return err
}

// Get возвращает заказ с позициями.
func (s *Service) Get(ctx context.Context, orderID string) (domain.Order, error) {
	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	return uow.Orders().Get(ctx, orderID)
}

// List возвращает страницу заказов и общее число подходящих записей.
func (s *Service) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int, error) {
	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	return uow.Orders().List(ctx, filter)
}

func (s *Service) enqueueEvent(ctx context.Context, uow domain.UnitOfWork, eventType kafka.EventType, order domain.Order) error {
	event := kafka.NewOrderEvent(eventType, order.ID, order.CustomerID, order.OrderDate, order.TotalPrice, len(order.Items))
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	if err := uow.Outbox().Enqueue(ctx, domain.OutboxMessage{
		AggregateType: kafka.AggregateTypeOrder,
		AggregateID:   order.ID,
		EventType:     string(eventType),
		Payload:       payload,
	}); err != nil {
		return fmt.Errorf("enqueue order event: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordOutboxEnqueued()
	}
	return nil
}

func (s *Service) finish(operation string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordDuration(operation, time.Since(start))
	if err != nil {
		s.metrics.RecordFailure(operation, failureReason(err))
		return
	}
	switch operation {
	case metrics.OpCreate:
		s.metrics.RecordCreated()
	case metrics.OpUpdate:
		s.metrics.RecordUpdated()
	case metrics.OpDelete:
		s.metrics.RecordDeleted()
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrCommitFailed):
		return "commit_failed"
	case errors.Is(err, domain.ErrQuantityInvalid), errors.Is(err, domain.ErrCustomerRequired):
		return "invalid_input"
	default:
		return "internal"
	}
}

func toSpecs(items []ItemInput) []domain.ItemSpec {
	specs := make([]domain.ItemSpec, 0, len(items))
	for _, item := range items {
		specs = append(specs, domain.ItemSpec{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return specs
}
