package product

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
)

// CreateProductInput — входные данные создания товара.
type CreateProductInput struct {
	Name  string
	Price decimal.Decimal
}

// UpdateProductInput — входные данные обновления товара.
type UpdateProductInput struct {
	Name  string
	Price decimal.Decimal
}

// Service реализует CRUD по каталогу товаров. Изменение цены не
// пересчитывает итоги существующих заказов: итог фиксируется по ценам
// на момент create/update заказа.
type Service struct {
	factory domain.UnitOfWorkFactory
	logger  *log.Entry
}

// NewService конструирует сервис каталога.
func NewService(factory domain.UnitOfWorkFactory, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "product-service")
	}
	return &Service{factory: factory, logger: logger}
}

// Create сохраняет новый товар.
func (s *Service) Create(ctx context.Context, in CreateProductInput) (domain.Product, error) {
	now := time.Now().UTC()
	product := domain.Product{
		Name:      in.Name,
		Price:     in.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errs := product.ValidateInvariants(); len(errs) > 0 {
		return domain.Product{}, errs[0]
	}

	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return domain.Product{}, fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	if err := uow.Products().Add(ctx, &product); err != nil {
		return domain.Product{}, err
	}
	if _, err := uow.Commit(ctx); err != nil {
		return domain.Product{}, err
	}

	s.logger.WithFields(log.Fields{
		"product_id": product.ID,
		"price":      product.Price.String(),
	}).Info("product created")
	return product, nil
}

// Update перезаписывает товар. Возвращает ErrProductNotFound, если товара нет.
func (s *Service) Update(ctx context.Context, id string, in UpdateProductInput) (domain.Product, error) {
	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return domain.Product{}, fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	product, err := uow.Products().Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	product.Name = in.Name
	product.Price = in.Price
	product.UpdatedAt = time.Now().UTC()
	if errs := product.ValidateInvariants(); len(errs) > 0 {
		return domain.Product{}, errs[0]
	}

	if err := uow.Products().Update(ctx, product); err != nil {
		return domain.Product{}, err
	}
	if _, err := uow.Commit(ctx); err != nil {
		return domain.Product{}, err
	}

	s.logger.WithFields(log.Fields{
		"product_id": product.ID,
		"price":      product.Price.String(),
	}).Info("product updated")
	return product, nil
}

// Delete удаляет товар по идентификатору. Существующие позиции заказов
// удаление не трогает: их цена уже зафиксирована в итоге заказа, а
// следующий update такого заказа завершится ErrProductNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	if _, err := uow.Products().Get(ctx, id); err != nil {
		return err
	}
	if err := uow.Products().Delete(ctx, id); err != nil {
		return err
	}
	if _, err := uow.Commit(ctx); err != nil {
		return err
	}

	s.logger.WithField("product_id", id).Info("product deleted")
	return nil
}

// Get возвращает товар по идентификатору.
func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return domain.Product{}, fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	return uow.Products().Get(ctx, id)
}

// List возвращает страницу товаров и общее число подходящих записей.
func (s *Service) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	return uow.Products().List(ctx, filter)
}
