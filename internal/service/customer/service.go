package customer

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
)

// CreateCustomerInput — входные данные создания клиента.
type CreateCustomerInput struct {
	FirstName  string
	LastName   string
	Address    string
	PostalCode string
}

// UpdateCustomerInput — входные данные обновления клиента.
// Все поля перезаписываются безусловно.
type UpdateCustomerInput struct {
	FirstName  string
	LastName   string
	Address    string
	PostalCode string
}

// Service реализует CRUD по клиентам. Удаление клиента не трогает его
// заказы: ссылка customer_id в заказе остаётся висячей, чтения заказов
// от этого не страдают.
type Service struct {
	factory domain.UnitOfWorkFactory
	logger  *log.Entry
}

// NewService конструирует сервис клиентов.
func NewService(factory domain.UnitOfWorkFactory, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "customer-service")
	}
	return &Service{factory: factory, logger: logger}
}

// Create сохраняет нового клиента.
func (s *Service) Create(ctx context.Context, in CreateCustomerInput) (domain.Customer, error) {
	if in.FirstName == "" || in.LastName == "" {
		return domain.Customer{}, domain.ErrCustomerNameRequired
	}

	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	now := time.Now().UTC()
	customer := domain.Customer{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Address:    in.Address,
		PostalCode: in.PostalCode,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uow.Customers().Add(ctx, &customer); err != nil {
		return domain.Customer{}, err
	}
	if _, err := uow.Commit(ctx); err != nil {
		return domain.Customer{}, err
	}

	s.logger.WithField("customer_id", customer.ID).Info("customer created")
	return customer, nil
}

// Update перезаписывает клиента. Возвращает ErrCustomerNotFound, если
// клиента нет.
func (s *Service) Update(ctx context.Context, id string, in UpdateCustomerInput) (domain.Customer, error) {
	if in.FirstName == "" || in.LastName == "" {
		return domain.Customer{}, domain.ErrCustomerNameRequired
	}

	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	customer, err := uow.Customers().Get(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}

	customer.FirstName = in.FirstName
	customer.LastName = in.LastName
	customer.Address = in.Address
	customer.PostalCode = in.PostalCode
	customer.UpdatedAt = time.Now().UTC()

	if err := uow.Customers().Update(ctx, customer); err != nil {
		return domain.Customer{}, err
	}
	if _, err := uow.Commit(ctx); err != nil {
		return domain.Customer{}, err
	}

	s.logger.WithField("customer_id", customer.ID).Info("customer updated")
	return customer, nil
}

// Delete удаляет клиента по идентификатору.
func (s *Service) Delete(ctx context.Context, id string) error {
	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	if _, err := uow.Customers().Get(ctx, id); err != nil {
		return err
	}
	if err := uow.Customers().Delete(ctx, id); err != nil {
		return err
	}
	if _, err := uow.Commit(ctx); err != nil {
		return err
	}

	s.logger.WithField("customer_id", id).Info("customer deleted")
	return nil
}

// Get возвращает клиента по идентификатору.
func (s *Service) Get(ctx context.Context, id string) (domain.Customer, error) {
	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	return uow.Customers().Get(ctx, id)
}

// List возвращает страницу клиентов и общее число подходящих записей.
func (s *Service) List(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, int, error) {
	uow, err := s.factory.Begin(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() { _ = uow.Rollback() }()

	return uow.Customers().List(ctx, filter)
}
