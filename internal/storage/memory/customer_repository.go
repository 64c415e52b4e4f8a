package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
)

// customerRepository — in-memory реализация CustomerRepository внутри unit of work.
type customerRepository struct {
	uow *unitOfWork
}

func (r *customerRepository) Get(_ context.Context, id string) (domain.Customer, error) {
	var customer domain.Customer
	err := r.uow.read(func(st *storeState) error {
		c, ok := st.customers[id]
		if !ok {
			return domain.ErrCustomerNotFound
		}
		customer = c
		return nil
	})
	return customer, err
}

func (r *customerRepository) Add(_ context.Context, customer *domain.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	c := *customer
	return r.uow.stage(func(st *storeState) (int, error) {
		if _, exists := st.customers[c.ID]; exists {
			return 0, fmt.Errorf("customer %s: %w", c.ID, domain.ErrAlreadyExists)
		}
		st.customers[c.ID] = c
		return 1, nil
	})
}

func (r *customerRepository) Update(_ context.Context, customer domain.Customer) error {
	return r.uow.stage(func(st *storeState) (int, error) {
		if _, ok := st.customers[customer.ID]; !ok {
			return 0, domain.ErrCustomerNotFound
		}
		st.customers[customer.ID] = customer
		return 1, nil
	})
}

func (r *customerRepository) Delete(_ context.Context, id string) error {
	return r.uow.stage(func(st *storeState) (int, error) {
		if _, ok := st.customers[id]; !ok {
			return 0, domain.ErrCustomerNotFound
		}
		delete(st.customers, id)
		return 1, nil
	})
}

func (r *customerRepository) List(_ context.Context, filter domain.CustomerFilter) ([]domain.Customer, int, error) {
	var result []domain.Customer
	total := 0

	err := r.uow.read(func(st *storeState) error {
		matched := make([]domain.Customer, 0, len(st.customers))
		query := strings.ToLower(filter.NameQuery)
		for _, c := range st.customers {
			if query != "" {
				name := strings.ToLower(c.FirstName + " " + c.LastName)
				if !strings.Contains(name, query) {
					continue
				}
			}
			matched = append(matched, c)
		}

		sort.Slice(matched, func(i, j int) bool {
			if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
				return matched[i].CreatedAt.Before(matched[j].CreatedAt)
			}
			return matched[i].ID < matched[j].ID
		})

		total = len(matched)
		result = applyPage(matched, filter.Page)
		return nil
	})

	return result, total, err
}

// applyPage вырезает страницу из отсортированной выборки.
func applyPage[T any](items []T, page domain.ListPage) []T {
	if page.Offset < 0 {
		page.Offset = 0
	}
	if page.Offset >= len(items) {
		return []T{}
	}
	items = items[page.Offset:]
	if page.Limit > 0 && len(items) > page.Limit {
		items = items[:page.Limit]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
