package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
)

// orderRepository — in-memory реализация OrderRepository внутри unit of work.
// Заголовок заказа и позиции хранятся раздельно; Get собирает агрегат.
type orderRepository struct {
	uow *unitOfWork
}

func (r *orderRepository) Get(_ context.Context, id string) (domain.Order, error) {
	var order domain.Order
	err := r.uow.read(func(st *storeState) error {
		o, ok := st.orders[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		o.Items = loadItems(st, id)
		order = o
		return nil
	})
	return order, err
}

func (r *orderRepository) Add(_ context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	o := *order
	// Позиции идут через LineItemRepository отдельными мутациями.
	o.Items = nil
	return r.uow.stage(func(st *storeState) (int, error) {
		if _, exists := st.orders[o.ID]; exists {
			return 0, fmt.Errorf("order %s: %w", o.ID, domain.ErrAlreadyExists)
		}
		st.orders[o.ID] = o
		return 1, nil
	})
}

func (r *orderRepository) Update(_ context.Context, order domain.Order) error {
	order.Items = nil
	return r.uow.stage(func(st *storeState) (int, error) {
		if _, ok := st.orders[order.ID]; !ok {
			return 0, domain.ErrOrderNotFound
		}
		st.orders[order.ID] = order
		return 1, nil
	})
}

func (r *orderRepository) Delete(_ context.Context, id string) error {
	return r.uow.stage(func(st *storeState) (int, error) {
		if _, ok := st.orders[id]; !ok {
			return 0, domain.ErrOrderNotFound
		}
		delete(st.orders, id)
		return 1, nil
	})
}

func (r *orderRepository) List(_ context.Context, filter domain.OrderFilter) ([]domain.Order, int, error) {
	var result []domain.Order
	total := 0

	err := r.uow.read(func(st *storeState) error {
		matched := make([]domain.Order, 0, len(st.orders))
		for _, o := range st.orders {
			if filter.CustomerID != "" && o.CustomerID != filter.CustomerID {
				continue
			}
			o.Items = loadItems(st, o.ID)
			matched = append(matched, o)
		}

		sort.Slice(matched, func(i, j int) bool {
			if !matched[i].OrderDate.Equal(matched[j].OrderDate) {
				return matched[i].OrderDate.Before(matched[j].OrderDate)
			}
			return matched[i].ID < matched[j].ID
		})

		total = len(matched)
		result = applyPage(matched, filter.Page)
		return nil
	})

	return result, total, err
}

// loadItems собирает позиции заказа в стабильном порядке.
func loadItems(st *storeState, orderID string) []domain.LineItem {
	items := make([]domain.LineItem, 0)
	for _, item := range st.items {
		if item.OrderID == orderID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items
}

var _ domain.OrderRepository = (*orderRepository)(nil)
