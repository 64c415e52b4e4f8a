package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
)

// lineItemRepository — in-memory реализация LineItemRepository внутри unit of work.
type lineItemRepository struct {
	uow *unitOfWork
}

func (r *lineItemRepository) Add(_ context.Context, item *domain.LineItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	it := *item
	return r.uow.stage(func(st *storeState) (int, error) {
		if _, exists := st.items[it.ID]; exists {
			return 0, fmt.Errorf("line item %s: %w", it.ID, domain.ErrAlreadyExists)
		}
		st.items[it.ID] = it
		return 1, nil
	})
}

func (r *lineItemRepository) Update(_ context.Context, item domain.LineItem) error {
	return r.uow.stage(func(st *storeState) (int, error) {
		if _, ok := st.items[item.ID]; !ok {
			return 0, domain.ErrLineItemNotFound
		}
		st.items[item.ID] = item
		return 1, nil
	})
}

func (r *lineItemRepository) Delete(_ context.Context, id string) error {
	return r.uow.stage(func(st *storeState) (int, error) {
		if _, ok := st.items[id]; !ok {
			return 0, domain.ErrLineItemNotFound
		}
		delete(st.items, id)
		return 1, nil
	})
}

var _ domain.LineItemRepository = (*lineItemRepository)(nil)
