package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
)

type lineItemRepository struct {
	uow *unitOfWork
}

func (r *lineItemRepository) Add(ctx context.Context, item *domain.LineItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	_, err := r.uow.exec(ctx, `
		INSERT INTO order_items (id, order_id, product_id, quantity, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		item.ID, item.OrderID, item.ProductID, item.Quantity, item.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("line item %s: %w", item.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

func (r *lineItemRepository) Update(ctx context.Context, item domain.LineItem) error {
	affected, err := r.uow.exec(ctx, `
		UPDATE order_items
		SET product_id = $2,
		    quantity = $3
		WHERE id = $1
	`,
		item.ID, item.ProductID, item.Quantity,
	)
	if err != nil {
		return fmt.Errorf("update order item: %w", err)
	}
	if affected == 0 {
		return domain.ErrLineItemNotFound
	}
	return nil
}

func (r *lineItemRepository) Delete(ctx context.Context, id string) error {
	affected, err := r.uow.exec(ctx, `DELETE FROM order_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order item: %w", err)
	}
	if affected == 0 {
		return domain.ErrLineItemNotFound
	}
	return nil
}

var _ domain.LineItemRepository = (*lineItemRepository)(nil)
