package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
)

type orderRepository struct {
	uow *unitOfWork
}

func (r *orderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	err := r.uow.queryRow(ctx, `
		SELECT id, customer_id, order_date, total_price, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&o.ID, &o.CustomerID, &o.OrderDate, &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items
	return o, nil
}

// Add сохраняет только заголовок заказа; позиции идут через
// LineItemRepository того же unit of work.
func (r *orderRepository) Add(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	_, err := r.uow.exec(ctx, `
		INSERT INTO orders (id, customer_id, order_date, total_price, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		order.ID, order.CustomerID, order.OrderDate, order.TotalPrice,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("order %s: %w", order.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *orderRepository) Update(ctx context.Context, order domain.Order) error {
	affected, err := r.uow.exec(ctx, `
		UPDATE orders
		SET customer_id = $2,
		    order_date = $3,
		    total_price = $4,
		    updated_at = $5
		WHERE id = $1
	`,
		order.ID, order.CustomerID, order.OrderDate, order.TotalPrice, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	affected, err := r.uow.exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int, error) {
	where := ""
	args := []any{}
	if filter.CustomerID != "" {
		where = `WHERE customer_id = $1`
		args = append(args, filter.CustomerID)
	}

	var total int
	if err := r.uow.queryRow(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := `
		SELECT id, customer_id, order_date, total_price, created_at, updated_at
		FROM orders ` + where + `
		ORDER BY order_date, id
	` + pageClause(filter.Page, &args)

	rows, err := r.uow.query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.OrderDate, &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}

	return orders, total, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID string) ([]domain.LineItem, error) {
	rows, err := r.uow.query(ctx, `
		SELECT id, order_id, product_id, quantity, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at, id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.LineItem, 0)
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
