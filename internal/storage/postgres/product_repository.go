package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
)

type productRepository struct {
	uow *unitOfWork
}

func (r *productRepository) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.uow.queryRow(ctx, `
		SELECT id, name, price, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return p, nil
}

func (r *productRepository) Add(ctx context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	_, err := r.uow.exec(ctx, `
		INSERT INTO products (id, name, price, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		product.ID, product.Name, product.Price, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("product %s: %w", product.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *productRepository) Update(ctx context.Context, product domain.Product) error {
	affected, err := r.uow.exec(ctx, `
		UPDATE products
		SET name = $2,
		    price = $3,
		    updated_at = $4
		WHERE id = $1
	`,
		product.ID, product.Name, product.Price, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	affected, err := r.uow.exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	where := ""
	args := []any{}
	if filter.NameQuery != "" {
		where = `WHERE name ILIKE $1`
		args = append(args, "%"+filter.NameQuery+"%")
	}

	var total int
	if err := r.uow.queryRow(ctx, `SELECT COUNT(*) FROM products `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := `
		SELECT id, name, price, created_at, updated_at
		FROM products ` + where + `
		ORDER BY created_at, id
	` + pageClause(filter.Page, &args)

	rows, err := r.uow.query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, total, nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
