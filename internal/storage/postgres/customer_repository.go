package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
)

type customerRepository struct {
	uow *unitOfWork
}

func (r *customerRepository) Get(ctx context.Context, id string) (domain.Customer, error) {
	var c domain.Customer
	err := r.uow.queryRow(ctx, `
		SELECT id, first_name, last_name, address, postal_code, created_at, updated_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Address, &c.PostalCode, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}
	return c, nil
}

func (r *customerRepository) Add(ctx context.Context, customer *domain.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}

	_, err := r.uow.exec(ctx, `
		INSERT INTO customers (id, first_name, last_name, address, postal_code, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		customer.ID, customer.FirstName, customer.LastName,
		customer.Address, customer.PostalCode, customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("customer %s: %w", customer.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r *customerRepository) Update(ctx context.Context, customer domain.Customer) error {
	affected, err := r.uow.exec(ctx, `
		UPDATE customers
		SET first_name = $2,
		    last_name = $3,
		    address = $4,
		    postal_code = $5,
		    updated_at = $6
		WHERE id = $1
	`,
		customer.ID, customer.FirstName, customer.LastName,
		customer.Address, customer.PostalCode, customer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if affected == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *customerRepository) Delete(ctx context.Context, id string) error {
	affected, err := r.uow.exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if affected == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *customerRepository) List(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, int, error) {
	where := ""
	args := []any{}
	if filter.NameQuery != "" {
		where = `WHERE first_name || ' ' || last_name ILIKE $1`
		args = append(args, "%"+filter.NameQuery+"%")
	}

	var total int
	if err := r.uow.queryRow(ctx, `SELECT COUNT(*) FROM customers `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	query := `
		SELECT id, first_name, last_name, address, postal_code, created_at, updated_at
		FROM customers ` + where + `
		ORDER BY created_at, id
	` + pageClause(filter.Page, &args)

	rows, err := r.uow.query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Address, &c.PostalCode, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate customer rows: %w", err)
	}

	return customers, total, nil
}

// pageClause добавляет LIMIT/OFFSET в конец запроса, дописывая аргументы.
func pageClause(page domain.ListPage, args *[]any) string {
	clause := ""
	if page.Limit > 0 {
		*args = append(*args, page.Limit)
		clause += fmt.Sprintf(" LIMIT $%d", len(*args))
	}
	if page.Offset > 0 {
		*args = append(*args, page.Offset)
		clause += fmt.Sprintf(" OFFSET $%d", len(*args))
	}
	return clause
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
