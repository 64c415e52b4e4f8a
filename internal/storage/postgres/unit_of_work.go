package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
)

const opTimeout = 5 * time.Second

// unitOfWork держит открытую транзакцию БД. Все репозитории выполняют
// запросы через неё, поэтому записи невидимы снаружи до Commit, а
// откат транзакции отменяет батч целиком.
type unitOfWork struct {
	tx *sql.Tx

	mu       sync.Mutex
	affected int
	done     bool
}

// Begin открывает транзакцию и unit of work поверх неё.
func (s *Store) Begin(ctx context.Context) (domain.UnitOfWork, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("postgres store is not initialized")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &unitOfWork{tx: tx}, nil
}

func (u *unitOfWork) Customers() domain.CustomerRepository {
	return &customerRepository{uow: u}
}

func (u *unitOfWork) Products() domain.ProductRepository {
	return &productRepository{uow: u}
}

func (u *unitOfWork) Orders() domain.OrderRepository {
	return &orderRepository{uow: u}
}

func (u *unitOfWork) LineItems() domain.LineItemRepository {
	return &lineItemRepository{uow: u}
}

func (u *unitOfWork) Outbox() domain.OutboxEnqueuer {
	return &outboxEnqueuer{uow: u}
}

// Commit завершает транзакцию. Любой сбой коммита оборачивается в
// ErrCommitFailed: PostgreSQL к этому моменту уже откатил транзакцию,
// частичных изменений не остаётся.
func (u *unitOfWork) Commit(ctx context.Context) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.done {
		return 0, domain.ErrUnitOfWorkDone
	}
	u.done = true

	if err := ctx.Err(); err != nil {
		_ = u.tx.Rollback()
		return 0, fmt.Errorf("%w: %v", domain.ErrCommitFailed, err)
	}
	if err := u.tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrCommitFailed, err)
	}
	return u.affected, nil
}

// Rollback откатывает транзакцию. Идемпотентен; после Commit — no-op.
func (u *unitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.done {
		return nil
	}
	u.done = true
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback tx: %w", err)
	}
	return nil
}

// exec выполняет мутацию в транзакции и накапливает счётчик затронутых строк.
func (u *unitOfWork) exec(ctx context.Context, query string, args ...any) (int64, error) {
	u.mu.Lock()
	if u.done {
		u.mu.Unlock()
		return 0, domain.ErrUnitOfWorkDone
	}
	u.mu.Unlock()

	execCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := u.tx.ExecContext(execCtx, query, args...)
	if err != nil {
		return 0, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	u.mu.Lock()
	u.affected += int(rows)
	u.mu.Unlock()
	return rows, nil
}

func (u *unitOfWork) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return u.tx.QueryRowContext(ctx, query, args...)
}

func (u *unitOfWork) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return u.tx.QueryContext(ctx, query, args...)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.UnitOfWork = (*unitOfWork)(nil)
