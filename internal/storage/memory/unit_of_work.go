package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
)

// mutation — одна отложенная запись. Применяется к копии состояния под
// блокировкой хранилища и возвращает число затронутых записей.
type mutation func(st *storeState) (int, error)

// unitOfWork накапливает мутации и применяет их одним батчем.
// Чтения идут по закоммиченному состоянию: обработчики заказов читают
// всё необходимое до первой записи, отложенные мутации им не видны.
type unitOfWork struct {
	store *Store

	mu   sync.Mutex
	ops  []mutation
	done bool
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

// stage добавляет мутацию в батч.
func (u *unitOfWork) stage(op mutation) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.done {
		return domain.ErrUnitOfWorkDone
	}
	u.ops = append(u.ops, op)
	return nil
}

// Commit применяет батч целиком. Мутации выполняются над копией состояния;
// при любой ошибке копия отбрасывается и видимых изменений не остаётся.
func (u *unitOfWork) Commit(ctx context.Context) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.done {
		return 0, domain.ErrUnitOfWorkDone
	}
	u.done = true

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrCommitFailed, err)
	}

	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	next := u.store.state.clone()
	affected := 0
	for _, op := range u.ops {
		n, err := op(&next)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrCommitFailed, err)
		}
		affected += n
	}

	u.store.state = next
	return affected, nil
}

// Rollback отбрасывает батч. Безопасен после Commit.
func (u *unitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.ops = nil
	u.done = true
	return nil
}

// read выполняет чтение по закоммиченному состоянию.
func (u *unitOfWork) read(fn func(st *storeState) error) error {
	u.mu.Lock()
	done := u.done
	u.mu.Unlock()
	if done {
		return domain.ErrUnitOfWorkDone
	}

	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	return fn(&u.store.state)
}

var _ domain.UnitOfWork = (*unitOfWork)(nil)
