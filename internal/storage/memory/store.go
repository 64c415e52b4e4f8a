package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
)

// outboxRecord хранит сообщение и служебные поля публикации.
type outboxRecord struct {
	msg        domain.OutboxMessage
	status     string
	attemptCnt int
	createdAt  time.Time
	updatedAt  time.Time
}

// storeState — всё закоммиченное состояние хранилища. Заказы хранятся
// заголовками, позиции — отдельной таблицей, как в реляционной схеме.
type storeState struct {
	customers map[string]domain.Customer
	products  map[string]domain.Product
	orders    map[string]domain.Order
	items     map[string]domain.LineItem
	outbox    map[string]outboxRecord
}

func newStoreState() storeState {
	return storeState{
		customers: make(map[string]domain.Customer),
		products:  make(map[string]domain.Product),
		orders:    make(map[string]domain.Order),
		items:     make(map[string]domain.LineItem),
		outbox:    make(map[string]outboxRecord),
	}
}

// clone возвращает глубокую копию состояния. Commit применяет батч к копии
// и подменяет состояние целиком, поэтому неудачный батч не оставляет следов.
func (st storeState) clone() storeState {
	next := storeState{
		customers: make(map[string]domain.Customer, len(st.customers)),
		products:  make(map[string]domain.Product, len(st.products)),
		orders:    make(map[string]domain.Order, len(st.orders)),
		items:     make(map[string]domain.LineItem, len(st.items)),
		outbox:    make(map[string]outboxRecord, len(st.outbox)),
	}
	for id, c := range st.customers {
		next.customers[id] = c
	}
	for id, p := range st.products {
		next.products[id] = p
	}
	for id, o := range st.orders {
		next.orders[id] = o
	}
	for id, it := range st.items {
		next.items[id] = it
	}
	for id, rec := range st.outbox {
		next.outbox[id] = rec
	}
	return next
}

// Store — in-memory хранилище для локальной разработки и тестов.
// Повторяет контракт PostgreSQL-реализации, включая атомарность commit.
type Store struct {
	mu    sync.RWMutex
	state storeState
}

// NewStore создаёт пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{state: newStoreState()}
}

// Begin открывает unit of work поверх текущего состояния.
func (s *Store) Begin(_ context.Context) (domain.UnitOfWork, error) {
	return &unitOfWork{store: s}, nil
}

var _ domain.UnitOfWorkFactory = (*Store)(nil)
