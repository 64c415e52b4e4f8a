package domain

import "context"

// ListPage задаёт пагинацию для выборок списков.
type ListPage struct {
	// Offset — сколько записей пропустить.
	Offset int
	// Limit — максимум записей в ответе; <=0 означает "без ограничения".
	Limit int
}

// CustomerFilter — фильтр листинга клиентов (substring по имени/фамилии).
type CustomerFilter struct {
	NameQuery string
	Page      ListPage
}

// ProductFilter — фильтр листинга товаров (substring по названию).
type ProductFilter struct {
	NameQuery string
	Page      ListPage
}

// OrderFilter — фильтр листинга заказов. При заданном CustomerID выборка
// сортируется по дате заказа (как в списке заказов клиента).
type OrderFilter struct {
	CustomerID string
	Page       ListPage
}

// CustomerRepository описывает требования к хранилищу клиентов.
type CustomerRepository interface {
	// Get возвращает клиента или ErrCustomerNotFound.
	Get(ctx context.Context, id string) (Customer, error)
	// Add сохраняет нового клиента; пустому ID присваивается идентификатор.
	Add(ctx context.Context, customer *Customer) error
	// Update перезаписывает клиента по идентификатору.
	Update(ctx context.Context, customer Customer) error
	// Delete удаляет клиента по идентификатору.
	Delete(ctx context.Context, id string) error
	// List возвращает страницу клиентов и общее число подходящих записей.
	List(ctx context.Context, filter CustomerFilter) ([]Customer, int, error)
}

// ProductRepository описывает требования к хранилищу товаров.
type ProductRepository interface {
	Get(ctx context.Context, id string) (Product, error)
	Add(ctx context.Context, product *Product) error
	Update(ctx context.Context, product Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ProductFilter) ([]Product, int, error)
}

// OrderRepository описывает требования к хранилищу заголовков заказов.
// Позиции сохраняются отдельно через LineItemRepository того же unit of work.
type OrderRepository interface {
	// Get возвращает заказ вместе с позициями или ErrOrderNotFound.
	Get(ctx context.Context, id string) (Order, error)
	Add(ctx context.Context, order *Order) error
	Update(ctx context.Context, order Order) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter OrderFilter) ([]Order, int, error)
}

// LineItemRepository управляет позициями заказов внутри unit of work.
type LineItemRepository interface {
	Add(ctx context.Context, item *LineItem) error
	Update(ctx context.Context, item LineItem) error
	Delete(ctx context.Context, id string) error
}

// OutboxEnqueuer ставит событие в transactional outbox в рамках того же
// unit of work, что и мутация данных.
type OutboxEnqueuer interface {
	Enqueue(ctx context.Context, msg OutboxMessage) error
}

// UnitOfWork — граница атомарности. Все мутации, выполненные через его
// репозитории, применяются одним Commit целиком либо не применяются вовсе.
// Экземпляр одноразовый: после Commit или Rollback обращения к нему
// возвращают ErrUnitOfWorkDone.
type UnitOfWork interface {
	Customers() CustomerRepository
	Products() ProductRepository
	Orders() OrderRepository
	LineItems() LineItemRepository
	Outbox() OutboxEnqueuer

	// Commit применяет накопленный батч и возвращает число затронутых записей.
	// При сбое возвращает ошибку, оборачивающую ErrCommitFailed; видимых
	// частичных изменений при этом не остаётся.
	Commit(ctx context.Context) (int, error)
	// Rollback отбрасывает накопленный батч. Идемпотентен; после Commit — no-op.
	Rollback() error
}

// UnitOfWorkFactory открывает новые unit of work.
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}
