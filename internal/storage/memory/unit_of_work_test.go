package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
)

func mustBegin(t *testing.T, store *Store) domain.UnitOfWork {
	t.Helper()
	uow, err := store.Begin(context.Background())
	require.NoError(t, err)
	return uow
}

func seedProduct(t *testing.T, store *Store, name, priceStr string) domain.Product {
	t.Helper()
	price, err := decimal.NewFromString(priceStr)
	require.NoError(t, err)

	uow := mustBegin(t, store)
	now := time.Now().UTC()
	product := domain.Product{Name: name, Price: price, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, uow.Products().Add(context.Background(), &product))
	_, err = uow.Commit(context.Background())
	require.NoError(t, err)
	return product
}

func TestUnitOfWork_StagedWritesInvisibleUntilCommit(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	uow := mustBegin(t, store)
	order := domain.Order{CustomerID: "c1", OrderDate: time.Now().UTC(), TotalPrice: decimal.Zero}
	require.NoError(t, uow.Orders().Add(ctx, &order))
	require.NotEmpty(t, order.ID)

	// До commit другой unit of work ничего не видит.
	other := mustBegin(t, store)
	_, err := other.Orders().Get(ctx, order.ID)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
	require.NoError(t, other.Rollback())

	affected, err := uow.Commit(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, affected)

	reader := mustBegin(t, store)
	got, err := reader.Orders().Get(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, "c1", got.CustomerID)
	require.NoError(t, reader.Rollback())
}

func TestUnitOfWork_CommitAllOrNothing(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	uow := mustBegin(t, store)
	order := domain.Order{CustomerID: "c1", OrderDate: time.Now().UTC(), TotalPrice: decimal.Zero}
	require.NoError(t, uow.Orders().Add(ctx, &order))
	item := domain.LineItem{OrderID: order.ID, ProductID: "p1", Quantity: 2, CreatedAt: time.Now().UTC()}
	require.NoError(t, uow.LineItems().Add(ctx, &item))
	// Заведомо сломанная мутация в том же батче: обновление несуществующей позиции.
	require.NoError(t, uow.LineItems().Update(ctx, domain.LineItem{ID: "ghost"}))

	_, err := uow.Commit(ctx)
	require.ErrorIs(t, err, domain.ErrCommitFailed)

	// Ни заказ, ни позиция не видны: батч откатился целиком.
	reader := mustBegin(t, store)
	_, err = reader.Orders().Get(ctx, order.ID)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
	require.NoError(t, reader.Rollback())
}

func TestUnitOfWork_AffectedCount(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	uow := mustBegin(t, store)
	order := domain.Order{CustomerID: "c1", OrderDate: time.Now().UTC(), TotalPrice: decimal.Zero}
	require.NoError(t, uow.Orders().Add(ctx, &order))
	for _, pid := range []string{"p1", "p2", "p3"} {
		item := domain.LineItem{OrderID: order.ID, ProductID: pid, Quantity: 1, CreatedAt: time.Now().UTC()}
		require.NoError(t, uow.LineItems().Add(ctx, &item))
	}

	affected, err := uow.Commit(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, affected)
}

func TestUnitOfWork_DoneAfterFinish(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	uow := mustBegin(t, store)
	_, err := uow.Commit(ctx)
	require.NoError(t, err)

	_, err = uow.Commit(ctx)
	require.ErrorIs(t, err, domain.ErrUnitOfWorkDone)

	order := domain.Order{CustomerID: "c1"}
	err = uow.Orders().Add(ctx, &order)
	require.ErrorIs(t, err, domain.ErrUnitOfWorkDone)

	// Rollback после Commit — no-op без ошибки.
	require.NoError(t, uow.Rollback())
}

func TestUnitOfWork_CanceledContextFailsCommit(t *testing.T) {
	store := NewStore()

	uow := mustBegin(t, store)
	order := domain.Order{CustomerID: "c1", OrderDate: time.Now().UTC(), TotalPrice: decimal.Zero}
	require.NoError(t, uow.Orders().Add(context.Background(), &order))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := uow.Commit(ctx)
	require.ErrorIs(t, err, domain.ErrCommitFailed)

	reader := mustBegin(t, store)
	_, err = reader.Orders().Get(context.Background(), order.ID)
	require.True(t, errors.Is(err, domain.ErrOrderNotFound))
	require.NoError(t, reader.Rollback())
}

func TestProductRepository_ListFilterAndPaging(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	seedProduct(t, store, "red apple", "1.00")
	seedProduct(t, store, "green apple", "1.20")
	seedProduct(t, store, "banana", "0.80")

	uow := mustBegin(t, store)
	defer func() { _ = uow.Rollback() }()

	products, total, err := uow.Products().List(ctx, domain.ProductFilter{NameQuery: "apple"})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, products, 2)

	page, total, err := uow.Products().List(ctx, domain.ProductFilter{
		NameQuery: "apple",
		Page:      domain.ListPage{Offset: 1, Limit: 5},
	})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, page, 1)
}

func TestOrderRepository_GetAssemblesItems(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	uow := mustBegin(t, store)
	now := time.Now().UTC()
	order := domain.Order{CustomerID: "c1", OrderDate: now, TotalPrice: decimal.Zero}
	require.NoError(t, uow.Orders().Add(ctx, &order))
	first := domain.LineItem{OrderID: order.ID, ProductID: "p1", Quantity: 2, CreatedAt: now}
	second := domain.LineItem{OrderID: order.ID, ProductID: "p2", Quantity: 3, CreatedAt: now.Add(time.Second)}
	require.NoError(t, uow.LineItems().Add(ctx, &first))
	require.NoError(t, uow.LineItems().Add(ctx, &second))
	_, err := uow.Commit(ctx)
	require.NoError(t, err)

	reader := mustBegin(t, store)
	defer func() { _ = reader.Rollback() }()

	got, err := reader.Orders().Get(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	require.Equal(t, "p1", got.Items[0].ProductID)
	require.Equal(t, "p2", got.Items[1].ProductID)
}

func TestOrderRepository_ListByCustomerSortedByDate(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	uow := mustBegin(t, store)
	late := domain.Order{CustomerID: "c1", OrderDate: base.AddDate(0, 0, 5), TotalPrice: decimal.Zero}
	early := domain.Order{CustomerID: "c1", OrderDate: base, TotalPrice: decimal.Zero}
	foreign := domain.Order{CustomerID: "c2", OrderDate: base, TotalPrice: decimal.Zero}
	require.NoError(t, uow.Orders().Add(ctx, &late))
	require.NoError(t, uow.Orders().Add(ctx, &early))
	require.NoError(t, uow.Orders().Add(ctx, &foreign))
	_, err := uow.Commit(ctx)
	require.NoError(t, err)

	reader := mustBegin(t, store)
	defer func() { _ = reader.Rollback() }()

	orders, total, err := reader.Orders().List(ctx, domain.OrderFilter{CustomerID: "c1"})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Equal(t, early.ID, orders[0].ID)
	require.Equal(t, late.ID, orders[1].ID)
}
