package product_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
	"github.com/vladislavdragonenkov/customer-orders/internal/service/product"
	"github.com/vladislavdragonenkov/customer-orders/internal/storage/memory"
)

func newTestService(t *testing.T) *product.Service {
	t.Helper()
	logger := log.New()
	logger.SetLevel(log.WarnLevel)
	return product.NewService(memory.NewStore(), logger.WithField("component", "product-service-test"))
}

func TestProductCRUD(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, product.CreateProductInput{
		Name:  "widget",
		Price: decimal.RequireFromString("10.00"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "widget", got.Name)
	require.True(t, got.Price.Equal(decimal.RequireFromString("10.00")))

	updated, err := svc.Update(ctx, created.ID, product.UpdateProductInput{
		Name:  "widget v2",
		Price: decimal.RequireFromString("12.50"),
	})
	require.NoError(t, err)
	require.True(t, updated.Price.Equal(decimal.RequireFromString("12.50")))

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, product.CreateProductInput{Price: decimal.RequireFromString("1.00")})
	require.ErrorIs(t, err, domain.ErrProductNameRequired)

	_, err = svc.Create(ctx, product.CreateProductInput{
		Name:  "widget",
		Price: decimal.RequireFromString("-0.01"),
	})
	require.ErrorIs(t, err, domain.ErrProductPriceInvalid)

	created, err := svc.Create(ctx, product.CreateProductInput{
		Name:  "widget",
		Price: decimal.RequireFromString("1.00"),
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, product.UpdateProductInput{Name: "", Price: decimal.Zero})
	require.ErrorIs(t, err, domain.ErrProductNameRequired)
}

func TestProductNotFound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, "ghost", product.UpdateProductInput{Name: "x", Price: decimal.Zero})
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	require.ErrorIs(t, svc.Delete(ctx, "ghost"), domain.ErrProductNotFound)
}

func TestProductListFilterAndPaging(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"bolt m4", "bolt m6", "nut m6"} {
		_, err := svc.Create(ctx, product.CreateProductInput{Name: name, Price: decimal.RequireFromString("0.10")})
		require.NoError(t, err)
	}

	bolts, total, err := svc.List(ctx, domain.ProductFilter{NameQuery: "bolt"})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, bolts, 2)

	page, total, err := svc.List(ctx, domain.ProductFilter{Page: domain.ListPage{Offset: 2, Limit: 2}})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, page, 1)
}
