package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Product — товар каталога. Операции над заказами читают товар
// (для цены), но никогда не изменяют его.
type Product struct {
	ID   string
	Name string
	// Price — цена за единицу в fixed-point представлении, без
	// накопления ошибок плавающей точки.
	Price     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateInvariants проверяет базовые инварианты товара.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.Price.IsNegative() {
		errs = append(errs, ErrProductPriceInvalid)
	}

	return errs
}

// ProductCatalog — read-only доступ к каталогу для прайсинга позиций заказа.
// Возвращает ErrProductNotFound, если товара нет.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id string) (Product, error)
}

type repositoryCatalog struct {
	repo ProductRepository
}

func (c repositoryCatalog) GetProduct(ctx context.Context, id string) (Product, error) {
	return c.repo.Get(ctx, id)
}

// CatalogFromRepository адаптирует репозиторий товаров под каталожный lookup,
// чтобы согласование читало цены в том же unit of work, что и мутация.
func CatalogFromRepository(repo ProductRepository) ProductCatalog {
	return repositoryCatalog{repo: repo}
}
