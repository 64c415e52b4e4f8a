package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
)

// productRepository — in-memory реализация ProductRepository внутри unit of work.
type productRepository struct {
	uow *unitOfWork
}

func (r *productRepository) Get(_ context.Context, id string) (domain.Product, error) {
	var product domain.Product
	err := r.uow.read(func(st *storeState) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		product = p
		return nil
	})
	return product, err
}

// GetProduct реализует каталожный lookup для согласования заказов.
func (r *productRepository) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return r.Get(ctx, id)
}

func (r *productRepository) Add(_ context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	p := *product
	return r.uow.stage(func(st *storeState) (int, error) {
		if _, exists := st.products[p.ID]; exists {
			return 0, fmt.Errorf("product %s: %w", p.ID, domain.ErrAlreadyExists)
		}
		st.products[p.ID] = p
		return 1, nil
	})
}

func (r *productRepository) Update(_ context.Context, product domain.Product) error {
	return r.uow.stage(func(st *storeState) (int, error) {
		if _, ok := st.products[product.ID]; !ok {
			return 0, domain.ErrProductNotFound
		}
		st.products[product.ID] = product
		return 1, nil
	})
}

func (r *productRepository) Delete(_ context.Context, id string) error {
	return r.uow.stage(func(st *storeState) (int, error) {
		if _, ok := st.products[id]; !ok {
			return 0, domain.ErrProductNotFound
		}
		delete(st.products, id)
		return 1, nil
	})
}

func (r *productRepository) List(_ context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	var result []domain.Product
	total := 0

	err := r.uow.read(func(st *storeState) error {
		matched := make([]domain.Product, 0, len(st.products))
		query := strings.ToLower(filter.NameQuery)
		for _, p := range st.products {
			if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
				continue
			}
			matched = append(matched, p)
		}

		sort.Slice(matched, func(i, j int) bool {
			if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
				return matched[i].CreatedAt.Before(matched[j].CreatedAt)
			}
			return matched[i].ID < matched[j].ID
		})

		total = len(matched)
		result = applyPage(matched, filter.Page)
		return nil
	})

	return result, total, err
}

var _ domain.ProductRepository = (*productRepository)(nil)
var _ domain.ProductCatalog = (*productRepository)(nil)
