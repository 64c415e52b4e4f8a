package domain

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// ItemSpec описывает желаемую позицию заказа: товар и количество.
type ItemSpec struct {
	ProductID string
	Quantity  int32
}

// ItemDiff — результат согласования текущих позиций с желаемым набором.
// Применение diff — ответственность вызывающей стороны; сам diff сторону
// хранения не трогает.
type ItemDiff struct {
	// Removals — текущие позиции, товара которых нет в желаемом наборе.
	Removals []LineItem
	// Updates — существующие позиции с новым количеством; ID сохраняются.
	Updates []LineItem
	// Creates — новые позиции без ID; идентификатор присваивает хранилище.
	Creates []LineItem
	// Total — пересчитанный итог желаемого состояния.
	Total decimal.Decimal
}

// CollapseItemSpecs схлопывает дубли product_id: побеждает последнее
// указанное количество. Порядок первого вхождения сохраняется.
func CollapseItemSpecs(specs []ItemSpec) []ItemSpec {
	index := make(map[string]int, len(specs))
	collapsed := make([]ItemSpec, 0, len(specs))

	for _, spec := range specs {
		if pos, ok := index[spec.ProductID]; ok {
			collapsed[pos].Quantity = spec.Quantity
			continue
		}
		index[spec.ProductID] = len(collapsed)
		collapsed = append(collapsed, spec)
	}

	return collapsed
}

// ReconcileItems строит diff между текущими позициями заказа и желаемым
// набором. Ключ сопоставления — product_id. Цена каждого желаемого товара
// запрашивается у каталога заново, в том числе для позиций, у которых
// меняется только количество: цена могла измениться с момента создания.
// Любой отсутствующий товар — ErrProductNotFound, до каких-либо мутаций.
func ReconcileItems(ctx context.Context, catalog ProductCatalog, orderID string, current []LineItem, desired []ItemSpec) (ItemDiff, error) {
	desired = CollapseItemSpecs(desired)

	for _, spec := range desired {
		if spec.Quantity <= 0 {
			return ItemDiff{}, fmt.Errorf("product %s: %w", spec.ProductID, ErrQuantityInvalid)
		}
	}

	// Фаза чтения: цены всех желаемых товаров до построения diff.
	prices := make(map[string]decimal.Decimal, len(desired))
	for _, spec := range desired {
		product, err := catalog.GetProduct(ctx, spec.ProductID)
		if err != nil {
			return ItemDiff{}, fmt.Errorf("price product %s: %w", spec.ProductID, err)
		}
		prices[product.ID] = product.Price
	}

	wanted := make(map[string]struct{}, len(desired))
	for _, spec := range desired {
		wanted[spec.ProductID] = struct{}{}
	}

	diff := ItemDiff{Total: decimal.Zero}

	for _, item := range current {
		if _, ok := wanted[item.ProductID]; !ok {
			diff.Removals = append(diff.Removals, item)
		}
	}

	for _, spec := range desired {
		if existing, ok := findItem(current, spec.ProductID); ok {
			existing.Quantity = spec.Quantity
			diff.Updates = append(diff.Updates, existing)
		} else {
			diff.Creates = append(diff.Creates, LineItem{
				OrderID:   orderID,
				ProductID: spec.ProductID,
				Quantity:  spec.Quantity,
			})
		}
		diff.Total = diff.Total.Add(prices[spec.ProductID].Mul(decimal.NewFromInt32(spec.Quantity)))
	}

	return diff, nil
}

func findItem(items []LineItem, productID string) (LineItem, bool) {
	for _, item := range items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return LineItem{}, false
}
