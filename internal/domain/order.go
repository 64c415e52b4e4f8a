package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem представляет одну позицию заказа. Позиции живут только внутри
// заказа: создаются, меняются и удаляются операциями create/update/delete
// самого заказа и каскадно удаляются вместе с ним.
type LineItem struct {
	// ID позиции нужен для однозначной идентификации; при обновлении
	// количества существующей позиции её ID сохраняется.
	ID string
	// OrderID — заказ-владелец.
	OrderID string
	// ProductID — ссылка на товар каталога; ключ согласования позиций.
	ProductID string
	// Quantity — количество единиц товара, строго положительное.
	Quantity int32
	// CreatedAt фиксирует момент добавления позиции в заказ.
	CreatedAt time.Time
}

// Order агрегирует заголовок заказа и его позиции. Заказ вместе с позициями —
// одна граница консистентности: все изменения применяются одним commit.
type Order struct {
	ID         string
	CustomerID string
	OrderDate  time.Time
	// TotalPrice — производная величина: Σ(quantity × цена товара на момент
	// согласования). Никогда не принимается от вызывающей стороны.
	TotalPrice decimal.Decimal
	Items      []LineItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidateInvariants проверяет инварианты агрегата и возвращает список замечаний.
// Сумма сверяется по ценам, зафиксированным в prices (product_id → цена за единицу).
func (o *Order) ValidateInvariants(prices map[string]decimal.Decimal) []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if o.TotalPrice.IsNegative() {
		errs = append(errs, ErrTotalNegative)
	}

	seen := make(map[string]struct{}, len(o.Items))
	calc := decimal.Zero
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrQuantityInvalid)
		}
		if _, dup := seen[item.ProductID]; dup {
			errs = append(errs, ErrDuplicateProduct)
		}
		seen[item.ProductID] = struct{}{}

		price, ok := prices[item.ProductID]
		if !ok {
			errs = append(errs, ErrProductNotFound)
			continue
		}
		calc = calc.Add(price.Mul(decimal.NewFromInt32(item.Quantity)))
	}
	if !calc.Equal(o.TotalPrice) {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}

// ItemByProduct возвращает позицию по product_id.
func (o *Order) ItemByProduct(productID string) (LineItem, bool) {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return LineItem{}, false
}
