package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора клиента в заказе.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrQuantityInvalid = errors.New("item quantity must be greater than zero")
	// Ошибка отрицательной итоговой суммы заказа.
	ErrTotalNegative = errors.New("order total_price must be non-negative")
	// Ошибка несоответствия итога заказа сумме позиций.
	ErrTotalMismatch = errors.New("order total_price does not match items sum")
	// Ошибка дублирующегося товара в позициях заказа.
	ErrDuplicateProduct = errors.New("order has more than one line item for the same product")
	// Ошибка отсутствующего имени товара.
	ErrProductNameRequired = errors.New("product name is required")
	// Ошибка отсутствующего имени или фамилии клиента.
	ErrCustomerNameRequired = errors.New("customer first_name and last_name are required")
	// Ошибка отрицательной цены товара.
	ErrProductPriceInvalid = errors.New("product price must be non-negative")

	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrProductNotFound возвращается, если товар из позиции заказа отсутствует в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrCustomerNotFound возвращается, если клиент не найден в хранилище.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrLineItemNotFound возвращается при попытке изменить несуществующую позицию.
	ErrLineItemNotFound = errors.New("line item not found")

	// ErrCommitFailed сигнализирует, что атомарный commit не применился.
	// Операцию можно повторить целиком; частичных изменений не остаётся.
	ErrCommitFailed = errors.New("commit failed")
	// ErrAlreadyExists возвращается при вставке записи с занятым идентификатором.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrUnitOfWorkDone возвращается при обращении к уже завершённому unit of work.
	ErrUnitOfWorkDone = errors.New("unit of work is already finished")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsNotFound проверяет, относится ли ошибка к классу "запись не найдена".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrLineItemNotFound)
}
