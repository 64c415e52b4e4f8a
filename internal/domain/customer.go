package domain

import "time"

// Customer представляет клиента. Заказы ссылаются на клиента по идентификатору;
// каскадных эффектов при изменении клиента нет.
type Customer struct {
	ID         string
	FirstName  string
	LastName   string
	Address    string
	PostalCode string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
