package kafka

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType определяет тип события заказа.
type EventType string

const (
	EventTypeOrderCreated EventType = "order.created"
	EventTypeOrderUpdated EventType = "order.updated"
	EventTypeOrderDeleted EventType = "order.deleted"
)

// Topics для Kafka
const (
	TopicOrderEvents     = "orders.order.events"
	TopicDeadLetterQueue = "orders.dlq" // Dead Letter Queue для failed messages
)

// AggregateTypeOrder — значение aggregate_type для событий заказов в outbox.
const AggregateTypeOrder = "order"

// OrderEvent представляет событие жизненного цикла заказа.
type OrderEvent struct {
	EventType  EventType       `json:"event_type"`
	OrderID    string          `json:"order_id"`
	CustomerID string          `json:"customer_id"`
	OrderDate  time.Time       `json:"order_date"`
	TotalPrice decimal.Decimal `json:"total_price"`
	ItemCount  int             `json:"item_count"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewOrderEvent создает новое событие заказа.
func NewOrderEvent(eventType EventType, orderID, customerID string, orderDate time.Time, total decimal.Decimal, itemCount int) *OrderEvent {
	return &OrderEvent{
		EventType:  eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		OrderDate:  orderDate,
		TotalPrice: total,
		ItemCount:  itemCount,
		Timestamp:  time.Now().UTC(),
	}
}
