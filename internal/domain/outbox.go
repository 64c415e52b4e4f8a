package domain

import "time"

// OutboxMessage хранит данные публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// OutboxRepository — сторона outbox, видимая воркеру публикации.
// Enqueue выполняется внутри unit of work (см. OutboxEnqueuer), остальные
// методы воркер вызывает вне транзакций.
type OutboxRepository interface {
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxPublisher публикует события из transactional outbox.
// Реализация должна быть идемпотентной.
type OutboxPublisher interface {
	Publish(event OutboxMessage) error
}
