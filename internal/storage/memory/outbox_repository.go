package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
)

// outboxEnqueuer ставит событие в outbox в рамках батча unit of work.
type outboxEnqueuer struct {
	uow *unitOfWork
}

func (e *outboxEnqueuer) Enqueue(_ context.Context, msg domain.OutboxMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	return e.uow.stage(func(st *storeState) (int, error) {
		now := time.Now().UTC()
		st.outbox[msg.ID] = outboxRecord{
			msg:       msg,
			status:    "pending",
			createdAt: now,
			updatedAt: now,
		}
		return 1, nil
	})
}

var _ domain.OutboxEnqueuer = (*outboxEnqueuer)(nil)

// PullPending возвращает до limit сообщений со статусом `pending`,
// старые первыми.
func (s *Store) PullPending(limit int) ([]domain.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	pending := make([]outboxRecord, 0, limit)
	for _, rec := range s.state.outbox {
		if rec.status == "pending" {
			pending = append(pending, rec)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].createdAt.Equal(pending[j].createdAt) {
			return pending[i].createdAt.Before(pending[j].createdAt)
		}
		return pending[i].msg.ID < pending[j].msg.ID
	})

	if len(pending) > limit {
		pending = pending[:limit]
	}
	result := make([]domain.OutboxMessage, 0, len(pending))
	for _, rec := range pending {
		result = append(result, rec.msg)
	}
	return result, nil
}

// Stats возвращает размер backlog и возраст самого старого pending-сообщения.
func (s *Store) Stats() (domain.OutboxStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.OutboxStats{}
	for _, rec := range s.state.outbox {
		if rec.status != "pending" {
			continue
		}
		stats.PendingCount++
		if stats.OldestPendingAt.IsZero() || rec.createdAt.Before(stats.OldestPendingAt) {
			stats.OldestPendingAt = rec.createdAt
		}
	}
	return stats, nil
}

// MarkSent обновляет статус события после успешной публикации.
func (s *Store) MarkSent(id string) error {
	return s.markOutbox(id, "sent")
}

// MarkFailed фиксирует ошибку публикации.
func (s *Store) MarkFailed(id string) error {
	return s.markOutbox(id, "failed")
}

func (s *Store) markOutbox(id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.state.outbox[id]
	if !ok {
		return domain.ErrOutboxPublish
	}
	rec.status = status
	rec.attemptCnt++
	rec.updatedAt = time.Now().UTC()
	s.state.outbox[id] = rec
	return nil
}

var _ domain.OutboxRepository = (*Store)(nil)
