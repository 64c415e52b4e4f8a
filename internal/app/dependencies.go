package app

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/customer-orders/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/customer-orders/internal/health"
	"github.com/vladislavdragonenkov/customer-orders/internal/storage/memory"
	"github.com/vladislavdragonenkov/customer-orders/internal/storage/postgres"
)

// storageDeps — выбранное хранилище и его служебные поверхности.
type storageDeps struct {
	factory domain.UnitOfWorkFactory
	outbox  domain.OutboxRepository
	checker healthcheck.Checker
	close   func() error
}

// buildStorage выбирает бекенд: postgres при заданном DSN, иначе in-memory.
// Для postgres схема приводится к актуальной миграциями до старта серверов.
func buildStorage(ctx context.Context, cfg Config, logger *log.Entry) (*storageDeps, error) {
	if cfg.PostgresDSN == "" {
		logger.Info("DSN не задан, используется in-memory хранилище")
		store := memory.NewStore()
		return &storageDeps{
			factory: store,
			outbox:  store,
			checker: healthcheck.NewSimpleChecker("storage", func() error { return nil }),
			close:   func() error { return nil },
		}, nil
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}
	logger.Info("postgres хранилище готово, миграции применены")
	return &storageDeps{
		factory: store,
		outbox:  store,
		checker: healthcheck.NewPingChecker("storage", 2*time.Second, store.Ping),
		close:   store.Close,
	}, nil
}
