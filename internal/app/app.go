package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/customer-orders/internal/health"
	"github.com/vladislavdragonenkov/customer-orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/customer-orders/internal/service/customer"
	apihttp "github.com/vladislavdragonenkov/customer-orders/internal/service/http"
	"github.com/vladislavdragonenkov/customer-orders/internal/service/order"
	"github.com/vladislavdragonenkov/customer-orders/internal/service/outbox"
	"github.com/vladislavdragonenkov/customer-orders/internal/service/product"
	"github.com/vladislavdragonenkov/customer-orders/internal/version"
)

// Run поднимает сервис заказов: хранилище, REST API, служебный сервер
// и, при настроенной Kafka, фоновую публикацию outbox. Блокируется до
// отмены ctx или фатальной ошибки HTTP-сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	storage, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.close(); err != nil {
			logger.WithError(err).Warn("storage close with error")
		}
	}()

	orderSvc := order.NewService(storage.factory, log.WithField("component", "order-service"))
	customerSvc := customer.NewService(storage.factory, log.WithField("component", "customer-service"))
	productSvc := product.NewService(storage.factory, log.WithField("component", "product-service"))

	healthHandler := healthcheck.NewHandler(version.String())
	healthHandler.RegisterChecker("storage", storage.checker)

	// Инициализация Kafka producer (опционально)
	var kafkaProducer *kafka.Producer
	var workerWG sync.WaitGroup
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			kafkaProducer = producer
			logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")

			worker := outbox.NewWorker(
				storage.outbox,
				kafka.NewOutboxPublisher(producer, kafka.TopicOrderEvents),
				outbox.WithLogger(log.WithField("component", "outbox-worker")),
				outbox.WithDLQPublisher(kafka.NewOutboxPublisher(producer, kafka.TopicDeadLetterQueue)),
			)
			workerWG.Add(1)
			go func() {
				defer workerWG.Done()
				worker.Run(workerCtx)
			}()
		}
	}

	router := apihttp.NewRouter(apihttp.Handlers{
		Orders:    apihttp.NewOrderHandler(orderSvc),
		Customers: apihttp.NewCustomerHandler(customerSvc),
		Products:  apihttp.NewProductHandler(productSvc),
		Health:    healthHandler,
	}, log.WithField("component", "http"))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)
	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("REST API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	shutdown := func() {
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)

		// Останавливаем публикацию outbox и закрываем producer
		stopWorker()
		workerWG.Wait()
		if kafkaProducer != nil {
			if err := kafkaProducer.Close(); err != nil {
				logger.WithError(err).Warn("failed to close kafka producer")
			} else {
				logger.Info("kafka producer closed")
			}
		}
	}

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем серверы")
		shutdown()
		return ctx.Err()
	case err := <-errCh:
		shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает служебный HTTP-сервер: /metrics для
// Prometheus плюс health-эндпоинты.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
