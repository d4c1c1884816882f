package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/gateway"
	healthcheck "github.com/vladislavdragonenkov/checkout/internal/health"
	"github.com/vladislavdragonenkov/checkout/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/checkout/internal/metrics"
	"github.com/vladislavdragonenkov/checkout/internal/service/checkout"
	"github.com/vladislavdragonenkov/checkout/internal/service/idempotency"
	"github.com/vladislavdragonenkov/checkout/internal/service/mail"
	"github.com/vladislavdragonenkov/checkout/internal/service/notify"
	ordersvc "github.com/vladislavdragonenkov/checkout/internal/service/orders"
	outboxsvc "github.com/vladislavdragonenkov/checkout/internal/service/outbox"
	"github.com/vladislavdragonenkov/checkout/internal/service/webhook"
	"github.com/vladislavdragonenkov/checkout/internal/transport/httpapi"
	"github.com/vladislavdragonenkov/checkout/internal/version"
)

// Run собирает сервис и держит его до отмены контекста.
//
// Невалидная конфигурация шлюза (нет имени магазина или секрета) —
// фатальная ошибка старта: без них не подписать ни форму, ни webhook.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	gwCfg, err := gateway.ConfigFromEnv()
	if err != nil {
		return err
	}

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close(logger)

	m := metrics.NewCheckoutMetrics()
	signer := gateway.NewSigner(gwCfg, nil)
	forms, err := gateway.NewFormBuilder(gwCfg, signer)
	if err != nil {
		return err
	}

	validator := checkout.NewInventoryValidator(deps.variants, nil)
	writer := checkout.NewOrderWriter(deps.orders, m, nil)
	checkoutSvc := checkout.NewService(
		validator, writer, deps.payments, deps.timeline, deps.outboxRepo,
		forms, gwCfg.CurrencyName, m, nil)
	ordersSvc := ordersvc.NewService(
		deps.orders, deps.payments, deps.timeline, deps.outboxRepo, m, nil)

	webhookProc, err := webhook.NewProcessor(
		gwCfg, signer, deps.orders, deps.payments, deps.timeline, deps.outboxRepo, m, nil)
	if err != nil {
		return err
	}

	mailer := mail.NewLogMailer()
	api := httpapi.NewServer(
		checkoutSvc, ordersSvc, webhookProc, deps.idempotencyRepo, mailer,
		gwCfg.FrontendURL, logger.WithField("layer", "http"))

	// Kafka опциональна: без брокеров события копятся в outbox, а письма
	// об исходе оплаты уходят только напрямую из redirect-обработчика.
	producer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(producer, logger)

	var notifyWorker *notify.Worker
	if producer != nil {
		publisher := kafka.NewOutboxPublisher(producer)
		outboxWorker := outboxsvc.NewWorker(deps.outboxRepo, publisher,
			outboxsvc.WithLogger(logger.WithField("component", "outbox-worker")),
			outboxsvc.WithPollInterval(cfg.OutboxPollInterval),
			outboxsvc.WithBatchSize(cfg.OutboxBatchSize),
			outboxsvc.WithMaxAttempts(cfg.OutboxMaxAttempts),
			outboxsvc.WithRetryBaseDelay(cfg.OutboxRetryDelay),
			outboxsvc.WithDLQPublisher(kafka.NewDeadLetterPublisher(producer)),
		)
		go outboxWorker.Run(ctx)

		worker, err := notify.NewWorker(
			strings.Split(cfg.KafkaBrokers, ","), cfg.NotifyGroupID, mailer, producer, 3)
		if err != nil {
			logger.WithError(err).Warn("notification worker init failed, continuing without it")
		} else if err := worker.Start(ctx); err != nil {
			logger.WithError(err).Warn("notification worker start failed, continuing without it")
		} else {
			notifyWorker = worker
		}
	}
	defer func() {
		if notifyWorker != nil {
			if err := notifyWorker.Stop(); err != nil {
				logger.WithError(err).Warn("stop notification worker failed")
			}
		}
	}()

	cleanupWorker := idempotency.NewCleanupWorker(deps.idempotencyRepo,
		idempotency.WithLogger(logger.WithField("component", "idempotency-cleanup-worker")),
		idempotency.WithInterval(cfg.IdempotencyCleanupInterval),
		idempotency.WithBatchSize(cfg.IdempotencyCleanupBatchSize),
	)
	go cleanupWorker.Run(ctx)

	healthHandler := healthcheck.NewHandler(version.String())
	if deps.store != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return deps.store.Ping(pingCtx)
		}))
	}

	opsSrv := startOpsServer(ctx, cfg.OpsAddr, logger, healthHandler)

	apiSrv := &http.Server{Addr: cfg.APIAddr, Handler: api.Handler()}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.APIAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP серверы")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(opsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(opsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startOpsServer поднимает служебный HTTP: метрики, health checks, версия.
func startOpsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(version.String()))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("ops server failed")
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
