package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

const (
	defaultCleanupInterval  = 10 * time.Minute
	defaultCleanupBatchSize = 500
)

var (
	cleanupRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_idempotency_cleanup_runs_total",
		Help: "Total number of idempotency cleanup runs grouped by result.",
	}, []string{"result"})
	cleanupDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_idempotency_cleanup_deleted_total",
		Help: "Total number of deleted expired idempotency records.",
	})
	cleanupLastDeleted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "checkout_idempotency_cleanup_last_deleted",
		Help: "Number of deleted records during the last cleanup run.",
	})
)

// CleanupWorker периодически удаляет записи idempotency_keys с истёкшим TTL.
// Удаление идёт порциями, чтобы не блокировать таблицу на больших объёмах.
type CleanupWorker struct {
	repo      domain.IdempotencyRepository
	logger    *log.Entry
	interval  time.Duration
	batchSize int
}

// CleanupOption настраивает CleanupWorker.
type CleanupOption func(*CleanupWorker)

// WithLogger задаёт logger воркера.
func WithLogger(logger *log.Entry) CleanupOption {
	return func(w *CleanupWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithInterval задаёт паузу между проходами очистки.
func WithInterval(interval time.Duration) CleanupOption {
	return func(w *CleanupWorker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

// WithBatchSize задаёт размер одной порции удаления.
func WithBatchSize(batchSize int) CleanupOption {
	return func(w *CleanupWorker) {
		if batchSize > 0 {
			w.batchSize = batchSize
		}
	}
}

// NewCleanupWorker создаёт воркер очистки с настройками по умолчанию.
func NewCleanupWorker(repo domain.IdempotencyRepository, options ...CleanupOption) *CleanupWorker {
	worker := &CleanupWorker{
		repo:      repo,
		logger:    log.WithField("component", "idempotency-cleanup-worker"),
		interval:  defaultCleanupInterval,
		batchSize: defaultCleanupBatchSize,
	}
	for _, option := range options {
		option(worker)
	}
	return worker
}

// Run выполняет первый проход сразу, дальше — по тикеру до отмены ctx.
func (w *CleanupWorker) Run(ctx context.Context) {
	if w.repo == nil {
		w.logger.Warn("idempotency cleanup worker is disabled: repo is nil")
		return
	}

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *CleanupWorker) sweep(ctx context.Context) {
	deleted, err := w.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		cleanupRunsTotal.WithLabelValues("error").Inc()
		w.logger.WithError(err).Warn("idempotency cleanup run failed")
		return
	}

	cleanupRunsTotal.WithLabelValues("ok").Inc()
	cleanupLastDeleted.Set(float64(deleted))
	if deleted > 0 {
		w.logger.WithField("deleted", deleted).Info("idempotency cleanup completed")
	}
}

// DeleteExpired удаляет все записи с ttl <= before порциями batchSize.
// Неполная порция означает, что просроченных записей больше нет.
func (w *CleanupWorker) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	if before.IsZero() {
		before = time.Now().UTC()
	}

	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		deleted, err := w.repo.DeleteExpired(before, w.batchSize)
		if err != nil {
			return total, err
		}

		total += deleted
		if deleted > 0 {
			cleanupDeletedTotal.Add(float64(deleted))
		}
		if deleted < w.batchSize {
			return total, nil
		}
	}
}
