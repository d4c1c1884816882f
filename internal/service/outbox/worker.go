package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

const (
	defaultPollInterval   = 1 * time.Second
	defaultBatchSize      = 100
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 50 * time.Millisecond
)

var (
	publishAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_outbox_publish_attempts_total",
		Help: "Total number of outbox publish attempts grouped by result.",
	}, []string{"result"})
	pendingRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "checkout_outbox_pending_records",
		Help: "Current number of pending records in transactional outbox.",
	})
	oldestPendingAge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "checkout_outbox_oldest_pending_age_seconds",
		Help: "Age in seconds of the oldest pending outbox record.",
	})
)

// Worker доставляет pending-сообщения из transactional outbox в брокер.
// Сообщение, не ушедшее за maxAttempts попыток, помечается failed и
// по возможности дублируется в DLQ для ручного разбора (cmd/dlq-reprocess).
type Worker struct {
	repo           domain.OutboxRepository
	publisher      domain.OutboxPublisher
	dlqPublisher   domain.OutboxPublisher
	logger         *log.Entry
	pollInterval   time.Duration
	batchSize      int
	maxAttempts    int
	retryBaseDelay time.Duration
}

// Option настраивает Worker.
type Option func(*Worker)

// WithLogger задаёт logger воркера.
func WithLogger(logger *log.Entry) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDLQPublisher задаёт publisher для DLQ после исчерпания попыток.
func WithDLQPublisher(publisher domain.OutboxPublisher) Option {
	return func(w *Worker) {
		w.dlqPublisher = publisher
	}
}

// WithPollInterval задаёт частоту опроса outbox.
func WithPollInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.pollInterval = interval
		}
	}
}

// WithBatchSize задаёт размер выборки pending-сообщений за цикл.
func WithBatchSize(batchSize int) Option {
	return func(w *Worker) {
		if batchSize > 0 {
			w.batchSize = batchSize
		}
	}
}

// WithMaxAttempts задаёт число попыток публикации перед failed/DLQ.
func WithMaxAttempts(maxAttempts int) Option {
	return func(w *Worker) {
		if maxAttempts > 0 {
			w.maxAttempts = maxAttempts
		}
	}
}

// WithRetryBaseDelay задаёт базовую паузу exponential backoff; ноль
// отключает паузы между попытками.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(w *Worker) {
		if delay >= 0 {
			w.retryBaseDelay = delay
		}
	}
}

// NewWorker создаёт outbox worker с настройками по умолчанию.
func NewWorker(repo domain.OutboxRepository, publisher domain.OutboxPublisher, options ...Option) *Worker {
	worker := &Worker{
		repo:           repo,
		publisher:      publisher,
		logger:         log.WithField("component", "outbox-worker"),
		pollInterval:   defaultPollInterval,
		batchSize:      defaultBatchSize,
		maxAttempts:    defaultMaxAttempts,
		retryBaseDelay: defaultRetryBaseDelay,
	}
	for _, option := range options {
		option(worker)
	}
	return worker
}

// Run опрашивает outbox до отмены ctx. Первый цикл выполняется сразу,
// чтобы события, накопленные до старта воркера, не ждали целый интервал.
func (w *Worker) Run(ctx context.Context) {
	if w.repo == nil || w.publisher == nil {
		w.logger.Warn("outbox worker is disabled: repo or publisher is nil")
		return
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.ProcessOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce выполняет один цикл: выборка pending, доставка, пометка.
func (w *Worker) ProcessOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	w.observeBacklog()

	messages, err := w.repo.PullPending(w.batchSize)
	if err != nil {
		w.logger.WithError(err).Warn("failed to pull pending outbox messages")
		return
	}
	if len(messages) == 0 {
		return
	}

	for _, msg := range messages {
		if ctx.Err() != nil {
			return
		}
		w.handle(ctx, msg)
	}

	w.observeBacklog()
}

func (w *Worker) handle(ctx context.Context, msg domain.OutboxMessage) {
	if err := w.deliver(ctx, msg); err != nil {
		w.logger.WithError(err).WithFields(log.Fields{
			"outbox_id":  msg.ID,
			"event_type": msg.EventType,
		}).Error("outbox publish failed after retries")
		publishAttempts.WithLabelValues("failed").Inc()

		if dlqErr := w.forwardToDLQ(msg, err); dlqErr != nil {
			w.logger.WithError(dlqErr).WithField("outbox_id", msg.ID).Warn("failed to publish to DLQ")
			publishAttempts.WithLabelValues("dlq_failed").Inc()
		}
		if markErr := w.repo.MarkFailed(msg.ID); markErr != nil {
			w.logger.WithError(markErr).WithField("outbox_id", msg.ID).Warn("failed to mark outbox as failed")
		}
		return
	}

	if err := w.repo.MarkSent(msg.ID); err != nil {
		w.logger.WithError(err).WithField("outbox_id", msg.ID).Warn("failed to mark outbox as sent")
	}
}

// deliver пытается опубликовать сообщение maxAttempts раз с backoff.
func (w *Worker) deliver(ctx context.Context, msg domain.OutboxMessage) error {
	var lastErr error

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		err := w.publisher.Publish(msg)
		if err == nil {
			publishAttempts.WithLabelValues("sent").Inc()
			return nil
		}
		lastErr = err
		publishAttempts.WithLabelValues("retry_error").Inc()

		if attempt >= w.maxAttempts {
			break
		}

		delay := w.backoffDelay(attempt)
		if delay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("publish failed after %d attempts: %w", w.maxAttempts, lastErr)
}

func (w *Worker) observeBacklog() {
	stats, err := w.repo.Stats()
	if err != nil {
		w.logger.WithError(err).Warn("failed to collect outbox backlog stats")
		return
	}

	pendingRecords.Set(float64(stats.PendingCount))
	if stats.PendingCount == 0 || stats.OldestPendingAt.IsZero() {
		oldestPendingAge.Set(0)
		return
	}

	age := time.Since(stats.OldestPendingAt).Seconds()
	if age < 0 {
		age = 0
	}
	oldestPendingAge.Set(age)
}

// backoffDelay удваивает базовую паузу на каждую следующую попытку.
func (w *Worker) backoffDelay(attempt int) time.Duration {
	if w.retryBaseDelay <= 0 {
		return 0
	}

	const maxDelay = time.Duration(1<<63 - 1)
	delay := w.retryBaseDelay
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			return maxDelay
		}
		delay *= 2
	}
	return delay
}

// forwardToDLQ заворачивает исходное событие вместе с текстом ошибки —
// cmd/dlq-reprocess восстанавливает из этого конверта оригинал.
func (w *Worker) forwardToDLQ(msg domain.OutboxMessage, publishErr error) error {
	if w.dlqPublisher == nil {
		return nil
	}

	payload, err := json.Marshal(map[string]any{
		"outbox_id":        msg.ID,
		"aggregate_type":   msg.AggregateType,
		"aggregate_id":     msg.AggregateID,
		"event_type":       msg.EventType,
		"payload":          json.RawMessage(msg.Payload),
		"publish_error":    publishErr.Error(),
		"dlq_published_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal dlq payload: %w", err)
	}

	wrapped := msg
	wrapped.Payload = payload
	if err := w.dlqPublisher.Publish(wrapped); err != nil {
		return fmt.Errorf("publish to dlq: %w", err)
	}
	return nil
}
