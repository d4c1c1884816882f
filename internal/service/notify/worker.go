package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/messaging/kafka"
)

// Worker потребляет notification-события из Kafka и отправляет письма
// через Mailer. Ошибка доставки возвращается consumer'у: после исчерпания
// retry сообщение уедет в DLQ.
type Worker struct {
	consumer *kafka.Consumer
	mailer   domain.Mailer
	logger   *log.Entry
}

// NewWorker подписывает mailer на топик уведомлений.
func NewWorker(brokers []string, groupID string, mailer domain.Mailer, dlqProducer *kafka.Producer, maxRetries int) (*Worker, error) {
	w := &Worker{
		mailer: mailer,
		logger: log.WithField("component", "notify-worker"),
	}

	consumer, err := kafka.NewConsumerWithDLQ(
		brokers,
		groupID,
		[]string{kafka.TopicNotifications},
		w.handleMessage,
		dlqProducer,
		maxRetries,
	)
	if err != nil {
		return nil, fmt.Errorf("create notification consumer: %w", err)
	}
	w.consumer = consumer
	return w, nil
}

// Start запускает consumer.
func (w *Worker) Start(ctx context.Context) error {
	return w.consumer.Start(ctx)
}

// Stop останавливает consumer.
func (w *Worker) Stop() error {
	return w.consumer.Stop()
}

func (w *Worker) handleMessage(_ context.Context, message *sarama.ConsumerMessage) error {
	event, err := decodeNotification(message.Value)
	if err != nil {
		// Непарсящееся сообщение retry не вылечит, пусть уходит в DLQ.
		return err
	}

	if event.Recipient == "" {
		w.logger.WithField("order_id", event.OrderID).Debug("notification without recipient, skipped")
		return nil
	}

	err = w.mailer.Send(domain.PaymentNotification{
		OrderID:    event.OrderID,
		Recipient:  event.Recipient,
		Status:     event.Status,
		FailReason: event.FailReason,
	})
	if err != nil {
		return fmt.Errorf("send notification for order %s: %w", event.OrderID, err)
	}

	w.logger.WithFields(log.Fields{
		"order_id":  event.OrderID,
		"recipient": event.Recipient,
	}).Debug("notification delivered")
	return nil
}

// decodeNotification принимает и голый NotificationEvent, и конверт
// outbox-паблишера с событием внутри поля payload.
func decodeNotification(value []byte) (*kafka.NotificationEvent, error) {
	var envelope struct {
		EventType string          `json:"event_type"`
		Payload   json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(value, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshal notification message: %w", err)
	}

	raw := value
	if len(envelope.Payload) > 0 {
		raw = envelope.Payload
	}

	var event kafka.NotificationEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("unmarshal notification event: %w", err)
	}
	return &event, nil
}
