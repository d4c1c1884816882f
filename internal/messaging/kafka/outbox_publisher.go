package kafka

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// eventEnvelope — формат сообщения в топике: метаданные outbox-записи
// плюс исходный payload как есть.
type eventEnvelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

func newEventEnvelope(event domain.OutboxMessage) eventEnvelope {
	return eventEnvelope{
		ID:            event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       json.RawMessage(event.Payload),
		PublishedAt:   time.Now().UTC(),
	}
}

// eventKey ключует сообщение aggregate id: события одного заказа
// попадают в одну партицию и сохраняют порядок.
func eventKey(event domain.OutboxMessage) string {
	if event.AggregateID != "" {
		return event.AggregateID
	}
	return event.ID
}

// OutboxTopicPublisher публикует outbox-сообщения в Kafka.
// Топик выбирается по типу события: payment.* уходит в платёжный топик,
// notification.* — в топик писем, остальное — в топик заказов.
type OutboxTopicPublisher struct {
	producer *Producer
}

// NewOutboxPublisher создаёт Kafka-паблишер для transactional outbox.
func NewOutboxPublisher(producer *Producer) domain.OutboxPublisher {
	return &OutboxTopicPublisher{producer: producer}
}

func (p *OutboxTopicPublisher) Publish(event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka outbox publisher is not initialized")
	}
	return p.producer.PublishEvent(topicForEvent(event.EventType), eventKey(event), newEventEnvelope(event))
}

// DeadLetterTopicPublisher публикует сообщения, исчерпавшие попытки
// доставки, в DLQ-топик. Конверт тот же, что у основного паблишера:
// dlq-reprocess разбирает оба формата одним декодером.
type DeadLetterTopicPublisher struct {
	producer *Producer
}

// NewDeadLetterPublisher создаёт паблишер DLQ-топика для outbox-воркера.
func NewDeadLetterPublisher(producer *Producer) domain.OutboxPublisher {
	return &DeadLetterTopicPublisher{producer: producer}
}

func (p *DeadLetterTopicPublisher) Publish(event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka dlq publisher is not initialized")
	}
	return p.producer.PublishEvent(TopicDeadLetterQueue, eventKey(event), newEventEnvelope(event))
}

func topicForEvent(eventType string) string {
	switch {
	case strings.HasPrefix(eventType, "payment."):
		return TopicPaymentEvents
	case strings.HasPrefix(eventType, "notification."):
		return TopicNotifications
	default:
		return TopicOrderEvents
	}
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
var _ domain.OutboxPublisher = (*DeadLetterTopicPublisher)(nil)
