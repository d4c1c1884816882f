package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/checkout/internal/service/mail"
)

func notifyMessage(t *testing.T, event *kafka.NotificationEvent) *sarama.ConsumerMessage {
	t.Helper()
	value, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	return &sarama.ConsumerMessage{Topic: kafka.TopicNotifications, Value: value}
}

func TestHandleMessageDeliversMail(t *testing.T) {
	mock := mail.NewMockMailer()
	worker := &Worker{mailer: mock, logger: log.WithField("test", "notify")}

	event := kafka.NewNotificationEvent("o-1", "buyer@example.com", "paid", "")
	if err := worker.handleMessage(context.Background(), notifyMessage(t, event)); err != nil {
		t.Fatalf("handleMessage failed: %v", err)
	}

	if mock.SentCount() != 1 {
		t.Fatalf("expected 1 mail, got %d", mock.SentCount())
	}
	sent := mock.Sent[0]
	if sent.OrderID != "o-1" || sent.Recipient != "buyer@example.com" || sent.Status != "paid" {
		t.Fatalf("unexpected notification: %+v", sent)
	}
}

func TestHandleMessageEnvelope(t *testing.T) {
	mock := mail.NewMockMailer()
	worker := &Worker{mailer: mock, logger: log.WithField("test", "notify")}

	event := kafka.NewNotificationEvent("o-2", "buyer@example.com", "cancelled", "card declined")
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	envelope, err := json.Marshal(map[string]interface{}{
		"id":             "outbox-1",
		"aggregate_type": "payment",
		"aggregate_id":   "o-2",
		"event_type":     string(kafka.EventTypeNotificationEmail),
		"payload":        json.RawMessage(payload),
	})
	if err != nil {
		t.Fatal(err)
	}

	msg := &sarama.ConsumerMessage{Topic: kafka.TopicNotifications, Value: envelope}
	if err := worker.handleMessage(context.Background(), msg); err != nil {
		t.Fatalf("handleMessage failed: %v", err)
	}

	if mock.SentCount() != 1 {
		t.Fatalf("expected 1 mail, got %d", mock.SentCount())
	}
	if mock.Sent[0].FailReason != "card declined" {
		t.Fatalf("unexpected fail reason: %s", mock.Sent[0].FailReason)
	}
}

func TestHandleMessageWithoutRecipientSkips(t *testing.T) {
	mock := mail.NewMockMailer()
	worker := &Worker{mailer: mock, logger: log.WithField("test", "notify")}

	event := kafka.NewNotificationEvent("o-3", "", "paid", "")
	if err := worker.handleMessage(context.Background(), notifyMessage(t, event)); err != nil {
		t.Fatalf("handleMessage should skip, not fail: %v", err)
	}
	if mock.SentCount() != 0 {
		t.Fatalf("expected no mail, got %d", mock.SentCount())
	}
}

func TestHandleMessageMalformed(t *testing.T) {
	worker := &Worker{mailer: mail.NewMockMailer(), logger: log.WithField("test", "notify")}
	msg := &sarama.ConsumerMessage{Topic: kafka.TopicNotifications, Value: []byte("{")}
	if err := worker.handleMessage(context.Background(), msg); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestHandleMessageMailerError(t *testing.T) {
	mock := mail.NewMockMailer()
	mock.SendErr = errors.New("smtp unavailable")
	worker := &Worker{mailer: mock, logger: log.WithField("test", "notify")}

	event := kafka.NewNotificationEvent("o-4", "buyer@example.com", "paid", "")
	if err := worker.handleMessage(context.Background(), notifyMessage(t, event)); err == nil {
		t.Fatal("expected mailer error to propagate")
	}
}

func TestNewWorkerBrokerError(t *testing.T) {
	if _, err := NewWorker([]string{"invalid-broker:9092"}, "group", mail.NewMockMailer(), nil, 3); err == nil {
		t.Fatal("expected broker connection error")
	}
}
