package kafka

import (
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
)

func TestProducer_PublishEvent(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageAndSucceed()

	event := NewOrderEvent(
		EventTypeOrderCreated,
		"order-123",
		"pending",
		map[string]interface{}{
			"amount_minor": 10000,
		},
	)

	err := producer.PublishEvent(TopicOrderEvents, "order-123", event)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := NewOrderEvent(EventTypeOrderCreated, "order-123", "pending", nil)

	err := producer.PublishEvent(TopicOrderEvents, "order-123", event)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewOrderEvent(t *testing.T) {
	orderID := "order-123"
	status := "paid"
	metadata := map[string]interface{}{
		"amount_minor": 10000,
	}

	event := NewOrderEvent(EventTypeOrderStatusChanged, orderID, status, metadata)

	if event.EventType != EventTypeOrderStatusChanged {
		t.Errorf("expected event type %s, got %s", EventTypeOrderStatusChanged, event.EventType)
	}

	if event.OrderID != orderID {
		t.Errorf("expected order id %s, got %s", orderID, event.OrderID)
	}

	if event.Status != status {
		t.Errorf("expected status %s, got %s", status, event.Status)
	}

	if event.Metadata["amount_minor"] != 10000 {
		t.Error("metadata not set correctly")
	}

	// Проверяем, что timestamp установлен
	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}

	if time.Since(event.Timestamp) > time.Second {
		t.Error("timestamp should be close to current time")
	}
}

func TestNewNotificationEvent(t *testing.T) {
	event := NewNotificationEvent("order-123", "buyer@example.com", "cancelled", "card declined")

	if event.EventType != EventTypeNotificationEmail {
		t.Errorf("expected event type %s, got %s", EventTypeNotificationEmail, event.EventType)
	}
	if event.OrderID != "order-123" {
		t.Errorf("unexpected order id: %s", event.OrderID)
	}
	if event.Recipient != "buyer@example.com" {
		t.Errorf("unexpected recipient: %s", event.Recipient)
	}
	if event.Status != "cancelled" {
		t.Errorf("unexpected status: %s", event.Status)
	}
	if event.FailReason != "card declined" {
		t.Errorf("unexpected fail reason: %s", event.FailReason)
	}
	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}
}
