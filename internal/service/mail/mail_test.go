package mail

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

func TestLogMailerSend(t *testing.T) {
	mailer := NewLogMailer()
	err := mailer.Send(domain.PaymentNotification{
		OrderID:   "o-1",
		Recipient: "buyer@example.com",
		Status:    "paid",
	})
	if err != nil {
		t.Fatalf("log mailer should never fail: %v", err)
	}
}

func TestMockMailer(t *testing.T) {
	mock := NewMockMailer()

	if err := mock.Send(domain.PaymentNotification{OrderID: "o-1", Recipient: "a@b.c", Status: "paid"}); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}
	if mock.SentCount() != 1 {
		t.Fatalf("expected 1 sent, got %d", mock.SentCount())
	}
	if mock.Sent[0].OrderID != "o-1" {
		t.Fatalf("unexpected order id: %s", mock.Sent[0].OrderID)
	}

	mock.SendErr = errors.New("smtp unavailable")
	if err := mock.Send(domain.PaymentNotification{OrderID: "o-2"}); err == nil {
		t.Fatal("expected send error")
	}
	if mock.SentCount() != 1 {
		t.Fatalf("failed send should not be recorded, got %d", mock.SentCount())
	}
}
