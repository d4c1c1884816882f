package mail

import (
	"sync"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// MockMailer — конфигурируемая заглушка Mailer для тестов.
type MockMailer struct {
	mu sync.Mutex

	SendErr error
	Sent    []domain.PaymentNotification
}

// NewMockMailer возвращает mock с успешной отправкой по умолчанию.
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// Send запоминает письмо и возвращает настроенную ошибку.
func (m *MockMailer) Send(n domain.PaymentNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, n)
	return nil
}

// SentCount возвращает число успешно отправленных писем.
func (m *MockMailer) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// Notifications возвращает копию отправленных писем.
func (m *MockMailer) Notifications() []domain.PaymentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PaymentNotification(nil), m.Sent...)
}

var _ domain.Mailer = (*MockMailer)(nil)
