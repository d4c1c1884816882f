package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// paymentRepositoryInMemory — in-memory реализация PaymentRepository.
// Платёж ключуется идентификатором заказа: на заказ приходится ровно
// одна платёжная запись.
type paymentRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Payment
}

// NewPaymentRepository создаёт in-memory репозиторий платежей.
func NewPaymentRepository() domain.PaymentRepository {
	return &paymentRepositoryInMemory{
		items: make(map[string]domain.Payment),
	}
}

// Create сохраняет платёжную запись для заказа.
func (r *paymentRepositoryInMemory) Create(payment domain.Payment) error {
	if payment.OrderID == "" {
		return domain.ErrOrderIDRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[payment.OrderID] = payment
	return nil
}

// GetByOrderID возвращает платёж заказа или ErrPaymentNotFound.
func (r *paymentRepositoryInMemory) GetByOrderID(orderID string) (domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payment, ok := r.items[orderID]
	if !ok {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	return payment, nil
}

// Update перезаписывает существующий платёж.
func (r *paymentRepositoryInMemory) Update(payment domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[payment.OrderID]; !ok {
		return domain.ErrPaymentNotFound
	}
	r.items[payment.OrderID] = payment
	return nil
}

var _ domain.PaymentRepository = (*paymentRepositoryInMemory)(nil)
