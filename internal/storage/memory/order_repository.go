package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
// Шапка заказа и позиции хранятся раздельно, как в postgres-реализации,
// чтобы сценарий компенсации (создали шапку, позиции не записались,
// удалили шапку) вёл себя одинаково в обоих хранилищах.
type orderRepositoryInMemory struct {
	mu      sync.RWMutex
	headers map[string]domain.Order
	items   map[string][]domain.OrderLineItem

	// failCreateItems включает принудительную ошибку записи позиций
	// для тестов компенсации.
	failCreateItems error
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository() *orderRepositoryInMemory {
	return &orderRepositoryInMemory{
		headers: make(map[string]domain.Order),
		items:   make(map[string][]domain.OrderLineItem),
	}
}

// FailCreateItems настраивает ошибку, которую вернёт следующий CreateItems.
func (r *orderRepositoryInMemory) FailCreateItems(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failCreateItems = err
}

// CreateHeader сохраняет шапку заказа, если ID ещё не занят.
func (r *orderRepositoryInMemory) CreateHeader(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.headers[order.ID]; exists {
		return domain.ErrOrderVersionConflict
	}
	// Позиции живут отдельно; в шапке их не храним.
	order.Items = nil
	r.headers[order.ID] = order
	return nil
}

// CreateItems записывает позиции заказа. Шапка должна существовать.
func (r *orderRepositoryInMemory) CreateItems(orderID string, items []domain.OrderLineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCreateItems != nil {
		err := r.failCreateItems
		r.failCreateItems = nil
		return err
	}

	if _, ok := r.headers[orderID]; !ok {
		return domain.ErrOrderNotFound
	}
	r.items[orderID] = append([]domain.OrderLineItem(nil), items...)
	return nil
}

// Delete удаляет заказ вместе с позициями. Отсутствие заказа — не ошибка:
// компенсация после неудачной записи позиций должна быть идемпотентной.
func (r *orderRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.headers, id)
	delete(r.items, id)
	return nil
}

// Get возвращает заказ с позициями или ErrOrderNotFound.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.headers[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	order.Items = append([]domain.OrderLineItem(nil), r.items[id]...)
	return order, nil
}

// ListByUser возвращает заказы пользователя, ограничивая выборку limit (если >0).
func (r *orderRepositoryInMemory) ListByUser(userID string, limit int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.headers))
	for id, order := range r.headers {
		if order.UserID == nil || *order.UserID != userID {
			continue
		}
		order.Items = append([]domain.OrderLineItem(nil), r.items[id]...)
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// Save перезаписывает шапку заказа, проверяя версию (optimistic locking).
func (r *orderRepositoryInMemory) Save(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.headers[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.ErrOrderVersionConflict
	}
	// Инкрементируем версию перед сохранением.
	order.Version++
	order.Items = nil
	r.headers[order.ID] = order
	return nil
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
