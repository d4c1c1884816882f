package domain

// OrderRepository описывает требования к хранилищу заказов.
//
// Создание заголовка, создание позиций и удаление — три независимых
// операции: бэкенд не предоставляет межтабличной транзакции, поэтому
// Order Writer компенсирует неудачу позиций удалением заголовка.
type OrderRepository interface {
	// CreateHeader сохраняет заголовок заказа без позиций.
	// Возвращает ошибку, если запись с таким ID уже существует.
	CreateHeader(order Order) error
	// CreateItems сохраняет позиции для уже созданного заказа.
	CreateItems(orderID string, items []OrderLineItem) error
	// Delete удаляет заголовок заказа; отсутствие записи ошибкой не считается.
	Delete(id string) error
	// Get возвращает заказ с позициями или ErrOrderNotFound, если его нет.
	Get(id string) (Order, error)
	// ListByUser возвращает заказы пользователя с опциональным лимитом.
	ListByUser(userID string, limit int) ([]Order, error)
	// Save применяет обновления к заказу с учётом optimistic locking.
	Save(order Order) error
}

// PaymentRepository описывает хранилище платёжных записей.
type PaymentRepository interface {
	// Create сохраняет платёж, созданный вместе с заказом.
	Create(payment Payment) error
	// GetByOrderID возвращает платёж заказа или ErrPaymentNotFound.
	GetByOrderID(orderID string) (Payment, error)
	// Update перезаписывает платёж после webhook-уведомления.
	Update(payment Payment) error
}

// VariantRepository — чтение снимков вариантов товара из каталога.
type VariantRepository interface {
	// GetByIDs выполняет один батчевый запрос. Отсутствующие идентификаторы
	// просто не попадают в результат; ошибкой это не является —
	// недостающие ids агрегирует валидатор.
	GetByIDs(ids []string) (map[string]Variant, error)
}
