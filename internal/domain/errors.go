package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Ошибка отсутствующего кода валюты.
	ErrCurrencyRequired = errors.New("currency is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("amount_minor must be non-negative")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order amount does not match items sum")
	// Ошибка отсутствующего адреса доставки.
	ErrShippingAddressRequired = errors.New("shipping address is required")
	// Ошибка отсутствующего биллингового адреса при оплате через шлюз.
	ErrBillingAddressRequired = errors.New("billing address could not be resolved")
	// Ошибка отрицательной суммы платежа.
	ErrPaymentAmountNegative = errors.New("payment amount must be non-negative")
	// Ошибка неподдерживаемого платёжного провайдера.
	ErrPaymentProviderRequired = errors.New("payment provider is required")
	// Ошибка отсутствующего идентификатора заказа в платеже.
	ErrOrderIDRequired = errors.New("order_id is required")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrPaymentNotFound возвращается, если платёж по заказу не найден.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrOrderVersionConflict = errors.New("order version conflict")
	// ErrWebhookAuthentication — подпись webhook-уведомления не прошла проверку.
	// Никакие изменения состояния при этой ошибке не выполняются.
	ErrWebhookAuthentication = errors.New("webhook signature verification failed")
	// ErrOutboxMessageNotFound — попытка отметить несуществующее outbox-сообщение.
	ErrOutboxMessageNotFound = errors.New("outbox message not found")
	// ErrIdempotencyKeyRequired — пустой idempotency-key.
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	// ErrIdempotencyRequestHashRequired — пустой хеш тела запроса.
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	// ErrIdempotencyKeyAlreadyExists — ключ уже зарегистрирован с тем же телом запроса.
	ErrIdempotencyKeyAlreadyExists = errors.New("idempotency key already exists")
	// ErrIdempotencyHashMismatch — ключ переиспользован с другим телом запроса.
	ErrIdempotencyHashMismatch = errors.New("idempotency key reused with different request")
	// ErrIdempotencyKeyNotFound — запись по ключу не найдена.
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
)

// VariantsNotFoundError перечисляет идентификаторы вариантов,
// отсутствующие в каталоге.
type VariantsNotFoundError struct {
	IDs []string
}

func (e *VariantsNotFoundError) Error() string {
	return fmt.Sprintf("variants not found: %s", strings.Join(e.IDs, ", "))
}

// InsufficientStockError сообщает о нехватке остатка по конкретному варианту.
type InsufficientStockError struct {
	VariantID string
	Available int32
	Requested int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %s: available %d, requested %d",
		e.VariantID, e.Available, e.Requested)
}

// InvalidTransitionError — запрошенный переход статуса не разрешён таблицей.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition: %s -> %s", e.From, e.To)
}

// ValidationError — некорректный или неполный ввод вызывающей стороны.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict)
}

// IsIdempotencyConflict проверяет конфликтные исходы регистрации
// idempotency-ключа: повтор того же запроса или переиспользование
// ключа с другим телом.
func IsIdempotencyConflict(err error) bool {
	return errors.Is(err, ErrIdempotencyKeyAlreadyExists) ||
		errors.Is(err, ErrIdempotencyHashMismatch)
}

// IsNotFound проверяет ошибки отсутствия сущности.
func IsNotFound(err error) bool {
	var vnf *VariantsNotFoundError
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.As(err, &vnf)
}

// IsDomainError отделяет бизнес-ошибки (4xx) от инфраструктурных (5xx).
func IsDomainError(err error) bool {
	var (
		vnf *VariantsNotFoundError
		ins *InsufficientStockError
		trn *InvalidTransitionError
		val *ValidationError
	)
	if errors.As(err, &vnf) || errors.As(err, &ins) || errors.As(err, &trn) || errors.As(err, &val) {
		return true
	}
	return IsNotFound(err) ||
		errors.Is(err, ErrBillingAddressRequired) ||
		errors.Is(err, ErrWebhookAuthentication) ||
		errors.Is(err, ErrIdempotencyHashMismatch) ||
		errors.Is(err, ErrIdempotencyKeyAlreadyExists)
}
