package domain

import "time"

// PaymentProvider определяет способ оплаты заказа.
type PaymentProvider string

const (
	// PaymentProviderGateway — оплата картой через внешний платёжный шлюз.
	PaymentProviderGateway PaymentProvider = "gateway"
	// PaymentProviderCOD — оплата наличными при получении, без шлюза.
	PaymentProviderCOD PaymentProvider = "cash-on-delivery"
)

// PaymentStatus описывает состояние платежа в системе.
type PaymentStatus string

const (
	// PaymentStatusPending — платёж создан вместе с заказом, результата ещё нет.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusCompleted — шлюз подтвердил полное списание.
	PaymentStatusCompleted PaymentStatus = "completed"
	// PaymentStatusFailed — шлюз отклонил платёж или он завершился ошибкой.
	PaymentStatusFailed PaymentStatus = "failed"
	// PaymentStatusApproved — частичное одобрение; требует ручного разбора.
	PaymentStatusApproved PaymentStatus = "approved"
)

// Payment описывает платёж, связанный с заказом.
// Запись создаётся один раз при создании заказа и мутируется ровно один раз
// обработчиком webhook-уведомления (для COD — никогда).
type Payment struct {
	ID       string
	OrderID  string
	Provider PaymentProvider
	// ExternalID — идентификатор транзакции на стороне шлюза, если он его вернул.
	ExternalID  string
	Status      PaymentStatus
	AmountMinor int64
	Currency    string

	// Поля ниже заполняются из webhook-уведомления шлюза.
	ApprovalCode string
	RefNumber    string
	ProcessedAt  *time.Time
	ResponseHash string
	FailReason   string
	CardBrand    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет корректность полей платежа и возвращает ошибки, если они есть.
func (p *Payment) Validate() []error {
	var errs []error

	if p.OrderID == "" {
		errs = append(errs, ErrOrderIDRequired)
	}
	if p.Provider != PaymentProviderGateway && p.Provider != PaymentProviderCOD {
		errs = append(errs, ErrPaymentProviderRequired)
	}
	if p.AmountMinor < 0 {
		errs = append(errs, ErrPaymentAmountNegative)
	}

	return errs
}
