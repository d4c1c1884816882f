package domain

import "time"

// Имена событий истории заказа. Хронология пишется при создании заказа,
// обработке webhook-уведомления и каждой смене статуса.
const (
	TimelineOrderCreated       = "OrderCreated"
	TimelinePaymentNotified    = "PaymentNotified"
	TimelineOrderCancelled     = "OrderCancelled"
	TimelineOrderStatusChanged = "OrderStatusChanged"
)

// TimelineEvent — одна запись в истории заказа.
type TimelineEvent struct {
	OrderID  string
	Type     string
	Reason   string
	Occurred time.Time
}
