package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// Order события
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderCancelled     EventType = "order.cancelled"

	// Payment события (исходы webhook-уведомлений шлюза)
	EventTypePaymentApproved EventType = "payment.approved"
	EventTypePaymentDeclined EventType = "payment.declined"
	EventTypePaymentPending  EventType = "payment.pending"

	// Notification события (письма покупателю)
	EventTypeNotificationEmail EventType = "notification.email"
)

// Topics для Kafka
const (
	TopicOrderEvents     = "checkout.order.events"
	TopicPaymentEvents   = "checkout.payment.events"
	TopicNotifications   = "checkout.notifications"
	TopicDeadLetterQueue = "checkout.dlq" // Dead Letter Queue для failed messages
)

// Kafka headers для retry логики
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// OrderEvent представляет событие жизненного цикла заказа.
type OrderEvent struct {
	EventType EventType              `json:"event_type"`
	OrderID   string                 `json:"order_id"`
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NotificationEvent — задание на отправку письма покупателю.
type NotificationEvent struct {
	EventType  EventType `json:"event_type"`
	OrderID    string    `json:"order_id"`
	Recipient  string    `json:"recipient"`
	Status     string    `json:"status"`
	FailReason string    `json:"fail_reason,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewOrderEvent создает новое событие заказа.
func NewOrderEvent(eventType EventType, orderID, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType: eventType,
		OrderID:   orderID,
		Status:    status,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}

// NewNotificationEvent создает задание на письмо об исходе оплаты.
func NewNotificationEvent(orderID, recipient, status, failReason string) *NotificationEvent {
	return &NotificationEvent{
		EventType:  EventTypeNotificationEmail,
		OrderID:    orderID,
		Recipient:  recipient,
		Status:     status,
		FailReason: failReason,
		Timestamp:  time.Now(),
	}
}
