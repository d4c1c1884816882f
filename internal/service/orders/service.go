package orders

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/checkout/internal/metrics"
)

const (
	defaultListLimit = 100
)

// Service — чтение заказов и явные переводы статуса (админка, фулфилмент).
// Каждая мутация статуса проходит через таблицу переходов; обойти её
// нельзя ни из какого вызова.
type Service struct {
	orders   domain.OrderRepository
	payments domain.PaymentRepository
	timeline domain.TimelineRepository
	outbox   domain.OutboxRepository
	metrics  *metrics.CheckoutMetrics
	logger   *log.Entry
}

// NewService конструирует сервис заказов.
func NewService(
	orders domain.OrderRepository,
	payments domain.PaymentRepository,
	timeline domain.TimelineRepository,
	outbox domain.OutboxRepository,
	m *metrics.CheckoutMetrics,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "orders")
	}
	return &Service{
		orders:   orders,
		payments: payments,
		timeline: timeline,
		outbox:   outbox,
		metrics:  m,
		logger:   logger,
	}
}

// Get возвращает заказ с позициями.
func (s *Service) Get(id string) (domain.Order, error) {
	return s.orders.Get(id)
}

// ListByUser возвращает заказы пользователя, лимит по умолчанию 100.
func (s *Service) ListByUser(userID string, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.orders.ListByUser(userID, limit)
}

// Timeline возвращает историю событий заказа.
func (s *Service) Timeline(orderID string) ([]domain.TimelineEvent, error) {
	if _, err := s.orders.Get(orderID); err != nil {
		return nil, err
	}
	return s.timeline.List(orderID)
}

// UpdateStatus переводит заказ в новый статус через таблицу переходов.
//
// Повтор текущего статуса — идемпотентный no-op. Провайдер платежа
// нужен ради COD-исключения (pending -> shipped без оплаты).
func (s *Service) UpdateStatus(orderID string, target domain.OrderStatus, reason string) (domain.Order, error) {
	if !target.Valid() {
		return domain.Order{}, &domain.ValidationError{Reason: "unknown order status: " + string(target)}
	}

	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	payment, err := s.payments.GetByOrderID(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if err := domain.ValidateTransition(order.Status, target, payment.Provider); err != nil {
		return domain.Order{}, err
	}

	if order.Status == target {
		return order, nil
	}

	order.Status = target
	order.UpdatedAt = time.Now().UTC()

	eventType := domain.TimelineOrderStatusChanged
	if target == domain.OrderStatusCancelled {
		eventType = domain.TimelineOrderCancelled
		if reason != "" {
			order.CancellationReason = reason
		}
	}

	if err := s.orders.Save(order); err != nil {
		return domain.Order{}, err
	}

	s.appendTimeline(orderID, eventType, reason)
	s.enqueueStatusEvent(order, reason)

	return order, nil
}

func (s *Service) appendTimeline(orderID, eventType, reason string) {
	err := s.timeline.Append(domain.TimelineEvent{
		OrderID:  orderID,
		Type:     eventType,
		Reason:   reason,
		Occurred: time.Now().UTC(),
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Warn("append timeline failed")
		return
	}
	if s.metrics != nil {
		s.metrics.RecordTimelineEvent()
	}
}

func (s *Service) enqueueStatusEvent(order domain.Order, reason string) {
	eventType := kafka.EventTypeOrderStatusChanged
	if order.Status == domain.OrderStatusCancelled {
		eventType = kafka.EventTypeOrderCancelled
	}

	payload, err := json.Marshal(map[string]interface{}{
		"order_id": order.ID,
		"status":   string(order.Status),
		"reason":   reason,
		"ts":       time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		s.logger.WithError(err).Warn("marshal outbox payload failed")
		return
	}

	_, err = s.outbox.Enqueue(domain.OutboxMessage{
		ID:            uuid.NewString(),
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     string(eventType),
		Payload:       payload,
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("enqueue outbox event failed")
		return
	}
	if s.metrics != nil {
		s.metrics.RecordOutboxEvent()
	}
}
