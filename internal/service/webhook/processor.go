package webhook

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/gateway"
	"github.com/vladislavdragonenkov/checkout/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/checkout/internal/metrics"
)

// Словари соответствия статусов шлюза внутренним статусам.
// Неизвестные статусы в обеих таблицах трактуются как pending.
var paymentStatusByGateway = map[gateway.GatewayStatus]domain.PaymentStatus{
	gateway.StatusApproved:          domain.PaymentStatusCompleted,
	gateway.StatusDeclined:          domain.PaymentStatusFailed,
	gateway.StatusFailed:            domain.PaymentStatusFailed,
	gateway.StatusWaiting:           domain.PaymentStatusPending,
	gateway.StatusPartiallyApproved: domain.PaymentStatusApproved,
}

var orderStatusByGateway = map[gateway.GatewayStatus]domain.OrderStatus{
	gateway.StatusApproved:          domain.OrderStatusPaid,
	gateway.StatusDeclined:          domain.OrderStatusCancelled,
	gateway.StatusFailed:            domain.OrderStatusCancelled,
	gateway.StatusWaiting:           domain.OrderStatusPending,
	gateway.StatusPartiallyApproved: domain.OrderStatusPending,
}


// Processor обрабатывает асинхронные webhook-уведомления шлюза.
// Сам по себе состояния между вызовами не хранит; повторная доставка
// одного уведомления безопасна за счёт no-op переходов статусов.
type Processor struct {
	signer   *gateway.Signer
	orders   domain.OrderRepository
	payments domain.PaymentRepository
	timeline domain.TimelineRepository
	outbox   domain.OutboxRepository
	location *time.Location
	metrics  *metrics.CheckoutMetrics
	logger   *log.Entry
}

// NewProcessor создаёт обработчик. Ошибка возможна только при неизвестной
// таймзоне шлюза, что фатально на старте.
func NewProcessor(
	cfg gateway.Config,
	signer *gateway.Signer,
	orders domain.OrderRepository,
	payments domain.PaymentRepository,
	timeline domain.TimelineRepository,
	outbox domain.OutboxRepository,
	m *metrics.CheckoutMetrics,
	logger *log.Entry,
) (*Processor, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load gateway timezone %q: %w", cfg.Timezone, err)
	}
	if logger == nil {
		logger = log.WithField("component", "webhook")
	}
	return &Processor{
		signer:   signer,
		orders:   orders,
		payments: payments,
		timeline: timeline,
		outbox:   outbox,
		location: loc,
		metrics:  m,
		logger:   logger,
	}, nil
}

// Process проверяет подлинность уведомления и проводит платёж и заказ
// через смену статуса.
//
// Порядок жёсткий: сначала подпись (при провале — никаких изменений
// состояния), затем обновление платёжной записи, затем перевод статуса
// заказа через таблицу переходов. Обе записи независимы и ключуются
// order id; ошибка любой из них уходит вызывающему — шлюз повторит
// доставку на не-2xx ответ.
func (p *Processor) Process(n gateway.Notification) error {
	start := time.Now()
	if p.metrics != nil {
		p.metrics.RecordWebhookReceived()
		defer func() {
			p.metrics.RecordWebhookDuration(time.Since(start))
		}()
	}

	if !p.signer.VerifyNotification(n.ChargeTotal, n.Currency, n.TxnDateTime, n.ApprovalCode, n.NotificationHash) {
		if p.metrics != nil {
			p.metrics.RecordWebhookRejected()
		}
		// В лог — только частичные данные, полные хеши и секреты не пишем.
		p.logger.WithFields(log.Fields{
			"order_id": n.OrderID,
			"status":   n.Status,
		}).Warn("webhook signature rejected")
		return domain.ErrWebhookAuthentication
	}

	gatewayStatus := gateway.GatewayStatus(n.Status)
	paymentStatus, ok := paymentStatusByGateway[gatewayStatus]
	if !ok {
		paymentStatus = domain.PaymentStatusPending
	}
	orderStatus, ok := orderStatusByGateway[gatewayStatus]
	if !ok {
		orderStatus = domain.OrderStatusPending
	}

	payment, err := p.updatePayment(n, paymentStatus)
	if err != nil {
		return err
	}

	if err := p.updateOrder(n, orderStatus, payment.Provider); err != nil {
		return err
	}

	if p.metrics != nil {
		p.metrics.RecordWebhookProcessed(n.Status)
	}
	return nil
}

func (p *Processor) updatePayment(n gateway.Notification, status domain.PaymentStatus) (domain.Payment, error) {
	payment, err := p.payments.GetByOrderID(n.OrderID)
	if err != nil {
		return domain.Payment{}, err
	}

	// chargetotal входит в подпись, но подпись не привязывает его к заказу;
	// сумма уведомления обязана совпадать с платёжной записью.
	notified, err := domain.ParseAmount(n.ChargeTotal)
	if err != nil {
		return domain.Payment{}, &domain.ValidationError{
			Reason: fmt.Sprintf("malformed chargetotal %q", n.ChargeTotal),
		}
	}
	if notified != payment.AmountMinor {
		p.logger.WithFields(log.Fields{
			"order_id":    n.OrderID,
			"chargetotal": n.ChargeTotal,
		}).Warn("webhook chargetotal does not match payment amount")
		return domain.Payment{}, &domain.ValidationError{
			Reason: fmt.Sprintf("chargetotal %s does not match payment amount %s",
				n.ChargeTotal, domain.FormatAmountMinor(payment.AmountMinor)),
		}
	}

	now := time.Now().UTC()
	processedAt := p.parseTxnTime(n.TxnDateProcessed, n.TxnDateTime)

	payment.Status = status
	payment.ExternalID = n.IPGTransactionID
	payment.ApprovalCode = n.ApprovalCode
	payment.RefNumber = n.RefNumber
	payment.ProcessedAt = processedAt
	payment.ResponseHash = n.NotificationHash
	payment.FailReason = n.FailReason
	payment.CardBrand = n.CCBrand
	payment.UpdatedAt = now

	if err := p.payments.Update(payment); err != nil {
		return domain.Payment{}, err
	}
	return payment, nil
}

func (p *Processor) updateOrder(n gateway.Notification, target domain.OrderStatus, provider domain.PaymentProvider) error {
	order, err := p.orders.Get(n.OrderID)
	if err != nil {
		return err
	}

	if err := domain.ValidateTransition(order.Status, target, provider); err != nil {
		return err
	}

	if order.Status == target {
		// Повторная доставка уже применённого статуса — не ошибка.
		p.logger.WithFields(log.Fields{
			"order_id": order.ID,
			"status":   order.Status,
		}).Debug("webhook redelivery, order status already applied")
		return nil
	}

	order.Status = target
	order.UpdatedAt = time.Now().UTC()

	timelineEvent := domain.TimelinePaymentNotified
	reason := n.Status
	if target == domain.OrderStatusCancelled {
		timelineEvent = domain.TimelineOrderCancelled
		if n.FailReason != "" {
			// Причина отмены включает и статус шлюза, и его текст отказа.
			order.CancellationReason = fmt.Sprintf("payment %s: %s",
				strings.ToLower(n.Status), n.FailReason)
			reason = order.CancellationReason
		}
	}

	if err := p.orders.Save(order); err != nil {
		return err
	}

	p.appendTimeline(order.ID, timelineEvent, reason)
	p.enqueueEvent(order, n)
	p.enqueueMail(order, n)
	return nil
}

// parseTxnTime выбирает отметку времени обработки: txndate_processed,
// иначе txndatetime самого уведомления.
func (p *Processor) parseTxnTime(processed, fallback string) *time.Time {
	for _, raw := range []string{processed, fallback} {
		if raw == "" {
			continue
		}
		ts, err := time.ParseInLocation(gateway.TxnDateTimeLayout, raw, p.location)
		if err != nil {
			p.logger.WithField("txndatetime", raw).Debug("unparseable transaction timestamp")
			continue
		}
		utc := ts.UTC()
		return &utc
	}
	return nil
}

func (p *Processor) appendTimeline(orderID, eventType, reason string) {
	err := p.timeline.Append(domain.TimelineEvent{
		OrderID:  orderID,
		Type:     eventType,
		Reason:   reason,
		Occurred: time.Now().UTC(),
	})
	if err != nil {
		p.logger.WithError(err).WithField("order_id", orderID).Warn("append timeline failed")
		return
	}
	if p.metrics != nil {
		p.metrics.RecordTimelineEvent()
	}
}

func (p *Processor) enqueueEvent(order domain.Order, n gateway.Notification) {
	eventType := kafka.EventTypePaymentPending
	switch gateway.GatewayStatus(n.Status) {
	case gateway.StatusApproved:
		eventType = kafka.EventTypePaymentApproved
	case gateway.StatusDeclined, gateway.StatusFailed:
		eventType = kafka.EventTypePaymentDeclined
	}

	payload, err := json.Marshal(map[string]interface{}{
		"order_id":       order.ID,
		"order_status":   string(order.Status),
		"gateway_status": n.Status,
		"fail_reason":    n.FailReason,
		"ts":             time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		p.logger.WithError(err).Warn("marshal outbox payload failed")
		return
	}

	_, err = p.outbox.Enqueue(domain.OutboxMessage{
		ID:            uuid.NewString(),
		AggregateType: "payment",
		AggregateID:   order.ID,
		EventType:     string(eventType),
		Payload:       payload,
	})
	if err != nil {
		p.logger.WithError(err).WithField("order_id", order.ID).Warn("enqueue outbox event failed")
		return
	}
	if p.metrics != nil {
		p.metrics.RecordOutboxEvent()
	}
}

// enqueueMail ставит письмо об исходе оплаты в outbox; его доставит
// notification-воркер. Заказ без контактного адреса письмо не получает.
func (p *Processor) enqueueMail(order domain.Order, n gateway.Notification) {
	if order.Email == "" {
		p.logger.WithField("order_id", order.ID).Debug("payment result mail skipped, order has no email")
		return
	}

	payload, err := json.Marshal(
		kafka.NewNotificationEvent(order.ID, order.Email, string(order.Status), n.FailReason))
	if err != nil {
		p.logger.WithError(err).Warn("marshal notification payload failed")
		return
	}

	_, err = p.outbox.Enqueue(domain.OutboxMessage{
		ID:            uuid.NewString(),
		AggregateType: "notification",
		AggregateID:   order.ID,
		EventType:     string(kafka.EventTypeNotificationEmail),
		Payload:       payload,
	})
	if err != nil {
		p.logger.WithError(err).WithField("order_id", order.ID).Warn("enqueue notification event failed")
		return
	}
	if p.metrics != nil {
		p.metrics.RecordOutboxEvent()
	}
}
