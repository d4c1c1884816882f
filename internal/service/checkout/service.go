package checkout

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/gateway"
	"github.com/vladislavdragonenkov/checkout/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/checkout/internal/metrics"
)

// Contact — контактные данные покупателя для 3-D Secure полей и писем.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// Request — запрос на оформление заказа.
type Request struct {
	// UserID пуст для гостевого оформления.
	UserID          *string
	Items           []domain.CartItem
	Contact         Contact
	ShippingAddress domain.Address
	// BillingAddress учитывается только при UseBillingAddress.
	BillingAddress    domain.Address
	UseBillingAddress bool
	Provider          domain.PaymentProvider
}

// Result — результат оформления. Для оплат через шлюз содержит форму
// для редиректа; для COD форма и webhook не используются вовсе.
type Result struct {
	Order   domain.Order
	Payment domain.Payment
	Form    *gateway.FormDescriptor
}

// Service — конвейер оформления заказа: валидация корзины, запись
// заказа, платёжная запись, платёжная форма.
type Service struct {
	validator *InventoryValidator
	writer    *OrderWriter
	payments  domain.PaymentRepository
	timeline  domain.TimelineRepository
	outbox    domain.OutboxRepository
	forms     *gateway.FormBuilder
	currency  string
	metrics   *metrics.CheckoutMetrics
	logger    *log.Entry
}

// NewService конструирует сервис с зависимостями. metrics может быть nil.
func NewService(
	validator *InventoryValidator,
	writer *OrderWriter,
	payments domain.PaymentRepository,
	timeline domain.TimelineRepository,
	outbox domain.OutboxRepository,
	forms *gateway.FormBuilder,
	currency string,
	m *metrics.CheckoutMetrics,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "checkout")
	}
	return &Service{
		validator: validator,
		writer:    writer,
		payments:  payments,
		timeline:  timeline,
		outbox:    outbox,
		forms:     forms,
		currency:  currency,
		metrics:   m,
		logger:    logger,
	}
}


// Checkout проводит запрос через весь конвейер.
//
// Бизнес-ошибки (неизвестный вариант, нехватка остатка, нерезолвящийся
// биллинговый адрес) возвращаются типизированными, чтобы транспорт мог
// отдать структурированный отказ. Инфраструктурные ошибки прокидываются
// как есть; автоматических повторов нет.
func (s *Service) Checkout(req Request) (Result, error) {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.RecordCheckoutStarted()
		defer func() {
			s.metrics.RecordCheckoutDuration(time.Since(start))
		}()
	}

	result, err := s.checkout(req)
	if s.metrics != nil {
		if err != nil {
			s.metrics.RecordCheckoutFailed()
		} else {
			s.metrics.RecordCheckoutCompleted()
		}
	}
	return result, err
}

func (s *Service) checkout(req Request) (Result, error) {
	if req.Provider != domain.PaymentProviderGateway && req.Provider != domain.PaymentProviderCOD {
		return Result{}, &domain.ValidationError{Reason: "unsupported payment provider"}
	}
	if req.Contact.Email == "" {
		return Result{}, &domain.ValidationError{Reason: "email is required"}
	}

	snapshots, totalMinor, err := s.validator.Validate(req.Items)
	if err != nil {
		return Result{}, err
	}

	now := time.Now().UTC()
	orderID := uuid.NewString()

	items := make([]domain.OrderLineItem, 0, len(req.Items))
	for _, cartItem := range req.Items {
		variant := snapshots[cartItem.VariantID]
		variantID := variant.ID
		items = append(items, domain.OrderLineItem{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			VariantID: &variantID,
			Qty:       cartItem.Qty,
			// Цена фиксируется из каталога на момент заказа.
			PriceMinor: variant.PriceMinor,
			CreatedAt:  now,
		})
	}

	order := domain.Order{
		ID:              orderID,
		UserID:          req.UserID,
		Email:           req.Contact.Email,
		Status:          domain.OrderStatusPending,
		Currency:        s.currency,
		AmountMinor:     totalMinor,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		Items:           items,
		Version:         0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if !req.UseBillingAddress {
		order.BillingAddress = req.ShippingAddress
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return Result{}, &domain.ValidationError{Reason: joinErrors(errs)}
	}

	if err := s.writer.Create(order); err != nil {
		return Result{}, err
	}

	payment := domain.Payment{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		Provider:    req.Provider,
		Status:      domain.PaymentStatusPending,
		AmountMinor: totalMinor,
		Currency:    s.currency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.payments.Create(payment); err != nil {
		return Result{}, err
	}

	s.appendTimeline(orderID, domain.TimelineOrderCreated, "")
	s.enqueueEvent(kafka.EventTypeOrderCreated, order, payment)

	result := Result{Order: order, Payment: payment}

	// COD обходит и платёжную форму, и асинхронный webhook целиком.
	if req.Provider == domain.PaymentProviderGateway {
		form, err := s.forms.Build(gateway.FormRequest{
			ShippingAddress:   req.ShippingAddress,
			BillingAddress:    req.BillingAddress,
			UseBillingAddress: req.UseBillingAddress,
			Email:             req.Contact.Email,
			Phone:             req.Contact.Phone,
		}, orderID, totalMinor)
		if err != nil {
			return Result{}, err
		}
		result.Form = &form
	}

	return result, nil
}

// appendTimeline пишет событие истории заказа; неудача не прерывает поток.
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

// enqueueEvent кладёт событие в outbox; неудача логируется, заказ уже создан.
func (s *Service) enqueueEvent(eventType kafka.EventType, order domain.Order, payment domain.Payment) {
	payload, err := json.Marshal(map[string]interface{}{
		"order_id":     order.ID,
		"status":       string(order.Status),
		"amount_minor": order.AmountMinor,
		"currency":     order.Currency,
		"provider":     string(payment.Provider),
		"ts":           time.Now().UTC().Format(time.RFC3339Nano),
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

func joinErrors(errs []error) string {
	msg := ""
	for i, err := range errs {
		if i > 0 {
			msg += "; "
		}
		msg += err.Error()
	}
	return msg
}
