package checkout_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/gateway"
	"github.com/vladislavdragonenkov/checkout/internal/service/checkout"
	"github.com/vladislavdragonenkov/checkout/internal/storage/memory"
)

type checkoutFixture struct {
	service  *checkout.Service
	orders   domain.OrderRepository
	payments domain.PaymentRepository
	timeline domain.TimelineRepository
	outbox   *outboxProbe
}

type outboxProbe struct {
	domain.OutboxRepository
	enqueued []domain.OutboxMessage
}

func (p *outboxProbe) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	stored, err := p.OutboxRepository.Enqueue(msg)
	if err == nil {
		p.enqueued = append(p.enqueued, stored)
	}
	return stored, err
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	variants := memory.NewVariantRepository()
	variants.Seed(
		domain.Variant{ID: "variant-1", PriceMinor: 1500, Stock: 10},
		domain.Variant{ID: "variant-2", PriceMinor: 250, Stock: 1},
	)

	orders := memory.NewOrderRepository()
	payments := memory.NewPaymentRepository()
	timeline := memory.NewTimelineRepository()
	outbox := &outboxProbe{OutboxRepository: memory.NewOutboxRepository()}

	cfg := gateway.Config{
		StoreName:    "teststore",
		SharedSecret: "test-shared-secret",
		PaymentURL:   "https://gateway.example/connect",
		Timezone:     "Europe/Berlin",
		CurrencyName: "EUR",
		CurrencyCode: "978",
		FrontendURL:  "https://shop.example",
		BackendURL:   "https://api.shop.example",
	}
	signer := gateway.NewSigner(cfg, nil)
	forms, err := gateway.NewFormBuilder(cfg, signer)
	require.NoError(t, err)

	validator := checkout.NewInventoryValidator(variants, nil)
	writer := checkout.NewOrderWriter(orders, nil, nil)
	service := checkout.NewService(validator, writer, payments, timeline, outbox, forms, "EUR", nil, nil)

	return &checkoutFixture{
		service:  service,
		orders:   orders,
		payments: payments,
		timeline: timeline,
		outbox:   outbox,
	}
}

func gatewayRequest() checkout.Request {
	return checkout.Request{
		Items: []domain.CartItem{{VariantID: "variant-1", Qty: 2}},
		Contact: checkout.Contact{
			Name:  "Иван Иванов",
			Email: "ivan@example.com",
		},
		ShippingAddress: domain.Address{
			Name:    "Иван Иванов",
			Line1:   "ул. Ленина, 1",
			City:    "Москва",
			Country: "RU",
			Zip:     "101000",
		},
		Provider: domain.PaymentProviderGateway,
	}
}

func TestCheckout_GatewayHappyPath(t *testing.T) {
	fx := newCheckoutFixture(t)

	result, err := fx.service.Checkout(gatewayRequest())
	require.NoError(t, err)

	require.Equal(t, domain.OrderStatusPending, result.Order.Status)
	require.Equal(t, int64(3000), result.Order.AmountMinor)
	require.Len(t, result.Order.Items, 1)

	require.Equal(t, domain.PaymentStatusPending, result.Payment.Status)
	require.Equal(t, domain.PaymentProviderGateway, result.Payment.Provider)
	require.Equal(t, result.Order.ID, result.Payment.OrderID)

	require.NotNil(t, result.Form)
	require.Equal(t, "https://gateway.example/connect", result.Form.ActionURL)
	require.Equal(t, result.Order.ID, result.Form.Fields["oid"])
	require.Equal(t, "30.00", result.Form.Fields["chargetotal"])
	require.NotEmpty(t, result.Form.Fields["hashExtended"])

	stored, err := fx.orders.Get(result.Order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	// Контактный адрес сохраняется на заказе: по нему webhook-исходы
	// адресуют письма покупателю.
	require.Equal(t, "ivan@example.com", stored.Email)

	payment, err := fx.payments.GetByOrderID(result.Order.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3000), payment.AmountMinor)

	events, err := fx.timeline.List(result.Order.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "OrderCreated", events[0].Type)

	require.Len(t, fx.outbox.enqueued, 1)
	require.Equal(t, result.Order.ID, fx.outbox.enqueued[0].AggregateID)
}

func TestCheckout_CODSkipsForm(t *testing.T) {
	fx := newCheckoutFixture(t)

	req := gatewayRequest()
	req.Provider = domain.PaymentProviderCOD

	result, err := fx.service.Checkout(req)
	require.NoError(t, err)
	require.Nil(t, result.Form)
	require.Equal(t, domain.PaymentProviderCOD, result.Payment.Provider)
}

func TestCheckout_BillingAddressFallsBackToShipping(t *testing.T) {
	fx := newCheckoutFixture(t)

	result, err := fx.service.Checkout(gatewayRequest())
	require.NoError(t, err)
	require.Equal(t, result.Order.ShippingAddress, result.Order.BillingAddress)
}

func TestCheckout_ExplicitBillingAddressKept(t *testing.T) {
	fx := newCheckoutFixture(t)

	req := gatewayRequest()
	req.UseBillingAddress = true
	req.BillingAddress = domain.Address{
		Name:    "ООО Ромашка",
		Line1:   "пр. Мира, 10",
		City:    "Казань",
		Country: "RU",
		Zip:     "420000",
	}

	result, err := fx.service.Checkout(req)
	require.NoError(t, err)
	require.Equal(t, "пр. Мира, 10", result.Order.BillingAddress.Line1)
	require.Equal(t, "ООО Ромашка", result.Form.Fields["bname"])
}

func TestCheckout_UnknownVariantFailsBeforeWrite(t *testing.T) {
	fx := newCheckoutFixture(t)

	req := gatewayRequest()
	req.Items = []domain.CartItem{{VariantID: "ghost", Qty: 1}}

	_, err := fx.service.Checkout(req)
	require.True(t, domain.IsDomainError(err))
	require.Empty(t, fx.outbox.enqueued)
}

func TestCheckout_InsufficientStockFails(t *testing.T) {
	fx := newCheckoutFixture(t)

	req := gatewayRequest()
	req.Items = []domain.CartItem{{VariantID: "variant-2", Qty: 3}}

	_, err := fx.service.Checkout(req)
	require.True(t, domain.IsDomainError(err))
	require.Contains(t, err.Error(), "insufficient stock")
}

func TestCheckout_ValidationFailures(t *testing.T) {
	fx := newCheckoutFixture(t)

	noEmail := gatewayRequest()
	noEmail.Contact.Email = ""
	_, err := fx.service.Checkout(noEmail)
	require.True(t, domain.IsDomainError(err))

	badProvider := gatewayRequest()
	badProvider.Provider = "bitcoin"
	_, err = fx.service.Checkout(badProvider)
	require.True(t, domain.IsDomainError(err))

	noAddress := gatewayRequest()
	noAddress.ShippingAddress = domain.Address{}
	_, err = fx.service.Checkout(noAddress)
	require.True(t, domain.IsDomainError(err))
}
