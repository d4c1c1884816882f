package domain

import "time"

// OrderStatus описывает жизненный цикл заказа в checkout-сервисе.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, оплата ещё не подтверждена.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusPaid — шлюз подтвердил оплату заказа.
	OrderStatusPaid OrderStatus = "paid"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ доставлен покупателю.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён; терминальный статус.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Address — адрес доставки или биллинга.
type Address struct {
	Name    string
	Line1   string
	Line2   string
	City    string
	State   string
	Country string
	Zip     string
}

// Empty сообщает, что адрес не заполнен даже минимально.
func (a Address) Empty() bool {
	return a.Line1 == "" && a.City == "" && a.Country == ""
}

// OrderLineItem представляет одну позицию заказа.
// Позиции создаются атомарно вместе с заказом и после этого не меняются.
type OrderLineItem struct {
	ID      string
	OrderID string
	// VariantID — слабая ссылка на вариант товара: при удалении варианта
	// из каталога ссылка обнуляется, позиция остаётся.
	VariantID *string
	// Qty — количество единиц, строго положительное.
	Qty int32
	// PriceMinor — цена за единицу на момент заказа в минимальных единицах.
	// Историческая цена: последующие изменения каталога её не трогают.
	PriceMinor int64
	// DiscountMinor — необязательная скидка на позицию.
	DiscountMinor int64
	CreatedAt     time.Time
}

// Order — корневой агрегат заказа.
type Order struct {
	ID string
	// UserID пуст для гостевого оформления заказа.
	UserID *string
	// Email — контактный адрес покупателя; по нему уходят письма
	// об исходе оплаты.
	Email           string
	Status          OrderStatus
	Currency        string
	AmountMinor     int64
	ShippingAddress Address
	BillingAddress  Address
	// CancellationReason заполняется только при переходе в cancelled.
	CancellationReason string
	Items              []OrderLineItem
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.Currency == "" {
		errs = append(errs, ErrCurrencyRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.AmountMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}
	if o.ShippingAddress.Empty() {
		errs = append(errs, ErrShippingAddressRequired)
	}

	// Сумма заказа фиксируется при создании как Σ qty*price
	// и неявно никогда не пересчитывается.
	var calc int64
	for _, item := range o.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		calc += int64(item.Qty) * item.PriceMinor
	}
	if calc != o.AmountMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}
