package httpapi

import (
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/gateway"
)

// addressPayload используется и во входных запросах, и в ответах.
type addressPayload struct {
	Name    string `json:"name"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Country string `json:"country"`
	Zip     string `json:"zip"`
}

func (a addressPayload) toDomain() domain.Address {
	return domain.Address{
		Name:    a.Name,
		Line1:   a.Line1,
		Line2:   a.Line2,
		City:    a.City,
		State:   a.State,
		Country: a.Country,
		Zip:     a.Zip,
	}
}

func newAddressView(a domain.Address) addressPayload {
	return addressPayload{
		Name:    a.Name,
		Line1:   a.Line1,
		Line2:   a.Line2,
		City:    a.City,
		State:   a.State,
		Country: a.Country,
		Zip:     a.Zip,
	}
}

type itemView struct {
	ID            string  `json:"id"`
	VariantID     *string `json:"variant_id"`
	Qty           int32   `json:"qty"`
	PriceMinor    int64   `json:"price_minor"`
	DiscountMinor int64   `json:"discount_minor,omitempty"`
}

type orderView struct {
	ID                 string         `json:"id"`
	UserID             *string        `json:"user_id,omitempty"`
	Email              string         `json:"email,omitempty"`
	Status             string         `json:"status"`
	Currency           string         `json:"currency"`
	AmountMinor        int64          `json:"amount_minor"`
	Amount             string         `json:"amount"`
	ShippingAddress    addressPayload `json:"shipping_address"`
	BillingAddress     addressPayload `json:"billing_address"`
	CancellationReason string         `json:"cancellation_reason,omitempty"`
	Items              []itemView     `json:"items"`
	Version            int64          `json:"version"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func newOrderView(o domain.Order) orderView {
	items := make([]itemView, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, itemView{
			ID:            item.ID,
			VariantID:     item.VariantID,
			Qty:           item.Qty,
			PriceMinor:    item.PriceMinor,
			DiscountMinor: item.DiscountMinor,
		})
	}

	return orderView{
		ID:                 o.ID,
		UserID:             o.UserID,
		Email:              o.Email,
		Status:             string(o.Status),
		Currency:           o.Currency,
		AmountMinor:        o.AmountMinor,
		Amount:             domain.FormatAmountMinor(o.AmountMinor),
		ShippingAddress:    newAddressView(o.ShippingAddress),
		BillingAddress:     newAddressView(o.BillingAddress),
		CancellationReason: o.CancellationReason,
		Items:              items,
		Version:            o.Version,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

type paymentView struct {
	ID           string     `json:"id"`
	OrderID      string     `json:"order_id"`
	Provider     string     `json:"provider"`
	Status       string     `json:"status"`
	AmountMinor  int64      `json:"amount_minor"`
	Currency     string     `json:"currency"`
	ApprovalCode string     `json:"approval_code,omitempty"`
	RefNumber    string     `json:"refnumber,omitempty"`
	CardBrand    string     `json:"card_brand,omitempty"`
	FailReason   string     `json:"fail_reason,omitempty"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
}

func newPaymentView(p domain.Payment) paymentView {
	return paymentView{
		ID:           p.ID,
		OrderID:      p.OrderID,
		Provider:     string(p.Provider),
		Status:       string(p.Status),
		AmountMinor:  p.AmountMinor,
		Currency:     p.Currency,
		ApprovalCode: p.ApprovalCode,
		RefNumber:    p.RefNumber,
		CardBrand:    p.CardBrand,
		FailReason:   p.FailReason,
		ProcessedAt:  p.ProcessedAt,
	}
}

// formView — эфемерная платёжная форма; клиент рендерит auto-submit форму
// по этим полям, на сервере она нигде не сохраняется.
type formView struct {
	ActionURL string            `json:"action_url"`
	Method    string            `json:"method"`
	Fields    map[string]string `json:"fields"`
}

func newFormView(f gateway.FormDescriptor) formView {
	return formView{
		ActionURL: f.ActionURL,
		Method:    f.Method,
		Fields:    f.Fields,
	}
}

type timelineEventView struct {
	Type     string    `json:"type"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurred"`
}

func newTimelineView(events []domain.TimelineEvent) []timelineEventView {
	views := make([]timelineEventView, 0, len(events))
	for _, event := range events {
		views = append(views, timelineEventView{
			Type:     event.Type,
			Reason:   event.Reason,
			Occurred: event.Occurred,
		})
	}
	return views
}
