package gateway

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// TxnDateTimeLayout — формат txndatetime, который требует шлюз.
const TxnDateTimeLayout = "2006:01:02-15:04:05"

const (
	checkoutOption = "combinedpage"
	txnTypeSale    = "sale"
	hashAlgorithm  = "HMACSHA256"
)

// FormRequest — данные покупателя, необходимые для сборки платёжной формы.
type FormRequest struct {
	ShippingAddress domain.Address
	BillingAddress  domain.Address
	// UseBillingAddress выставляется, если покупатель явно указал
	// отдельный биллинговый адрес.
	UseBillingAddress bool
	Email             string
	Phone             string
}

// FormDescriptor — готовая к отправке форма. Эфемерный объект:
// не сохраняется, возвращается вызывающему для редиректа на шлюз.
type FormDescriptor struct {
	ActionURL string
	Method    string
	Fields    map[string]string
}

// FormBuilder собирает фиксированный набор параметров шлюза и
// делегирует подпись Signer'у.
type FormBuilder struct {
	cfg    Config
	signer *Signer
	// location резолвится один раз в конструкторе.
	location *time.Location
	now      func() time.Time
}

// NewFormBuilder создаёт FormBuilder. Ошибка возможна только при
// неизвестной таймзоне, что фатально на старте.
func NewFormBuilder(cfg Config, signer *Signer) (*FormBuilder, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load gateway timezone %q: %w", cfg.Timezone, err)
	}
	return &FormBuilder{
		cfg:      cfg,
		signer:   signer,
		location: loc,
		now:      time.Now,
	}, nil
}

// Build собирает дескриптор формы для заказа.
//
// Биллинговый адрес: явный, если покупатель его указал, иначе адрес
// доставки. Если не резолвится ни один — ValidationError, форму
// без 3-D Secure полей шлюз не примет.
func (b *FormBuilder) Build(req FormRequest, orderID string, amountMinor int64) (FormDescriptor, error) {
	billing := req.ShippingAddress
	if req.UseBillingAddress {
		billing = req.BillingAddress
	}
	if billing.Empty() {
		return FormDescriptor{}, domain.ErrBillingAddressRequired
	}

	fields := map[string]string{
		"storename":                  b.cfg.StoreName,
		"checkoutoption":             checkoutOption,
		"txntype":                    txnTypeSale,
		"timezone":                   b.cfg.Timezone,
		"txndatetime":                b.now().In(b.location).Format(TxnDateTimeLayout),
		"hash_algorithm":             hashAlgorithm,
		"chargetotal":                domain.FormatAmountMinor(amountMinor),
		"currency":                   b.cfg.CurrencyCode,
		"responseSuccessURL":         b.callbackURL("/payments/success"),
		"responseFailURL":            b.callbackURL("/payments/fail"),
		"transactionNotificationURL": b.callbackURL("/payments/webhook"),
		"bname":                      billing.Name,
		"baddr1":                     billing.Line1,
		"bcity":                      billing.City,
		"bcountry":                   billing.Country,
		"bzip":                       billing.Zip,
		"email":                      req.Email,
		"oid":                        orderID,
	}

	// Необязательные поля шлюз принимает только заполненными;
	// пустые в форму не попадают.
	for key, value := range map[string]string{
		"baddr2": billing.Line2,
		"bstate": billing.State,
		"phone":  req.Phone,
	} {
		if value != "" {
			fields[key] = value
		}
	}

	// Подпись считается по всем непустым полям; hashExtended добавляется
	// уже после вычисления и сам в строку подписи не входит.
	fields["hashExtended"] = b.signer.SignParams(fields)

	return FormDescriptor{
		ActionURL: b.cfg.PaymentURL,
		Method:    http.MethodPost,
		Fields:    fields,
	}, nil
}

func (b *FormBuilder) callbackURL(path string) string {
	return strings.TrimRight(b.cfg.BackendURL, "/") + path
}
