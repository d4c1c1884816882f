package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/service/checkout"
)

// idempotencyTTL — срок хранения сохранённого ответа для повторов.
const idempotencyTTL = 24 * time.Hour

type checkoutItemRequest struct {
	VariantID string `json:"variant_id"`
	Qty       int32  `json:"qty"`
}

type contactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type checkoutRequest struct {
	UserID            *string               `json:"user_id"`
	Items             []checkoutItemRequest `json:"items"`
	Contact           contactRequest        `json:"contact"`
	ShippingAddress   addressPayload        `json:"shipping_address"`
	BillingAddress    addressPayload        `json:"billing_address"`
	UseBillingAddress bool                  `json:"use_billing_address"`
	Provider          string                `json:"provider"`
}

type checkoutResponse struct {
	Success     bool         `json:"success"`
	Error       string       `json:"error,omitempty"`
	Order       *orderView   `json:"order,omitempty"`
	Payment     *paymentView `json:"payment,omitempty"`
	PaymentForm *formView    `json:"payment_form,omitempty"`
}

// handleCheckout проводит оформление заказа.
//
// Контракт ответа отличается от остальных ручек: бизнес-отказ (неизвестный
// вариант, нехватка остатка, кривой ввод) — это НЕ транспортная ошибка,
// а штатный ответ 200 с {"success":false,"error":...}, который витрина
// показывает покупателю. 5xx остаются за инфраструктурными сбоями.
//
// Заголовок Idempotency-Key опционален: при повторе завершённого запроса
// возвращается сохранённый ответ, конкурентный повтор с тем же ключом
// получает 409, повтор ключа с другим телом — 422.
func (s *Server) handleCheckout(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, checkoutResponse{Success: false, Error: "failed to read request body"})
		return
	}

	var req checkoutRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, checkoutResponse{Success: false, Error: "invalid request body"})
		return
	}

	idemKey := c.GetHeader("Idempotency-Key")
	if idemKey != "" && !s.claimIdempotencyKey(c, idemKey, body) {
		return
	}

	items := make([]domain.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.CartItem{VariantID: item.VariantID, Qty: item.Qty})
	}

	result, err := s.checkout.Checkout(checkout.Request{
		UserID: req.UserID,
		Items:  items,
		Contact: checkout.Contact{
			Name:  req.Contact.Name,
			Email: req.Contact.Email,
			Phone: req.Contact.Phone,
		},
		ShippingAddress:   req.ShippingAddress.toDomain(),
		BillingAddress:    req.BillingAddress.toDomain(),
		UseBillingAddress: req.UseBillingAddress,
		Provider:          domain.PaymentProvider(req.Provider),
	})

	switch {
	case err == nil:
		order := newOrderView(result.Order)
		payment := newPaymentView(result.Payment)
		resp := checkoutResponse{Success: true, Order: &order, Payment: &payment}
		if result.Form != nil {
			form := newFormView(*result.Form)
			resp.PaymentForm = &form
		}
		s.writeCheckoutResponse(c, idemKey, http.StatusCreated, resp)
	case domain.IsDomainError(err):
		s.writeCheckoutResponse(c, idemKey, http.StatusOK, checkoutResponse{Success: false, Error: err.Error()})
	default:
		s.logger.WithError(err).Warn("checkout failed with infrastructure error")
		s.failCheckoutResponse(c, idemKey, checkoutResponse{Success: false, Error: "internal error"})
	}
}

// claimIdempotencyKey регистрирует ключ перед обработкой. Возвращает false,
// если ответ уже отправлен (повтор, конфликт или ошибка хранилища).
func (s *Server) claimIdempotencyKey(c *gin.Context, key string, body []byte) bool {
	sum := sha256.Sum256(body)
	requestHash := hex.EncodeToString(sum[:])

	existing, err := s.idempotency.CreateProcessing(key, requestHash, time.Now().UTC().Add(idempotencyTTL))
	switch {
	case err == nil:
		return true
	case errors.Is(err, domain.ErrIdempotencyHashMismatch):
		c.JSON(http.StatusUnprocessableEntity, checkoutResponse{Success: false, Error: err.Error()})
		return false
	case errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists):
		if !existing.Replayable() {
			c.JSON(http.StatusConflict, checkoutResponse{
				Success: false,
				Error:   "request with this idempotency key is still being processed",
			})
			return false
		}
		c.Data(existing.HTTPStatus, "application/json; charset=utf-8", existing.ResponseBody)
		return false
	case errors.Is(err, domain.ErrIdempotencyKeyRequired), errors.Is(err, domain.ErrIdempotencyRequestHashRequired):
		c.JSON(http.StatusBadRequest, checkoutResponse{Success: false, Error: err.Error()})
		return false
	default:
		s.logger.WithError(err).Warn("idempotency key registration failed")
		c.JSON(http.StatusInternalServerError, checkoutResponse{Success: false, Error: "internal error"})
		return false
	}
}

// writeCheckoutResponse отдаёт финальный ответ и фиксирует его для повторов.
// Бизнес-отказ — тоже финальный исход: повтор ключа вернёт тот же отказ.
func (s *Server) writeCheckoutResponse(c *gin.Context, idemKey string, status int, resp checkoutResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.WithError(err).Error("marshal checkout response failed")
		c.JSON(http.StatusInternalServerError, checkoutResponse{Success: false, Error: "internal error"})
		return
	}

	if idemKey != "" {
		if err := s.idempotency.MarkDone(idemKey, payload, status); err != nil {
			s.logger.WithError(err).WithField("idempotency_key", idemKey).Warn("mark idempotency done failed")
		}
	}
	c.Data(status, "application/json; charset=utf-8", payload)
}

// failCheckoutResponse отдаёт 500; ключ помечается failed, чтобы повтор
// запроса мог попробовать ещё раз после истечения TTL либо с новым ключом.
func (s *Server) failCheckoutResponse(c *gin.Context, idemKey string, resp checkoutResponse) {
	payload, _ := json.Marshal(resp)
	if idemKey != "" {
		if err := s.idempotency.MarkFailed(idemKey, payload, http.StatusInternalServerError); err != nil {
			s.logger.WithError(err).WithField("idempotency_key", idemKey).Warn("mark idempotency failed failed")
		}
	}
	c.Data(http.StatusInternalServerError, "application/json; charset=utf-8", payload)
}
