package httpapi

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/gateway"
)

// handleWebhook принимает form-encoded уведомление шлюза.
//
// Любой не-2xx ответ заставит шлюз повторить доставку, поэтому коды
// здесь значимы: 401 — подпись не сошлась (повтор бесполезен, но
// безопасен), 404/422 — бизнес-отказ, 500 — стоит повторить.
func (s *Server) handleWebhook(c *gin.Context) {
	var n gateway.Notification
	if err := c.ShouldBind(&n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed notification payload"})
		return
	}

	if err := s.webhook.Process(n); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// redirectCallback — параметры, с которыми шлюз возвращает браузер
// покупателя. Форма может быть неполной: редиректим в любом случае.
type redirectCallback struct {
	OrderID    string `form:"oid"`
	Status     string `form:"status"`
	RefNumber  string `form:"refnumber"`
	FailReason string `form:"fail_reason"`
}

func (s *Server) handlePaymentSuccess(c *gin.Context) {
	s.handlePaymentReturn(c, "success")
}

func (s *Server) handlePaymentFail(c *gin.Context) {
	s.handlePaymentReturn(c, "fail")
}

// handlePaymentReturn редиректит покупателя на витрину и асинхронно
// отправляет письмо об исходе оплаты. Письмо никогда не задерживает
// редирект: поиск адресата и ошибка доставки только логируются.
func (s *Server) handlePaymentReturn(c *gin.Context, outcome string) {
	var cb redirectCallback
	if err := c.ShouldBind(&cb); err != nil {
		s.logger.WithError(err).Debug("malformed payment return form")
	}

	go s.sendPaymentResultMail(cb, outcome)

	c.Redirect(http.StatusFound, s.redirectURL(outcome, cb))
}

// sendPaymentResultMail доставляет письмо об исходе оплаты. Адресат
// берётся из заказа; без заказа или адреса письмо пропускается.
func (s *Server) sendPaymentResultMail(cb redirectCallback, outcome string) {
	notification := domain.PaymentNotification{
		OrderID:    cb.OrderID,
		Status:     cb.Status,
		FailReason: cb.FailReason,
	}
	if cb.OrderID != "" {
		order, err := s.orders.Get(cb.OrderID)
		if err != nil {
			s.logger.WithError(err).WithField("order_id", cb.OrderID).
				Debug("order lookup for payment result mail failed")
		} else {
			notification.Recipient = order.Email
		}
	}
	if notification.Recipient == "" {
		s.logger.WithFields(log.Fields{
			"order_id": cb.OrderID,
			"outcome":  outcome,
		}).Debug("payment result mail skipped, no recipient")
		return
	}

	if err := s.mailer.Send(notification); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": notification.OrderID,
			"outcome":  outcome,
		}).Warn("payment result mail failed")
	}
}

func (s *Server) redirectURL(outcome string, cb redirectCallback) string {
	values := url.Values{}
	if cb.OrderID != "" {
		values.Set("oid", cb.OrderID)
	}
	if cb.Status != "" {
		values.Set("status", cb.Status)
	}
	if cb.RefNumber != "" {
		values.Set("refnumber", cb.RefNumber)
	}
	if cb.FailReason != "" {
		values.Set("fail_reason", cb.FailReason)
	}

	target := strings.TrimRight(s.frontendURL, "/") + "/checkout/" + outcome
	if query := values.Encode(); query != "" {
		target += "?" + query
	}
	return target
}
