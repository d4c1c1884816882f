package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/service/checkout"
	"github.com/vladislavdragonenkov/checkout/internal/service/orders"
	"github.com/vladislavdragonenkov/checkout/internal/service/webhook"
)

// Server — HTTP-поверхность сервиса: API витрины, callback'и шлюза.
// Бизнес-логики не содержит, только маппинг запросов и ошибок.
type Server struct {
	engine      *gin.Engine
	checkout    *checkout.Service
	orders      *orders.Service
	webhook     *webhook.Processor
	idempotency domain.IdempotencyRepository
	mailer      domain.Mailer
	frontendURL string
	logger      *log.Entry
}

// NewServer собирает маршруты поверх gin. mailer и idempotency обязательны:
// без первого не отправить письмо об исходе оплаты, без второго не работает
// Idempotency-Key на оформлении заказа.
func NewServer(
	checkoutSvc *checkout.Service,
	ordersSvc *orders.Service,
	webhookProc *webhook.Processor,
	idempotency domain.IdempotencyRepository,
	mailer domain.Mailer,
	frontendURL string,
	logger *log.Entry,
) *Server {
	if logger == nil {
		logger = log.WithField("component", "httpapi")
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	s := &Server{
		engine:      engine,
		checkout:    checkoutSvc,
		orders:      ordersSvc,
		webhook:     webhookProc,
		idempotency: idempotency,
		mailer:      mailer,
		frontendURL: frontendURL,
		logger:      logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/checkout", s.handleCheckout)

		ordersGroup := v1.Group("/orders")
		{
			ordersGroup.GET("/:id", s.handleGetOrder)
			ordersGroup.GET("/:id/timeline", s.handleOrderTimeline)
			ordersGroup.PUT("/:id/status", s.handleUpdateStatus)
		}

		v1.GET("/users/:id/orders", s.handleListUserOrders)
	}

	// Callback'и шлюза живут вне /api/v1: их адреса зашиты в подписанную
	// платёжную форму и должны совпадать с BackendURL конфигурации.
	payments := s.engine.Group("/payments")
	{
		payments.POST("/webhook", s.handleWebhook)
		payments.POST("/success", s.handlePaymentSuccess)
		payments.POST("/fail", s.handlePaymentFail)
	}
}

// Handler отдаёт http.Handler для подключения к серверу приложения.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// respondError маппит ошибку на HTTP-статус: бизнес-ошибки уходят клиенту
// с текстом, инфраструктурные — generic-сообщением, детали только в лог.
func (s *Server) respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("internal error")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrWebhookAuthentication):
		return http.StatusUnauthorized
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsDomainError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger(logger *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("http request")
	}
}
