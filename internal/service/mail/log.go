package mail

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// LogMailer пишет письма в лог вместо реальной отправки. Используется
// как дефолтная реализация, пока не подключён SMTP-провайдер.
type LogMailer struct {
	logger *log.Entry
}

// NewLogMailer создаёт лог-мейлер.
func NewLogMailer() *LogMailer {
	return &LogMailer{logger: log.WithField("component", "mailer")}
}

// Send логирует письмо и всегда завершается успешно.
func (m *LogMailer) Send(n domain.PaymentNotification) error {
	m.logger.WithFields(log.Fields{
		"order_id":  n.OrderID,
		"recipient": n.Recipient,
		"status":    n.Status,
	}).Info("payment notification email")
	return nil
}

var _ domain.Mailer = (*LogMailer)(nil)
