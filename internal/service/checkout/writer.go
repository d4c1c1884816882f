package checkout

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/metrics"
)

// OrderWriter создаёт агрегат заказа (заголовок + позиции) как одну
// логическую единицу поверх хранилища без межтабличных транзакций.
type OrderWriter struct {
	orders  domain.OrderRepository
	metrics *metrics.CheckoutMetrics
	logger  *log.Entry
}

// NewOrderWriter создаёт writer. metrics может быть nil (для тестов).
func NewOrderWriter(orders domain.OrderRepository, m *metrics.CheckoutMetrics, logger *log.Entry) *OrderWriter {
	if logger == nil {
		logger = log.WithField("component", "order-writer")
	}
	return &OrderWriter{orders: orders, metrics: m, logger: logger}
}

// Create сохраняет заголовок, затем позиции.
//
// Неудача заголовка возвращается как есть — откатывать нечего.
// Неудача позиций компенсируется удалением только что созданного
// заголовка: заказ без позиций существовать не должен. Само удаление —
// best-effort: если и оно упало, логируем, но наружу отдаём ИСХОДНУЮ
// ошибку позиций, а не ошибку отката.
func (w *OrderWriter) Create(order domain.Order) error {
	if err := w.orders.CreateHeader(order); err != nil {
		return err
	}

	if err := w.orders.CreateItems(order.ID, order.Items); err != nil {
		if delErr := w.orders.Delete(order.ID); delErr != nil {
			w.logger.WithError(delErr).WithField("order_id", order.ID).
				Error("compensating order delete failed, order header may be orphaned")
		} else {
			w.logger.WithError(err).WithField("order_id", order.ID).
				Warn("line items failed, order header rolled back")
			if w.metrics != nil {
				w.metrics.RecordOrderRolledBack()
			}
		}
		return err
	}

	return nil
}
