package domain

// orderTransitions — таблица разрешённых переходов статуса заказа.
// cancelled терминален: исходящих переходов нет.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:      {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered: {OrderStatusCancelled},
	OrderStatusCancelled: {},
}

// ValidateTransition проверяет переход статуса по таблице.
//
// Повторное применение текущего статуса разрешено как no-op: шлюз может
// доставить одно и то же уведомление несколько раз. Исключение для COD
// (pending -> shipped без оплаты через шлюз) проверяется ДО таблицы,
// чтобы общее правило оставалось читаемым без особых случаев.
func ValidateTransition(from, to OrderStatus, provider PaymentProvider) error {
	if from == to {
		return nil
	}

	if provider == PaymentProviderCOD && from == OrderStatusPending && to == OrderStatusShipped {
		return nil
	}

	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return nil
		}
	}

	return &InvalidTransitionError{From: from, To: to}
}
