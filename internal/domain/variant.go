package domain

// Variant — моментальный снимок варианта товара из каталога.
// Сервис его только читает; между проверкой остатка и созданием заказа
// блокировка не берётся, гонка за последнюю единицу осознанно допускается.
type Variant struct {
	ID string
	// PriceMinor — актуальная цена каталога в минимальных единицах.
	PriceMinor int64
	// Stock — остаток на момент чтения.
	Stock int32
}

// CartItem — запрошенная покупателем позиция корзины.
type CartItem struct {
	VariantID string
	Qty       int32
}
