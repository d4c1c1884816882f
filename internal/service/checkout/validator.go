package checkout

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// InventoryValidator сверяет корзину с каталогом: существование вариантов,
// достаточность остатков и авторитетную сумму заказа.
type InventoryValidator struct {
	variants domain.VariantRepository
	logger   *log.Entry
}

// NewInventoryValidator создаёт валидатор поверх репозитория вариантов.
func NewInventoryValidator(variants domain.VariantRepository, logger *log.Entry) *InventoryValidator {
	if logger == nil {
		logger = log.WithField("component", "inventory-validator")
	}
	return &InventoryValidator{variants: variants, logger: logger}
}

// Validate выполняет один батчевый запрос по всем позициям корзины.
//
// Цены клиента не участвуют в расчёте: сумма считается только по ценам
// каталога. Повторы одного variant id в корзине проверяются независимо
// по одному и тому же снимку, количества НЕ суммируются перед проверкой
// остатка — это сознательно сохранённое поведение протокола, влияющее
// на расчёт суммы.
//
// Побочных эффектов нет: блокировка остатков не берётся, гонка между
// проверкой и созданием заказа допускается (см. DeleteOrder-компенсацию
// у Order Writer).
func (v *InventoryValidator) Validate(items []domain.CartItem) (map[string]domain.Variant, int64, error) {
	if len(items) == 0 {
		return nil, 0, &domain.ValidationError{Reason: "cart must contain at least one item"}
	}

	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.Qty <= 0 {
			return nil, 0, &domain.ValidationError{Reason: "item qty must be greater than zero"}
		}
		if _, ok := seen[item.VariantID]; ok {
			continue
		}
		seen[item.VariantID] = struct{}{}
		ids = append(ids, item.VariantID)
	}

	variants, err := v.variants.GetByIDs(ids)
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[string]domain.Variant, len(variants))
	for _, variant := range variants {
		byID[variant.ID] = variant
	}

	var missing []string
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, 0, &domain.VariantsNotFoundError{IDs: missing}
	}

	var total int64
	for _, item := range items {
		variant := byID[item.VariantID]
		if variant.Stock < item.Qty {
			return nil, 0, &domain.InsufficientStockError{
				VariantID: variant.ID,
				Available: variant.Stock,
				Requested: item.Qty,
			}
		}
		total += int64(item.Qty) * variant.PriceMinor
	}

	return byID, total, nil
}
