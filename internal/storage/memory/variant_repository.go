package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// variantRepositoryInMemory — каталог вариантов товара в памяти.
// Используется в dev-режиме и тестах; остаток уменьшается только
// снаружи через Seed, резервирование не реализовано умышленно.
type variantRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Variant
}

// NewVariantRepository создаёт пустой каталог вариантов.
func NewVariantRepository() *variantRepositoryInMemory {
	return &variantRepositoryInMemory{
		items: make(map[string]domain.Variant),
	}
}

// Seed добавляет или перезаписывает варианты в каталоге.
func (r *variantRepositoryInMemory) Seed(variants ...domain.Variant) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, v := range variants {
		r.items[v.ID] = v
	}
}

// GetByIDs возвращает найденные варианты одной выборкой. Отсутствующие
// идентификаторы просто не попадают в результат — агрегацию пропусков
// делает вызывающая сторона.
func (r *variantRepositoryInMemory) GetByIDs(ids []string) (map[string]domain.Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]domain.Variant, len(ids))
	for _, id := range ids {
		if v, ok := r.items[id]; ok {
			result[id] = v
		}
	}
	return result, nil
}

var _ domain.VariantRepository = (*variantRepositoryInMemory)(nil)
