package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

type variantRepository struct {
	db *sql.DB
}

// NewVariantRepository создаёт PostgreSQL-реализацию VariantRepository.
func NewVariantRepository(store *Store) domain.VariantRepository {
	return &variantRepository{db: store.DB()}
}

// GetByIDs читает варианты одним запросом. Отсутствующие идентификаторы
// в результат не попадают, агрегацию пропусков делает вызывающая сторона.
func (r *variantRepository) GetByIDs(ids []string) (map[string]domain.Variant, error) {
	result := make(map[string]domain.Variant, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, price_minor, stock
		FROM product_variants
		WHERE id IN (%s)
	`, strings.Join(placeholders, ","))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v domain.Variant
		if err := rows.Scan(&v.ID, &v.PriceMinor, &v.Stock); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		result[v.ID] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}

	return result, nil
}

var _ domain.VariantRepository = (*variantRepository)(nil)
