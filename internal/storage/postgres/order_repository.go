package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

// CreateHeader записывает шапку заказа. Позиции пишутся отдельным вызовом:
// при их сбое шапку откатывает компенсирующий Delete, а не транзакция.
func (r *orderRepository) CreateHeader(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, email, status, currency, amount_minor, cancellation_reason,
			shipping_name, shipping_line1, shipping_line2, shipping_city,
			shipping_state, shipping_country, shipping_zip,
			billing_name, billing_line1, billing_line2, billing_city,
			billing_state, billing_country, billing_zip,
			version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
	`,
		order.ID, order.UserID, order.Email, string(order.Status), order.Currency,
		order.AmountMinor, order.CancellationReason,
		order.ShippingAddress.Name, order.ShippingAddress.Line1, order.ShippingAddress.Line2,
		order.ShippingAddress.City, order.ShippingAddress.State, order.ShippingAddress.Country,
		order.ShippingAddress.Zip,
		order.BillingAddress.Name, order.BillingAddress.Line1, order.BillingAddress.Line2,
		order.BillingAddress.City, order.BillingAddress.State, order.BillingAddress.Country,
		order.BillingAddress.Zip,
		order.Version, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderVersionConflict
		}
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

// CreateItems записывает позиции заказа одной транзакцией.
func (r *orderRepository) CreateItems(orderID string, items []domain.OrderLineItem) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, item := range items {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, variant_id, qty, price_minor, discount_minor, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7)
		`,
			item.ID, orderID, item.VariantID, item.Qty, item.PriceMinor,
			item.DiscountMinor, item.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order items: %w", err)
	}

	return nil
}

// Delete удаляет заказ вместе с позициями. Отсутствие строк не считается
// ошибкой: компенсация должна быть безопасной при повторном вызове.
func (r *orderRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete order: %w", err)
	}

	return nil
}

func (r *orderRepository) Get(id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	order, err := r.scanOrder(r.db.QueryRowContext(ctx, selectOrderQuery+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items

	return order, nil
}

func (r *orderRepository) ListByUser(userID string, limit int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := selectOrderQuery + `
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	var (
		rows *sql.Rows
		err  error
	)

	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT $2", userID, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}

		items, err := r.loadItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) Save(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	// Rollback после Commit — no-op; безусловный defer возвращает
	// соединение в пул на любом раннем выходе, включая конфликт версии.
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
		    currency = $2,
		    amount_minor = $3,
		    cancellation_reason = $4,
		    version = version + 1,
		    updated_at = $5
		WHERE id = $6
		  AND version = $7
	`,
		string(order.Status),
		order.Currency,
		order.AmountMinor,
		order.CancellationReason,
		order.UpdatedAt,
		order.ID,
		order.Version,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		exists, existsErr := r.orderExistsTx(ctx, tx, order.ID)
		if existsErr != nil {
			return existsErr
		}
		if !exists {
			return domain.ErrOrderNotFound
		}
		return domain.ErrOrderVersionConflict
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save order: %w", err)
	}

	return nil
}

const selectOrderQuery = `
	SELECT id, user_id, email, status, currency, amount_minor, cancellation_reason,
	       shipping_name, shipping_line1, shipping_line2, shipping_city,
	       shipping_state, shipping_country, shipping_zip,
	       billing_name, billing_line1, billing_line2, billing_city,
	       billing_state, billing_country, billing_zip,
	       version, created_at, updated_at
	FROM orders
`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *orderRepository) scanOrder(row rowScanner) (domain.Order, error) {
	var order domain.Order
	var status string

	err := row.Scan(
		&order.ID, &order.UserID, &order.Email, &status, &order.Currency,
		&order.AmountMinor, &order.CancellationReason,
		&order.ShippingAddress.Name, &order.ShippingAddress.Line1, &order.ShippingAddress.Line2,
		&order.ShippingAddress.City, &order.ShippingAddress.State, &order.ShippingAddress.Country,
		&order.ShippingAddress.Zip,
		&order.BillingAddress.Name, &order.BillingAddress.Line1, &order.BillingAddress.Line2,
		&order.BillingAddress.City, &order.BillingAddress.State, &order.BillingAddress.Country,
		&order.BillingAddress.Zip,
		&order.Version, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	order.Status = domain.OrderStatus(status)
	return order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID string) ([]domain.OrderLineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, variant_id, qty, price_minor, discount_minor, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderLineItem, 0)
	for rows.Next() {
		var item domain.OrderLineItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.VariantID, &item.Qty,
			&item.PriceMinor, &item.DiscountMinor, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func (r *orderRepository) orderExistsTx(ctx context.Context, tx *sql.Tx, orderID string) (bool, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM orders WHERE id = $1`, orderID).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check order exists: %w", err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
