package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

type paymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository создаёт PostgreSQL-реализацию PaymentRepository.
func NewPaymentRepository(store *Store) domain.PaymentRepository {
	return &paymentRepository{db: store.DB()}
}

func (r *paymentRepository) Create(payment domain.Payment) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (
			id, order_id, provider, status, amount_minor, currency,
			external_id, approval_code, ref_number, processed_at,
			response_hash, fail_reason, card_brand, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		payment.ID, payment.OrderID, string(payment.Provider), string(payment.Status),
		payment.AmountMinor, payment.Currency,
		payment.ExternalID, payment.ApprovalCode, payment.RefNumber, payment.ProcessedAt,
		payment.ResponseHash, payment.FailReason, payment.CardBrand,
		payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetByOrderID(orderID string) (domain.Payment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		payment  domain.Payment
		provider string
		status   string
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, provider, status, amount_minor, currency,
		       external_id, approval_code, ref_number, processed_at,
		       response_hash, fail_reason, card_brand, created_at, updated_at
		FROM payments
		WHERE order_id = $1
	`, orderID).Scan(
		&payment.ID, &payment.OrderID, &provider, &status,
		&payment.AmountMinor, &payment.Currency,
		&payment.ExternalID, &payment.ApprovalCode, &payment.RefNumber, &payment.ProcessedAt,
		&payment.ResponseHash, &payment.FailReason, &payment.CardBrand,
		&payment.CreatedAt, &payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Payment{}, domain.ErrPaymentNotFound
		}
		return domain.Payment{}, fmt.Errorf("select payment: %w", err)
	}

	payment.Provider = domain.PaymentProvider(provider)
	payment.Status = domain.PaymentStatus(status)
	return payment, nil
}

func (r *paymentRepository) Update(payment domain.Payment) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $1,
		    external_id = $2,
		    approval_code = $3,
		    ref_number = $4,
		    processed_at = $5,
		    response_hash = $6,
		    fail_reason = $7,
		    card_brand = $8,
		    updated_at = $9
		WHERE order_id = $10
	`,
		string(payment.Status),
		payment.ExternalID,
		payment.ApprovalCode,
		payment.RefNumber,
		payment.ProcessedAt,
		payment.ResponseHash,
		payment.FailReason,
		payment.CardBrand,
		payment.UpdatedAt,
		payment.OrderID,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrPaymentNotFound
	}

	return nil
}

var _ domain.PaymentRepository = (*paymentRepository)(nil)
