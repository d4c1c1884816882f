package domain

import (
	"errors"
	"testing"
)

func TestIsVersionConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "version conflict error",
			err:  ErrOrderVersionConflict,
			want: true,
		},
		{
			name: "wrapped version conflict error",
			err:  errors.Join(ErrOrderVersionConflict, errors.New("additional context")),
			want: true,
		},
		{
			name: "other error",
			err:  ErrOrderNotFound,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsVersionConflict(tt.err)
			if got != tt.want {
				t.Errorf("IsVersionConflict() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsIdempotencyConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "idempotency already exists",
			err:  ErrIdempotencyKeyAlreadyExists,
			want: true,
		},
		{
			name: "idempotency hash mismatch",
			err:  ErrIdempotencyHashMismatch,
			want: true,
		},
		{
			name: "wrapped idempotency conflict",
			err:  errors.Join(ErrIdempotencyHashMismatch, errors.New("extra context")),
			want: true,
		},
		{
			name: "non idempotency error",
			err:  ErrOrderVersionConflict,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsIdempotencyConflict(tt.err)
			if got != tt.want {
				t.Errorf("IsIdempotencyConflict() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "order not found",
			err:  ErrOrderNotFound,
			want: true,
		},
		{
			name: "payment not found",
			err:  ErrPaymentNotFound,
			want: true,
		},
		{
			name: "variants not found",
			err:  &VariantsNotFoundError{IDs: []string{"variant-1"}},
			want: true,
		},
		{
			name: "wrapped order not found",
			err:  errors.Join(ErrOrderNotFound, errors.New("lookup failed")),
			want: true,
		},
		{
			name: "version conflict is not not-found",
			err:  ErrOrderVersionConflict,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsNotFound(tt.err)
			if got != tt.want {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDomainError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "insufficient stock",
			err:  &InsufficientStockError{VariantID: "variant-1", Available: 1, Requested: 5},
			want: true,
		},
		{
			name: "invalid transition",
			err:  &InvalidTransitionError{From: OrderStatusPending, To: OrderStatusDelivered},
			want: true,
		},
		{
			name: "validation error",
			err:  &ValidationError{Reason: "email is required"},
			want: true,
		},
		{
			name: "webhook authentication",
			err:  ErrWebhookAuthentication,
			want: true,
		},
		{
			name: "order not found",
			err:  ErrOrderNotFound,
			want: true,
		},
		{
			name: "billing address required",
			err:  ErrBillingAddressRequired,
			want: true,
		},
		{
			name: "infrastructure error",
			err:  errors.New("connection refused"),
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsDomainError(tt.err)
			if got != tt.want {
				t.Errorf("IsDomainError() = %v, want %v", got, tt.want)
			}
		})
	}
}
