package checkout_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/service/checkout"
	"github.com/vladislavdragonenkov/checkout/internal/storage/memory"
)

func writerTestOrder() domain.Order {
	now := time.Now().UTC()
	variantID := "variant-1"
	return domain.Order{
		ID:          "order-1",
		Status:      domain.OrderStatusPending,
		Currency:    "EUR",
		AmountMinor: 3000,
		ShippingAddress: domain.Address{
			Line1:   "ул. Ленина, 1",
			City:    "Москва",
			Country: "RU",
		},
		Items: []domain.OrderLineItem{
			{ID: "item-1", OrderID: "order-1", VariantID: &variantID, Qty: 2, PriceMinor: 1500, CreatedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderWriter_CreatePersistsHeaderAndItems(t *testing.T) {
	repo := memory.NewOrderRepository()
	writer := checkout.NewOrderWriter(repo, nil, nil)

	if err := writer.Create(writerTestOrder()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.Get("order-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(stored.Items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(stored.Items))
	}
	if stored.Status != domain.OrderStatusPending {
		t.Fatalf("unexpected status: %s", stored.Status)
	}
}

func TestOrderWriter_ItemsFailureRollsBackHeader(t *testing.T) {
	repo := memory.NewOrderRepository()
	writer := checkout.NewOrderWriter(repo, nil, nil)

	itemsErr := errors.New("items insert failed")
	repo.FailCreateItems(itemsErr)

	err := writer.Create(writerTestOrder())
	if !errors.Is(err, itemsErr) {
		t.Fatalf("expected original items error, got %v", err)
	}

	// Шапка не должна пережить неудачную запись позиций.
	if _, err := repo.Get("order-1"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected order to be rolled back, got %v", err)
	}
}

func TestOrderWriter_HeaderConflictReturnedAsIs(t *testing.T) {
	repo := memory.NewOrderRepository()
	writer := checkout.NewOrderWriter(repo, nil, nil)

	if err := writer.Create(writerTestOrder()); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	err := writer.Create(writerTestOrder())
	if !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("expected version conflict on duplicate id, got %v", err)
	}
}
