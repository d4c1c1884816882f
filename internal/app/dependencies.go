package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/storage/memory"
	"github.com/vladislavdragonenkov/checkout/internal/storage/postgres"
)

// runtimeDependencies содержит репозитории, выбранные по StorageDriver.
type runtimeDependencies struct {
	orders          domain.OrderRepository
	payments        domain.PaymentRepository
	variants        domain.VariantRepository
	timeline        domain.TimelineRepository
	outboxRepo      domain.OutboxRepository
	idempotencyRepo domain.IdempotencyRepository

	// store не nil только для postgres-драйвера.
	store *postgres.Store
}

// initRuntimeDependencies собирает хранилище по конфигурации.
// Память используется в dev-режиме и тестах: каталог вариантов
// засеивается фиксированными SKU, данные не переживают рестарт.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	driver := cfg.StorageDriver
	if driver == "" {
		driver = StorageDriverMemory
	}

	switch driver {
	case StorageDriverMemory:
		logger.Warn("using in-memory storage, data will not survive a restart")

		variants := memory.NewVariantRepository()
		variants.Seed(devCatalog()...)

		return &runtimeDependencies{
			orders:          memory.NewOrderRepository(),
			payments:        memory.NewPaymentRepository(),
			variants:        variants,
			timeline:        memory.NewTimelineRepository(),
			outboxRepo:      memory.NewOutboxRepository(),
			idempotencyRepo: memory.NewIdempotencyRepository(),
		}, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres storage driver requires POSTGRES_DSN")
		}

		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
		}
		logger.Info("postgres storage initialized")

		return &runtimeDependencies{
			orders:          postgres.NewOrderRepository(store),
			payments:        postgres.NewPaymentRepository(store),
			variants:        postgres.NewVariantRepository(store),
			timeline:        postgres.NewTimelineRepository(store),
			outboxRepo:      postgres.NewOutboxRepository(store),
			idempotencyRepo: postgres.NewIdempotencyRepository(store),
			store:           store,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}

// Close освобождает ресурсы хранилища.
func (d *runtimeDependencies) Close(logger *log.Entry) {
	if d == nil || d.store == nil {
		return
	}
	if err := d.store.Close(); err != nil {
		logger.WithError(err).Warn("close postgres store failed")
	}
}

// devCatalog — фиксированный каталог для memory-режима, чтобы checkout
// можно было прогнать без настройки Postgres.
func devCatalog() []domain.Variant {
	return []domain.Variant{
		{ID: "sku-0001", PriceMinor: 1999, Stock: 25},
		{ID: "sku-0002", PriceMinor: 4950, Stock: 10},
		{ID: "sku-0003", PriceMinor: 125000, Stock: 3},
	}
}
