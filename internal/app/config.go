package app

import (
	"time"
)

// StorageDriver выбирает бэкенд хранилища.
type StorageDriver string

const (
	// StorageDriverMemory — in-memory хранилище для dev-режима и тестов.
	StorageDriverMemory StorageDriver = "memory"
	// StorageDriverPostgres — основное PostgreSQL-хранилище.
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска приложения. Секреты шлюза сюда
// не входят: их читает gateway.ConfigFromEnv и падает на старте,
// если подпись невозможна.
type Config struct {
	// APIAddr — адрес публичного HTTP API (витрина + callback'и шлюза).
	APIAddr string
	// OpsAddr — адрес служебного HTTP: метрики, health checks, версия.
	OpsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	// KafkaBrokers — список брокеров через запятую; пусто = без Kafka.
	KafkaBrokers  string
	NotifyGroupID string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration

	IdempotencyCleanupInterval  time.Duration
	IdempotencyCleanupBatchSize int
}

// DefaultConfig возвращает значения для локального запуска без внешних
// зависимостей: память вместо Postgres, Kafka выключена.
func DefaultConfig() Config {
	return Config{
		APIAddr:                     ":8080",
		OpsAddr:                     ":9090",
		StorageDriver:               StorageDriverMemory,
		PostgresAutoMigrate:         true,
		NotifyGroupID:               "checkout-notify",
		OutboxPollInterval:          5 * time.Second,
		OutboxBatchSize:             100,
		OutboxMaxAttempts:           3,
		OutboxRetryDelay:            200 * time.Millisecond,
		IdempotencyCleanupInterval:  10 * time.Minute,
		IdempotencyCleanupBatchSize: 500,
	}
}

