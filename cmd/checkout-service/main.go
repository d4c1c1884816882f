package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/app"
)

// Имена переменных окружения, которыми переопределяется конфигурация.
const (
	envAPIAddr                     = "CHECKOUT_API_ADDR"
	envOpsAddr                     = "CHECKOUT_OPS_ADDR"
	envStorageDriver               = "STORAGE_DRIVER"
	envPostgresDSN                 = "POSTGRES_DSN"
	envPostgresAutoMigrate         = "POSTGRES_AUTO_MIGRATE"
	envKafkaBrokers                = "KAFKA_BROKERS"
	envNotifyGroupID               = "NOTIFY_GROUP_ID"
	envOutboxPollInterval          = "OUTBOX_POLL_INTERVAL"
	envOutboxBatchSize             = "OUTBOX_BATCH_SIZE"
	envOutboxMaxAttempts           = "OUTBOX_MAX_ATTEMPTS"
	envOutboxRetryDelay            = "OUTBOX_RETRY_DELAY"
	envIdempotencyCleanupInterval  = "IDEMPOTENCY_CLEANUP_INTERVAL"
	envIdempotencyCleanupBatchSize = "IDEMPOTENCY_CLEANUP_BATCH_SIZE"
)

// envLookup абстрагирует os.LookupEnv, чтобы чтение конфигурации
// можно было проверить без манипуляций с окружением процесса.
type envLookup func(key string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
}

// readConfigFromEnv формирует конфигурацию приложения поверх значений
// по умолчанию. Невалидные значения не останавливают запуск: параметр
// остаётся дефолтным, а в warnings попадает сообщение для лога.
//
// Если задан POSTGRES_DSN, драйвер хранилища переключается на postgres;
// явный STORAGE_DRIVER имеет приоритет над этим правилом.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	if v, ok := lookup(envAPIAddr); ok && strings.TrimSpace(v) != "" {
		cfg.APIAddr = strings.TrimSpace(v)
	}
	if v, ok := lookup(envOpsAddr); ok && strings.TrimSpace(v) != "" {
		cfg.OpsAddr = strings.TrimSpace(v)
	}
	if v, ok := lookup(envPostgresDSN); ok && strings.TrimSpace(v) != "" {
		cfg.PostgresDSN = strings.TrimSpace(v)
		cfg.StorageDriver = app.StorageDriverPostgres
	}
	if v, ok := lookup(envStorageDriver); ok && strings.TrimSpace(v) != "" {
		cfg.StorageDriver = app.StorageDriver(strings.ToLower(strings.TrimSpace(v)))
	}
	if v, ok := lookup(envPostgresAutoMigrate); ok {
		parsed, err := parseBool(v)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envPostgresAutoMigrate, err))
		} else {
			cfg.PostgresAutoMigrate = parsed
		}
	}
	if v, ok := lookup(envKafkaBrokers); ok {
		cfg.KafkaBrokers = strings.TrimSpace(v)
	}
	if v, ok := lookup(envNotifyGroupID); ok && strings.TrimSpace(v) != "" {
		cfg.NotifyGroupID = strings.TrimSpace(v)
	}

	if v, ok := lookup(envOutboxPollInterval); ok {
		parsed, err := parseDuration(v, func(d time.Duration) bool { return d > 0 }, "must be > 0")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envOutboxPollInterval, err))
		} else {
			cfg.OutboxPollInterval = parsed
		}
	}
	if v, ok := lookup(envOutboxBatchSize); ok {
		parsed, err := parseInt(v, func(n int) bool { return n > 0 }, "must be > 0")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envOutboxBatchSize, err))
		} else {
			cfg.OutboxBatchSize = parsed
		}
	}
	if v, ok := lookup(envOutboxMaxAttempts); ok {
		parsed, err := parseInt(v, func(n int) bool { return n > 0 }, "must be > 0")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envOutboxMaxAttempts, err))
		} else {
			cfg.OutboxMaxAttempts = parsed
		}
	}
	if v, ok := lookup(envOutboxRetryDelay); ok {
		parsed, err := parseDuration(v, func(d time.Duration) bool { return d >= 0 }, "must be >= 0")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envOutboxRetryDelay, err))
		} else {
			cfg.OutboxRetryDelay = parsed
		}
	}
	if v, ok := lookup(envIdempotencyCleanupInterval); ok {
		parsed, err := parseDuration(v, func(d time.Duration) bool { return d > 0 }, "must be > 0")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envIdempotencyCleanupInterval, err))
		} else {
			cfg.IdempotencyCleanupInterval = parsed
		}
	}
	if v, ok := lookup(envIdempotencyCleanupBatchSize); ok {
		parsed, err := parseInt(v, func(n int) bool { return n > 0 }, "must be > 0")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envIdempotencyCleanupBatchSize, err))
		} else {
			cfg.IdempotencyCleanupBatchSize = parsed
		}
	}

	return cfg, warnings
}

// parseBool понимает true/false, yes/no, on/off и 1/0 без учёта регистра.
func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q", value)
	}
}

func parseInt(value string, valid func(int) bool, constraint string) (int, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid integer value %q", value)
	}
	if !valid(parsed) {
		return 0, fmt.Errorf("value %d %s", parsed, constraint)
	}
	return parsed, nil
}

func parseDuration(value string, valid func(time.Duration) bool, constraint string) (time.Duration, error) {
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid duration value %q", value)
	}
	if !valid(parsed) {
		return 0, fmt.Errorf("value %s %s", parsed, constraint)
	}
	return parsed, nil
}

func main() {
	setupLogger()

	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, warning := range warnings {
		log.Warnf("конфигурация: %s, используем значение по умолчанию", warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"api_addr": cfg.APIAddr,
		"ops_addr": cfg.OpsAddr,
		"storage":  cfg.StorageDriver,
	}).Info("запускаем checkout-service")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("checkout-service остановлен")
}
