// migrate — CLI для управления схемой базы checkout-сервиса.
// Миграции вшиты в бинарник, поэтому утилите нужен только DSN.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/checkout/internal/storage/postgres"
)

const defaultTimeout = 30 * time.Second

func main() {
	var (
		direction string
		steps     int
		dsn       string
	)

	flag.StringVar(&direction, "direction", "up", "migration direction: up|down|status")
	flag.IntVar(&steps, "steps", 0, "number of migrations to apply/rollback (0=all for up, 1 for down)")
	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: POSTGRES_DSN)")
	flag.Parse()

	if strings.TrimSpace(dsn) == "" {
		dsn = strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	}
	if dsn == "" {
		fail("POSTGRES_DSN (or -dsn) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		fail("open postgres store: %v", err)
	}
	defer store.Close()

	summary, err := run(ctx, store, direction, steps)
	if err != nil {
		fail("%v", err)
	}
	fmt.Println(summary)
}

func run(ctx context.Context, store *postgres.Store, direction string, steps int) (string, error) {
	var label string

	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "up":
		if err := store.MigrateUp(ctx, steps); err != nil {
			return "", fmt.Errorf("migrate up failed: %w", err)
		}
		label = "migrate up ok"
	case "down":
		if steps <= 0 {
			steps = 1
		}
		if err := store.MigrateDown(ctx, steps); err != nil {
			return "", fmt.Errorf("migrate down failed: %w", err)
		}
		label = "migrate down ok"
	case "status":
		label = "migration status"
	default:
		return "", fmt.Errorf("unsupported direction: %s (use up|down|status)", direction)
	}

	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		return "", fmt.Errorf("migration status failed: %w", err)
	}
	return fmt.Sprintf("%s: version=%d applied=%d", label, version, count), nil
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
