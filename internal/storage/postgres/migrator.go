package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	migrationsGlob = "sql/migrations/*.sql"
	// migrationLockKey — advisory-lock, защищающий от параллельного
	// прогона миграций несколькими экземплярами checkout-сервиса.
	migrationLockKey  = int64(24080917)
	migrationTableDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
)

var (
	//go:embed sql/migrations/*.sql
	migrationsFS embed.FS

	migrationFilePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_]+)\.(up|down)\.sql$`)
)

type migrationDirection string

const (
	migrationUp   migrationDirection = "up"
	migrationDown migrationDirection = "down"
)

// migration — пара up/down файлов одной версии схемы.
type migration struct {
	Version int64
	Name    string
	UpSQL   string
	DownSQL string
}

// MigrateUp применяет up-миграции по порядку версий.
// steps=0 означает "применить все доступные".
func (s *Store) MigrateUp(ctx context.Context, steps int) error {
	return s.migrate(ctx, migrationUp, steps)
}

// MigrateDown откатывает миграции, начиная с последней применённой.
// steps<=0 интерпретируется как 1 шаг: откатить всё по опечатке нельзя.
func (s *Store) MigrateDown(ctx context.Context, steps int) error {
	if steps <= 0 {
		steps = 1
	}
	return s.migrate(ctx, migrationDown, steps)
}

// MigrationStatus возвращает текущую версию и количество применённых миграций.
func (s *Store) MigrationStatus(ctx context.Context) (int64, int, error) {
	if s == nil || s.db == nil {
		return 0, 0, errStoreNotInitialized
	}

	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(queryCtx, migrationTableDDL); err != nil {
		return 0, 0, fmt.Errorf("ensure migration table: %w", err)
	}

	var (
		version int64
		count   int
	)
	err := s.db.QueryRowContext(queryCtx,
		`SELECT COALESCE(MAX(version), 0), COUNT(*) FROM schema_migrations`,
	).Scan(&version, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("query migration status: %w", err)
	}

	return version, count, nil
}

func (s *Store) migrate(ctx context.Context, direction migrationDirection, steps int) error {
	if s == nil || s.db == nil {
		return errStoreNotInitialized
	}

	migrations, err := loadMigrationsFromFS(migrationsFS)
	if err != nil {
		return err
	}

	// Advisory-lock живёт на уровне соединения, поэтому весь прогон
	// идёт через одно выделенное соединение из пула.
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire db connection: %w", err)
	}
	defer conn.Close()

	lockCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := conn.ExecContext(lockCtx, "SELECT pg_advisory_lock($1)", migrationLockKey); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", migrationLockKey)
	}()

	if _, err := conn.ExecContext(ctx, migrationTableDDL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	if direction == migrationUp {
		return applyUp(ctx, conn, migrations, steps)
	}
	return applyDown(ctx, conn, migrations, steps)
}

func applyUp(ctx context.Context, conn *sql.Conn, migrations []migration, steps int) error {
	applied, err := appliedVersionSet(ctx, conn)
	if err != nil {
		return err
	}

	done := 0
	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := runMigrationTx(ctx, conn, m, migrationUp); err != nil {
			return err
		}
		done++
		if steps > 0 && done >= steps {
			return nil
		}
	}

	return nil
}

func applyDown(ctx context.Context, conn *sql.Conn, migrations []migration, steps int) error {
	byVersion := make(map[int64]migration, len(migrations))
	for _, m := range migrations {
		byVersion[m.Version] = m
	}

	versions, err := latestAppliedVersions(ctx, conn, steps)
	if err != nil {
		return err
	}

	for _, version := range versions {
		m, ok := byVersion[version]
		if !ok {
			return fmt.Errorf("cannot rollback unknown migration version %d", version)
		}
		if err := runMigrationTx(ctx, conn, m, migrationDown); err != nil {
			return err
		}
	}

	return nil
}

// runMigrationTx выполняет тело миграции и запись в schema_migrations
// одной транзакцией: миграция либо применена и учтена, либо нет.
func runMigrationTx(ctx context.Context, conn *sql.Conn, m migration, direction migrationDirection) error {
	body := m.UpSQL
	bookkeeping := `INSERT INTO schema_migrations (version, name, applied_at) VALUES ($1, $2, NOW())`
	bookkeepingArgs := []any{m.Version, m.Name}
	if direction == migrationDown {
		body = m.DownSQL
		bookkeeping = `DELETE FROM schema_migrations WHERE version = $1`
		bookkeepingArgs = []any{m.Version}
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx (%s %d): %w", direction, m.Version, err)
	}

	if _, err := tx.ExecContext(ctx, body); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("execute %s migration %d_%s: %w", direction, m.Version, m.Name, err)
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, bookkeepingArgs...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record %s migration %d_%s: %w", direction, m.Version, m.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s migration %d_%s: %w", direction, m.Version, m.Name, err)
	}

	return nil
}

func appliedVersionSet(ctx context.Context, conn *sql.Conn) (map[int64]bool, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int64]bool)
	for rows.Next() {
		var version int64
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan applied migration version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations: %w", err)
	}

	return applied, nil
}

func latestAppliedVersions(ctx context.Context, conn *sql.Conn, limit int) ([]int64, error) {
	rows, err := conn.QueryContext(ctx,
		`SELECT version FROM schema_migrations ORDER BY version DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations desc: %w", err)
	}
	defer rows.Close()

	versions := make([]int64, 0, limit)
	for rows.Next() {
		var version int64
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan applied migration desc: %w", err)
		}
		versions = append(versions, version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations desc: %w", err)
	}

	return versions, nil
}

// parseMigrationFilename разбирает имя вида 0001_orders.up.sql.
func parseMigrationFilename(base string) (version int64, name string, direction migrationDirection, err error) {
	matches := migrationFilePattern.FindStringSubmatch(base)
	if len(matches) != 4 {
		return 0, "", "", fmt.Errorf("invalid migration file name: %s", base)
	}

	version, err = strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, "", "", fmt.Errorf("parse migration version from %s: %w", base, err)
	}
	return version, matches[2], migrationDirection(matches[3]), nil
}

// loadMigrationsFromFS собирает пары up/down и проверяет их целостность:
// без дублей, без расхождений имён, обе половины на месте.
func loadMigrationsFromFS(fsys fs.FS) ([]migration, error) {
	files, err := fs.Glob(fsys, migrationsGlob)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no migration files found")
	}

	pairs := make(map[int64]*migration)
	for _, file := range files {
		base := filepath.Base(file)
		version, name, direction, err := parseMigrationFilename(base)
		if err != nil {
			return nil, err
		}

		bodyRaw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read migration file %s: %w", file, err)
		}
		body := strings.TrimSpace(string(bodyRaw))
		if body == "" {
			return nil, fmt.Errorf("migration file is empty: %s", base)
		}

		pair, ok := pairs[version]
		if !ok {
			pair = &migration{Version: version, Name: name}
			pairs[version] = pair
		} else if pair.Name != name {
			return nil, fmt.Errorf("migration name mismatch for version %d: %s vs %s", version, pair.Name, name)
		}

		switch direction {
		case migrationUp:
			if pair.UpSQL != "" {
				return nil, fmt.Errorf("duplicate up migration for version %d", version)
			}
			pair.UpSQL = body
		case migrationDown:
			if pair.DownSQL != "" {
				return nil, fmt.Errorf("duplicate down migration for version %d", version)
			}
			pair.DownSQL = body
		}
	}

	versions := make([]int64, 0, len(pairs))
	for version := range pairs {
		versions = append(versions, version)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })

	migrations := make([]migration, 0, len(versions))
	for _, version := range versions {
		pair := pairs[version]
		if pair.UpSQL == "" || pair.DownSQL == "" {
			return nil, fmt.Errorf("migration %d_%s must have both up and down files", pair.Version, pair.Name)
		}
		migrations = append(migrations, *pair)
	}

	return migrations, nil
}
