package postgres

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadMigrationsFromFS_Success(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0001_orders.up.sql": {
			Data: []byte("CREATE TABLE orders_fixture (id INT);"),
		},
		"sql/migrations/0001_orders.down.sql": {
			Data: []byte("DROP TABLE IF EXISTS orders_fixture;"),
		},
		"sql/migrations/0002_payments.up.sql": {
			Data: []byte("CREATE TABLE payments_fixture (id INT);"),
		},
		"sql/migrations/0002_payments.down.sql": {
			Data: []byte("DROP TABLE IF EXISTS payments_fixture;"),
		},
	}

	migrations, err := loadMigrationsFromFS(fsys)
	if err != nil {
		t.Fatalf("loadMigrationsFromFS failed: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}

	if migrations[0].Version != 1 || migrations[0].Name != "orders" {
		t.Fatalf("unexpected first migration: %+v", migrations[0])
	}
	if migrations[1].Version != 2 || migrations[1].Name != "payments" {
		t.Fatalf("unexpected second migration: %+v", migrations[1])
	}
}

func TestLoadMigrationsFromFS_MissingDown(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0001_orders.up.sql": {
			Data: []byte("CREATE TABLE orders_fixture (id INT);"),
		},
	}

	_, err := loadMigrationsFromFS(fsys)
	if err == nil {
		t.Fatal("expected error for missing down migration")
	}
	if !strings.Contains(err.Error(), "both up and down") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadMigrationsFromFS_InvalidFilename(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/not_a_migration.sql": {
			Data: []byte("SELECT 1;"),
		},
	}

	_, err := loadMigrationsFromFS(fsys)
	if err == nil {
		t.Fatal("expected error for invalid migration file name")
	}
}

func TestLoadMigrationsFromFS_EmptyFile(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0001_orders.up.sql": {
			Data: []byte("   \n"),
		},
		"sql/migrations/0001_orders.down.sql": {
			Data: []byte("DROP TABLE IF EXISTS orders_fixture;"),
		},
	}

	_, err := loadMigrationsFromFS(fsys)
	if err == nil {
		t.Fatal("expected error for empty migration file body")
	}
}

func TestLoadMigrationsFromFS_DuplicateUp(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0001_orders.up.sql": {
			Data: []byte("CREATE TABLE orders_fixture (id INT);"),
		},
		"sql/migrations/001_orders.up.sql": {
			Data: []byte("CREATE TABLE orders_fixture_dup (id INT);"),
		},
		"sql/migrations/0001_orders.down.sql": {
			Data: []byte("DROP TABLE IF EXISTS orders_fixture;"),
		},
	}

	_, err := loadMigrationsFromFS(fsys)
	if err == nil {
		t.Fatal("expected error for duplicate up migration")
	}
	if !strings.Contains(err.Error(), "duplicate up migration") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadMigrationsFromFS_NameMismatch(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0001_orders.up.sql": {
			Data: []byte("CREATE TABLE orders_fixture (id INT);"),
		},
		"sql/migrations/0001_payments.down.sql": {
			Data: []byte("DROP TABLE IF EXISTS payments_fixture;"),
		},
	}

	_, err := loadMigrationsFromFS(fsys)
	if err == nil {
		t.Fatal("expected error for migration name mismatch")
	}
	if !strings.Contains(err.Error(), "name mismatch") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadMigrationsFromFS_NoFiles(t *testing.T) {
	t.Parallel()

	_, err := loadMigrationsFromFS(fstest.MapFS{})
	if err == nil {
		t.Fatal("expected error for empty migrations directory")
	}
}
