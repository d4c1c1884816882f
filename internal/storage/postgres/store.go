package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pingTimeout = 5 * time.Second

	poolMaxOpenConns    = 25
	poolMaxIdleConns    = 25
	poolConnMaxLifetime = 30 * time.Minute
	poolConnMaxIdleTime = 5 * time.Minute
)

var errStoreNotInitialized = errors.New("postgres store is not initialized")

// Store держит пул подключений к PostgreSQL, общий для всех репозиториев
// checkout-сервиса. Репозитории получают его конструктором и не управляют
// жизненным циклом подключения сами.
type Store struct {
	db *sql.DB
}

// Open открывает пул подключений через pgx stdlib-драйвер и сразу
// проверяет доступность базы: молча стартовать с мёртвым DSN нельзя.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	configurePool(db)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{db: db}, nil
}

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(poolMaxOpenConns)
	db.SetMaxIdleConns(poolMaxIdleConns)
	db.SetConnMaxLifetime(poolConnMaxLifetime)
	db.SetConnMaxIdleTime(poolConnMaxIdleTime)
}

// DB возвращает raw SQL DB для репозиториев и миграций.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping проверяет доступность подключения; используется readiness-пробой.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errStoreNotInitialized
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.db.PingContext(pingCtx)
}

// EnsureSchema применяет все up-миграции. Короткий алиас для случаев,
// когда вызывающему не нужен пошаговый контроль.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.MigrateUp(ctx, 0)
}

// Close закрывает пул подключений.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
