package sys

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// --- Database Connection & Lifecycle ---

// OpenDatabase connects to the SQLite file at path, applies pragmas and runs all pending migrations.
// ":memory:" is accepted and pinned to a single connection.
func OpenDatabase(ctx context.Context, path string) (*sqlx.DB, error) {
	inMemory := strings.HasPrefix(path, ":memory:")

	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on&_busy_timeout=5000"
	}

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if inMemory {
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(5)
	}

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA cache_size=-2000;",
	}

	for _, p := range pragmas {
		if _, err := db.ExecContext(initCtx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf(MsgDatabasePragmaError, p, err)
		}
	}

	if err := applyMigrations(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}

	LogDatabase(MsgDatabaseInitSuccess)
	return db, nil
}

func applyMigrations(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite3 migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			LogDebug(MsgDatabaseNoMigrations)
			return nil
		}
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if version, _, err := m.Version(); err == nil {
		LogDatabase(MsgDatabaseMigrated, version)
	}
	return nil
}

func CloseDatabase(db *sqlx.DB) {
	if db != nil {
		_ = db.Close()
	}
}

// --- Bot Persistence ---

// GetBotConfig returns "" when the key was never set.
func GetBotConfig(ctx context.Context, db *sqlx.DB, key string) (string, error) {
	var value string
	err := db.GetContext(ctx, &value, "SELECT value FROM bot_config WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, DBError("select", "bot_config", err)
}

func SetBotConfig(ctx context.Context, db *sqlx.DB, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO bot_config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return DBError("upsert", "bot_config", err)
}
