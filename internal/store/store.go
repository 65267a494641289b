package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/AlekseevDev/tapper-game/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavor the store speaks.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Store is the persistent player-state store. It owns the database handle;
// the entry point constructs one Store and passes it to every caller, and
// each operation runs inside its own transaction.
type Store struct {
	dialect Dialect
	db      *sql.DB
	logger  *slog.Logger
}

// Open connects to the configured storage engine. SQLite (the default) is a
// single local file opened with WAL journaling, a busy timeout so concurrent
// writers queue instead of failing, and foreign keys on so player deletes
// cascade. Postgres is available for hosted deployments via the pgx driver.
func Open(cfg *config.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	dialect := Dialect(strings.TrimSpace(strings.ToLower(cfg.Dialect)))
	if dialect == "" {
		dialect = DialectSQLite
	}

	var db *sql.DB
	var err error
	switch dialect {
	case DialectSQLite:
		if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		db, err = sql.Open("sqlite", cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite database: %w", err)
		}
		// SQLite serializes writers at the file level; a single pooled
		// connection avoids database-is-locked churn between goroutines.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.Exec("PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000; PRAGMA foreign_keys = ON;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting sqlite pragmas: %w", err)
		}
	case DialectPostgres:
		if strings.TrimSpace(cfg.DSN) == "" {
			return nil, fmt.Errorf("postgres dialect requires a dsn")
		}
		db, err = sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening postgres database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database dialect %q", cfg.Dialect)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", dialect, err)
	}

	return &Store{dialect: dialect, db: db, logger: logger}, nil
}

// Close closes the underlying database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the schema. Safe to call on every startup; every statement
// uses IF NOT EXISTS. Any DDL failure leaves the store unusable and is
// returned to the caller as fatal.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements(s.dialect) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}
	s.logger.Info("database migrations completed", "dialect", string(s.dialect))
	return nil
}

// q rewrites ? placeholders to $n for the postgres dialect
func (s *Store) q(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// greatest names the two-argument maximum function for the dialect
func (s *Store) greatest() string {
	if s.dialect == DialectPostgres {
		return "GREATEST"
	}
	return "MAX"
}

// withTx runs fn inside a transaction, rolling back on any error. Every
// store operation goes through here so partial writes never survive.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("transaction rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
