package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteBackend is the durable store: one row per dataset in a local SQLite
// database. Every write runs in its own transaction.
type SQLiteBackend struct {
	db *sqlx.DB
}

type datasetRow struct {
	Name      string `db:"name"`
	Version   int    `db:"version"`
	UpdatedAt string `db:"updated_at"`
	Payload   []byte `db:"payload"`
}

// OpenSQLite opens or creates the database at path. It fails when SQLite is
// not usable in this build or the file cannot be created.
func OpenSQLite(ctx context.Context, path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serialises writers; one connection avoids "database is locked".
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

func (s *SQLiteBackend) Kind() string { return "sqlite" }

func (s *SQLiteBackend) Load(ctx context.Context, name string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.GetContext(ctx, &payload, `SELECT payload FROM datasets WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load %q: %w", name, err)
	}
	return payload, true, nil
}

func (s *SQLiteBackend) Save(ctx context.Context, name string, payload []byte) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := datasetRow{
		Name:      name,
		Version:   EntryVersion,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Payload:   payload,
	}
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO datasets (name, version, updated_at, payload)
		VALUES (:name, :version, :updated_at, :payload)
		ON CONFLICT(name) DO UPDATE SET
			version = excluded.version,
			updated_at = excluded.updated_at,
			payload = excluded.payload`, row)
	if err != nil {
		return fmt.Errorf("failed to save %q: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %q: %w", name, err)
	}
	return nil
}

func (s *SQLiteBackend) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM datasets WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete %q: %w", name, err)
	}
	return nil
}

func (s *SQLiteBackend) Keys(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.SelectContext(ctx, &names, `SELECT name FROM datasets ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	return names, nil
}

func (s *SQLiteBackend) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
