package infrastructure

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteClient is the single-file alternative to PostgresClient
type SQLiteClient struct {
	DB *sql.DB
}

// NewSQLiteClient opens (or creates) the database at path and migrates it.
// ":memory:" gives a private in-memory database.
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc serialises writers anyway; one connection also keeps
	// ":memory:" databases alive across queries
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	client := &SQLiteClient{DB: db}
	if err := client.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return client, nil
}

func (s *SQLiteClient) Migrate(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS lookup_usage (
			date TEXT NOT NULL,
			outcome TEXT NOT NULL,
			count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (date, outcome)
		);
	`)
	if err != nil {
		return fmt.Errorf("create lookup_usage table: %w", err)
	}
	return nil
}

func (s *SQLiteClient) Close() error {
	return s.DB.Close()
}
