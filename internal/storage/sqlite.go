package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dyike/QuantumGPT/pkg/sqlite"
)

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv (
    namespace TEXT NOT NULL,
    key TEXT NOT NULL,
    value BLOB NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (namespace, key)
);
`

type SQLiteKV struct {
	db *sql.DB
}

func OpenSQLite(dbPath string) (*SQLiteKV, error) {
	db, err := sqlite.Open(dbPath, kvSchema)
	if err != nil {
		return nil, err
	}
	return &SQLiteKV{db: db}, nil
}

func (s *SQLiteKV) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteKV) Get(ctx context.Context, ns, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE namespace = ? AND key = ?`, ns, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", ns, key, err)
	}
	return value, nil
}

func (s *SQLiteKV) Set(ctx context.Context, ns, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO kv (namespace, key, value)
VALUES (?, ?, ?)
ON CONFLICT(namespace, key) DO UPDATE SET
    value=excluded.value,
    updated_at=CURRENT_TIMESTAMP
`, ns, key, value)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", ns, key, err)
	}
	return nil
}

func (s *SQLiteKV) List(ctx context.Context, ns string) ([]string, error) {
	return s.strings(ctx, `SELECT key FROM kv WHERE namespace = ? ORDER BY key`, ns)
}

func (s *SQLiteKV) Namespaces(ctx context.Context) ([]string, error) {
	return s.strings(ctx, `SELECT DISTINCT namespace FROM kv ORDER BY namespace`)
}

func (s *SQLiteKV) Delete(ctx context.Context, ns, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE namespace = ? AND key = ?`, ns, key)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", ns, key, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteKV) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
