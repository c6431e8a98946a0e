package sqlite

import (
	"path/filepath"
	"testing"
)

func TestOpenCreatesDirAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "test.db")
	db, err := Open(path, `CREATE TABLE IF NOT EXISTS t (k TEXT PRIMARY KEY, v TEXT)`)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`INSERT INTO t (k, v) VALUES ('a', 'b')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	var mode string
	if err := db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("journal_mode = %q", mode)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestOpenMemory(t *testing.T) {
	db, err := Open(MemoryPath, `CREATE TABLE t (k TEXT)`)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(`INSERT INTO t (k) VALUES ('x')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
}
