package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenCreatesSchema(t *testing.T) {
	db := openTestDB(t)

	if _, err := os.Stat(db.Path()); err != nil {
		t.Fatalf("database file missing: %v", err)
	}
	version, err := db.schemaVersion()
	if err != nil {
		t.Fatal(err)
	}
	if version != currentSchemaVersion {
		t.Errorf("schema version = %d, want %d", version, currentSchemaVersion)
	}

	var n int
	if err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM edit_groups").Scan(&n); err != nil {
		t.Fatalf("edit_groups not queryable: %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	_, err = db.ExecContext(ctx, `INSERT INTO edit_groups (id, doc_path, command, created_at, edit_count, before_snapshot, after_snapshot)
		VALUES ('g1', 'a.go', 'sort', '2026-01-01T00:00:00Z', 2, x'00', x'01')`)
	if err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	db, err = Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	var cmd string
	if err := db.QueryRowContext(ctx, "SELECT command FROM edit_groups WHERE id = 'g1'").Scan(&cmd); err != nil {
		t.Fatal(err)
	}
	if cmd != "sort" {
		t.Errorf("command = %q", cmd)
	}
}

func TestWithTxRollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO edit_groups (id, doc_path, command, created_at, edit_count, before_snapshot, after_snapshot)
			VALUES ('g2', 'a.go', 'cut', '2026-01-01T00:00:00Z', 1, x'00', x'01')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want boom", err)
	}

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM edit_groups").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("rows after rollback = %d, want 0", n)
	}
}
