package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/splitflow/splitflow/internal/job"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNew_CreatesSchema(t *testing.T) {
	db := testDB(t)

	for _, table := range []string{"jobs", "_migrations"} {
		var name string
		err := db.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestNew_WALEnabled(t *testing.T) {
	db := testDB(t)

	var journalMode string
	if err := db.Conn().QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("PRAGMA journal_mode error = %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %s, want wal", journalMode)
	}
}

func TestNew_MigrationsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db1, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("first New() error = %v", err)
	}
	db1.Close()

	db2, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("second New() error = %v", err)
	}
	defer db2.Close()

	var count int
	if err := db2.Conn().QueryRow("SELECT COUNT(*) FROM _migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations error = %v", err)
	}
	if count != 1 {
		t.Errorf("migration count = %d, want 1", count)
	}
}

func TestMarkInterruptedJobs(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db1, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	repo := NewRepository(db1.Conn())
	ctx := context.Background()
	if err := repo.JobCreated(ctx, "live-job", "movie.mp4"); err != nil {
		t.Fatalf("JobCreated() error = %v", err)
	}
	if err := repo.JobUpdated(ctx, "live-job", job.StatusProcessing, 40, 1, "", ""); err != nil {
		t.Fatalf("JobUpdated() error = %v", err)
	}
	db1.Close()

	db2, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("second New() error = %v", err)
	}
	defer db2.Close()

	var status, errMsg string
	err = db2.Conn().QueryRow("SELECT status, error FROM jobs WHERE id = 'live-job'").Scan(&status, &errMsg)
	if err != nil {
		t.Fatalf("query job error = %v", err)
	}
	if status != "error" {
		t.Errorf("status = %s, want error", status)
	}
	if errMsg != "interrupted by restart" {
		t.Errorf("error = %q, want 'interrupted by restart'", errMsg)
	}
}

func TestRepository_Lifecycle(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db.Conn())
	ctx := context.Background()

	if err := repo.JobCreated(ctx, "abc", "movie.mp4"); err != nil {
		t.Fatalf("JobCreated() error = %v", err)
	}
	if err := repo.JobUpdated(ctx, "abc", job.StatusDone, 100, 3, "/files/abc/movie.zip", ""); err != nil {
		t.Fatalf("JobUpdated() error = %v", err)
	}

	entries, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	e := entries[0]
	if e.ID != "abc" || e.Status != "done" || e.Percent != 100 || e.Parts != 3 {
		t.Errorf("entry = %+v", e)
	}
	if e.ZipPath != "/files/abc/movie.zip" {
		t.Errorf("zip_path = %q", e.ZipPath)
	}
}

func TestListRecent_DefaultLimit(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db.Conn())

	entries, err := repo.ListRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if entries != nil {
		t.Errorf("entries = %v, want none", entries)
	}
}
