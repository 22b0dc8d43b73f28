package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/splitflow/splitflow/internal/job"
)

// Entry is one row of the job audit trail.
type Entry struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
	Percent   int       `json:"percent"`
	Parts     int       `json:"parts"`
	ZipPath   string    `json:"zip_path,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository persists the trail. It implements job.Recorder.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) JobCreated(ctx context.Context, id, filename string) error {
	now := time.Now().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, filename, status, percent, parts, created_at, updated_at)
		VALUES (?, ?, ?, 0, 0, ?, ?)
	`, id, filename, string(job.StatusQueued), now, now)
	return err
}

func (r *Repository) JobUpdated(ctx context.Context, id string, status job.Status, percent, parts int, zipPath, errMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, percent = ?, parts = ?, zip_path = ?, error = ?, updated_at = ?
		WHERE id = ?
	`, string(status), percent, parts, nullString(zipPath), nullString(errMsg), time.Now().Format(time.RFC3339), id)
	return err
}

// ListRecent returns the newest trail entries, most recent first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, filename, status, percent, parts, zip_path, error, created_at, updated_at
		FROM jobs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var zipPath, errMsg sql.NullString
		var createdAt, updatedAt string

		if err := rows.Scan(&e.ID, &e.Filename, &e.Status, &e.Percent, &e.Parts, &zipPath, &errMsg, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		e.ZipPath = zipPath.String
		e.Error = errMsg.String
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
