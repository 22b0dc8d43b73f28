package api

import (
	"time"

	"github.com/splitflow/splitflow/internal/history"
	"github.com/splitflow/splitflow/internal/job"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type SubmitResponse struct {
	JobID string `json:"jobId"`
}

type PartResponse struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	URL   string `json:"url"`
}

// ProgressResponse is the polling payload. Field names match what the web
// client reads.
type ProgressResponse struct {
	Status  string         `json:"status"`
	Percent int            `json:"percent"`
	Parts   []PartResponse `json:"parts"`
	ZipPath string         `json:"zipPath,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type JobSummaryResponse struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Percent   int    `json:"percent"`
	Parts     int    `json:"parts"`
	ZipPath   string `json:"zipPath,omitempty"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type JobsResponse struct {
	Jobs []JobSummaryResponse `json:"jobs"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func SnapshotToProgress(s job.Snapshot) ProgressResponse {
	parts := make([]PartResponse, len(s.Parts))
	for i, p := range s.Parts {
		parts[i] = PartResponse{Index: p.Index, Name: p.Name, URL: p.URL}
	}
	return ProgressResponse{
		Status:  string(s.Status),
		Percent: s.Percent,
		Parts:   parts,
		ZipPath: s.ZipPath,
		Error:   s.Error,
	}
}

func EntryToSummary(e *history.Entry) JobSummaryResponse {
	return JobSummaryResponse{
		ID:        e.ID,
		Filename:  e.Filename,
		Status:    e.Status,
		Percent:   e.Percent,
		Parts:     e.Parts,
		ZipPath:   e.ZipPath,
		Error:     e.Error,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
		UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
	}
}
