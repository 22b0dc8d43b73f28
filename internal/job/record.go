// Package job holds the orchestration core: the Job Record, the in-memory
// Store that serves polling clients, and the lifecycle Controller driving
// records from queued through uploading and processing to a terminal state.
package job

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of one split job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusUploading  Status = "uploading"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// Terminal reports whether no further mutation is permitted.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// Part is one produced clip as exposed to polling clients.
type Part struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Path  string `json:"-"` // local path, never on the wire
	URL   string `json:"url"`
}

// Record is the single source of truth for one split request. It is owned
// by the Store; all reads leave as value copies.
type Record struct {
	ID        string
	Filename  string // original upload filename, for history/display
	Status    Status
	Percent   int // 0-100, phase-local (upload vs processing)
	Parts     []Part
	ZipPath   string // URL of the bundled archive; empty until set
	Error     string // failure reason; non-empty only with StatusError
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot is a self-consistent copy of a Record taken at a single instant.
type Snapshot struct {
	ID        string
	Filename  string
	Status    Status
	Percent   int
	Parts     []Part
	ZipPath   string
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *Record) snapshot() Snapshot {
	parts := make([]Part, len(r.Parts))
	copy(parts, r.Parts)
	return Snapshot{
		ID:        r.ID,
		Filename:  r.Filename,
		Status:    r.Status,
		Percent:   r.Percent,
		Parts:     parts,
		ZipPath:   r.ZipPath,
		Error:     r.Error,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// NewID returns a fresh job id.
func NewID() string {
	return uuid.NewString()
}
