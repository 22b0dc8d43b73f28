package job

import (
	"log/slog"
	"sync"
	"time"
)

// Store is a concurrency-safe registry of Job Records keyed by id. It is the
// single source of truth for status queries. State is process-scoped: a
// restart empties it, matching the lifetime of the external engine processes.
//
// Mutators on ids that do not exist are checked no-ops, not errors, so that
// late engine callbacks after a cleanup sweep cannot fault.
type Store struct {
	mu     sync.RWMutex
	jobs   map[string]*Record
	logger *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		jobs:   make(map[string]*Record),
		logger: logger,
	}
}

// Create inserts a fresh queued record under the given id.
func (s *Store) Create(id, filename string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		return Snapshot{}, ErrDuplicateJob
	}

	now := time.Now()
	rec := &Record{
		ID:        id,
		Filename:  filename,
		Status:    StatusQueued,
		Percent:   0,
		Parts:     []Part{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.jobs[id] = rec
	return rec.snapshot(), nil
}

// Get returns a point-in-time copy of the record.
func (s *Store) Get(id string) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.jobs[id]
	if !ok {
		return Snapshot{}, false
	}
	return rec.snapshot(), true
}

// Update applies fn to the record under the write lock. Unknown ids are a
// logged no-op. fn must not retain the *Record beyond the call.
func (s *Store) Update(id string, fn func(*Record)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.jobs[id]
	if !ok {
		s.logger.Debug("update for unknown job ignored", "job_id", id)
		return
	}
	fn(rec)
	rec.UpdatedAt = time.Now()
}

// SetProgress records a phase-local percent, clamped to [0,100]. Values
// below the current percent and writes after a terminal state are ignored.
func (s *Store) SetProgress(id string, percent int) {
	s.Update(id, func(r *Record) {
		if r.Status.Terminal() {
			s.logger.Debug("progress after terminal state ignored", "job_id", id, "percent", percent)
			return
		}
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		if percent > r.Percent {
			r.Percent = percent
		}
	})
}

// SetStatus moves the record to a new lifecycle state. Transitions out of a
// terminal state are blocked; entering processing resets percent to that
// phase's own 0-100 scale.
func (s *Store) SetStatus(id string, status Status) {
	s.Update(id, func(r *Record) {
		if r.Status.Terminal() {
			s.logger.Warn("transition out of terminal state blocked",
				"job_id", id, "current", string(r.Status), "attempted", string(status))
			return
		}
		if status == StatusProcessing {
			r.Percent = 0
		}
		r.Status = status
	})
}

// AppendPart adds one produced clip. Parts only grow; appends after a
// terminal state are ignored.
func (s *Store) AppendPart(id string, p Part) {
	s.Update(id, func(r *Record) {
		if r.Status.Terminal() {
			s.logger.Debug("part after terminal state ignored", "job_id", id, "part", p.Index)
			return
		}
		r.Parts = append(r.Parts, p)
	})
}

// SetZip records the bundled archive reference. It is set at most once and
// only while at least one part exists.
func (s *Store) SetZip(id, zipPath string) {
	s.Update(id, func(r *Record) {
		if r.Status.Terminal() || r.ZipPath != "" {
			return
		}
		if len(r.Parts) == 0 {
			s.logger.Warn("zip without parts ignored", "job_id", id)
			return
		}
		r.ZipPath = zipPath
	})
}

// SetError marks the job failed with a reason. A done job is never
// resurrected and the first error wins.
func (s *Store) SetError(id, reason string) {
	s.Update(id, func(r *Record) {
		if r.Status.Terminal() {
			s.logger.Debug("error after terminal state ignored", "job_id", id, "reason", reason)
			return
		}
		r.Error = reason
		r.Status = StatusError
	})
}

// Len returns the number of live records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
