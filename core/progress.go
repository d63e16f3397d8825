package core

import (
	"sync"
	"time"
)

// Status is the lifecycle state of a session's processing run.
type Status string

// Session processing states.
const (
	// StatusProcessing means a processing run is (or was) walking the pages.
	StatusProcessing Status = "processing"
	// StatusCompleted means every page has been extracted. Terminal:
	// subsequent processing requests short-circuit on this status.
	StatusCompleted Status = "completed"
	// StatusError means the last run finished with at least one failed page.
	// Not terminal: a new processing request re-enters and retries the
	// failed pages, skipping the ones whose completion markers exist.
	StatusError Status = "error"
)

// Progress is the per-session view of a processing run: total page count,
// how many pages are done, the run status, and the last error if any.
//
// Progress is a process-local cache over the durable per-page completion
// markers on disk. It is lost on restart; the markers are the source of
// truth, and a fresh processing request rebuilds the counts from them.
type Progress struct {
	SessionID      string    `json:"sessionId"`
	TotalPages     int       `json:"totalPages"`
	ProcessedPages int       `json:"processedPages"`
	FailedPages    int       `json:"failedPages"`
	Status         Status    `json:"status"`
	Error          string    `json:"error,omitempty"`
	StartedAt      time.Time `json:"startedAt"`
}

// ProgressStore tracks per-session processing progress keyed by session ID.
// Implementations must be safe for concurrent use across sessions.
//
// The in-memory implementation below is the default; db.ProgressStore backs
// the same interface with SQLite for deployments that want progress to
// survive restarts. Neither is authoritative for page state.
type ProgressStore interface {
	// GetOrInit returns the record for sessionID, creating one with status
	// processing, zero processed pages, and start time now if absent.
	// An existing record is returned unchanged.
	GetOrInit(sessionID string, totalPages int) Progress

	// Get returns a snapshot of the record and whether it exists.
	Get(sessionID string) (Progress, bool)

	// Update applies fn to the record in place. No-op if the record
	// does not exist.
	Update(sessionID string, fn func(*Progress))
}

// MemoryProgressStore is a mutex-guarded in-memory ProgressStore.
type MemoryProgressStore struct {
	mu      sync.RWMutex
	records map[string]*Progress
}

// NewMemoryProgressStore creates an empty in-memory progress store.
func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{
		records: make(map[string]*Progress),
	}
}

// GetOrInit returns the existing record for sessionID, or creates one.
func (s *MemoryProgressStore) GetOrInit(sessionID string, totalPages int) Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record, ok := s.records[sessionID]; ok {
		return *record
	}

	record := &Progress{
		SessionID:  sessionID,
		TotalPages: totalPages,
		Status:     StatusProcessing,
		StartedAt:  time.Now(),
	}
	s.records[sessionID] = record
	return *record
}

// Get returns a snapshot of the record for sessionID.
func (s *MemoryProgressStore) Get(sessionID string) (Progress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[sessionID]
	if !ok {
		return Progress{}, false
	}
	return *record, true
}

// Update applies fn to the record for sessionID while holding the lock.
func (s *MemoryProgressStore) Update(sessionID string, fn func(*Progress)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record, ok := s.records[sessionID]; ok {
		fn(record)
	}
}
