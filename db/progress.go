package db

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"docuvert/core"
	"docuvert/logging"

	"go.uber.org/zap"
)

// ProgressStore is a SQLite-backed core.ProgressStore for deployments that
// want progress to survive restarts. Like the in-memory store it is a cache
// over the durable per-page markers, never the source of truth.
//
// The store serializes its read-modify-write cycle with a mutex rather than
// a transaction: the connection pool is configured for a single writer
// anyway, and the interface has no error surface, so failed writes are
// logged and the caller's next read reflects the last successful state.
type ProgressStore struct {
	mu     sync.Mutex
	db     *sql.DB
	logger *logging.Logger
}

// NewProgressStore creates a SQLite progress store.
func NewProgressStore(db *sql.DB, logger *logging.Logger) *ProgressStore {
	if logger == nil {
		logger = logging.NewTestLogger()
	}
	return &ProgressStore{db: db, logger: logger.Named("progress_store")}
}

// GetOrInit returns the record for sessionID, inserting a fresh processing
// record if none exists.
func (s *ProgressStore) GetOrInit(sessionID string, totalPages int) core.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record, ok := s.get(sessionID); ok {
		return record
	}

	record := core.Progress{
		SessionID:  sessionID,
		TotalPages: totalPages,
		Status:     core.StatusProcessing,
		StartedAt:  time.Now().UTC(),
	}
	s.put(record)
	return record
}

// Get returns a snapshot of the record for sessionID.
func (s *ProgressStore) Get(sessionID string) (core.Progress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(sessionID)
}

// Update applies fn to the record in place. No-op if the record does not exist.
func (s *ProgressStore) Update(sessionID string, fn func(*core.Progress)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.get(sessionID)
	if !ok {
		return
	}
	fn(&record)
	s.put(record)
}

func (s *ProgressStore) get(sessionID string) (core.Progress, bool) {
	query := `
		SELECT session_id, total_pages, processed_pages, failed_pages, status, error, started_at
		FROM progress
		WHERE session_id = ?`

	var record core.Progress
	var status string
	err := s.db.QueryRow(query, sessionID).Scan(
		&record.SessionID,
		&record.TotalPages,
		&record.ProcessedPages,
		&record.FailedPages,
		&status,
		&record.Error,
		&record.StartedAt,
	)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Error("failed to read progress row",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		}
		return core.Progress{}, false
	}
	record.Status = core.Status(status)
	return record, true
}

func (s *ProgressStore) put(record core.Progress) {
	query := `
		INSERT INTO progress (session_id, total_pages, processed_pages, failed_pages, status, error, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			total_pages = excluded.total_pages,
			processed_pages = excluded.processed_pages,
			failed_pages = excluded.failed_pages,
			status = excluded.status,
			error = excluded.error`

	_, err := s.db.Exec(query,
		record.SessionID,
		record.TotalPages,
		record.ProcessedPages,
		record.FailedPages,
		string(record.Status),
		record.Error,
		record.StartedAt,
	)
	if err != nil {
		s.logger.Error("failed to write progress row",
			zap.String("session_id", record.SessionID),
			zap.Error(err),
		)
	}
}
