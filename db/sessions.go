package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"docuvert/core"
)

// SessionRecord is one row in the sessions table: which PDF was uploaded,
// when, and how many pages it rasterized to.
type SessionRecord struct {
	ID         int64
	SessionID  string
	Filename   string
	TotalPages int
	CreatedAt  time.Time
}

// SessionRegistry provides CRUD access to the sessions table. The registry
// is bookkeeping only; the file system stays authoritative for page state.
type SessionRegistry struct {
	db *sql.DB
}

// NewSessionRegistry creates a registry over an open connection.
func NewSessionRegistry(db *sql.DB) *SessionRegistry {
	return &SessionRegistry{db: db}
}

// Create inserts a session row and returns its generated ID.
func (r *SessionRegistry) Create(ctx context.Context, record SessionRecord) (int64, error) {
	if r.db == nil {
		return 0, errors.New("database connection is nil")
	}
	if err := core.ValidateSessionID(record.SessionID); err != nil {
		return 0, err
	}

	query := `
		INSERT INTO sessions (session_id, filename, total_pages)
		VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, record.SessionID, record.Filename, record.TotalPages)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted session id: %w", err)
	}
	return id, nil
}

// RecordSession inserts a session row. This adapts the registry to the
// upload handler's recorder dependency.
func (r *SessionRegistry) RecordSession(ctx context.Context, sessionID, filename string, totalPages int) error {
	_, err := r.Create(ctx, SessionRecord{
		SessionID:  sessionID,
		Filename:   filename,
		TotalPages: totalPages,
	})
	return err
}

// Get returns the session row for sessionID.
func (r *SessionRegistry) Get(ctx context.Context, sessionID string) (*SessionRecord, error) {
	if r.db == nil {
		return nil, errors.New("database connection is nil")
	}

	query := `
		SELECT id, session_id, filename, total_pages, created_at
		FROM sessions
		WHERE session_id = ?`

	var record SessionRecord
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&record.ID,
		&record.SessionID,
		&record.Filename,
		&record.TotalPages,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError("session", sessionID)
		}
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return &record, nil
}

// List returns the most recent sessions, newest first.
func (r *SessionRegistry) List(ctx context.Context, limit int) ([]SessionRecord, error) {
	if r.db == nil {
		return nil, errors.New("database connection is nil")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, session_id, filename, total_pages, created_at
		FROM sessions
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var record SessionRecord
		if err := rows.Scan(&record.ID, &record.SessionID, &record.Filename, &record.TotalPages, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}
	return records, nil
}

// Count returns the number of registered sessions.
func (r *SessionRegistry) Count(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, errors.New("database connection is nil")
	}
	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}
