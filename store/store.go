// Package store owns the per-session file-system layout used by the
// extraction pipeline. The file system is the sole durable owner of session
// and page state: a page counts as extracted iff its completion marker file
// exists, and everything else in the system is a rebuildable view over that.
//
// Per-session layout under the data root:
//
//	<root>/<sessionID>/upload/original.pdf
//	<root>/<sessionID>/images/page_<n>.png        (or zero-padded page_<nnn>.png)
//	<root>/<sessionID>/output/page_<n>.<ext>      (extracted content)
//	<root>/<sessionID>/output/page_<n>.done.json  (completion marker)
//	<root>/<sessionID>/output/aggregated.<ext>
//	<root>/<sessionID>/output/aggregated_metadata.json
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"docuvert/core"
)

// Subdirectory names within a session namespace.
const (
	UploadDirName = "upload"
	ImagesDirName = "images"
	OutputDirName = "output"
)

// UploadFileName is the name the raw PDF is stored under.
const UploadFileName = "original.pdf"

// SessionStore resolves session IDs to their file-system namespaces and
// provides the page queries the pipeline is built on. All methods are safe
// to call concurrently; the store itself holds no mutable state.
type SessionStore struct {
	root string
}

// NewSessionStore creates a store rooted at the given data directory.
// The directory is created if it does not exist.
func NewSessionStore(root string) (*SessionStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data root: %w", err)
	}
	return &SessionStore{root: abs}, nil
}

// Root returns the absolute data root directory.
func (s *SessionStore) Root() string {
	return s.root
}

// SessionDir returns the directory owned by the given session.
// The session ID must already be validated by the caller.
func (s *SessionStore) SessionDir(sessionID string) string {
	return filepath.Join(s.root, sessionID)
}

// UploadDir returns the session's raw-upload directory.
func (s *SessionStore) UploadDir(sessionID string) string {
	return filepath.Join(s.root, sessionID, UploadDirName)
}

// ImagesDir returns the session's rasterized-page directory.
func (s *SessionStore) ImagesDir(sessionID string) string {
	return filepath.Join(s.root, sessionID, ImagesDirName)
}

// OutputDir returns the session's extracted-output directory.
func (s *SessionStore) OutputDir(sessionID string) string {
	return filepath.Join(s.root, sessionID, OutputDirName)
}

// UploadPath returns the path of the session's stored PDF.
func (s *SessionStore) UploadPath(sessionID string) string {
	return filepath.Join(s.UploadDir(sessionID), UploadFileName)
}

// SessionExists reports whether the session's namespace exists on disk.
func (s *SessionStore) SessionExists(sessionID string) bool {
	if core.ValidateSessionID(sessionID) != nil {
		return false
	}
	info, err := os.Stat(s.SessionDir(sessionID))
	return err == nil && info.IsDir()
}

// CreateSession creates the full namespace for a new session.
func (s *SessionStore) CreateSession(sessionID string) error {
	if err := core.ValidateSessionID(sessionID); err != nil {
		return err
	}
	for _, dir := range []string{
		s.UploadDir(sessionID),
		s.ImagesDir(sessionID),
		s.OutputDir(sessionID),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create session directory %s: %w", dir, err)
		}
	}
	return nil
}

// RemoveSession deletes the session's entire namespace. Used by the upload
// handler to roll back a partially-created session; the pipeline core never
// calls it.
func (s *SessionStore) RemoveSession(sessionID string) error {
	if err := core.ValidateSessionID(sessionID); err != nil {
		return err
	}
	return os.RemoveAll(s.SessionDir(sessionID))
}
