package store

import (
	"os"
	"path/filepath"
	"testing"

	"docuvert/core"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	s, err := NewSessionStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSessionStore failed: %v", err)
	}
	return s
}

func newTestSession(t *testing.T, s *SessionStore) string {
	t.Helper()
	id, err := core.GenerateSessionID()
	if err != nil {
		t.Fatalf("GenerateSessionID failed: %v", err)
	}
	if err := s.CreateSession(id); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	return id
}

// writePageImage drops a fake rasterized page into the session's images dir.
func writePageImage(t *testing.T, s *SessionStore, sessionID, name string) {
	t.Helper()
	path := filepath.Join(s.ImagesDir(sessionID), name)
	if err := os.WriteFile(path, []byte("not-a-real-png"), 0o644); err != nil {
		t.Fatalf("failed to write page image: %v", err)
	}
}

func TestCreateSessionLayout(t *testing.T) {
	s := newTestStore(t)
	id := newTestSession(t, s)

	for _, dir := range []string{s.UploadDir(id), s.ImagesDir(id), s.OutputDir(id)} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s to exist", dir)
		}
	}
	if !s.SessionExists(id) {
		t.Error("SessionExists should report true after CreateSession")
	}
}

func TestCreateSessionRejectsBadID(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateSession("../escape"); err == nil {
		t.Fatal("CreateSession should reject traversal in session ID")
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "..", "escape")); err == nil {
		t.Error("no directory should have been created outside the root")
	}
}

func TestRemoveSession(t *testing.T) {
	s := newTestStore(t)
	id := newTestSession(t, s)

	if err := s.RemoveSession(id); err != nil {
		t.Fatalf("RemoveSession failed: %v", err)
	}
	if s.SessionExists(id) {
		t.Error("session should be gone after RemoveSession")
	}
}
