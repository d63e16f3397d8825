package store

import (
	"os"
	"path/filepath"
	"testing"

	"docuvert/core"
)

func TestValidateFileName(t *testing.T) {
	valid := []string{
		"page_1.md",
		"aggregated.json",
		"aggregated_metadata.json",
		"page_10.done.json",
		"a-b_c.1",
	}
	for _, name := range valid {
		if err := ValidateFileName(name); err != nil {
			t.Errorf("ValidateFileName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"",
		"../secret",
		"..",
		"a/../b",
		"sub/dir.md",
		`sub\dir.md`,
		"file name.md",
		"file\x00.md",
		"~root",
		"%2e%2e%2fetc",
	}
	for _, name := range invalid {
		if err := ValidateFileName(name); err == nil {
			t.Errorf("ValidateFileName(%q) = nil, want error", name)
		}
	}
}

func TestResolveOutputFile(t *testing.T) {
	s := newTestStore(t)
	id := newTestSession(t, s)

	path := filepath.Join(s.OutputDir(id), "aggregated.md")
	if err := os.WriteFile(path, []byte("# doc"), 0o644); err != nil {
		t.Fatalf("failed to write output file: %v", err)
	}

	resolved, err := s.ResolveOutputFile(id, "aggregated.md")
	if err != nil {
		t.Fatalf("ResolveOutputFile failed: %v", err)
	}
	if resolved != path {
		t.Errorf("resolved = %q, want %q", resolved, path)
	}
}

func TestResolveOutputFileRejectsTraversal(t *testing.T) {
	s := newTestStore(t)
	id := newTestSession(t, s)

	// Plant a file outside the output dir that traversal would reach.
	secret := filepath.Join(s.SessionDir(id), "secret.txt")
	if err := os.WriteFile(secret, []byte("secret"), 0o644); err != nil {
		t.Fatalf("failed to write secret: %v", err)
	}

	malicious := []struct {
		sessionID string
		name      string
	}{
		{id, "../secret.txt"},
		{id, "..%2Fsecret.txt"},
		{id, "foo/../../secret.txt"},
		{"../" + id, "aggregated.md"},
		{id + "/extra", "aggregated.md"},
		{"", "aggregated.md"},
	}

	for _, tt := range malicious {
		_, err := s.ResolveOutputFile(tt.sessionID, tt.name)
		if err == nil {
			t.Errorf("ResolveOutputFile(%q, %q) should be rejected", tt.sessionID, tt.name)
			continue
		}
		if !core.IsValidationError(err) {
			t.Errorf("ResolveOutputFile(%q, %q) error = %T, want ValidationError", tt.sessionID, tt.name, err)
		}
	}
}

func TestResolveOutputFileMissingFile(t *testing.T) {
	s := newTestStore(t)
	id := newTestSession(t, s)

	_, err := s.ResolveOutputFile(id, "nope.md")
	if !core.IsNotFoundError(err) {
		t.Errorf("error = %v, want NotFoundError", err)
	}
}
