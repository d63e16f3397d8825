package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"docuvert/core"
)

// safeFileNamePattern is the allow-list for output filenames served back to
// clients: alphanumerics, underscore, dash, and dot. Separators never match,
// so a valid name can only reference a direct child of the output directory.
var safeFileNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateFileName rejects filenames that could escape a session's output
// directory. Checked before any file-system access.
func ValidateFileName(name string) error {
	if name == "" {
		return core.NewValidationError("filename", "must not be empty")
	}
	if strings.Contains(name, "..") {
		return core.NewValidationError("filename", "must not contain traversal sequences")
	}
	if !safeFileNamePattern.MatchString(name) {
		return core.NewValidationError("filename", "contains characters outside the allowed set")
	}
	return nil
}

// ResolveOutputFile validates sessionID and name, then resolves the file
// inside the session's output directory, confirming the resolved absolute
// path is still contained in it. Returns a NotFoundError if the file does
// not exist.
func (s *SessionStore) ResolveOutputFile(sessionID, name string) (string, error) {
	if err := core.ValidateSessionID(sessionID); err != nil {
		return "", err
	}
	if err := ValidateFileName(name); err != nil {
		return "", err
	}

	outputDir := s.OutputDir(sessionID)
	resolved, err := filepath.Abs(filepath.Join(outputDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to resolve output file: %w", err)
	}

	// Defense in depth: the allow-list above already forbids separators, but
	// the served path must provably stay inside the session's output root.
	if resolved != outputDir && !strings.HasPrefix(resolved, outputDir+string(filepath.Separator)) {
		return "", core.NewValidationError("filename", "resolves outside the session output directory")
	}

	info, err := os.Stat(resolved)
	if err != nil || info.IsDir() {
		return "", core.NewNotFoundError("file", name)
	}
	return resolved, nil
}
