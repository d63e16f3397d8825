package core

import (
	"strings"
	"testing"
)

func TestGenerateSessionID(t *testing.T) {
	id, err := GenerateSessionID()
	if err != nil {
		t.Fatalf("GenerateSessionID failed: %v", err)
	}

	// 32 bytes base64-encoded without padding is 43 characters
	if len(id) != 43 {
		t.Errorf("session ID length = %d, want 43", len(id))
	}

	if err := ValidateSessionID(id); err != nil {
		t.Errorf("generated ID failed its own validation: %v", err)
	}
}

func TestGenerateSessionIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := GenerateSessionID()
		if err != nil {
			t.Fatalf("GenerateSessionID failed: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate session ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestValidateSessionID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid generated shape", "abcDEF123_-abcDEF123_-abcDEF123_-abcDEF123x", false},
		{"minimum length", strings.Repeat("a", 16), false},
		{"empty", "", true},
		{"too short", "abc", true},
		{"path separator", "abc/def/ghi/jkl/mno", true},
		{"traversal", "../../../etc/passwd", true},
		{"dot dot", "..aaaaaaaaaaaaaaaaaa", true},
		{"backslash", `abc\def\ghi\jkl\mno`, true},
		{"null byte", "abcdefghijklmnop\x00q", true},
		{"space", "abcdefg hijklmnopqr", true},
		{"too long", strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSessionID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSessionID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}
