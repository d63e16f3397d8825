package validation

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docuvert/core"
)

// validConfig builds a config whose paths all exist in a temp dir.
func validConfig(t *testing.T) *core.Config {
	t.Helper()
	dir := t.TempDir()

	script := filepath.Join(dir, "convert.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	return &core.Config{
		OpenAIAPIKey:     "sk-test-key",
		DataDir:          filepath.Join(dir, "data"),
		ConverterScript:  script,
		DatabasePath:     filepath.Join(dir, "data", "sessions.db"),
		MaxFileSize:      core.DefaultMaxFileSize,
		MaxImageDim:      2048,
		ExtractionTokens: 4096,
	}
}

func TestSuitePassesOnValidConfig(t *testing.T) {
	var out bytes.Buffer
	result := NewSuite(validConfig(t)).WithOutput(&out).Validate()

	if !result.Success {
		t.Fatalf("suite failed: %v", result.GetFirstError())
	}
	if result.PassedSteps != result.TotalSteps {
		t.Errorf("passed %d of %d", result.PassedSteps, result.TotalSteps)
	}
	if !strings.Contains(out.String(), "Validation Passed") {
		t.Errorf("summary missing from output: %s", out.String())
	}
}

func TestSuiteFailsOnMissingAPIKey(t *testing.T) {
	config := validConfig(t)
	config.OpenAIAPIKey = ""

	result := NewSuite(config).WithOutput(&bytes.Buffer{}).WithShowProgress(false).Validate()
	if result.Success {
		t.Fatal("suite passed without API key")
	}
	if result.GetFirstError() == nil {
		t.Error("no error reported for failed step")
	}
}

func TestSuiteFailsOnMissingConverterScript(t *testing.T) {
	config := validConfig(t)
	config.ConverterScript = filepath.Join(t.TempDir(), "missing.sh")

	result := NewSuite(config).WithShowProgress(false).Validate()
	if result.Success {
		t.Fatal("suite passed with missing converter script")
	}
}

func TestSuiteFailFastStopsEarly(t *testing.T) {
	config := validConfig(t)
	config.OpenAIAPIKey = ""

	result := NewSuite(config).WithShowProgress(false).WithFailFast(true).Validate()
	if result.TotalSteps != 1 {
		t.Errorf("ran %d steps, want 1 with fail-fast", result.TotalSteps)
	}
}

func TestCheckDataDirRejectsUnwritable(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	config := validConfig(t)
	readonly := filepath.Join(t.TempDir(), "ro")
	if err := os.MkdirAll(readonly, 0o555); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	config.DataDir = readonly

	result := NewConfigChecker(config).CheckDataDir()
	if result.Valid {
		t.Error("unwritable data dir passed validation")
	}
}

func TestCheckLimits(t *testing.T) {
	config := validConfig(t)
	config.MaxImageDim = 16

	result := NewConfigChecker(config).CheckLimits()
	if result.Valid {
		t.Error("tiny MaxImageDim passed validation")
	}
}
