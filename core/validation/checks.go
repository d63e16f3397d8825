// Package validation runs the startup check suite: it verifies the
// configuration, file-system permissions, and external collaborators the
// service needs before it starts accepting uploads, printing a colored
// progress report to the console.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"docuvert/core"
)

// CheckResult is the outcome of one startup check.
type CheckResult struct {
	Valid   bool
	Message string
	Error   error
}

func pass(format string, args ...any) CheckResult {
	return CheckResult{Valid: true, Message: fmt.Sprintf(format, args...)}
}

func fail(err error) CheckResult {
	return CheckResult{Valid: false, Error: err}
}

// ConfigChecker validates a loaded configuration against the environment
// it will run in.
type ConfigChecker struct {
	config *core.Config
}

// NewConfigChecker creates a checker for config.
func NewConfigChecker(config *core.Config) *ConfigChecker {
	return &ConfigChecker{config: config}
}

// CheckAPIKey verifies an API key is configured and looks like one.
func (c *ConfigChecker) CheckAPIKey() CheckResult {
	key := c.config.OpenAIAPIKey
	if key == "" {
		return fail(fmt.Errorf("OPENAI_API_KEY is not set"))
	}
	if strings.TrimSpace(key) != key {
		return fail(fmt.Errorf("OPENAI_API_KEY has leading or trailing whitespace"))
	}
	return pass("key configured (%d chars)", len(key))
}

// CheckDataDir verifies the session data directory exists (or can be
// created) and is writable.
func (c *ConfigChecker) CheckDataDir() CheckResult {
	dir := c.config.DataDir
	if dir == "" {
		return fail(fmt.Errorf("DATA_DIR is not set"))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fail(fmt.Errorf("cannot create data directory %s: %w", dir, err))
	}

	probe := filepath.Join(dir, ".write_probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return fail(fmt.Errorf("data directory %s is not writable: %w", dir, err))
	}
	os.Remove(probe)
	return pass("%s writable", dir)
}

// CheckConverterScript verifies the conversion script exists and, on
// platforms with an executable bit, that it is executable.
func (c *ConfigChecker) CheckConverterScript() CheckResult {
	script := c.config.ConverterScript
	if script == "" {
		return fail(fmt.Errorf("CONVERTER_SCRIPT is not set"))
	}
	info, err := os.Stat(script)
	if err != nil {
		return fail(fmt.Errorf("converter script %s: %w", script, err))
	}
	if info.IsDir() {
		return fail(fmt.Errorf("converter script %s is a directory", script))
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fail(fmt.Errorf("converter script %s is not executable", script))
	}
	return pass("%s", script)
}

// CheckDatabasePath verifies the database directory exists or can be created.
func (c *ConfigChecker) CheckDatabasePath() CheckResult {
	path := c.config.DatabasePath
	if path == "" {
		return fail(fmt.Errorf("DATABASE_PATH is not set"))
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fail(fmt.Errorf("cannot create database directory %s: %w", dir, err))
	}
	return pass("%s", path)
}

// CheckLimits verifies the numeric limits are sane.
func (c *ConfigChecker) CheckLimits() CheckResult {
	if c.config.MaxFileSize <= 0 {
		return fail(fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", c.config.MaxFileSize))
	}
	if c.config.MaxImageDim < 256 {
		return fail(fmt.Errorf("MAX_IMAGE_DIM %d is too small for legible extraction", c.config.MaxImageDim))
	}
	if c.config.ExtractionTokens <= 0 {
		return fail(fmt.Errorf("EXTRACTION_TOKENS must be positive, got %d", c.config.ExtractionTokens))
	}
	return pass("max upload %d MB, max image dim %d", c.config.MaxFileSize>>20, c.config.MaxImageDim)
}
