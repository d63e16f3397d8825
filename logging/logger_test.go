package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newBufferLogger builds a Logger whose output is captured in a buffer.
func newBufferLogger(t *testing.T) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	sink := zapcore.AddSync(&buf)
	core := zapcore.NewCore(zapcore.NewJSONEncoder(NewEncoderConfig()), sink, zapcore.DebugLevel)
	zapLogger := zap.New(core)
	return &Logger{zap: zapLogger, sugar: zapLogger.Sugar()}, &buf
}

func TestNewLoggerCreatesLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "app.log")

	logger, err := NewLogger(true, logPath)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	defer logger.Sync()

	if logger.LogFilePath() != logPath {
		t.Errorf("LogFilePath = %q, want %q", logger.LogFilePath(), logPath)
	}
	if !logger.IsDevelopment() {
		t.Error("IsDevelopment should be true")
	}
}

func TestLoggerRedactsSensitiveFields(t *testing.T) {
	logger, buf := newBufferLogger(t)

	logger.Info("configured client",
		zap.String("api_key", "sk-abcdefghijklmnopqrstuvwxyz123456"),
		zap.String("model", "gpt-4o-mini"),
	)
	logger.Sync()

	output := buf.String()
	if strings.Contains(output, "sk-abcdefghijklmnop") {
		t.Errorf("API key leaked into log output: %s", output)
	}
	if !strings.Contains(output, RedactedPlaceholder) {
		t.Errorf("expected redaction placeholder in output: %s", output)
	}
	if !strings.Contains(output, "gpt-4o-mini") {
		t.Errorf("benign field should pass through: %s", output)
	}
}

func TestLoggerRedactsSensitiveValues(t *testing.T) {
	logger, buf := newBufferLogger(t)

	logger.Error("request failed",
		zap.String("detail", "upstream rejected key sk-abcdefghijklmnopqrstuvwxyz123456"),
	)
	logger.Sync()

	if strings.Contains(buf.String(), "sk-abcdefghijklmnop") {
		t.Errorf("API key in value leaked into log output: %s", buf.String())
	}
}

func TestLoggerWithAndNamed(t *testing.T) {
	logger, buf := newBufferLogger(t)

	child := logger.Named("extraction").With(zap.String("session_id", "abc"))
	child.Info("page extracted")
	child.Sync()

	var entry map[string]any
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["session_id"] != "abc" {
		t.Errorf("child logger missing bound field: %v", entry)
	}
	if entry[FieldSource] != "extraction" {
		t.Errorf("child logger missing name: %v", entry)
	}
}

func TestExtractionMetricsMarshalling(t *testing.T) {
	logger, buf := newBufferLogger(t)

	logger.Info("page extracted", zap.Object("metrics", ExtractionMetrics{
		Model:         "gpt-4o-mini",
		Page:          7,
		Format:        "markdown",
		ImageBytes:    1024,
		ContentLength: 2048,
		Duration:      1500 * time.Millisecond,
	}))
	logger.Sync()

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	metrics, ok := entry["metrics"].(map[string]any)
	if !ok {
		t.Fatalf("metrics should be a nested object: %v", entry)
	}
	if metrics["page"] != float64(7) {
		t.Errorf("page = %v, want 7", metrics["page"])
	}
	if metrics["duration_ms"] != float64(1500) {
		t.Errorf("duration_ms = %v, want 1500", metrics["duration_ms"])
	}
}

func TestNewTestLoggerIsSafe(t *testing.T) {
	logger := NewTestLogger()
	logger.Info("no-op")
	logger.Debug("no-op")
	if err := logger.Sync(); err != nil {
		t.Errorf("Sync on test logger: %v", err)
	}
}
