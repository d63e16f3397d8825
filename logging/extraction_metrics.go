package logging

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// ExtractionMetrics represents metrics collected during one per-page
// extraction call. Implements zapcore.ObjectMarshaler for structured logging.
//
// Example:
//
//	metrics := ExtractionMetrics{
//		Model:          "gpt-4o-mini",
//		Page:           3,
//		Format:         "markdown",
//		ImageBytes:     482113,
//		ContentLength:  1764,
//		Duration:       4 * time.Second,
//	}
//	logger.Info("page extracted", zap.Object("metrics", metrics))
type ExtractionMetrics struct {
	// Model identifies which multimodal model performed the extraction
	Model string `json:"model"`

	// Page is the 1-based page index
	Page int `json:"page"`

	// Format is the requested output format
	Format string `json:"format"`

	// ImageBytes is the size of the image sent to the model
	ImageBytes int `json:"image_bytes"`

	// ContentLength is the character count of the returned text
	ContentLength int `json:"content_length"`

	// Duration is the wall-clock time of the inference call
	Duration time.Duration `json:"duration"`
}

// MarshalLogObject implements zapcore.ObjectMarshaler so ExtractionMetrics
// is logged as a nested JSON object. Duration is encoded in milliseconds
// for readability.
func (m ExtractionMetrics) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("model", m.Model)
	enc.AddInt("page", m.Page)
	enc.AddString("format", m.Format)
	enc.AddInt("image_bytes", m.ImageBytes)
	enc.AddInt("content_length", m.ContentLength)
	enc.AddInt64("duration_ms", m.Duration.Milliseconds())
	return nil
}
