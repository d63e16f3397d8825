package extraction

import (
	"context"
	"os"
	"time"

	"docuvert/core"
	"docuvert/logging"
	"docuvert/store"
	"docuvert/vision"

	"go.uber.org/zap"
)

// UnitConfig holds configuration for the extraction unit.
type UnitConfig struct {
	// MaxImageDim is the ceiling for a page raster's longest side;
	// larger images are downscaled before the inference call.
	MaxImageDim int
}

// DefaultUnitConfig returns sensible default configuration.
func DefaultUnitConfig() UnitConfig {
	return UnitConfig{MaxImageDim: 2048}
}

// PageResult describes one successful page extraction.
type PageResult struct {
	// Page is the 1-based page index
	Page int

	// Format is the output format the content was extracted into
	Format core.Format

	// Content is the raw text returned by the model
	Content string

	// Duration is the wall-clock time of the extraction
	Duration time.Duration
}

// Unit extracts single pages: it loads the page's rasterized image, runs one
// multimodal inference call, and persists content plus completion marker.
//
// Guarantee: the output file and the marker are written only after a
// successful inference call. On any failure nothing is written, the page
// remains formally un-extracted, and a later run retries it. The unit never
// retries internally; retry policy belongs to the driver.
type Unit struct {
	store  *store.SessionStore
	client ModelClient
	config UnitConfig
	logger *logging.Logger
}

// NewUnit creates an extraction unit.
func NewUnit(sessionStore *store.SessionStore, client ModelClient, config UnitConfig, logger *logging.Logger) *Unit {
	if logger == nil {
		logger = logging.NewTestLogger()
	}
	if config.MaxImageDim <= 0 {
		config.MaxImageDim = DefaultUnitConfig().MaxImageDim
	}
	return &Unit{
		store:  sessionStore,
		client: client,
		config: config,
		logger: logger.Named("extraction"),
	}
}

// ExtractPage extracts one page of a session into the given format.
// The page's rasterized image must already exist (both zero-padded and
// unpadded filenames are accepted).
func (u *Unit) ExtractPage(ctx context.Context, sessionID string, page int, format core.Format) (*PageResult, error) {
	start := time.Now()
	log := u.logger.With(
		zap.String("session_id", sessionID),
		zap.Int("page", page),
		zap.String("format", string(format)),
	)

	imagePath, err := u.store.PageImagePath(sessionID, page)
	if err != nil {
		return nil, newExtractionError(sessionID, page, err)
	}

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, newExtractionError(sessionID, page, err)
	}

	prepared, err := vision.PrepareForInference(imageData, u.config.MaxImageDim)
	if err != nil {
		return nil, newExtractionError(sessionID, page, err)
	}

	content, err := u.client.ExtractImage(ctx, prepared, InstructionFor(format))
	if err != nil {
		log.Error("page extraction failed", zap.Error(err))
		return nil, newExtractionError(sessionID, page, err)
	}

	// Content first, marker second: a crash between the two leaves the
	// page un-extracted and it is redone on the next run.
	if err := u.store.WritePageResult(sessionID, page, format, content); err != nil {
		return nil, newExtractionError(sessionID, page, err)
	}

	duration := time.Since(start)
	log.Info("page extracted", zap.Object("metrics", logging.ExtractionMetrics{
		Model:         modelName(u.client),
		Page:          page,
		Format:        string(format),
		ImageBytes:    len(prepared),
		ContentLength: len(content),
		Duration:      duration,
	}))

	return &PageResult{
		Page:     page,
		Format:   format,
		Content:  content,
		Duration: duration,
	}, nil
}

// modelName reports the model identifier when the client exposes one.
func modelName(client ModelClient) string {
	if vc, ok := client.(*VisionClient); ok {
		return vc.config.Model
	}
	return ""
}
