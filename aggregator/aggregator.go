// Package aggregator combines a session's per-page extraction outputs into
// one document in a caller-chosen format. Aggregation reads whichever pages
// are durably complete at the moment it runs, renders the whole document in
// memory, and only then overwrites the aggregated files, so a failed run
// never corrupts the previous output.
package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"docuvert/core"
	"docuvert/logging"
	"docuvert/store"

	"go.uber.org/zap"
)

// Output file names inside a session's output directory. Re-running
// aggregation with the same format fully overwrites both.
const (
	MetadataFileName       = "aggregated_metadata.json"
	aggregatedBaseFileName = "aggregated"
)

// Result describes one finished aggregation run.
type Result struct {
	SessionID    string        `json:"sessionId"`
	Format       core.Format   `json:"format"`
	OutputFile   string        `json:"outputFile"`
	MetadataFile string        `json:"metadataFile"`
	Metadata     Metadata      `json:"metadata"`
	Duration     time.Duration `json:"-"`
}

// Aggregator renders a session's completed pages into a single document.
type Aggregator struct {
	store     *store.SessionStore
	renderers map[core.Format]Renderer
	logger    *logging.Logger
	now       func() time.Time
}

// NewAggregator creates an aggregator with the full renderer registry.
func NewAggregator(sessionStore *store.SessionStore, logger *logging.Logger) *Aggregator {
	if logger == nil {
		logger = logging.NewTestLogger()
	}
	return &Aggregator{
		store:     sessionStore,
		renderers: defaultRenderers(),
		logger:    logger.Named("aggregator"),
		now:       time.Now,
	}
}

// AggregatedFileName returns the aggregated document's filename for a format.
func AggregatedFileName(format core.Format) string {
	return aggregatedBaseFileName + "." + format.Extension()
}

// Aggregate combines every completed page of the session into one document
// of the given format and writes it, plus a metadata JSON file, to the
// session's output directory.
//
// The run is a snapshot: pages completed while aggregation is in flight may
// or may not be included, and re-running picks them up. No pages at all
// yields ErrNoPagesFound.
func (a *Aggregator) Aggregate(ctx context.Context, sessionID string, format core.Format) (*Result, error) {
	if err := core.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	renderer, ok := a.renderers[format]
	if !ok {
		return nil, core.NewValidationError("format", fmt.Sprintf("unsupported aggregation format %q", format))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := a.now()
	markers, err := a.store.ListMarkers(sessionID)
	if err != nil {
		return nil, newAggregationError(sessionID, format, err)
	}
	if len(markers) == 0 {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNoPagesFound)
	}

	doc := a.buildDocument(sessionID, format, markers)

	// Render fully in memory before touching the output directory.
	rendered, err := renderer.Render(doc)
	if err != nil {
		return nil, newAggregationError(sessionID, format, err)
	}
	metadataJSON, err := json.MarshalIndent(doc.Metadata, "", "  ")
	if err != nil {
		return nil, newAggregationError(sessionID, format, err)
	}

	outputDir := a.store.OutputDir(sessionID)
	outputName := AggregatedFileName(format)
	if err := os.WriteFile(filepath.Join(outputDir, outputName), rendered, 0o644); err != nil {
		return nil, newAggregationError(sessionID, format, fmt.Errorf("failed to write aggregated output: %w", err))
	}
	if err := os.WriteFile(filepath.Join(outputDir, MetadataFileName), metadataJSON, 0o644); err != nil {
		return nil, newAggregationError(sessionID, format, fmt.Errorf("failed to write aggregation metadata: %w", err))
	}

	duration := a.now().Sub(started)
	a.logger.Info("aggregation completed",
		zap.String("session_id", sessionID),
		zap.String("format", string(format)),
		zap.Int("total_pages", doc.Metadata.TotalPages),
		zap.Int("total_characters", doc.Metadata.TotalCharacters),
		zap.Duration("duration", duration),
	)

	return &Result{
		SessionID:    sessionID,
		Format:       format,
		OutputFile:   outputName,
		MetadataFile: MetadataFileName,
		Metadata:     doc.Metadata,
		Duration:     duration,
	}, nil
}

// buildDocument assembles the in-memory snapshot from the sorted markers.
func (a *Aggregator) buildDocument(sessionID string, format core.Format, markers []store.PageMarker) *Document {
	pages := make([]Page, 0, len(markers))
	totalChars := 0
	for _, m := range markers {
		page := Page{
			PageNumber: m.Page,
			Format:     m.Format,
			Content:    m.Content,
		}
		if name := a.store.PageImageName(sessionID, m.Page); name != "" {
			page.Images = []string{name}
		}
		totalChars += len(m.Content)
		pages = append(pages, page)
	}

	return &Document{
		Metadata: Metadata{
			SessionID:       sessionID,
			Format:          string(format),
			CreatedAt:       a.now().UTC(),
			TotalPages:      len(pages),
			TotalCharacters: totalChars,
		},
		Pages: pages,
	}
}
