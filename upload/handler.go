// Package upload accepts PDF byte streams, validates them, and initializes
// a session: directories, the stored original, and the rasterized page
// images produced by the conversion script. Any failure after the session
// directory is created rolls the whole session back, so no half-initialized
// session ever survives an upload error.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"docuvert/core"
	"docuvert/logging"
	"docuvert/store"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// pdfMagic is the signature every PDF starts with.
var pdfMagic = []byte("%PDF")

// ErrNoPagesProduced is returned when the conversion script exits cleanly
// but leaves no page images behind.
var ErrNoPagesProduced = errors.New("conversion produced no pages")

// SessionRecorder persists session bookkeeping. Registry failures must not
// fail the upload: the file system holds everything processing needs.
type SessionRecorder interface {
	RecordSession(ctx context.Context, sessionID, filename string, totalPages int) error
}

// UploadResult is returned to the caller after a successful upload.
type UploadResult struct {
	SessionID  string `json:"sessionId"`
	Filename   string `json:"filename"`
	TotalPages int    `json:"totalPages"`
}

// Handler runs the upload flow end to end.
type Handler struct {
	store       *store.SessionStore
	converter   Converter
	recorder    SessionRecorder
	maxFileSize int64
	logger      *logging.Logger
}

// NewHandler creates an upload handler. recorder may be nil when no
// registry is configured.
func NewHandler(sessionStore *store.SessionStore, converter Converter, recorder SessionRecorder, maxFileSize int64, logger *logging.Logger) *Handler {
	if maxFileSize <= 0 {
		maxFileSize = core.DefaultMaxFileSize
	}
	if logger == nil {
		logger = logging.NewTestLogger()
	}
	return &Handler{
		store:       sessionStore,
		converter:   converter,
		recorder:    recorder,
		maxFileSize: maxFileSize,
		logger:      logger.Named("upload"),
	}
}

// Upload validates the PDF stream, creates a fresh session, stores the
// original, and rasterizes it into page images. Validation failures happen
// before any directory is created; later failures remove the session
// directory before returning.
func (h *Handler) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	data, err := h.readBounded(r)
	if err != nil {
		return nil, err
	}
	if len(data) < len(pdfMagic) || !bytes.HasPrefix(data, pdfMagic) {
		return nil, core.NewValidationError("file", "file is not a PDF (missing %PDF signature)")
	}

	// Advisory page count from the PDF structure. The converter's output is
	// authoritative; a probe failure only costs us the early log line.
	expectedPages := h.probePageCount(data)

	sessionID, err := core.GenerateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}
	if err := h.store.CreateSession(sessionID); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log := h.logger.With(
		zap.String("session_id", sessionID),
		zap.String("filename", filename),
		zap.Int("size_bytes", len(data)),
	)

	uploadPath := h.store.UploadPath(sessionID)
	if err := os.WriteFile(uploadPath, data, 0o644); err != nil {
		h.rollback(sessionID, log)
		return nil, fmt.Errorf("failed to store uploaded PDF: %w", err)
	}

	totalPages, err := h.converter.Convert(ctx, uploadPath, h.store.ImagesDir(sessionID))
	if err != nil {
		h.rollback(sessionID, log)
		return nil, fmt.Errorf("failed to rasterize PDF: %w", err)
	}
	if totalPages == 0 {
		h.rollback(sessionID, log)
		return nil, ErrNoPagesProduced
	}
	if expectedPages > 0 && expectedPages != totalPages {
		log.Warn("converter page count differs from PDF structure",
			zap.Int("expected_pages", expectedPages),
			zap.Int("converted_pages", totalPages),
		)
	}

	if h.recorder != nil {
		if err := h.recorder.RecordSession(ctx, sessionID, filename, totalPages); err != nil {
			log.Warn("failed to record session in registry", zap.Error(err))
		}
	}

	log.Info("upload accepted", zap.Int("total_pages", totalPages))
	return &UploadResult{
		SessionID:  sessionID,
		Filename:   filename,
		TotalPages: totalPages,
	}, nil
}

// readBounded reads the stream up to the configured ceiling and rejects
// anything larger.
func (h *Handler) readBounded(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, h.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload stream: %w", err)
	}
	if int64(len(data)) > h.maxFileSize {
		return nil, core.NewValidationError("file",
			fmt.Sprintf("file exceeds maximum size of %d bytes", h.maxFileSize))
	}
	return data, nil
}

// probePageCount parses the PDF structure for its page count. Returns 0
// when the document cannot be parsed. The parser panics on some malformed
// inputs, so the probe recovers and treats that as unparseable.
func (h *Handler) probePageCount(data []byte) (pages int) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Debug("PDF structure probe panicked", zap.Any("panic", r))
			pages = 0
		}
	}()
	return h.parsePageCount(data)
}

func (h *Handler) parsePageCount(data []byte) int {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		h.logger.Debug("PDF structure probe failed", zap.Error(err))
		return 0
	}
	return reader.NumPage()
}

// rollback removes a partially initialized session directory.
func (h *Handler) rollback(sessionID string, log *logging.Logger) {
	if err := h.store.RemoveSession(sessionID); err != nil {
		log.Error("failed to roll back session directory", zap.Error(err))
		return
	}
	log.Info("rolled back session after failed upload")
}
