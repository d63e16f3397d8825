package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"docuvert/aggregator"
	"docuvert/core"
	"docuvert/logging"
	"docuvert/store"
	"docuvert/upload"

	"go.uber.org/zap"
)

// Uploader accepts a PDF stream and initializes a session.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*upload.UploadResult, error)
}

// Processor starts or resumes page processing and reports progress.
type Processor interface {
	Process(ctx context.Context, sessionID string, format core.Format) (core.Progress, error)
	GetProgress(sessionID string) (core.Progress, error)
}

// DocumentAggregator combines completed pages into one document.
type DocumentAggregator interface {
	Aggregate(ctx context.Context, sessionID string, format core.Format) (*aggregator.Result, error)
}

// API holds the HTTP handlers for the service endpoints.
type API struct {
	uploader   Uploader
	processor  Processor
	aggregator DocumentAggregator
	store      *store.SessionStore
	logger     *logging.Logger
}

// NewAPI creates the handler set.
func NewAPI(uploader Uploader, processor Processor, docAggregator DocumentAggregator, sessionStore *store.SessionStore, logger *logging.Logger) *API {
	if logger == nil {
		logger = logging.NewTestLogger()
	}
	return &API{
		uploader:   uploader,
		processor:  processor,
		aggregator: docAggregator,
		store:      sessionStore,
		logger:     logger.Named("api"),
	}
}

// RegisterRoutes installs the API routes on mux using method-qualified
// patterns.
func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/upload", a.handleUpload)
	mux.HandleFunc("POST /api/sessions/{id}/process", a.handleProcess)
	mux.HandleFunc("GET /api/sessions/{id}/progress", a.handleProgress)
	mux.HandleFunc("GET /api/sessions/{id}/files/{name}", a.handleFile)
}

// processResponse is the body returned by the process endpoint. Aggregation
// is attached when requested and the run completed.
type processResponse struct {
	core.Progress
	Aggregation *aggregator.Result `json:"aggregation,omitempty"`
}

func (a *API) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		a.writeError(w, core.NewValidationError("file", "multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	result, err := a.uploader.Upload(r.Context(), header.Filename, file)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, result)
}

func (a *API) handleProcess(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	format := core.FormatMarkdown
	if param := r.URL.Query().Get("format"); param != "" {
		parsed, err := core.ParseFormat(param)
		if err != nil {
			a.writeError(w, err)
			return
		}
		format = parsed
	}
	aggregate := strings.EqualFold(r.URL.Query().Get("aggregate"), "true")

	progress, err := a.processor.Process(r.Context(), sessionID, format)
	if err != nil {
		a.writeError(w, err)
		return
	}

	response := processResponse{Progress: progress}
	if aggregate && progress.Status == core.StatusCompleted {
		result, err := a.aggregator.Aggregate(r.Context(), sessionID, format)
		if err != nil {
			a.writeError(w, err)
			return
		}
		response.Aggregation = result
	}
	a.writeJSON(w, http.StatusOK, response)
}

func (a *API) handleProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := a.processor.GetProgress(r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, progress)
}

func (a *API) handleFile(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	name := r.PathValue("name")

	path, err := a.store.ResolveOutputFile(sessionID, name)
	if err != nil {
		a.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeForFile(name))
	http.ServeFile(w, r, path)
}

// contentTypeForFile infers the response content type from the filename
// extension.
func contentTypeForFile(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".json":
		return "application/json"
	case ".xml":
		return "application/xml"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".html":
		return "text/html; charset=utf-8"
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps the error taxonomy onto HTTP status codes: validation
// errors are the caller's fault (400), missing resources are 404, and
// everything else is a 500 with the detail kept in the server log.
func (a *API) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case core.IsValidationError(err):
		status = http.StatusBadRequest
		message = err.Error()
	case core.IsNotFoundError(err), errors.Is(err, aggregator.ErrNoPagesFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, upload.ErrNoPagesProduced):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	}

	if status == http.StatusInternalServerError {
		a.logger.Error("request failed", zap.Error(err))
	}
	a.writeJSON(w, status, errorResponse{Error: message, Code: core.ErrorCode(err)})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.logger.Error("failed to encode response", zap.Error(err))
	}
}
