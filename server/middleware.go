package server

import (
	"net/http"
	"time"

	"docuvert/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request correlation ID back to the client.
const RequestIDHeader = "X-Request-ID"

// LoggingMiddleware logs every HTTP request with method, path, status code,
// duration, and a generated request ID. Thread-safe for concurrent requests.
type LoggingMiddleware struct {
	logger    *logging.Logger
	skipPaths map[string]bool
}

// NewLoggingMiddleware creates the middleware. skipPaths (health checks and
// the like) are served without a log line.
func NewLoggingMiddleware(logger *logging.Logger, skipPaths []string) *LoggingMiddleware {
	if logger == nil {
		logger = logging.NewTestLogger()
	}
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	return &LoggingMiddleware{
		logger:    logger.Named("http"),
		skipPaths: skip,
	}
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += int64(n)
	return n, err
}

// Handler wraps next with request logging and request-ID assignment.
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set(RequestIDHeader, requestID)

		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()
		next.ServeHTTP(recorder, r)

		m.logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.status),
			zap.Int64("bytes", recorder.bytes),
			zap.Duration("duration", time.Since(started)),
			zap.String("remote_addr", r.RemoteAddr),
		)
	})
}
