// Package pipeline orchestrates session processing: walking every known
// page of a session, skipping pages whose completion markers already exist,
// extracting the rest, and keeping the progress tracker current.
package pipeline

import (
	"context"
	"sync"

	"docuvert/core"
	"docuvert/extraction"
	"docuvert/logging"
	"docuvert/store"

	"go.uber.org/zap"
)

// ErrorSummaryMessage is the progress error message set after a run in which
// at least one page failed. Individual failures are logged; the summary
// deliberately reports partial progress rather than an opaque failure.
const ErrorSummaryMessage = "Some pages failed to process"

// Extractor is the per-page extraction dependency. Satisfied by
// *extraction.Unit; tests substitute a fake to count calls and force
// failures.
type Extractor interface {
	ExtractPage(ctx context.Context, sessionID string, page int, format core.Format) (*extraction.PageResult, error)
}

// Driver runs the page-processing loop for sessions.
//
// Each Process call is a full pass over the session: already-extracted pages
// (durable marker on disk) are counted and skipped, the rest go through the
// extractor one at a time in ascending page order. A page failure is
// recorded and the loop continues: partial failure never aborts the batch,
// because the next Process call will skip everything that succeeded and
// retry only what failed. This best-effort-and-resume shape is the point of
// the design; do not convert it to fail-fast.
//
// Process calls for the same session are serialized with a per-session
// mutex. Without it, two concurrent requests could both observe a page as
// un-extracted and extract it twice. Mutex entries are dropped once the
// session completes, so the map tracks only in-flight and retryable
// sessions.
type Driver struct {
	store     *store.SessionStore
	extractor Extractor
	progress  core.ProgressStore
	logger    *logging.Logger

	mu       sync.Mutex
	sessions map[string]*sync.Mutex
}

// NewDriver creates a driver.
func NewDriver(sessionStore *store.SessionStore, extractor Extractor, progress core.ProgressStore, logger *logging.Logger) *Driver {
	if logger == nil {
		logger = logging.NewTestLogger()
	}
	return &Driver{
		store:     sessionStore,
		extractor: extractor,
		progress:  progress,
		logger:    logger.Named("driver"),
		sessions:  make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the mutex serializing processing of one session.
func (d *Driver) sessionLock(sessionID string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	lock, ok := d.sessions[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		d.sessions[sessionID] = lock
	}
	return lock
}

// releaseSession drops the per-session mutex entry so the map does not
// grow with every session ever processed. Only safe once the session is
// completed: a caller still holding the old mutex and a caller minting a
// fresh one both short-circuit on the completed status before touching
// the extractor. Error-state sessions keep their entry so retries stay
// serialized.
func (d *Driver) releaseSession(sessionID string) {
	d.mu.Lock()
	delete(d.sessions, sessionID)
	d.mu.Unlock()
}

// Process starts or resumes processing of a session into the given format
// and returns the resulting progress snapshot.
//
// Idempotent completion: once a session's status is completed, subsequent
// calls return the cached counts without touching the page store or the
// extractor. A session in error state is re-entered: the loop re-scans,
// re-skips completed pages, and retries only the previously failed ones.
func (d *Driver) Process(ctx context.Context, sessionID string, format core.Format) (core.Progress, error) {
	if err := core.ValidateSessionID(sessionID); err != nil {
		return core.Progress{}, err
	}

	lock := d.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if p, ok := d.progress.Get(sessionID); ok && p.Status == core.StatusCompleted {
		d.releaseSession(sessionID)
		return p, nil
	}

	pages := d.store.ListPages(sessionID)
	if len(pages) == 0 {
		return core.Progress{}, core.NewNotFoundError("session pages", sessionID)
	}

	log := d.logger.With(zap.String("session_id", sessionID), zap.String("format", string(format)))
	log.Info("processing run started", zap.Int("total_pages", len(pages)))

	d.progress.GetOrInit(sessionID, len(pages))
	// A re-entered run recounts from the durable markers, so the counters
	// restart from zero for this pass.
	d.progress.Update(sessionID, func(p *core.Progress) {
		p.Status = core.StatusProcessing
		p.TotalPages = len(pages)
		p.ProcessedPages = 0
		p.FailedPages = 0
		p.Error = ""
	})

	processed := 0
	failed := 0
	for _, page := range pages {
		if d.store.IsPageExtracted(sessionID, page) {
			processed++
			d.updateCounts(sessionID, processed, failed)
			continue
		}

		if _, err := d.extractor.ExtractPage(ctx, sessionID, page, format); err != nil {
			// Best-effort semantics: record and move to the next page.
			failed++
			log.Warn("page failed, continuing with remaining pages",
				zap.Int("page", page),
				zap.Error(err),
			)
			d.updateCounts(sessionID, processed, failed)
			continue
		}

		processed++
		d.updateCounts(sessionID, processed, failed)
	}

	d.progress.Update(sessionID, func(p *core.Progress) {
		if failed > 0 {
			p.Status = core.StatusError
			p.Error = ErrorSummaryMessage
		} else {
			p.Status = core.StatusCompleted
			p.Error = ""
		}
	})

	if failed == 0 {
		d.releaseSession(sessionID)
	}

	result, _ := d.progress.Get(sessionID)
	log.Info("processing run finished",
		zap.String("status", string(result.Status)),
		zap.Int("processed", result.ProcessedPages),
		zap.Int("failed", result.FailedPages),
	)
	return result, nil
}

// updateCounts publishes in-loop progress so polling clients see movement
// during long runs.
func (d *Driver) updateCounts(sessionID string, processed, failed int) {
	d.progress.Update(sessionID, func(p *core.Progress) {
		p.ProcessedPages = processed
		p.FailedPages = failed
	})
}

// GetProgress returns the progress snapshot for a session without mutating
// any extraction state. Reports a NotFoundError when the session has never
// been processed in this process's lifetime.
func (d *Driver) GetProgress(sessionID string) (core.Progress, error) {
	if err := core.ValidateSessionID(sessionID); err != nil {
		return core.Progress{}, err
	}
	p, ok := d.progress.Get(sessionID)
	if !ok {
		return core.Progress{}, core.NewNotFoundError("session progress", sessionID)
	}
	return p, nil
}
