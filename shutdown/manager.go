package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"docuvert/core"
	"docuvert/logging"

	"go.uber.org/zap"
)

// Manager coordinates graceful shutdown: it cancels its context on the
// first SIGINT/SIGTERM, forces the process down on the second, and runs
// registered cleanup functions in priority order.
type Manager struct {
	logger  *logging.Logger
	timeout time.Duration

	mu       sync.Mutex
	started  bool
	shutdown bool
	sigCount int
	sig      os.Signal

	ctx    context.Context
	cancel context.CancelFunc

	registry *Registry
	sigChan  chan os.Signal

	// forceExit is swapped out by tests.
	forceExit func()
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTimeout sets the shutdown timeout. Default is 60 seconds.
func WithTimeout(timeout time.Duration) ManagerOption {
	return func(m *Manager) {
		m.timeout = timeout
	}
}

// NewManager creates a shutdown manager.
func NewManager(logger *logging.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewTestLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		logger:    logger.Named("shutdown"),
		timeout:   60 * time.Second,
		ctx:       ctx,
		cancel:    cancel,
		registry:  NewRegistry(),
		sigChan:   make(chan os.Signal, 1),
		forceExit: func() { os.Exit(1) },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Context is cancelled when shutdown begins. Long-running components watch
// it to stop accepting work.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Register adds a cleanup function. Lower priorities run first.
func (m *Manager) Register(name string, priority int, fn Func) {
	m.registry.Register(name, priority, fn)
}

// Start begins listening for SIGINT and SIGTERM. The first signal cancels
// the context; the second exits immediately. Safe to call more than once.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true

	signal.Notify(m.sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		for sig := range m.sigChan {
			m.mu.Lock()
			m.sigCount++
			count := m.sigCount
			if count == 1 {
				m.sig = sig
			}
			m.mu.Unlock()

			if count == 1 {
				m.logger.Info("shutdown signal received",
					zap.String("signal", sig.String()),
				)
				m.cancel()
				continue
			}
			m.logger.Warn("second signal received, forcing exit")
			m.forceExit()
		}
	}()
}

// ExitCode returns the conventional process exit code for how shutdown was
// initiated: 128+signum when a signal started it, success otherwise.
func (m *Manager) ExitCode() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sig == nil {
		return core.ExitCodeSuccess
	}
	return core.ExitCodeForSignal(m.sig)
}

// Wait blocks until shutdown has been initiated.
func (m *Manager) Wait() {
	<-m.ctx.Done()
}

// Shutdown runs the registered cleanup functions with the configured
// timeout. Idempotent; later calls return nil.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return nil
	}
	m.shutdown = true
	m.mu.Unlock()

	m.cancel()
	started := time.Now()
	m.logger.Info("shutting down",
		zap.Duration("timeout", m.timeout),
		zap.Strings("handlers", m.registry.Names()),
	)

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	errs := m.registry.Shutdown(ctx)
	for _, err := range errs {
		m.logger.Error("cleanup failed", zap.Error(err))
	}

	signal.Stop(m.sigChan)

	if len(errs) > 0 {
		return fmt.Errorf("shutdown finished with %d errors", len(errs))
	}
	m.logger.Info("shutdown complete", zap.Duration("duration", time.Since(started)))
	return nil
}
