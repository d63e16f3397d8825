package shutdown

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"docuvert/core"
	"docuvert/logging"
)

func TestManagerCancelsContextOnSignal(t *testing.T) {
	m := NewManager(logging.NewTestLogger())
	m.Start()

	m.sigChan <- syscall.SIGTERM

	select {
	case <-m.Context().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled after signal")
	}
}

func TestManagerForcesExitOnSecondSignal(t *testing.T) {
	m := NewManager(logging.NewTestLogger())
	forced := make(chan struct{})
	m.forceExit = func() { close(forced) }
	m.Start()

	m.sigChan <- syscall.SIGINT
	<-m.Context().Done()
	m.sigChan <- syscall.SIGINT

	select {
	case <-forced:
	case <-time.After(2 * time.Second):
		t.Fatal("second signal did not force exit")
	}
}

func TestManagerExitCodeFollowsSignal(t *testing.T) {
	tests := []struct {
		name string
		sig  syscall.Signal
		want int
	}{
		{"sigint", syscall.SIGINT, core.ExitCodeSIGINT},
		{"sigterm", syscall.SIGTERM, core.ExitCodeSIGTERM},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(logging.NewTestLogger())
			m.Start()

			if got := m.ExitCode(); got != core.ExitCodeSuccess {
				t.Fatalf("ExitCode before signal = %d, want %d", got, core.ExitCodeSuccess)
			}

			m.sigChan <- tt.sig
			<-m.Context().Done()

			if got := m.ExitCode(); got != tt.want {
				t.Errorf("ExitCode after %v = %d, want %d", tt.sig, got, tt.want)
			}
		})
	}
}

func TestManagerExitCodeWithoutSignal(t *testing.T) {
	m := NewManager(logging.NewTestLogger(), WithTimeout(time.Second))
	if err := m.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if got := m.ExitCode(); got != core.ExitCodeSuccess {
		t.Errorf("ExitCode after programmatic shutdown = %d, want %d", got, core.ExitCodeSuccess)
	}
}

func TestManagerShutdownRunsCleanup(t *testing.T) {
	m := NewManager(logging.NewTestLogger(), WithTimeout(time.Second))

	ran := false
	m.Register("server", 10, func(ctx context.Context) error {
		ran = true
		return nil
	})

	if err := m.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !ran {
		t.Error("cleanup not executed")
	}

	// Idempotent.
	if err := m.Shutdown(); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
}

func TestManagerShutdownReportsErrors(t *testing.T) {
	m := NewManager(logging.NewTestLogger(), WithTimeout(time.Second))
	m.Register("broken", 10, func(ctx context.Context) error {
		return errors.New("close failed")
	})

	if err := m.Shutdown(); err == nil {
		t.Fatal("Shutdown returned nil despite cleanup failure")
	}
}
