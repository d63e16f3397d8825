package core

import (
	"os"
	"syscall"
)

// Process exit codes. Signal-driven exits use the Unix 128+signum
// convention so a supervisor can tell a requested stop from a crash.
const (
	// ExitCodeSuccess is a clean shutdown.
	ExitCodeSuccess = 0

	// ExitCodeError is a startup or shutdown failure.
	ExitCodeError = 1

	// ExitCodeSIGINT is 128 + SIGINT(2).
	ExitCodeSIGINT = 130

	// ExitCodeSIGTERM is 128 + SIGTERM(15).
	ExitCodeSIGTERM = 143
)

// ExitCodeForSignal maps a termination signal to its conventional exit
// code. Signals the service does not handle map to ExitCodeError.
func ExitCodeForSignal(sig os.Signal) int {
	switch sig {
	case syscall.SIGINT:
		return ExitCodeSIGINT
	case syscall.SIGTERM:
		return ExitCodeSIGTERM
	default:
		return ExitCodeError
	}
}

// ExitCodeName renders an exit code for log output.
func ExitCodeName(code int) string {
	switch code {
	case ExitCodeSuccess:
		return "success"
	case ExitCodeError:
		return "error"
	case ExitCodeSIGINT:
		return "interrupted (SIGINT)"
	case ExitCodeSIGTERM:
		return "terminated (SIGTERM)"
	default:
		return "unknown"
	}
}

// IsSignalExit reports whether the exit code came from a signal.
func IsSignalExit(code int) bool {
	return code == ExitCodeSIGINT || code == ExitCodeSIGTERM
}
