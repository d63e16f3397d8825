package core

import (
	"syscall"
	"testing"
)

func TestExitCodeForSignal(t *testing.T) {
	tests := []struct {
		name string
		sig  syscall.Signal
		want int
	}{
		{"sigint", syscall.SIGINT, ExitCodeSIGINT},
		{"sigterm", syscall.SIGTERM, ExitCodeSIGTERM},
		{"unhandled", syscall.SIGHUP, ExitCodeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCodeForSignal(tt.sig); got != tt.want {
				t.Errorf("ExitCodeForSignal(%v) = %d, want %d", tt.sig, got, tt.want)
			}
		})
	}
}

func TestExitCodeValuesFollowUnixConvention(t *testing.T) {
	if ExitCodeSuccess != 0 || ExitCodeError != 1 {
		t.Errorf("base codes = %d, %d, want 0, 1", ExitCodeSuccess, ExitCodeError)
	}
	if ExitCodeSIGINT != 128+2 {
		t.Errorf("ExitCodeSIGINT = %d, want 130", ExitCodeSIGINT)
	}
	if ExitCodeSIGTERM != 128+15 {
		t.Errorf("ExitCodeSIGTERM = %d, want 143", ExitCodeSIGTERM)
	}
}

func TestExitCodeName(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{ExitCodeSuccess, "success"},
		{ExitCodeError, "error"},
		{ExitCodeSIGINT, "interrupted (SIGINT)"},
		{ExitCodeSIGTERM, "terminated (SIGTERM)"},
		{42, "unknown"},
	}
	for _, tt := range tests {
		if got := ExitCodeName(tt.code); got != tt.want {
			t.Errorf("ExitCodeName(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestIsSignalExit(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{ExitCodeSuccess, false},
		{ExitCodeError, false},
		{ExitCodeSIGINT, true},
		{ExitCodeSIGTERM, true},
		{42, false},
	}
	for _, tt := range tests {
		if got := IsSignalExit(tt.code); got != tt.want {
			t.Errorf("IsSignalExit(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
