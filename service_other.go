//go:build !windows

package main

// RunAsService is a no-op on non-Windows platforms. Returns false so the
// application runs in the foreground.
func RunAsService() (bool, error) {
	return false, nil
}

// HandleServiceCommand is a no-op on non-Windows platforms.
func HandleServiceCommand(args []string) bool {
	return false
}
