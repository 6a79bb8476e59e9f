//go:build !windows

// Package singleinstance provides single instance control for the application.
package singleinstance

// AcquireLock is a no-op on non-Windows platforms. Duplicate instances on a
// server host are expected to be prevented by the service manager instead.
//
// Returns:
//   - release: no-op function
//   - ok: always true
//   - err: always nil
func AcquireLock() (release func(), ok bool, err error) {
	return func() {}, true, nil
}
