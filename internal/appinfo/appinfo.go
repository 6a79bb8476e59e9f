// Package appinfo provides application identity constants.
// These are used across packages for consistent naming.
package appinfo

const (
	// AppName is the display name of the application.
	AppName = "Seed Tracker"

	// DirName is the directory name used for storing application data.
	// Location: %LOCALAPPDATA%/seedtracker/ (Windows) or ~/.config/seedtracker/ (other)
	DirName = "seedtracker"

	// MutexName is the Windows mutex name for single instance control.
	// "Local\" prefix means the mutex is scoped to the current user session,
	// not system-wide.
	MutexName = "Local\\seedtracker"

	// LockFileName is the lock file name for single instance control.
	LockFileName = "seedtracker.lock"

	// ConfigFileName is the configuration file name.
	ConfigFileName = "config.json"

	// SecretsFileName is the secrets file name.
	SecretsFileName = "secrets.json"

	// DatabaseFileName is the SQLite database file name.
	DatabaseFileName = "seedtracker.sqlite"
)
