// Package logging constructs the slog loggers used across the daemon and
// provides shared attribute helpers and standardized field names.
package logging
