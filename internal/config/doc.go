// Package config loads, normalizes, and validates the TOML configuration
// shared by the inkwit CLI and daemon.
package config
