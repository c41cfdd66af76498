// Package daemon supervises the long-running inkwit process: it enforces
// single-instance execution with a lock file, runs the workflow manager,
// and serves the HTTP API.
package daemon
