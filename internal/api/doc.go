// Package api converts run records into transport-friendly DTOs and
// exposes the read/write operations the HTTP server and CLI share. Handlers
// stay thin; the RunService owns intake validation, polling payload shape,
// and retry semantics.
package api
