// Package queue persists analysis runs in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, heartbeat tracking, stale-run recovery, and the stage transitions
// that mirror the public pipeline enum. A run's stage value doubles as its
// queue position: a run sitting at "detecting" is waiting for (or inside)
// the detection stage, and workers advance it with compare-and-swap updates
// so two transition attempts can never both succeed.
//
// The database is treated as transient storage for in-flight jobs rather
// than a long-term archive. Schema changes bump the version in schema.go;
// users clear the database to adopt the new schema.
package queue
