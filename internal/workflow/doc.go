// Package workflow coordinates run processing across the pipeline stages.
//
// The Manager polls the run store for work, claims the oldest unclaimed run,
// and drives it through the registered stage handlers. A run's stage value
// is its queue position, so advancing a run is a compare-and-swap on its
// stage column; a claim lost to another worker is logged and dropped rather
// than retried. Heartbeats cover each stage execution so runs orphaned by a
// crash are failed once their heartbeat expires.
package workflow
