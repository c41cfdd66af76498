package testsupport

import (
	"context"
	"testing"

	"inkwit/internal/config"
	"inkwit/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRun creates a pending analysis run for tests using the provided store.
func NewRun(t testing.TB, store *queue.Store, imagePath string) *queue.Run {
	t.Helper()

	run, err := store.NewRun(context.Background(), imagePath)
	if err != nil {
		t.Fatalf("store.NewRun: %v", err)
	}
	return run
}
