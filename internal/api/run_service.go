package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"inkwit/internal/detect"
	"inkwit/internal/queue"
)

// RunStore abstracts run persistence interactions needed by the service.
type RunStore interface {
	NewRun(ctx context.Context, imagePath string) (*queue.Run, error)
	GetByID(ctx context.Context, id string) (*queue.Run, error)
	List(ctx context.Context, stages ...queue.Stage) ([]*queue.Run, error)
	RetryFailed(ctx context.Context, ids ...string) (int64, error)
	Stats(ctx context.Context) (map[queue.Stage]int, error)
}

// ErrRunNotFound is returned when a run identifier matches nothing.
var ErrRunNotFound = errors.New("run not found")

// RunService exposes run operations returning API DTOs.
type RunService struct {
	store     RunStore
	imagesDir string
}

// NewRunService constructs a RunService around the provided store.
// imagesDir is where uploaded drawings are materialized.
func NewRunService(store RunStore, imagesDir string) *RunService {
	if store == nil {
		return nil
	}
	return &RunService{store: store, imagesDir: imagesDir}
}

// Submit validates a drawing already on disk and queues a run for it.
func (s *RunService) Submit(ctx context.Context, imagePath string) (*RunView, error) {
	trimmed := strings.TrimSpace(imagePath)
	if trimmed == "" {
		return nil, errors.New("image path is required")
	}
	absPath, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("resolve image path: %w", err)
	}
	if err := detect.ValidateImage(absPath); err != nil {
		return nil, err
	}
	run, err := s.store.NewRun(ctx, absPath)
	if err != nil {
		return nil, fmt.Errorf("queue run: %w", err)
	}
	view := FromRun(run)
	return &view, nil
}

// SaveUpload writes an uploaded drawing into the images directory and
// returns its path. The original filename only contributes its extension.
func (s *RunService) SaveUpload(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	target := filepath.Join(s.imagesDir, uuid.NewString()+ext)
	if err := os.MkdirAll(s.imagesDir, 0o755); err != nil {
		return "", fmt.Errorf("create images directory: %w", err)
	}
	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("close upload: %w", err)
	}
	if err := detect.ValidateImage(target); err != nil {
		_ = os.Remove(target)
		return "", err
	}
	return target, nil
}

// List returns runs filtered by stage.
func (s *RunService) List(ctx context.Context, stages ...queue.Stage) ([]RunView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	runs, err := s.store.List(ctx, stages...)
	if err != nil {
		return nil, err
	}
	return FromRuns(runs), nil
}

// Describe fetches a single run.
func (s *RunService) Describe(ctx context.Context, id string) (*RunView, error) {
	run, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	view := FromRun(run)
	return &view, nil
}

// Status builds the polling payload for a run.
func (s *RunService) Status(ctx context.Context, id string) (*StatusView, error) {
	run, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	view := StatusFromRun(run)
	return &view, nil
}

// Result builds the full analysis payload for a run in any stage; callers
// decide how to treat unfinished runs.
func (s *RunService) Result(ctx context.Context, id string) (*ResultView, error) {
	run, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	view := ResultFromRun(run)
	return &view, nil
}

// Retry requeues failed runs, optionally restricted to specific ids.
func (s *RunService) Retry(ctx context.Context, ids ...string) (int64, error) {
	if s == nil || s.store == nil {
		return 0, errors.New("run store unavailable")
	}
	return s.store.RetryFailed(ctx, ids...)
}

// Stats returns run summary counts keyed by stage string.
func (s *RunService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeRunStats(stats), nil
}

func (s *RunService) get(ctx context.Context, id string) (*queue.Run, error) {
	if s == nil || s.store == nil {
		return nil, errors.New("run store unavailable")
	}
	run, err := s.store.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, ErrRunNotFound
	}
	return run, nil
}
