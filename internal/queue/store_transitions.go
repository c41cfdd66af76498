package queue

import (
	"context"
	"fmt"
	"time"
)

// TransitionStage advances a run from one stage to another with a
// compare-and-swap update. It reports false when the run was no longer in
// the expected stage, which means another worker already moved it.
func (s *Store) TransitionStage(ctx context.Context, id string, from, to Stage) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE analysis_runs
         SET stage = ?, updated_at = ?
         WHERE id = ? AND stage = ?`,
		to,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		from,
	)
	if err != nil {
		return false, fmt.Errorf("transition run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// UpdateHeartbeat updates the last heartbeat timestamp for an in-flight run.
func (s *Store) UpdateHeartbeat(ctx context.Context, id string) error {
	now := time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE analysis_runs SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// ReclaimStaleProcessing fails runs whose heartbeats expired while a stage
// was executing. The progress stage keeps the stage the run stalled in so
// step counts stay meaningful.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE analysis_runs
        SET progress_stage = stage, stage = ?,
            error_message = 'Stage heartbeat expired',
            progress_percent = 0, progress_message = NULL, last_heartbeat = NULL, updated_at = ?
        WHERE stage IN (?, ?, ?) AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`,
		StageFailed,
		now.Format(time.RFC3339Nano),
		StageDetecting,
		StageAnalyzing,
		StageClassifying,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale runs: %w", err)
	}
	return res.RowsAffected()
}

// RetryFailed moves failed runs back to the detection stage for
// reprocessing.
func (s *Store) RetryFailed(ctx context.Context, ids ...string) (int64, error) {
	if len(ids) == 0 {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE analysis_runs
            SET stage = ?, progress_stage = NULL, progress_percent = 0,
                progress_message = NULL, error_message = NULL, updated_at = ?
            WHERE stage = ?`,
			StageDetecting,
			time.Now().UTC().Format(time.RFC3339Nano),
			StageFailed,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed runs: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+2)
	args = append(args, StageDetecting, time.Now().UTC().Format(time.RFC3339Nano))
	for _, id := range ids {
		args = append(args, id)
	}
	query := `UPDATE analysis_runs
        SET stage = ?, progress_stage = NULL, progress_percent = 0,
            progress_message = NULL, error_message = NULL, updated_at = ?
        WHERE id IN (` + placeholders + `) AND stage = '` + string(StageFailed) + `'`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected runs: %w", err)
	}
	return res.RowsAffected()
}
