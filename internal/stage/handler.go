package stage

import (
	"context"

	"inkwit/internal/queue"
)

// Handler describes the contract the workflow manager needs from each
// pipeline stage.
type Handler interface {
	Prepare(context.Context, *queue.Run) error
	Execute(context.Context, *queue.Run) error
	HealthCheck(context.Context) Health
}
