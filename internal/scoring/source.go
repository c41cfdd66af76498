package scoring

import (
	"context"

	"inkwit/internal/narrative"
)

// SignalSource derives persona votes from one narrative document. Sources
// read only the document and process-wide immutable state, so distinct
// sources are safe to run against the same document concurrently.
//
// A source that cannot produce any signal returns an empty VoteSet together
// with the error that explains why; the scorer tolerates any number of empty
// sources.
type SignalSource interface {
	Name() string
	Votes(ctx context.Context, doc narrative.Document) (VoteSet, error)
}
