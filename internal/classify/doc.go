// Package classify implements the final pipeline stage: extracting known
// elements from the narrative, collecting persona votes from the lexical,
// embedding, and classifier signal sources, fusing them into a decision,
// and producing the reader-facing summary.
package classify
