// Package scoring fuses independent persona signals into one decision. The
// signal sources (lexical knowledge-base matching, embedding-similarity
// voting, and the trained classifier) each produce a VoteSet from the same
// immutable narrative, and the scorer sums them into a ranked PersonaDecision
// with a confidence score and a deterministic tie-break policy.
package scoring
