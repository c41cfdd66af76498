// Package textutil provides the text normalization, tokenization, and
// approximate string-similarity primitives used by the scoring signal sources.
package textutil
