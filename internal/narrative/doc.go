// Package narrative owns the LLM-produced psychological narrative: the prompt
// templates used to obtain it, the pure extraction of knowledge-base elements
// from its text, and the pipeline stage that generates it.
package narrative
