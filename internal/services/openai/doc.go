// Package openai wraps the OpenAI-compatible API used for narrative
// generation (vision chat) and keyword embeddings.
package openai
