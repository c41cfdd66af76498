// Package kobert calls the fine-tuned persona classifier service, which
// assigns a persona type to free-form narrative text.
package kobert
