package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks bad or missing reference material; fatal at startup.
	ErrConfiguration = errors.New("configuration error")
	// ErrDetection marks object-detection failures; fatal to the affected run.
	ErrDetection = errors.New("detection error")
	// ErrGeneration marks narrative-generation failures; fatal to the affected run.
	ErrGeneration = errors.New("generation error")
	// ErrEmbedding marks embedding failures; recoverable within scoring.
	ErrEmbedding = errors.New("embedding error")
	// ErrClassification marks classifier failures; recoverable within scoring.
	ErrClassification = errors.New("classification error")
	// ErrValidation marks rejected caller input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks missing runs or artifacts.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks failures with no more specific classification.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ErrorDetails is the decoded view of a wrapped stage error used for failure
// logging and user-facing messages.
type ErrorDetails struct {
	Kind    string
	Message string
	Hint    string
	Cause   error
}

var markerHints = []struct {
	marker error
	kind   string
	hint   string
}{
	{ErrConfiguration, "configuration", "check reference documents and config file"},
	{ErrDetection, "detection", "check the object-detection service"},
	{ErrGeneration, "generation", "check the LLM API key and network"},
	{ErrEmbedding, "embedding", "check the embedding API availability"},
	{ErrClassification, "classification", "check the classifier service"},
	{ErrValidation, "validation", "check the submitted request"},
	{ErrNotFound, "not_found", ""},
	{ErrTransient, "transient", ""},
}

// Details classifies err against the sentinel markers and extracts the
// human-readable message. Unwrapped errors classify as transient.
func Details(err error) ErrorDetails {
	details := ErrorDetails{Kind: "transient", Cause: err}
	if err == nil {
		details.Cause = nil
		return details
	}
	for _, entry := range markerHints {
		if errors.Is(err, entry.marker) {
			details.Kind = entry.kind
			details.Hint = entry.hint
			break
		}
	}
	details.Message = strings.TrimSpace(err.Error())
	return details
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
