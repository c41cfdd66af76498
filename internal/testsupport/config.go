package testsupport

import (
	"path/filepath"
	"testing"

	"inkwit/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ImagesDir = filepath.Join(base, "images")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.KnowledgeDir = ""
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.OpenAI.APIKey = "test"
	cfgVal.Workflow.QueuePollInterval = 1
	cfgVal.Workflow.ErrorRetryInterval = 1
	cfgVal.Workflow.HeartbeatInterval = 1
	cfgVal.Workflow.HeartbeatTimeout = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithOpenAIKey sets the OpenAI API key on the test config.
func WithOpenAIKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.OpenAI.APIKey = key
	}
}

// WithClassifier enables the persona classifier endpoint on the test config.
func WithClassifier(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Classifier.Enabled = true
		b.cfg.Classifier.BaseURL = baseURL
	}
}

// WithKnowledgeDir points the test config at a prepared knowledge directory.
func WithKnowledgeDir(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.KnowledgeDir = dir
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ImagesDir)
}
