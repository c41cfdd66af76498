package config

const (
	defaultImagesDir          = "~/.local/share/inkwit/images"
	defaultLogDir             = "~/.local/share/inkwit/logs"
	defaultKnowledgeDir       = "~/.config/inkwit/knowledge"
	defaultAPIBind            = "127.0.0.1:7319"
	defaultOpenAIModel        = "gpt-4o"
	defaultEmbeddingModel     = "text-embedding-3-small"
	defaultOpenAITimeout      = 120
	defaultDetectorBaseURL    = "http://127.0.0.1:8601"
	defaultDetectorTimeout    = 60
	defaultClassifierBaseURL  = "http://127.0.0.1:8602"
	defaultClassifierTimeout  = 30
	defaultSimilarity         = 0.75
	defaultEmbeddingTopK      = 5
	defaultRedisAddr          = "127.0.0.1:6379"
	defaultNotifyTimeout      = 10
	defaultMaxConcurrentRuns  = 2
	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
	defaultHeartbeatInterval  = 15
	defaultHeartbeatTimeout   = 300
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ImagesDir:    defaultImagesDir,
			LogDir:       defaultLogDir,
			KnowledgeDir: defaultKnowledgeDir,
			APIBind:      defaultAPIBind,
		},
		OpenAI: OpenAI{
			Model:          defaultOpenAIModel,
			EmbeddingModel: defaultEmbeddingModel,
			TimeoutSeconds: defaultOpenAITimeout,
		},
		Detector: Detector{
			BaseURL:        defaultDetectorBaseURL,
			TimeoutSeconds: defaultDetectorTimeout,
		},
		Classifier: Classifier{
			Enabled:        true,
			BaseURL:        defaultClassifierBaseURL,
			TimeoutSeconds: defaultClassifierTimeout,
		},
		Scoring: Scoring{
			SimilarityThreshold: defaultSimilarity,
			EmbeddingTopK:       defaultEmbeddingTopK,
		},
		Redis: Redis{
			Addr: defaultRedisAddr,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Completed:      true,
			Errors:         true,
		},
		Workflow: Workflow{
			MaxConcurrentRuns:  defaultMaxConcurrentRuns,
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
