package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"inkwit/internal/config"
	"inkwit/internal/logging"
	"inkwit/internal/queue"
	"inkwit/internal/services"
	"inkwit/internal/services/vision"
	"inkwit/internal/stage"
)

var supportedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".gif":  {},
}

// ValidateImage checks that a drawing exists and carries a supported
// extension. Intake paths call this before a run is created.
func ValidateImage(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return services.Wrap(services.ErrValidation, "detecting", "validate image",
			"Image path required", nil)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := supportedExtensions[ext]; !ok {
		return services.Wrap(services.ErrValidation, "detecting", "validate image",
			fmt.Sprintf("Unsupported image extension %q", ext), nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrValidation, "detecting", "validate image",
			fmt.Sprintf("Image %s is not readable", path), err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, "detecting", "validate image",
			fmt.Sprintf("Image path %s is a directory", path), nil)
	}
	return nil
}

// Detector runs element detection over the uploaded drawing.
type Detector struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	detector vision.Service
}

// NewDetector constructs the detection stage handler using default
// dependencies.
func NewDetector(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Detector {
	client := vision.NewClient(
		cfg.Detector.BaseURL,
		vision.WithTimeout(time.Duration(cfg.Detector.TimeoutSeconds)*time.Second),
	)
	return NewDetectorWithClient(cfg, store, logger, client)
}

// NewDetectorWithClient allows injecting a detector client (used in tests).
func NewDetectorWithClient(cfg *config.Config, store *queue.Store, logger *slog.Logger, client vision.Service) *Detector {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "detector"))
	}
	return &Detector{store: store, cfg: cfg, logger: stageLogger, detector: client}
}

func (d *Detector) Prepare(ctx context.Context, run *queue.Run) error {
	run.SetProgress("Detecting", "Preparing element detection", 0)
	run.ErrorMessage = ""
	return ValidateImage(run.ImagePath)
}

func (d *Detector) Execute(ctx context.Context, run *queue.Run) error {
	logger := logging.WithContext(ctx, d.logger)
	logger.Info("starting element detection", logging.String("image", run.ImagePath))

	result, err := d.detector.Detect(ctx, run.ImagePath)
	if err != nil {
		return services.Wrap(services.ErrDetection, "detecting", "detect elements",
			"Element detection failed; check that the detection service is running", err)
	}

	encoded, err := json.Marshal(result.Detections)
	if err != nil {
		return services.Wrap(services.ErrDetection, "detecting", "encode detections",
			"Could not encode detection results", err)
	}
	run.DetectionsJSON = string(encoded)
	run.AnnotatedPath = result.AnnotatedPath
	run.SetProgress("Detecting", fmt.Sprintf("Found %d elements", len(result.Detections)), 100)

	logger.Info("element detection complete",
		logging.Int("detections", len(result.Detections)),
		logging.Bool("annotated", result.AnnotatedPath != ""))
	return nil
}

func (d *Detector) HealthCheck(ctx context.Context) stage.Health {
	if err := d.detector.Health(ctx); err != nil {
		return stage.Unhealthy("detector", err.Error())
	}
	return stage.Healthy("detector")
}
