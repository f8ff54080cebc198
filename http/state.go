package http

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"studentrisk/ml"
	"studentrisk/monitoring"
)

// ErrModelNotLoaded is returned for predictions while the service is
// degraded. Callers must be able to tell it apart from bad input.
var ErrModelNotLoaded = errors.New("model not loaded")

// ServiceState owns the loaded pipeline and the Ready/Degraded flag. The
// pipeline pointer is immutable once published; reload swaps it atomically
// so concurrent requests see either the old or the new artifact in full.
type ServiceState struct {
	modelPath string
	pipeline  atomic.Pointer[ml.Pipeline]
	cache     *lru.Cache[string, ml.Prediction]
	logger    *zap.Logger
}

func NewServiceState(modelPath string, cacheSize int, logger *zap.Logger) (*ServiceState, error) {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	cache, err := lru.New[string, ml.Prediction](cacheSize)
	if err != nil {
		return nil, err
	}
	return &ServiceState{
		modelPath: modelPath,
		cache:     cache,
		logger:    logger,
	}, nil
}

// LoadArtifact loads or reloads the pipeline from the configured path. On
// failure the previous pipeline (if any) keeps serving; a service that never
// loaded stays degraded but alive.
func (s *ServiceState) LoadArtifact() error {
	pipeline, err := ml.LoadPipeline(s.modelPath)
	if err != nil {
		monitoring.ModelReloadsTotal.WithLabelValues(monitoring.StatusError).Inc()
		if s.pipeline.Load() == nil {
			monitoring.ModelLoaded.Set(0)
		}
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("artifact %s not found, run training first: %w", s.modelPath, err)
		}
		return fmt.Errorf("load artifact %s: %w", s.modelPath, err)
	}

	s.pipeline.Store(pipeline)
	s.cache.Purge()
	monitoring.ModelLoaded.Set(1)
	monitoring.ModelInfo.Reset()
	monitoring.ModelInfo.WithLabelValues(pipeline.Version, "random_forest", s.modelPath).Set(1)
	monitoring.ModelReloadsTotal.WithLabelValues(monitoring.StatusSuccess).Inc()
	s.logger.Info("model artifact loaded",
		zap.String("path", s.modelPath),
		zap.String("version", pipeline.Version),
		zap.Time("trained_at", pipeline.TrainedAt),
	)
	return nil
}

// Ready reports whether a pipeline is loaded.
func (s *ServiceState) Ready() bool {
	return s.pipeline.Load() != nil
}

// ModelVersion returns the loaded artifact version, or "" when degraded.
func (s *ServiceState) ModelVersion() string {
	if p := s.pipeline.Load(); p != nil {
		return p.Version
	}
	return ""
}

// Predict answers one validated record. Identical records are memoized in a
// bounded LRU; the model is deterministic so hits are exact. The cache is
// purged whenever the artifact is swapped.
func (s *ServiceState) Predict(r ml.StudentRecord) (ml.Prediction, error) {
	pipeline := s.pipeline.Load()
	if pipeline == nil {
		return ml.Prediction{}, ErrModelNotLoaded
	}

	key := cacheKey(r)
	if pred, ok := s.cache.Get(key); ok {
		monitoring.PredictionCacheHits.Inc()
		return pred, nil
	}

	pred, err := pipeline.Predict(r)
	if err != nil {
		return ml.Prediction{}, err
	}
	s.cache.Add(key, pred)
	return pred, nil
}

func cacheKey(r ml.StudentRecord) string {
	return fmt.Sprintf("%d|%s|%s|%g|%g|%g|%g|%g|%d",
		r.Age, r.Gender, r.Department, r.CGPA, r.SleepDuration,
		r.StudyHours, r.SocialMediaHours, r.PhysicalActivity, r.StressLevel)
}
