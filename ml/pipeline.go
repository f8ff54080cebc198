package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Pipeline is the serialized model artifact: the fitted preprocessor and
// classifier as one inseparable unit, plus the feature contract it was
// trained against. A pipeline is immutable after fitting; a new training run
// produces a new artifact that atomically replaces the old one on disk.
type Pipeline struct {
	Version      string       `json:"version"`
	TrainedAt    time.Time    `json:"trained_at"`
	FeatureNames []string     `json:"feature_names"`
	Preprocessor Preprocessor `json:"preprocessor"`
	Forest       RandomForest `json:"forest"`
}

// Prediction is the derived result for one record. Probability holds the
// full-precision class distribution [no depression, depression]; rounding
// for display happens at the service boundary.
type Prediction struct {
	Class       int
	Label       string
	Probability []float64
}

// FitPipeline fits the preprocessor on the training records and grows the
// forest on the transformed vectors.
func FitPipeline(records []StudentRecord, labels []int, params ForestParams) (*Pipeline, error) {
	p := &Pipeline{
		Version:      ModelVersion,
		TrainedAt:    time.Now().UTC(),
		FeatureNames: FeatureNames(),
	}
	if err := p.Preprocessor.Fit(records); err != nil {
		return nil, fmt.Errorf("fit preprocessor: %w", err)
	}
	vectors, err := p.Preprocessor.TransformAll(records)
	if err != nil {
		return nil, fmt.Errorf("transform training records: %w", err)
	}
	forest, err := TrainForest(vectors, labels, params)
	if err != nil {
		return nil, fmt.Errorf("train forest: %w", err)
	}
	p.Forest = *forest
	return p, nil
}

// Predict transforms one record and runs the classifier. The record is
// assumed to have passed contract validation already.
func (p *Pipeline) Predict(r StudentRecord) (Prediction, error) {
	vector, err := p.Preprocessor.Transform(r)
	if err != nil {
		return Prediction{}, fmt.Errorf("transform record: %w", err)
	}
	class, probs, err := p.Forest.Predict(vector)
	if err != nil {
		return Prediction{}, fmt.Errorf("predict: %w", err)
	}
	return Prediction{
		Class:       class,
		Label:       LabelText(class),
		Probability: probs,
	}, nil
}

// Save serializes the pipeline to path. The file is written to a temp
// sibling and renamed so readers see either the old or the new artifact in
// full, never a partial write.
func (p *Pipeline) Save(path string) error {
	if len(p.Forest.Trees) == 0 {
		return fmt.Errorf("pipeline not fitted")
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal pipeline: %w", err)
	}
	return atomicWrite(path, payload)
}

// LoadPipeline reads an artifact and verifies it against the current feature
// contract; a mismatch means the artifact was produced by an incompatible
// schema and must not serve predictions.
func LoadPipeline(path string) (*Pipeline, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Pipeline
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if len(p.Forest.Trees) == 0 {
		return nil, fmt.Errorf("artifact contains no fitted model")
	}
	want := FeatureNames()
	if len(p.FeatureNames) != len(want) {
		return nil, fmt.Errorf("artifact feature contract mismatch: got %d features, want %d", len(p.FeatureNames), len(want))
	}
	for i, name := range want {
		if p.FeatureNames[i] != name {
			return nil, fmt.Errorf("artifact feature contract mismatch at %q", p.FeatureNames[i])
		}
	}
	return &p, nil
}

// TrainingReport is persisted next to the artifact after every training run
// so runs can be audited and compared.
type TrainingReport struct {
	Metrics
	BestParams   ForestParams `json:"best_params"`
	BestCVROCAUC float64      `json:"best_cv_roc_auc"`
	ModelVersion string       `json:"model_version"`
	TrainedAt    time.Time    `json:"trained_at"`
	Samples      int          `json:"samples"`
}

// WriteTrainingReport writes the metrics snapshot atomically. It must be
// called with the report of the same run that produced the sibling artifact.
func WriteTrainingReport(path string, report TrainingReport) error {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal training report: %w", err)
	}
	return atomicWrite(path, payload)
}

func atomicWrite(path string, payload []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
