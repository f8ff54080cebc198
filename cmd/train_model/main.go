package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"studentrisk/config"
	"studentrisk/dataset"
	"studentrisk/ml"
)

func main() {
	configPath := flag.String("config", "config.yaml", "config file path")
	sqlitePath := flag.String("sqlite", "", "SQLite dataset path (overrides config)")
	csvPath := flag.String("csv", "", "CSV dataset path (overrides config)")
	modelPath := flag.String("model_path", "", "model output path (overrides config)")
	iterations := flag.Int("iterations", 0, "hyperparameter search iterations (overrides config)")
	folds := flag.Int("folds", 0, "cross-validation folds (overrides config)")
	seed := flag.Int64("seed", -1, "random seed (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *sqlitePath != "" {
		cfg.Dataset.SQLitePath = *sqlitePath
	}
	if *csvPath != "" {
		cfg.Dataset.CSVPath = *csvPath
	}
	if *modelPath != "" {
		cfg.Model.Path = *modelPath
	}
	if *iterations > 0 {
		cfg.Training.SearchIterations = *iterations
	}
	if *folds > 1 {
		cfg.Training.CVFolds = *folds
	}
	if *seed >= 0 {
		cfg.Training.RandomState = *seed
	}

	result, err := loadDataset(cfg)
	if err != nil {
		// A schema mismatch means the dataset cannot possibly train this
		// model; bail out before any work.
		log.Fatalf("failed to load dataset: %v", err)
	}
	log.Printf("loaded %d records (%d dropped)", len(result.Records), result.Dropped)

	rng := rand.New(rand.NewSource(cfg.Training.RandomState))
	trainIdx, testIdx, err := ml.StratifiedSplit(result.Labels, cfg.Training.TestSize, rng)
	if err != nil {
		log.Fatalf("failed to split dataset: %v", err)
	}
	trainRecords, trainLabels := subset(result.Records, result.Labels, trainIdx)
	testRecords, testLabels := subset(result.Records, result.Labels, testIdx)
	log.Printf("train=%d test=%d", len(trainRecords), len(testRecords))

	search, err := ml.RandomizedSearch(trainRecords, trainLabels,
		cfg.Training.SearchIterations, cfg.Training.CVFolds, cfg.Training.RandomState)
	if err != nil {
		log.Fatalf("hyperparameter search failed: %v", err)
	}
	log.Printf("best cv roc_auc=%.4f after %d iterations", search.BestScore, search.Iterations)

	pipeline, err := ml.FitPipeline(trainRecords, trainLabels, search.BestParams)
	if err != nil {
		log.Fatalf("failed to fit final pipeline: %v", err)
	}

	predicted := make([]int, len(testRecords))
	probs := make([]float64, len(testRecords))
	for i, r := range testRecords {
		pred, err := pipeline.Predict(r)
		if err != nil {
			log.Fatalf("failed to predict test record %d: %v", i, err)
		}
		predicted[i] = pred.Class
		probs[i] = pred.Probability[1]
	}
	metrics, err := ml.Evaluate(testLabels, predicted, probs)
	if err != nil {
		log.Fatalf("failed to evaluate: %v", err)
	}
	log.Printf("test accuracy=%.4f f1=%.4f roc_auc=%.4f precision=%.4f recall=%.4f",
		metrics.Accuracy, metrics.F1, metrics.ROCAUC, metrics.Precision, metrics.Recall)
	log.Printf("confusion matrix: tn=%d fp=%d fn=%d tp=%d",
		metrics.ConfusionMatrix[0][0], metrics.ConfusionMatrix[0][1],
		metrics.ConfusionMatrix[1][0], metrics.ConfusionMatrix[1][1])

	if err := pipeline.Save(cfg.Model.Path); err != nil {
		log.Fatalf("failed to save model: %v", err)
	}
	report := ml.TrainingReport{
		Metrics:      metrics,
		BestParams:   search.BestParams,
		BestCVROCAUC: search.BestScore,
		ModelVersion: ml.ModelVersion,
		TrainedAt:    pipeline.TrainedAt,
		Samples:      len(result.Records),
	}
	if err := ml.WriteTrainingReport(cfg.Model.MetricsPath, report); err != nil {
		log.Fatalf("failed to write training report: %v", err)
	}

	// The audit trail is best effort: a read-only database must not fail a
	// training run that already produced its artifact.
	entry := dataset.TrainingLog{
		ModelName:  "depression_rf",
		Accuracy:   metrics.Accuracy,
		Precision:  metrics.Precision,
		Recall:     metrics.Recall,
		ROCAUC:     metrics.ROCAUC,
		TrainedAt:  time.Now().UTC(),
		DataPoints: len(result.Records),
	}
	if err := dataset.AppendTrainingLog(cfg.Dataset.SQLitePath, entry); err != nil {
		log.Printf("warning: failed to append training log: %v", err)
	}

	fmt.Printf("model saved to %s\n", cfg.Model.Path)
	fmt.Printf("metrics saved to %s\n", cfg.Model.MetricsPath)
}

// loadDataset prefers SQLite, falling back to CSV when the database is
// missing. Schema errors from either source are fatal, not fallback-worthy.
func loadDataset(cfg *config.Config) (*dataset.Result, error) {
	result, err := dataset.LoadFromSQLite(cfg.Dataset.SQLitePath, cfg.Dataset.Table)
	if err == nil {
		return result, nil
	}
	var schemaErr *dataset.SchemaError
	if errors.As(err, &schemaErr) {
		return nil, err
	}
	log.Printf("sqlite unavailable (%v), falling back to CSV %s", err, cfg.Dataset.CSVPath)
	return dataset.LoadFromCSV(cfg.Dataset.CSVPath)
}

func subset(records []ml.StudentRecord, labels []int, idx []int) ([]ml.StudentRecord, []int) {
	outRecords := make([]ml.StudentRecord, len(idx))
	outLabels := make([]int, len(idx))
	for i, j := range idx {
		outRecords[i] = records[j]
		outLabels[i] = labels[j]
	}
	return outRecords, outLabels
}
