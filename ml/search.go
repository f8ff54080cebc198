package ml

import (
	"errors"
	"fmt"
	"math/rand"
)

// Hyperparameter search space. MaxDepth 0 stands for unbounded.
var (
	searchNEstimators     = []int{50, 100, 200, 300, 500}
	searchMaxDepth        = []int{5, 10, 15, 20, 0}
	searchMinSamplesSplit = []int{2, 5, 10, 20}
	searchMinSamplesLeaf  = []int{1, 2, 4, 8}
	searchMaxFeatures     = []string{"sqrt", "log2", "all"}
	searchClassWeight     = []string{"balanced", "balanced_subsample", ""}
)

// SearchResult carries the winning hyperparameters and their cross-validated
// score.
type SearchResult struct {
	BestParams ForestParams `json:"best_params"`
	BestScore  float64      `json:"best_cv_roc_auc"`
	Iterations int          `json:"iterations"`
}

// RandomizedSearch samples hyperparameter combinations and scores each with
// stratified k-fold cross-validation on ROC-AUC. ROC-AUC is used instead of
// accuracy because the depression class is imbalanced. The preprocessor is
// re-fit inside every fold so validation folds never leak into the fitted
// scaling or vocabulary.
func RandomizedSearch(records []StudentRecord, labels []int, iterations, folds int, seed int64) (SearchResult, error) {
	if len(records) != len(labels) {
		return SearchResult{}, errors.New("records and labels size mismatch")
	}
	if iterations <= 0 {
		iterations = 20
	}
	if folds < 2 {
		folds = 3
	}

	rng := rand.New(rand.NewSource(seed))
	foldSets, err := StratifiedKFold(labels, folds, rng)
	if err != nil {
		return SearchResult{}, fmt.Errorf("build folds: %w", err)
	}

	result := SearchResult{BestScore: -1, Iterations: iterations}
	for iter := 0; iter < iterations; iter++ {
		params := ForestParams{
			NEstimators:     searchNEstimators[rng.Intn(len(searchNEstimators))],
			MaxDepth:        searchMaxDepth[rng.Intn(len(searchMaxDepth))],
			MinSamplesSplit: searchMinSamplesSplit[rng.Intn(len(searchMinSamplesSplit))],
			MinSamplesLeaf:  searchMinSamplesLeaf[rng.Intn(len(searchMinSamplesLeaf))],
			MaxFeatures:     searchMaxFeatures[rng.Intn(len(searchMaxFeatures))],
			ClassWeight:     searchClassWeight[rng.Intn(len(searchClassWeight))],
			Seed:            seed,
		}

		score, err := crossValidate(records, labels, foldSets, params)
		if err != nil {
			return SearchResult{}, fmt.Errorf("iteration %d: %w", iter, err)
		}
		if score > result.BestScore {
			result.BestScore = score
			result.BestParams = params
		}
	}
	return result, nil
}

func crossValidate(records []StudentRecord, labels []int, foldSets [][]int, params ForestParams) (float64, error) {
	total := 0.0
	for f, validation := range foldSets {
		inValidation := make(map[int]bool, len(validation))
		for _, idx := range validation {
			inValidation[idx] = true
		}

		var trainRecords []StudentRecord
		var trainLabels []int
		for i := range records {
			if !inValidation[i] {
				trainRecords = append(trainRecords, records[i])
				trainLabels = append(trainLabels, labels[i])
			}
		}

		pipeline, err := FitPipeline(trainRecords, trainLabels, params)
		if err != nil {
			return 0, fmt.Errorf("fold %d: %w", f, err)
		}

		actual := make([]int, 0, len(validation))
		scores := make([]float64, 0, len(validation))
		for _, idx := range validation {
			pred, err := pipeline.Predict(records[idx])
			if err != nil {
				return 0, fmt.Errorf("fold %d: %w", f, err)
			}
			actual = append(actual, labels[idx])
			scores = append(scores, pred.Probability[1])
		}
		total += ROCAUC(actual, scores)
	}
	return total / float64(len(foldSets)), nil
}
