package ml

import (
	"errors"
	"math/rand"
)

// ForestParams are the tunable random-forest hyperparameters. The zero value
// of MaxDepth means unbounded depth; an empty ClassWeight means uniform.
type ForestParams struct {
	NEstimators     int    `json:"n_estimators"`
	MaxDepth        int    `json:"max_depth"`
	MinSamplesSplit int    `json:"min_samples_split"`
	MinSamplesLeaf  int    `json:"min_samples_leaf"`
	MaxFeatures     string `json:"max_features"` // "sqrt", "log2" or "all"
	ClassWeight     string `json:"class_weight"` // "", "balanced" or "balanced_subsample"
	Seed            int64  `json:"seed"`
}

// DefaultForestParams mirror the classifier defaults used before tuning.
func DefaultForestParams(seed int64) ForestParams {
	return ForestParams{
		NEstimators:     100,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     "sqrt",
		Seed:            seed,
	}
}

// RandomForest is an ensemble of CART trees grown on bootstrap samples.
// Probabilities are the average of the per-tree leaf distributions, so the
// two class probabilities sum to one by construction.
type RandomForest struct {
	Params ForestParams   `json:"params"`
	Trees  []DecisionTree `json:"trees"`
}

// TrainForest fits the ensemble. All randomness (bootstrap draws, per-split
// feature subsets) derives from Params.Seed, so identical inputs and seed
// reproduce an identical forest.
func TrainForest(features [][]float64, labels []int, params ForestParams) (*RandomForest, error) {
	if len(features) == 0 || len(labels) == 0 {
		return nil, errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return nil, errors.New("features and labels size mismatch")
	}
	for _, label := range labels {
		if label != 0 && label != 1 {
			return nil, errors.New("labels must be binary")
		}
	}
	if params.NEstimators <= 0 {
		params.NEstimators = 100
	}

	rng := rand.New(rand.NewSource(params.Seed))
	fullWeights := balancedWeights(labels)

	forest := &RandomForest{
		Params: params,
		Trees:  make([]DecisionTree, params.NEstimators),
	}
	n := len(features)
	for t := 0; t < params.NEstimators; t++ {
		sampleX := make([][]float64, n)
		sampleY := make([]int, n)
		for i := 0; i < n; i++ {
			j := rng.Intn(n)
			sampleX[i] = features[j]
			sampleY[i] = labels[j]
		}

		weights := [2]float64{1, 1}
		switch params.ClassWeight {
		case "balanced":
			weights = fullWeights
		case "balanced_subsample":
			weights = balancedWeights(sampleY)
		}

		p := &treeParams{
			maxDepth:        params.MaxDepth,
			minSamplesSplit: params.MinSamplesSplit,
			minSamplesLeaf:  params.MinSamplesLeaf,
			maxFeatures:     params.MaxFeatures,
			classWeights:    weights,
			rng:             rand.New(rand.NewSource(rng.Int63())),
		}
		if err := forest.Trees[t].train(sampleX, sampleY, p); err != nil {
			return nil, err
		}
	}
	return forest, nil
}

// Predict returns the majority class and the averaged class distribution.
func (f *RandomForest) Predict(features []float64) (int, []float64, error) {
	if len(f.Trees) == 0 {
		return 0, nil, errors.New("model not trained")
	}
	probs := []float64{0, 0}
	for i := range f.Trees {
		_, dist, err := f.Trees[i].Predict(features)
		if err != nil {
			return 0, nil, err
		}
		probs[0] += dist[0]
		probs[1] += dist[1]
	}
	n := float64(len(f.Trees))
	probs[0] /= n
	probs[1] /= n

	label := 0
	if probs[1] > probs[0] {
		label = 1
	}
	return label, probs, nil
}

// balancedWeights computes per-class weights inversely proportional to
// class frequency: n_samples / (n_classes * class_count).
func balancedWeights(labels []int) [2]float64 {
	var counts [2]float64
	for _, label := range labels {
		counts[label]++
	}
	n := float64(len(labels))
	weights := [2]float64{1, 1}
	for c := 0; c < 2; c++ {
		if counts[c] > 0 {
			weights[c] = n / (2 * counts[c])
		}
	}
	return weights
}
