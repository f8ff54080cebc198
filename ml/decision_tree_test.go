package ml

import (
	"math"
	"math/rand"
	"testing"
)

func TestDecisionTreeTrainPredict(t *testing.T) {
	features := [][]float64{
		{0.1, 0.2},
		{0.2, 0.1},
		{0.9, 0.8},
		{0.8, 0.9},
	}
	labels := []int{0, 0, 1, 1}

	tree := &DecisionTree{}
	p := &treeParams{maxDepth: 3, minSamplesSplit: 2, minSamplesLeaf: 1, classWeights: [2]float64{1, 1}}
	if err := tree.train(features, labels, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	label, probs, err := tree.Predict([]float64{0.15, 0.15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected label 0, got %d", label)
	}
	if math.Abs(probs[0]+probs[1]-1) > 1e-9 {
		t.Fatalf("probabilities do not sum to 1: %v", probs)
	}

	label, _, err = tree.Predict([]float64{0.85, 0.85})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected label 1, got %d", label)
	}
}

func TestDecisionTreeUntrained(t *testing.T) {
	tree := &DecisionTree{}
	if _, _, err := tree.Predict([]float64{0.5}); err == nil {
		t.Fatal("expected error for untrained tree")
	}
}

func TestSampleFeaturesSqrt(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	picked := sampleFeatures(9, "sqrt", rng)
	if len(picked) != 3 {
		t.Fatalf("expected 3 features for sqrt(9), got %d", len(picked))
	}
	picked = sampleFeatures(9, "all", rng)
	if len(picked) != 9 {
		t.Fatalf("expected all 9 features, got %d", len(picked))
	}
}
