package ml

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// TreeNode is one node of a fitted tree in flat array form. Child fields are
// absolute indices into the node slice; leaves carry the weighted class
// distribution observed during fitting.
type TreeNode struct {
	FeatureIdx int       `json:"feature_idx"`
	Threshold  float64   `json:"threshold"`
	LeftChild  int       `json:"left_child"`
	RightChild int       `json:"right_child"`
	ClassLabel int       `json:"class_label"`
	Probs      []float64 `json:"probs,omitempty"`
	IsLeaf     bool      `json:"is_leaf"`
}

// DecisionTree is a binary CART classifier over the two depression classes.
type DecisionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

// treeParams bundles the growth constraints for one tree. The rng drives
// per-split feature subsampling and must come from the owning forest so that
// a fixed seed reproduces the whole ensemble.
type treeParams struct {
	maxDepth        int // <=0 means unbounded
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     string // "sqrt", "log2" or "all"
	classWeights    [2]float64
	rng             *rand.Rand
}

func (t *DecisionTree) train(features [][]float64, labels []int, p *treeParams) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	if p.minSamplesSplit < 2 {
		p.minSamplesSplit = 2
	}
	if p.minSamplesLeaf < 1 {
		p.minSamplesLeaf = 1
	}
	t.Nodes = nil
	t.grow(features, labels, 0, p)
	return nil
}

// Predict walks the tree and returns the majority class and the class
// distribution at the reached leaf.
func (t *DecisionTree) Predict(features []float64) (int, []float64, error) {
	if len(t.Nodes) == 0 {
		return 0, nil, errors.New("model not trained")
	}
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, node.Probs, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, nil, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx <= 0 || idx >= len(t.Nodes) {
			return 0, nil, errors.New("invalid tree state")
		}
	}
}

// grow appends the subtree for the given samples and returns its root index.
func (t *DecisionTree) grow(features [][]float64, labels []int, depth int, p *treeParams) int {
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, TreeNode{FeatureIdx: -1, LeftChild: -1, RightChild: -1})

	stop := isPure(labels) ||
		len(labels) < p.minSamplesSplit ||
		(p.maxDepth > 0 && depth >= p.maxDepth)

	var bestFeature int
	var threshold float64
	var ok bool
	if !stop {
		bestFeature, threshold, ok = findBestSplit(features, labels, p)
	}
	if stop || !ok {
		t.Nodes[idx] = leafNode(labels, p.classWeights)
		return idx
	}

	leftFeatures, leftLabels, rightFeatures, rightLabels := splitData(features, labels, bestFeature, threshold)
	if len(leftLabels) < p.minSamplesLeaf || len(rightLabels) < p.minSamplesLeaf {
		t.Nodes[idx] = leafNode(labels, p.classWeights)
		return idx
	}

	left := t.grow(leftFeatures, leftLabels, depth+1, p)
	right := t.grow(rightFeatures, rightLabels, depth+1, p)
	t.Nodes[idx] = TreeNode{
		FeatureIdx: bestFeature,
		Threshold:  threshold,
		LeftChild:  left,
		RightChild: right,
		ClassLabel: majorityLabel(labels, p.classWeights),
	}
	return idx
}

func leafNode(labels []int, weights [2]float64) TreeNode {
	return TreeNode{
		FeatureIdx: -1,
		LeftChild:  -1,
		RightChild: -1,
		ClassLabel: majorityLabel(labels, weights),
		Probs:      classDistribution(labels, weights),
		IsLeaf:     true,
	}
}

// findBestSplit searches a random feature subset for the threshold with the
// lowest weighted gini impurity. Candidate thresholds are midpoints between
// consecutive distinct values.
func findBestSplit(features [][]float64, labels []int, p *treeParams) (int, float64, bool) {
	featureCount := len(features[0])
	candidates := sampleFeatures(featureCount, p.maxFeatures, p.rng)

	bestFeature := -1
	bestThreshold := 0.0
	bestImpurity := math.MaxFloat64

	type pair struct {
		value float64
		label int
	}
	pairs := make([]pair, len(features))

	for _, featureIdx := range candidates {
		for i := range features {
			pairs[i] = pair{features[i][featureIdx], labels[i]}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].value < pairs[b].value })

		var leftCount [2]float64
		var rightCount [2]float64
		for _, pr := range pairs {
			rightCount[pr.label] += p.classWeights[pr.label]
		}

		for i := 0; i < len(pairs)-1; i++ {
			w := p.classWeights[pairs[i].label]
			leftCount[pairs[i].label] += w
			rightCount[pairs[i].label] -= w
			if pairs[i].value == pairs[i+1].value {
				continue
			}
			if i+1 < p.minSamplesLeaf || len(pairs)-i-1 < p.minSamplesLeaf {
				continue
			}
			impurity := weightedGini(leftCount, rightCount)
			if impurity < bestImpurity {
				bestImpurity = impurity
				bestFeature = featureIdx
				bestThreshold = (pairs[i].value + pairs[i+1].value) / 2
			}
		}
	}

	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

// sampleFeatures picks the per-split candidate features. With "all" (or no
// rng) every feature is considered, matching a plain CART split.
func sampleFeatures(featureCount int, maxFeatures string, rng *rand.Rand) []int {
	k := featureCount
	switch maxFeatures {
	case "sqrt":
		k = int(math.Ceil(math.Sqrt(float64(featureCount))))
	case "log2":
		k = int(math.Ceil(math.Log2(float64(featureCount))))
	}
	if k < 1 {
		k = 1
	}
	if k >= featureCount || rng == nil {
		all := make([]int, featureCount)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return rng.Perm(featureCount)[:k]
}

func splitData(features [][]float64, labels []int, featureIdx int, threshold float64) ([][]float64, []int, [][]float64, []int) {
	leftFeatures := make([][]float64, 0, len(features))
	leftLabels := make([]int, 0, len(labels))
	rightFeatures := make([][]float64, 0, len(features))
	rightLabels := make([]int, 0, len(labels))
	for i, feature := range features {
		if feature[featureIdx] <= threshold {
			leftFeatures = append(leftFeatures, feature)
			leftLabels = append(leftLabels, labels[i])
		} else {
			rightFeatures = append(rightFeatures, feature)
			rightLabels = append(rightLabels, labels[i])
		}
	}
	return leftFeatures, leftLabels, rightFeatures, rightLabels
}

func weightedGini(left, right [2]float64) float64 {
	leftTotal := left[0] + left[1]
	rightTotal := right[0] + right[1]
	total := leftTotal + rightTotal
	if total == 0 {
		return 0
	}
	return (leftTotal/total)*gini(left) + (rightTotal/total)*gini(right)
}

func gini(counts [2]float64) float64 {
	total := counts[0] + counts[1]
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, count := range counts {
		prob := count / total
		impurity -= prob * prob
	}
	return impurity
}

func classDistribution(labels []int, weights [2]float64) []float64 {
	var counts [2]float64
	for _, label := range labels {
		counts[label] += weights[label]
	}
	total := counts[0] + counts[1]
	if total == 0 {
		return []float64{0.5, 0.5}
	}
	return []float64{counts[0] / total, counts[1] / total}
}

func majorityLabel(labels []int, weights [2]float64) int {
	dist := classDistribution(labels, weights)
	if dist[1] > dist[0] {
		return 1
	}
	return 0
}

func isPure(labels []int) bool {
	if len(labels) == 0 {
		return true
	}
	first := labels[0]
	for _, label := range labels[1:] {
		if label != first {
			return false
		}
	}
	return true
}
