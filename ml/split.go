package ml

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// StratifiedSplit partitions sample indices into train and test sets while
// preserving the class proportion in both partitions. The target class is
// imbalanced, so a plain shuffle risks a degenerate test fold.
func StratifiedSplit(labels []int, testSize float64, rng *rand.Rand) (train, test []int, err error) {
	if len(labels) == 0 {
		return nil, nil, errors.New("labels empty")
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, errors.New("testSize must be in (0, 1)")
	}

	byClass := groupByClass(labels)
	for _, class := range sortedClasses(byClass) {
		indices := byClass[class]
		shuffled := make([]int, len(indices))
		for i, j := range rng.Perm(len(indices)) {
			shuffled[i] = indices[j]
		}
		cut := int(math.Round(float64(len(shuffled)) * testSize))
		test = append(test, shuffled[:cut]...)
		train = append(train, shuffled[cut:]...)
	}
	if len(train) == 0 || len(test) == 0 {
		return nil, nil, errors.New("split produced an empty partition")
	}
	return train, test, nil
}

// StratifiedKFold returns k disjoint validation folds covering every sample,
// each preserving the class balance of the input.
func StratifiedKFold(labels []int, folds int, rng *rand.Rand) ([][]int, error) {
	if folds < 2 {
		return nil, errors.New("folds must be at least 2")
	}
	if folds > len(labels) {
		return nil, errors.New("more folds than samples")
	}

	out := make([][]int, folds)
	byClass := groupByClass(labels)
	for _, class := range sortedClasses(byClass) {
		indices := byClass[class]
		shuffled := make([]int, len(indices))
		for i, j := range rng.Perm(len(indices)) {
			shuffled[i] = indices[j]
		}
		for i, idx := range shuffled {
			out[i%folds] = append(out[i%folds], idx)
		}
	}
	for _, fold := range out {
		if len(fold) == 0 {
			return nil, errors.New("fold with no samples")
		}
	}
	return out, nil
}

func groupByClass(labels []int) map[int][]int {
	byClass := make(map[int][]int)
	for i, label := range labels {
		byClass[label] = append(byClass[label], i)
	}
	return byClass
}

// sortedClasses fixes the class iteration order. Map range order varies per
// run; consuming the shared rng in a varying order would make the partitions
// differ for an identical seed.
func sortedClasses(byClass map[int][]int) []int {
	classes := make([]int, 0, len(byClass))
	for class := range byClass {
		classes = append(classes, class)
	}
	sort.Ints(classes)
	return classes
}
