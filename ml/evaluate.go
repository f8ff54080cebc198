package ml

import (
	"errors"
	"sort"
)

// Metrics is the training-time evaluation snapshot, computed on the held-out
// test split only.
type Metrics struct {
	Accuracy        float64   `json:"accuracy"`
	F1              float64   `json:"f1_score"`
	ROCAUC          float64   `json:"roc_auc"`
	Precision       float64   `json:"precision"`
	Recall          float64   `json:"recall"`
	ConfusionMatrix [2][2]int `json:"confusion_matrix"`
}

// Evaluate computes all classification metrics for binary predictions.
// probs holds the predicted probability of the positive class per sample.
func Evaluate(actual, predicted []int, probs []float64) (Metrics, error) {
	if len(actual) == 0 {
		return Metrics{}, errors.New("no samples to evaluate")
	}
	if len(actual) != len(predicted) || len(actual) != len(probs) {
		return Metrics{}, errors.New("evaluation input size mismatch")
	}

	var m Metrics
	var correct int
	for i := range actual {
		m.ConfusionMatrix[actual[i]][predicted[i]]++
		if actual[i] == predicted[i] {
			correct++
		}
	}
	m.Accuracy = float64(correct) / float64(len(actual))

	tp := float64(m.ConfusionMatrix[1][1])
	fp := float64(m.ConfusionMatrix[0][1])
	fn := float64(m.ConfusionMatrix[1][0])
	if tp+fp > 0 {
		m.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		m.Recall = tp / (tp + fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	m.ROCAUC = ROCAUC(actual, probs)
	return m, nil
}

// ROCAUC computes the area under the ROC curve via the rank statistic
// (Mann-Whitney U), with average ranks for tied scores. Returns 0 when one
// of the classes is absent.
func ROCAUC(actual []int, scores []float64) float64 {
	n := len(actual)
	if n == 0 || n != len(scores) {
		return 0
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && scores[order[j]] == scores[order[i]] {
			j++
		}
		// Tied scores share the average of their rank range.
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}

	var positives, rankSum float64
	for i, label := range actual {
		if label == 1 {
			positives++
			rankSum += ranks[i]
		}
	}
	negatives := float64(n) - positives
	if positives == 0 || negatives == 0 {
		return 0
	}
	return (rankSum - positives*(positives+1)/2) / (positives * negatives)
}
