package ml

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// StandardScaler standardizes numeric columns to zero mean and unit variance.
// Parameters are fit on the training split only and reused verbatim at
// serving time.
type StandardScaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

func (s *StandardScaler) Fit(rows [][]float64) error {
	if len(rows) == 0 {
		return errors.New("no rows to fit scaler")
	}
	width := len(rows[0])
	means := make([]float64, width)
	stds := make([]float64, width)

	for _, row := range rows {
		if len(row) != width {
			return errors.New("inconsistent row width")
		}
		for j, v := range row {
			means[j] += v
		}
	}
	n := float64(len(rows))
	for j := range means {
		means[j] /= n
	}
	for _, row := range rows {
		for j, v := range row {
			d := v - means[j]
			stds[j] += d * d
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / n)
		// A constant column must not divide by zero.
		if stds[j] == 0 {
			stds[j] = 1
		}
	}

	s.Means = means
	s.Stds = stds
	return nil
}

func (s *StandardScaler) Transform(row []float64) ([]float64, error) {
	if len(s.Means) == 0 {
		return nil, errors.New("scaler not fitted")
	}
	if len(row) != len(s.Means) {
		return nil, fmt.Errorf("expected %d numeric values, got %d", len(s.Means), len(row))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Means[j]) / s.Stds[j]
	}
	return out, nil
}

// OneHotEncoder encodes categorical columns as indicator vectors. The
// vocabulary is fit on training data; a value never seen during fitting
// encodes to all-zero indicators instead of raising.
type OneHotEncoder struct {
	Categories [][]string `json:"categories"`
}

func (e *OneHotEncoder) Fit(rows [][]string) error {
	if len(rows) == 0 {
		return errors.New("no rows to fit encoder")
	}
	width := len(rows[0])
	seen := make([]map[string]bool, width)
	for j := range seen {
		seen[j] = make(map[string]bool)
	}
	for _, row := range rows {
		if len(row) != width {
			return errors.New("inconsistent row width")
		}
		for j, v := range row {
			seen[j][v] = true
		}
	}

	categories := make([][]string, width)
	for j, values := range seen {
		cats := make([]string, 0, len(values))
		for v := range values {
			cats = append(cats, v)
		}
		// Sorted vocabulary keeps the encoding deterministic across runs.
		sort.Strings(cats)
		categories[j] = cats
	}
	e.Categories = categories
	return nil
}

func (e *OneHotEncoder) Transform(row []string) ([]float64, error) {
	if len(e.Categories) == 0 {
		return nil, errors.New("encoder not fitted")
	}
	if len(row) != len(e.Categories) {
		return nil, fmt.Errorf("expected %d categorical values, got %d", len(e.Categories), len(row))
	}
	out := make([]float64, 0, e.Width())
	for j, v := range row {
		for _, cat := range e.Categories[j] {
			if v == cat {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
	}
	return out, nil
}

// Width is the number of indicator columns produced by Transform.
func (e *OneHotEncoder) Width() int {
	width := 0
	for _, cats := range e.Categories {
		width += len(cats)
	}
	return width
}

// Preprocessor is the deterministic feature transform shared by training and
// serving: standardized numeric columns followed by one-hot indicators.
type Preprocessor struct {
	Scaler  StandardScaler `json:"scaler"`
	Encoder OneHotEncoder  `json:"encoder"`
}

func (p *Preprocessor) Fit(records []StudentRecord) error {
	if len(records) == 0 {
		return errors.New("no records to fit preprocessor")
	}
	numeric := make([][]float64, len(records))
	categorical := make([][]string, len(records))
	for i, r := range records {
		numeric[i] = r.NumericVector()
		categorical[i] = r.CategoricalVector()
	}
	if err := p.Scaler.Fit(numeric); err != nil {
		return err
	}
	return p.Encoder.Fit(categorical)
}

func (p *Preprocessor) Transform(r StudentRecord) ([]float64, error) {
	scaled, err := p.Scaler.Transform(r.NumericVector())
	if err != nil {
		return nil, err
	}
	encoded, err := p.Encoder.Transform(r.CategoricalVector())
	if err != nil {
		return nil, err
	}
	return append(scaled, encoded...), nil
}

func (p *Preprocessor) TransformAll(records []StudentRecord) ([][]float64, error) {
	out := make([][]float64, len(records))
	for i, r := range records {
		v, err := p.Transform(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Width is the length of the transformed feature vector.
func (p *Preprocessor) Width() int {
	return len(p.Scaler.Means) + p.Encoder.Width()
}
