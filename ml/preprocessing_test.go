package ml

import (
	"math"
	"testing"
)

func TestStandardScalerZeroMeanUnitVariance(t *testing.T) {
	rows := [][]float64{{1, 10}, {2, 20}, {3, 30}}
	scaler := &StandardScaler{}
	if err := scaler.Fit(rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sums [2]float64
	for _, row := range rows {
		out, err := scaler.Transform(row)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sums[0] += out[0]
		sums[1] += out[1]
	}
	if math.Abs(sums[0]) > 1e-9 || math.Abs(sums[1]) > 1e-9 {
		t.Fatalf("expected zero-mean output, got sums %v", sums)
	}
}

func TestStandardScalerConstantColumn(t *testing.T) {
	scaler := &StandardScaler{}
	if err := scaler.Fit([][]float64{{5}, {5}, {5}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := scaler.Transform([]float64{5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != 0 {
		t.Fatalf("expected 0 for constant column, got %f", out[0])
	}
}

func TestOneHotEncoderKnownAndUnseen(t *testing.T) {
	encoder := &OneHotEncoder{}
	err := encoder.Fit([][]string{
		{"Male", "Science"},
		{"Female", "Engineering"},
		{"Female", "Arts"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if encoder.Width() != 5 {
		t.Fatalf("expected 5 indicator columns, got %d", encoder.Width())
	}

	out, err := encoder.Transform([]string{"Male", "Science"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ones := 0
	for _, v := range out {
		if v == 1 {
			ones++
		}
	}
	if ones != 2 {
		t.Fatalf("expected exactly 2 active indicators, got %d", ones)
	}

	// A department absent from the training vocabulary must encode to
	// all-zero indicators for that column, never raise.
	out, err = encoder.Transform([]string{"Male", "Law"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ones = 0
	for _, v := range out {
		if v == 1 {
			ones++
		}
	}
	if ones != 1 {
		t.Fatalf("expected only the gender indicator, got %d active", ones)
	}
}

func TestPreprocessorTransformWidth(t *testing.T) {
	records := []StudentRecord{validRecord()}
	r2 := validRecord()
	r2.Gender = "Female"
	r2.Department = "Arts"
	records = append(records, r2)

	p := &Preprocessor{}
	if err := p.Fit(records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := p.Transform(records[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 7 numeric + 2 gender + 2 department indicators.
	if len(out) != 11 || len(out) != p.Width() {
		t.Fatalf("unexpected vector width %d (Width()=%d)", len(out), p.Width())
	}
}
