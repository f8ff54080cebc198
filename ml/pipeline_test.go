package ml

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

// fixtureSet builds a small labeled student dataset in which high stress and
// short sleep correlate with the positive class.
func fixtureSet(n int, seed int64) ([]StudentRecord, []int) {
	rng := rand.New(rand.NewSource(seed))
	genders := []string{"Male", "Female"}
	departments := []string{"Science", "Engineering", "Medical", "Arts", "Business"}

	records := make([]StudentRecord, n)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		r := StudentRecord{
			Age:              15 + rng.Intn(16),
			Gender:           genders[rng.Intn(len(genders))],
			Department:       departments[rng.Intn(len(departments))],
			CGPA:             roundTo(rng.Float64()*4, 2),
			SleepDuration:    roundTo(4+rng.Float64()*6, 1),
			StudyHours:       roundTo(rng.Float64()*10, 1),
			SocialMediaHours: roundTo(rng.Float64()*8, 1),
			PhysicalActivity: float64(rng.Intn(201)),
			StressLevel:      rng.Intn(11),
		}
		records[i] = r
		if r.StressLevel >= 7 && r.SleepDuration < 6.5 {
			labels[i] = 1
		}
	}
	// Guarantee both classes exist regardless of seed.
	records[0].StressLevel = 9
	records[0].SleepDuration = 4
	labels[0] = 1
	records[1].StressLevel = 1
	records[1].SleepDuration = 8
	labels[1] = 0
	return records, labels
}

func roundTo(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(v*scale) / scale
}

func fixturePipeline(t *testing.T) *Pipeline {
	t.Helper()
	records, labels := fixtureSet(150, 11)
	params := DefaultForestParams(42)
	params.NEstimators = 15
	params.MaxDepth = 6
	pipeline, err := FitPipeline(records, labels, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return pipeline
}

func TestPipelinePredictInvariants(t *testing.T) {
	pipeline := fixturePipeline(t)
	records, _ := fixtureSet(30, 99)

	for _, r := range records {
		pred, err := pipeline.Predict(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pred.Class != 0 && pred.Class != 1 {
			t.Fatalf("prediction outside {0,1}: %d", pred.Class)
		}
		if pred.Label != LabelText(pred.Class) {
			t.Fatalf("label %q does not match class %d", pred.Label, pred.Class)
		}
		if math.Abs(pred.Probability[0]+pred.Probability[1]-1) > 1e-6 {
			t.Fatalf("probabilities do not sum to 1: %v", pred.Probability)
		}
	}
}

func TestPipelineSaveLoadRoundTrip(t *testing.T) {
	pipeline := fixturePipeline(t)
	path := filepath.Join(t.TempDir(), "best_model.json")
	if err := pipeline.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := LoadPipeline(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Version != pipeline.Version {
		t.Fatalf("version changed across round-trip: %q vs %q", loaded.Version, pipeline.Version)
	}

	records, _ := fixtureSet(40, 7)
	for _, r := range records {
		want, err := pipeline.Predict(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := loaded.Predict(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want.Class != got.Class {
			t.Fatalf("round-trip changed prediction: %d vs %d", want.Class, got.Class)
		}
		if math.Abs(want.Probability[1]-got.Probability[1]) > 1e-9 {
			t.Fatalf("round-trip changed probabilities: %v vs %v", want.Probability, got.Probability)
		}
	}
}

func TestPipelineDeterministicForFixedSeed(t *testing.T) {
	scenario := StudentRecord{
		Age:              20,
		Gender:           "Male",
		Department:       "Engineering",
		CGPA:             3.5,
		SleepDuration:    7.0,
		StudyHours:       4.0,
		SocialMediaHours: 2.0,
		PhysicalActivity: 100,
		StressLevel:      3,
	}

	first := fixturePipeline(t)
	second := fixturePipeline(t)

	a, err := first.Predict(scenario)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := second.Predict(scenario)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Class != b.Class || a.Probability[1] != b.Probability[1] {
		t.Fatalf("expected deterministic prediction for fixed seed: %+v vs %+v", a, b)
	}
}

func TestPipelinePredictUnseenDepartment(t *testing.T) {
	pipeline := fixturePipeline(t)
	r := validRecord()
	r.Department = "Law"
	pred, err := pipeline.Predict(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(pred.Probability[0]+pred.Probability[1]-1) > 1e-6 {
		t.Fatalf("probabilities do not sum to 1: %v", pred.Probability)
	}
}

func TestLoadPipelineRejectsCorruptArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "best_model.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := LoadPipeline(path); err == nil {
		t.Fatal("expected error for corrupt artifact")
	}
}

func TestLoadPipelineRejectsContractMismatch(t *testing.T) {
	pipeline := fixturePipeline(t)
	pipeline.FeatureNames = []string{"Age", "Gender"}
	path := filepath.Join(t.TempDir(), "best_model.json")
	if err := pipeline.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := LoadPipeline(path); err == nil {
		t.Fatal("expected error for feature contract mismatch")
	}
}

func TestSaveRejectsUnfittedPipeline(t *testing.T) {
	p := &Pipeline{}
	if err := p.Save(filepath.Join(t.TempDir(), "model.json")); err == nil {
		t.Fatal("expected error for unfitted pipeline")
	}
}
