package dataset

import (
	"path/filepath"
	"testing"
	"time"
)

func TestTrainingLogAppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.db")

	first := TrainingLog{
		ModelName:  "depression_rf",
		Accuracy:   0.91,
		Precision:  0.88,
		Recall:     0.85,
		ROCAUC:     0.93,
		TrainedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		DataPoints: 500,
	}
	second := first
	second.Accuracy = 0.92
	second.TrainedAt = first.TrainedAt.Add(24 * time.Hour)

	if err := AppendTrainingLog(path, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := AppendTrainingLog(path, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logs, err := LoadTrainingLog(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(logs))
	}
	// Newest first.
	if logs[0].Accuracy != 0.92 || logs[1].Accuracy != 0.91 {
		t.Fatalf("unexpected order: %+v", logs)
	}
	if logs[1].ModelName != "depression_rf" || logs[1].DataPoints != 500 {
		t.Fatalf("unexpected entry: %+v", logs[1])
	}
}

func TestAppendTrainingLogRequiresPath(t *testing.T) {
	if err := AppendTrainingLog("", TrainingLog{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}
