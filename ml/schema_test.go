package ml

import (
	"encoding/json"
	"testing"
)

func validRecord() StudentRecord {
	return StudentRecord{
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
}

func TestValidateAcceptsValidRecord(t *testing.T) {
	if err := validRecord().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsOutOfRangeAge(t *testing.T) {
	r := validRecord()
	r.Age = 100
	err := r.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0] != "Age" {
		t.Fatalf("expected Age to be flagged, got %v", verr.Fields)
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	r := validRecord()
	r.CGPA = 9.9
	r.StressLevel = 42
	err := r.Validate()
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("expected 2 flagged fields, got %v", verr.Fields)
	}
}

func TestValidateAllowsUnseenDepartment(t *testing.T) {
	// The contract restricts bounds, not categorical vocabulary; unseen
	// categories are handled by the encoder, not rejected up front.
	r := validRecord()
	r.Department = "Law"
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMissingFields(t *testing.T) {
	body := []byte(`{"Age": 20, "Gender": "Male"}`)
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	missing := MissingFields(raw)
	if len(missing) != 7 {
		t.Fatalf("expected 7 missing fields, got %v", missing)
	}
	for _, name := range missing {
		if name == "Age" || name == "Gender" {
			t.Fatalf("%s reported missing but present", name)
		}
	}
}

func TestFeatureNamesOrder(t *testing.T) {
	names := FeatureNames()
	if len(names) != 9 {
		t.Fatalf("expected 9 features, got %d", len(names))
	}
	if names[0] != "Age" || names[7] != "Gender" || names[8] != "Department" {
		t.Fatalf("unexpected feature order: %v", names)
	}
}

func TestLabelText(t *testing.T) {
	if LabelText(1) != "Depression" || LabelText(0) != "No Depression" {
		t.Fatal("unexpected label text")
	}
}
