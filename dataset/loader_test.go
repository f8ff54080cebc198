package dataset

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const fixtureCSV = `Student_ID,Age,Gender,Department,CGPA,Sleep_Duration,Study_Hours,Social_Media_Hours,Physical_Activity,Stress_Level,Depression
1,20,Male,Engineering,3.5,7.0,4.0,2.0,100,3,False
2,22,Female,Science,2.8,5.0,6.5,4.0,40,8,True
3,19,Male,Arts,3.1,8.0,2.0,3.5,120,2,0
4,25,Female,Medical,3.9,6.0,7.0,1.0,80,7,1
5,21,Male,Business,2.2,,3.0,2.5,60,5,False
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "students.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

func TestLoadFromCSV(t *testing.T) {
	result, err := LoadFromCSV(writeFixture(t, fixtureCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Row 5 has a blank Sleep_Duration and must be dropped.
	if len(result.Records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(result.Records))
	}
	if result.Dropped != 1 {
		t.Fatalf("expected 1 dropped row, got %d", result.Dropped)
	}
	if len(result.Labels) != len(result.Records) {
		t.Fatal("records and labels misaligned")
	}
	if result.Labels[0] != 0 || result.Labels[1] != 1 || result.Labels[2] != 0 || result.Labels[3] != 1 {
		t.Fatalf("unexpected labels: %v", result.Labels)
	}
	first := result.Records[0]
	if first.Age != 20 || first.Gender != "Male" || first.CGPA != 3.5 || first.StressLevel != 3 {
		t.Fatalf("unexpected first record: %+v", first)
	}
}

func TestLoadFromCSVSchemaError(t *testing.T) {
	path := writeFixture(t, "Age,Gender\n20,Male\n")
	_, err := LoadFromCSV(path)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	if len(schemaErr.Missing) != 8 {
		t.Fatalf("expected 8 missing columns, got %v", schemaErr.Missing)
	}
}

func TestLoadFromCSVMissingFile(t *testing.T) {
	if _, err := LoadFromCSV(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFromSQLiteMissingFile(t *testing.T) {
	if _, err := LoadFromSQLite(filepath.Join(t.TempDir(), "absent.db"), "student_lifestyle"); err == nil {
		t.Fatal("expected error for missing database file")
	}
}

func TestParseLabel(t *testing.T) {
	cases := map[string]int{"1": 1, "True": 1, "true": 1, "0": 0, "False": 0, "f": 0}
	for raw, want := range cases {
		got, err := parseLabel(raw)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parseLabel(%q) = %d, want %d", raw, got, want)
		}
	}
	if _, err := parseLabel("maybe"); err == nil {
		t.Fatal("expected error for unrecognized label")
	}
}

func TestLoadFromSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = db.Exec(`
        CREATE TABLE student_lifestyle (
            Student_ID INTEGER PRIMARY KEY,
            Age INTEGER, Gender TEXT, Department TEXT, CGPA REAL,
            Sleep_Duration REAL, Study_Hours REAL, Social_Media_Hours REAL,
            Physical_Activity REAL, Stress_Level INTEGER, Depression INTEGER
        )`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = db.Exec(`
        INSERT INTO student_lifestyle
            (Age, Gender, Department, CGPA, Sleep_Duration, Study_Hours, Social_Media_Hours, Physical_Activity, Stress_Level, Depression)
        VALUES
            (20, 'Male', 'Engineering', 3.5, 7.0, 4.0, 2.0, 100, 3, 0),
            (22, 'Female', 'Science', 2.8, 5.0, 6.5, 4.0, 40, 8, 1)`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	db.Close()

	result, err := LoadFromSQLite(path, "student_lifestyle")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 2 || result.Dropped != 0 {
		t.Fatalf("expected 2 records, got %d (%d dropped)", len(result.Records), result.Dropped)
	}
	if result.Labels[0] != 0 || result.Labels[1] != 1 {
		t.Fatalf("unexpected labels: %v", result.Labels)
	}
	if result.Records[1].Gender != "Female" || result.Records[1].StressLevel != 8 {
		t.Fatalf("unexpected record: %+v", result.Records[1])
	}
}

func TestLoadFromSQLiteSchemaError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := db.Exec("CREATE TABLE student_lifestyle (Age INTEGER, Gender TEXT)"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	db.Close()

	_, err = LoadFromSQLite(path, "student_lifestyle")
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
}
