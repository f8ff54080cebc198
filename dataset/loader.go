// Package dataset loads the labeled student lifestyle dataset used by the
// offline training run, from SQLite or a local CSV fallback.
package dataset

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"studentrisk/ml"
)

// SchemaError reports dataset columns required by the feature contract that
// are absent from the source. It is raised before any fitting happens.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "dataset missing required columns: " + strings.Join(e.Missing, ", ")
}

// RequiredColumns are the feature columns plus the target.
func RequiredColumns() []string {
	return append(ml.FeatureNames(), ml.TargetColumn)
}

// Result is a loaded dataset: records aligned with their labels, plus the
// number of source rows dropped for missing or unparsable values.
type Result struct {
	Records []ml.StudentRecord
	Labels  []int
	Dropped int
}

// LoadFromSQLite reads every row of the given table. The database file must
// already exist; sqlite would otherwise silently create an empty one.
func LoadFromSQLite(path, table string) (*Result, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("sqlite database: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query("SELECT * FROM " + table)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if missing := missingColumns(columns); len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	index := make(map[string]int, len(columns))
	for i, name := range columns {
		index[name] = i
	}

	result := &Result{}
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		fields := make([]string, len(columns))
		for i, v := range values {
			fields[i] = sqlValueString(v)
		}
		record, label, err := parseRow(fields, index)
		if err != nil {
			result.Dropped++
			continue
		}
		result.Records = append(result.Records, record)
		result.Labels = append(result.Labels, label)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, fmt.Errorf("table %s contains no usable rows", table)
	}
	return result, nil
}

// LoadFromCSV reads the dataset from a local CSV file with a header row.
func LoadFromCSV(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if missing := missingColumns(header); len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	result := &Result{}
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		record, label, err := parseRow(fields, index)
		if err != nil {
			result.Dropped++
			continue
		}
		result.Records = append(result.Records, record)
		result.Labels = append(result.Labels, label)
	}
	if len(result.Records) == 0 {
		return nil, fmt.Errorf("csv %s contains no usable rows", path)
	}
	return result, nil
}

func missingColumns(have []string) []string {
	present := make(map[string]bool, len(have))
	for _, name := range have {
		present[strings.TrimSpace(name)] = true
	}
	var missing []string
	for _, name := range RequiredColumns() {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

func parseRow(fields []string, index map[string]int) (ml.StudentRecord, int, error) {
	get := func(name string) string {
		return strings.TrimSpace(fields[index[name]])
	}
	num := func(name string) (float64, error) {
		v := get(name)
		if v == "" {
			return 0, fmt.Errorf("blank %s", name)
		}
		return strconv.ParseFloat(v, 64)
	}

	var record ml.StudentRecord
	var err error

	age, err := num("Age")
	if err != nil {
		return record, 0, err
	}
	record.Age = int(age)
	if record.CGPA, err = num("CGPA"); err != nil {
		return record, 0, err
	}
	if record.SleepDuration, err = num("Sleep_Duration"); err != nil {
		return record, 0, err
	}
	if record.StudyHours, err = num("Study_Hours"); err != nil {
		return record, 0, err
	}
	if record.SocialMediaHours, err = num("Social_Media_Hours"); err != nil {
		return record, 0, err
	}
	if record.PhysicalActivity, err = num("Physical_Activity"); err != nil {
		return record, 0, err
	}
	stress, err := num("Stress_Level")
	if err != nil {
		return record, 0, err
	}
	record.StressLevel = int(stress)

	record.Gender = get("Gender")
	record.Department = get("Department")
	if record.Gender == "" || record.Department == "" {
		return record, 0, fmt.Errorf("blank categorical value")
	}

	label, err := parseLabel(get(ml.TargetColumn))
	if err != nil {
		return record, 0, err
	}
	return record, label, nil
}

// parseLabel accepts the encodings seen across dataset exports: 0/1 and
// true/false spellings.
func parseLabel(raw string) (int, error) {
	switch strings.ToLower(raw) {
	case "1", "true", "t":
		return 1, nil
	case "0", "false", "f":
		return 0, nil
	}
	return 0, fmt.Errorf("unrecognized label %q", raw)
}

func sqlValueString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
