// Package ml implements the depression risk model: feature preprocessing,
// random forest training with hyperparameter search, evaluation and
// artifact persistence.
package ml

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// ModelVersion is stamped into every artifact and response.
	ModelVersion = "1.0.0"
	// TargetColumn is the label column in dataset exports.
	TargetColumn = "Depression"
)

// StudentRecord is one observation under the feature contract. Field names
// on the wire match the dataset column names exactly.
type StudentRecord struct {
	Age              int     `json:"Age" validate:"min=15,max=30"`
	Gender           string  `json:"Gender" validate:"required"`
	Department       string  `json:"Department" validate:"required"`
	CGPA             float64 `json:"CGPA" validate:"min=0,max=4"`
	SleepDuration    float64 `json:"Sleep_Duration" validate:"min=0,max=15"`
	StudyHours       float64 `json:"Study_Hours" validate:"min=0,max=15"`
	SocialMediaHours float64 `json:"Social_Media_Hours" validate:"min=0,max=15"`
	PhysicalActivity float64 `json:"Physical_Activity" validate:"min=0,max=200"`
	StressLevel      int     `json:"Stress_Level" validate:"min=0,max=10"`
}

// NumericFeatures lists the standardized columns, in contract order.
func NumericFeatures() []string {
	return []string{
		"Age", "CGPA", "Sleep_Duration", "Study_Hours",
		"Social_Media_Hours", "Physical_Activity", "Stress_Level",
	}
}

// CategoricalFeatures lists the one-hot encoded columns.
func CategoricalFeatures() []string {
	return []string{"Gender", "Department"}
}

// FeatureNames returns every feature column, numeric then categorical. The
// order is part of the artifact format.
func FeatureNames() []string {
	return append(NumericFeatures(), CategoricalFeatures()...)
}

// NumericVector extracts the numeric features in the NumericFeatures order.
func (r StudentRecord) NumericVector() []float64 {
	return []float64{
		float64(r.Age), r.CGPA, r.SleepDuration, r.StudyHours,
		r.SocialMediaHours, r.PhysicalActivity, float64(r.StressLevel),
	}
}

// CategoricalVector extracts the categorical features in the
// CategoricalFeatures order.
func (r StudentRecord) CategoricalVector() []string {
	return []string{r.Gender, r.Department}
}

// LabelText maps the binary class to its display label.
func LabelText(class int) string {
	if class == 1 {
		return "Depression"
	}
	return "No Depression"
}

// ValidationError reports which fields violated the contract, by their wire
// names.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid fields: %s", strings.Join(e.Fields, ", "))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report violations under the wire names, not the Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every bound in the contract and collects all violations.
// Categorical values are only required to be non-empty; the encoder decides
// how to treat values outside the training vocabulary.
func (r StudentRecord) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields}
}

// MissingFields reports contract fields absent from a decoded JSON object.
// Presence has to be checked on the raw object: zero values like CGPA 0 are
// legal, so the decoded struct cannot distinguish absent from zero.
func MissingFields(raw map[string]json.RawMessage) []string {
	var missing []string
	for _, name := range FeatureNames() {
		if _, ok := raw[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
