// Package insurance defines the applicant and training table types shared by
// the premium model, the wellness scorer and the data sources.
package insurance

import (
	"errors"
	"fmt"
	"math"
)

const (
	SexMale   = "male"
	SexFemale = "female"

	SmokerYes = "yes"
	SmokerNo  = "no"

	RegionSouthwest = "southwest"
	RegionSoutheast = "southeast"
	RegionNorthwest = "northwest"
	RegionNortheast = "northeast"

	MinAge      = 18
	MaxAge      = 100
	MinBMI      = 15.0
	MaxBMI      = 50.0
	MinChildren = 0
	MaxChildren = 5
)

var (
	// ErrUntrainedModel is returned when a prediction or metrics are requested
	// before training succeeded.
	ErrUntrainedModel = errors.New("model not trained")

	// ErrUnknownCategory is returned when an inference input carries a
	// categorical value the encoders never saw during training.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrEmptyTrainingSet is returned when training is invoked on zero rows.
	ErrEmptyTrainingSet = errors.New("empty training set")

	// ErrInvalidInputRange is returned for any input outside its declared domain.
	ErrInvalidInputRange = errors.New("input out of range")

	Sexes   = []string{SexMale, SexFemale}
	Smokers = []string{SmokerNo, SmokerYes}
	Regions = []string{RegionSouthwest, RegionSoutheast, RegionNorthwest, RegionNortheast}
)

// Applicant is the immutable set of attributes a premium is predicted from.
type Applicant struct {
	Age      int     `json:"age" yaml:"age"`
	Sex      string  `json:"sex" yaml:"sex"`
	BMI      float64 `json:"bmi" yaml:"bmi"`
	Children int     `json:"children" yaml:"children"`
	Smoker   string  `json:"smoker" yaml:"smoker"`
	Region   string  `json:"region" yaml:"region"`
}

// Validate checks the numeric ranges of the applicant. Categorical values are
// checked against the fitted encoders at prediction time.
func (a Applicant) Validate() error {
	if a.Age < MinAge || a.Age > MaxAge {
		return fmt.Errorf("%w: age %d not in [%d,%d]", ErrInvalidInputRange, a.Age, MinAge, MaxAge)
	}
	if math.IsNaN(a.BMI) || math.IsInf(a.BMI, 0) || a.BMI < MinBMI || a.BMI > MaxBMI {
		return fmt.Errorf("%w: bmi %.1f not in [%.0f,%.0f]", ErrInvalidInputRange, a.BMI, MinBMI, MaxBMI)
	}
	if a.Children < MinChildren || a.Children > MaxChildren {
		return fmt.Errorf("%w: children %d not in [%d,%d]", ErrInvalidInputRange, a.Children, MinChildren, MaxChildren)
	}
	return nil
}

// ValidateCategories checks sex, smoker and region against their enums.
func (a Applicant) ValidateCategories() error {
	if !Contains(Sexes, a.Sex) {
		return fmt.Errorf("%w: sex %q", ErrInvalidInputRange, a.Sex)
	}
	if !Contains(Smokers, a.Smoker) {
		return fmt.Errorf("%w: smoker %q", ErrInvalidInputRange, a.Smoker)
	}
	if !Contains(Regions, a.Region) {
		return fmt.Errorf("%w: region %q", ErrInvalidInputRange, a.Region)
	}
	return nil
}

// Row is a single labeled training example.
type Row struct {
	Applicant
	Charges float64 `json:"charges" yaml:"charges"`
}

// Validate checks the full row, categorical values included.
func (r Row) Validate() error {
	if err := r.Applicant.Validate(); err != nil {
		return err
	}
	if err := r.ValidateCategories(); err != nil {
		return err
	}
	if math.IsNaN(r.Charges) || math.IsInf(r.Charges, 0) || r.Charges <= 0 {
		return fmt.Errorf("%w: charges %.2f must be positive", ErrInvalidInputRange, r.Charges)
	}
	return nil
}

// Table is an ordered collection of training rows.
type Table []Row

// Validate returns the first invalid row, annotated with its index.
func (t Table) Validate() error {
	for i, r := range t {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

// Contains checks for val in list
func Contains[T comparable](list []T, val T) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
