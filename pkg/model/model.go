// Package model trains and serves the premium regression model: a bagged
// ensemble of regression trees over six applicant features, with frozen
// categorical encoders and holdout metrics.
package model

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/mchmarny/healsure/pkg/insurance"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	FeatureAge      = "age"
	FeatureSex      = "sex"
	FeatureBMI      = "bmi"
	FeatureChildren = "children"
	FeatureSmoker   = "smoker"
	FeatureRegion   = "region"

	TreesDefault          = 100
	SeedDefault           = 42
	TestFractionDefault   = 0.2
	MinSamplesLeafDefault = 1
)

var featureNames = []string{
	FeatureAge,
	FeatureSex,
	FeatureBMI,
	FeatureChildren,
	FeatureSmoker,
	FeatureRegion,
}

// Options controls training.
type Options struct {
	Trees          int     `json:"trees" yaml:"trees"`
	Seed           int64   `json:"seed" yaml:"seed"`
	TestFraction   float64 `json:"test_fraction" yaml:"test_fraction"`
	MaxDepth       int     `json:"max_depth" yaml:"max_depth"`
	MinSamplesLeaf int     `json:"min_samples_leaf" yaml:"min_samples_leaf"`
	Workers        int     `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// DefaultOptions returns 100 unbounded trees, seed 42 and a 20% holdout.
func DefaultOptions() Options {
	return Options{
		Trees:          TreesDefault,
		Seed:           SeedDefault,
		TestFraction:   TestFractionDefault,
		MinSamplesLeaf: MinSamplesLeafDefault,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.Trees < 1 {
		return errors.Errorf("trees must be positive, got %d", o.Trees)
	}
	if o.TestFraction < 0 || o.TestFraction >= 1 {
		return errors.Errorf("test fraction must be in [0,1), got %v", o.TestFraction)
	}
	if o.MaxDepth < 0 {
		return errors.Errorf("max depth cannot be negative, got %d", o.MaxDepth)
	}
	if o.MinSamplesLeaf < 1 {
		return errors.Errorf("min samples per leaf must be positive, got %d", o.MinSamplesLeaf)
	}
	return nil
}

// Metrics are computed on the holdout partition.
type Metrics struct {
	MSE       float64 `json:"mse" yaml:"mse"`
	RMSE      float64 `json:"rmse" yaml:"rmse"`
	R2        float64 `json:"r2" yaml:"r2"`
	TrainRows int     `json:"train_rows" yaml:"train_rows"`
	TestRows  int     `json:"test_rows" yaml:"test_rows"`
}

// Importance is the learned weight of a single feature.
type Importance struct {
	Feature string  `json:"feature" yaml:"feature"`
	Weight  float64 `json:"weight" yaml:"weight"`
}

// State is a trained model together with the encoders it was fitted with and
// its evaluation. A State is read-only; retraining produces a new one.
type State struct {
	forest     *forest
	sex        *Encoder
	smoker     *Encoder
	region     *Encoder
	metrics    Metrics
	importance []Importance
	options    Options
	trainedAt  time.Time
}

// Train fits encoders and the forest on table and evaluates on the holdout.
func Train(ctx context.Context, table insurance.Table, opts Options) (*State, error) {
	if len(table) == 0 {
		return nil, errors.WithStack(insurance.ErrEmptyTrainingSet)
	}
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid training options")
	}
	if err := table.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid training table")
	}

	s := &State{options: opts}
	var err error
	if s.sex, err = fitColumn(table, FeatureSex, func(r insurance.Row) string { return r.Sex }); err != nil {
		return nil, err
	}
	if s.smoker, err = fitColumn(table, FeatureSmoker, func(r insurance.Row) string { return r.Smoker }); err != nil {
		return nil, err
	}
	if s.region, err = fitColumn(table, FeatureRegion, func(r insurance.Row) string { return r.Region }); err != nil {
		return nil, err
	}

	x := make([][]float64, len(table))
	y := make([]float64, len(table))
	for i, r := range table {
		if x[i], err = s.features(r.Applicant); err != nil {
			return nil, errors.Wrapf(err, "encoding row %d", i)
		}
		y[i] = r.Charges
	}

	trainIdx, testIdx := splitIndices(len(table), opts.TestFraction, opts.Seed)
	slog.Debug("training model", "rows", len(table), "train", len(trainIdx), "test", len(testIdx), "trees", opts.Trees)

	if s.forest, err = fitForest(ctx, x, y, trainIdx, opts); err != nil {
		return nil, errors.Wrap(err, "fitting forest")
	}

	evalIdx := testIdx
	if len(evalIdx) == 0 {
		evalIdx = trainIdx
	}
	s.metrics = s.evaluate(x, y, evalIdx)
	s.metrics.TrainRows = len(trainIdx)
	s.metrics.TestRows = len(testIdx)
	s.importance = rankImportance(s.forest.importance)
	s.trainedAt = time.Now().UTC()

	slog.Debug("model trained", "mse", s.metrics.MSE, "r2", s.metrics.R2)
	return s, nil
}

func fitColumn(table insurance.Table, field string, value func(insurance.Row) string) (*Encoder, error) {
	values := make([]string, len(table))
	for i, r := range table {
		values[i] = value(r)
	}
	return FitEncoder(field, values)
}

func (s *State) features(a insurance.Applicant) ([]float64, error) {
	sex, err := s.sex.Encode(a.Sex)
	if err != nil {
		return nil, err
	}
	smoker, err := s.smoker.Encode(a.Smoker)
	if err != nil {
		return nil, err
	}
	region, err := s.region.Encode(a.Region)
	if err != nil {
		return nil, err
	}
	return []float64{
		float64(a.Age),
		float64(sex),
		a.BMI,
		float64(a.Children),
		float64(smoker),
		float64(region),
	}, nil
}

func (s *State) evaluate(x [][]float64, y []float64, idx []int) Metrics {
	actual := make([]float64, len(idx))
	predicted := make([]float64, len(idx))
	for k, i := range idx {
		actual[k] = y[i]
		predicted[k] = s.forest.predict(x[i])
	}

	diff := make([]float64, len(idx))
	floats.SubTo(diff, predicted, actual)
	mse := floats.Dot(diff, diff) / float64(len(idx))

	// R² is undefined for a constant target
	r2 := stat.RSquaredFrom(predicted, actual, nil)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		r2 = 0
	}

	return Metrics{
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		R2:   r2,
	}
}

func rankImportance(weights []float64) []Importance {
	list := make([]Importance, len(featureNames))
	for i, f := range featureNames {
		list[i] = Importance{Feature: f, Weight: weights[i]}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Weight > list[j].Weight
	})
	return list
}

// Predict returns the non-negative premium for a. Categorical values unknown
// to the encoders fail with ErrUnknownCategory.
func (s *State) Predict(a insurance.Applicant) (float64, error) {
	x, err := s.features(a)
	if err != nil {
		return 0, err
	}
	if err := a.Validate(); err != nil {
		return 0, err
	}
	return max(s.forest.predict(x), 0), nil
}

// FeatureImportance returns the six features sorted by weight, descending.
func (s *State) FeatureImportance() []Importance {
	out := make([]Importance, len(s.importance))
	copy(out, s.importance)
	return out
}

// Metrics returns the holdout evaluation.
func (s *State) Metrics() Metrics {
	return s.metrics
}

// Options returns the options the state was trained with.
func (s *State) Options() Options {
	return s.options
}

// TrainedAt returns the UTC time training completed.
func (s *State) TrainedAt() time.Time {
	return s.trainedAt
}

// Encoder returns the fitted encoder for a categorical feature.
func (s *State) Encoder(field string) (*Encoder, error) {
	switch field {
	case FeatureSex:
		return s.sex, nil
	case FeatureSmoker:
		return s.smoker, nil
	case FeatureRegion:
		return s.region, nil
	default:
		return nil, fmt.Errorf("%s is not a categorical feature", field)
	}
}
