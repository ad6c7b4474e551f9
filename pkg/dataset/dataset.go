// Package dataset provides the training table sources the premium model is
// fitted on: a seeded synthetic generator, local and remote CSV files.
package dataset

import (
	"context"

	"github.com/mchmarny/healsure/pkg/insurance"
	"gonum.org/v1/gonum/stat"
)

const (
	SourceSynthetic = "synthetic"
	SourceDB        = "db"
	SourceCSV       = "csv"
	SourceURL       = "url"

	RowsDefault = 1338
	SeedDefault = 42
)

// Sources lists the supported source kinds.
var Sources = []string{SourceSynthetic, SourceDB, SourceCSV, SourceURL}

// Source supplies a labeled training table.
type Source interface {
	TrainingTable(ctx context.Context) (insurance.Table, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (insurance.Table, error)

// TrainingTable calls f.
func (f SourceFunc) TrainingTable(ctx context.Context) (insurance.Table, error) {
	return f(ctx)
}

// Stats summarizes a training table.
type Stats struct {
	TotalRecords       int            `json:"total_records" yaml:"total_records"`
	AvgAge             float64        `json:"avg_age" yaml:"avg_age"`
	AvgBMI             float64        `json:"avg_bmi" yaml:"avg_bmi"`
	AvgCharges         float64        `json:"avg_charges" yaml:"avg_charges"`
	StdCharges         float64        `json:"std_charges" yaml:"std_charges"`
	SmokerPercentage   float64        `json:"smoker_percentage" yaml:"smoker_percentage"`
	SexDistribution    map[string]int `json:"sex_distribution" yaml:"sex_distribution"`
	RegionDistribution map[string]int `json:"region_distribution" yaml:"region_distribution"`
}

// Describe computes summary statistics for t.
func Describe(t insurance.Table) *Stats {
	s := &Stats{
		TotalRecords:       len(t),
		SexDistribution:    make(map[string]int),
		RegionDistribution: make(map[string]int),
	}
	if len(t) == 0 {
		return s
	}

	ages := make([]float64, len(t))
	bmis := make([]float64, len(t))
	charges := make([]float64, len(t))
	smokers := 0
	for i, r := range t {
		ages[i] = float64(r.Age)
		bmis[i] = r.BMI
		charges[i] = r.Charges
		if r.Smoker == insurance.SmokerYes {
			smokers++
		}
		s.SexDistribution[r.Sex]++
		s.RegionDistribution[r.Region]++
	}

	s.AvgAge = stat.Mean(ages, nil)
	s.AvgBMI = stat.Mean(bmis, nil)
	s.AvgCharges, s.StdCharges = stat.MeanStdDev(charges, nil)
	if len(t) < 2 {
		s.StdCharges = 0
	}
	s.SmokerPercentage = float64(smokers) / float64(len(t)) * 100
	return s
}
