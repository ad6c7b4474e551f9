// Package wellness converts lifestyle metrics into a 0-100 wellness score and
// a tiered premium discount. All functions are pure.
package wellness

import (
	"fmt"
	"math"

	"github.com/mchmarny/healsure/pkg/insurance"
)

const (
	DietPoor      = "Poor"
	DietFair      = "Fair"
	DietGood      = "Good"
	DietExcellent = "Excellent"

	MaxSubScore = 20

	MinExercise = 0
	MaxExercise = 7
	MinSleep    = 4
	MaxSleep    = 12
	MinStress   = 1
	MaxStress   = 10

	// scale maps the weighted [0,20] average onto [0,100].
	scale = 5
)

const (
	FactorBMI      = "BMI"
	FactorExercise = "Exercise"
	FactorDiet     = "Diet"
	FactorSmoking  = "Smoking"
	FactorSleep    = "Sleep"
	FactorStress   = "Stress"
)

var (
	Diets = []string{DietPoor, DietFair, DietGood, DietExcellent}

	// Factors lists the sub-scores in weight order.
	Factors = []string{FactorBMI, FactorExercise, FactorDiet, FactorSmoking, FactorSleep, FactorStress}

	// Weights sum to 1.0.
	Weights = map[string]float64{
		FactorBMI:      0.25,
		FactorExercise: 0.25,
		FactorDiet:     0.20,
		FactorSmoking:  0.15,
		FactorSleep:    0.10,
		FactorStress:   0.05,
	}

	dietScores = map[string]int{
		DietExcellent: 20,
		DietGood:      15,
		DietFair:      10,
		DietPoor:      0,
	}
)

// Inputs are the lifestyle metrics a score is computed from.
type Inputs struct {
	BMI          float64 `json:"bmi" yaml:"bmi"`
	ExerciseFreq int     `json:"exercise_freq" yaml:"exercise_freq"`
	Diet         string  `json:"diet_quality" yaml:"diet_quality"`
	Smoker       string  `json:"smoker" yaml:"smoker"`
	SleepHours   int     `json:"sleep_hours" yaml:"sleep_hours"`
	StressLevel  int     `json:"stress_level" yaml:"stress_level"`
}

// Validate rejects values outside their declared domains.
func (in Inputs) Validate() error {
	if math.IsNaN(in.BMI) || math.IsInf(in.BMI, 0) || in.BMI < insurance.MinBMI || in.BMI > insurance.MaxBMI {
		return fmt.Errorf("%w: bmi %.1f not in [%.0f,%.0f]", insurance.ErrInvalidInputRange, in.BMI, insurance.MinBMI, insurance.MaxBMI)
	}
	if in.ExerciseFreq < MinExercise || in.ExerciseFreq > MaxExercise {
		return fmt.Errorf("%w: exercise frequency %d not in [%d,%d]", insurance.ErrInvalidInputRange, in.ExerciseFreq, MinExercise, MaxExercise)
	}
	if !insurance.Contains(Diets, in.Diet) {
		return fmt.Errorf("%w: diet quality %q", insurance.ErrInvalidInputRange, in.Diet)
	}
	if !insurance.Contains(insurance.Smokers, in.Smoker) {
		return fmt.Errorf("%w: smoker %q", insurance.ErrInvalidInputRange, in.Smoker)
	}
	if in.SleepHours < MinSleep || in.SleepHours > MaxSleep {
		return fmt.Errorf("%w: sleep hours %d not in [%d,%d]", insurance.ErrInvalidInputRange, in.SleepHours, MinSleep, MaxSleep)
	}
	if in.StressLevel < MinStress || in.StressLevel > MaxStress {
		return fmt.Errorf("%w: stress level %d not in [%d,%d]", insurance.ErrInvalidInputRange, in.StressLevel, MinStress, MaxStress)
	}
	return nil
}

// BMIScore rewards the 18.5-24.9 band.
func BMIScore(bmi float64) int {
	switch {
	case bmi >= 18.5 && bmi <= 24.9:
		return 20
	case bmi >= 25.0 && bmi <= 29.9:
		return 15
	case bmi >= 30.0 && bmi <= 34.9:
		return 10
	case bmi >= 35.0 && bmi <= 39.9:
		return 5
	default:
		return 0
	}
}

// ExerciseScore scores days of exercise per week.
func ExerciseScore(days int) int {
	switch {
	case days >= 5:
		return 20
	case days >= 4:
		return 16
	case days >= 3:
		return 12
	case days >= 2:
		return 8
	case days >= 1:
		return 4
	default:
		return 0
	}
}

// DietScore returns 0 for unknown labels.
func DietScore(quality string) int {
	return dietScores[quality]
}

func SmokingScore(smoker string) int {
	if smoker == insurance.SmokerYes {
		return 0
	}
	return 20
}

// SleepScore rewards 7-9 hours a night.
func SleepScore(hours int) int {
	switch {
	case hours >= 7 && hours <= 9:
		return 20
	case hours >= 6 && hours < 7, hours > 9 && hours <= 10:
		return 15
	case hours >= 5 && hours < 6, hours > 10 && hours <= 11:
		return 10
	default:
		return 5
	}
}

// StressScore inverts the 1-10 stress scale.
func StressScore(level int) int {
	switch {
	case level <= 3:
		return 20
	case level <= 5:
		return 15
	case level <= 7:
		return 10
	case level <= 8:
		return 5
	default:
		return 0
	}
}

// Breakdown returns every sub-score keyed by factor name.
func Breakdown(in Inputs) map[string]int {
	return map[string]int{
		FactorBMI:      BMIScore(in.BMI),
		FactorExercise: ExerciseScore(in.ExerciseFreq),
		FactorDiet:     DietScore(in.Diet),
		FactorSmoking:  SmokingScore(in.Smoker),
		FactorSleep:    SleepScore(in.SleepHours),
		FactorStress:   StressScore(in.StressLevel),
	}
}

// Composite is the weighted sum of the sub-scores rescaled to [0,100].
func Composite(in Inputs) float64 {
	b := Breakdown(in)
	var total float64
	for _, f := range Factors {
		total += float64(b[f]) * Weights[f]
	}
	return total * scale
}

// Score is the composite rounded to one decimal place.
func Score(in Inputs) float64 {
	return round1(Composite(in))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
