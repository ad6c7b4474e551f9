package dataset

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/mchmarny/healsure/pkg/insurance"
	"github.com/pkg/errors"
)

const (
	syntheticMinAge = 18
	syntheticMaxAge = 64
	chargesFloor    = 1000.0
)

var (
	childrenWeights = []float64{0.4, 0.25, 0.2, 0.1, 0.04, 0.01}
	smokerWeights   = []float64{0.8, 0.2}

	regionMultipliers = map[string]float64{
		insurance.RegionSouthwest: 0.95,
		insurance.RegionSoutheast: 1.05,
		insurance.RegionNorthwest: 0.98,
		insurance.RegionNortheast: 1.02,
	}
)

// Synthetic generates a reproducible table from a fixed cost model: charges
// grow with age, carry overweight, obesity and smoker multipliers, a per-child
// addition, small sex and region adjustments and ~15% multiplicative noise,
// floored at 1000.
type Synthetic struct {
	Rows int
	Seed int64
}

// TrainingTable generates s.Rows rows.
func (s Synthetic) TrainingTable(ctx context.Context) (insurance.Table, error) {
	if s.Rows < 0 {
		return nil, errors.Errorf("invalid number of rows: %d", s.Rows)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(uint64(s.Seed), uint64(s.Seed)))
	n := s.Rows

	ages := make([]int, n)
	for i := range ages {
		ages[i] = syntheticMinAge + rng.IntN(syntheticMaxAge-syntheticMinAge+1)
	}
	sexes := make([]string, n)
	for i := range sexes {
		sexes[i] = insurance.Sexes[rng.IntN(len(insurance.Sexes))]
	}
	bmis := make([]float64, n)
	for i := range bmis {
		v := 30 + rng.NormFloat64()*6
		bmis[i] = math.Round(clamp(v, insurance.MinBMI, insurance.MaxBMI)*10) / 10
	}
	children := make([]int, n)
	for i := range children {
		children[i] = weightedChoice(rng, childrenWeights)
	}
	smokers := make([]string, n)
	for i := range smokers {
		smokers[i] = insurance.Smokers[weightedChoice(rng, smokerWeights)]
	}
	regions := make([]string, n)
	for i := range regions {
		regions[i] = insurance.Regions[rng.IntN(len(insurance.Regions))]
	}

	table := make(insurance.Table, n)
	for i := 0; i < n; i++ {
		a := insurance.Applicant{
			Age:      ages[i],
			Sex:      sexes[i],
			BMI:      bmis[i],
			Children: children[i],
			Smoker:   smokers[i],
			Region:   regions[i],
		}
		table[i] = insurance.Row{
			Applicant: a,
			Charges:   Charges(a, 1+rng.NormFloat64()*0.15),
		}
	}
	return table, nil
}

// Charges applies the cost model to a with the given noise multiplier.
func Charges(a insurance.Applicant, noise float64) float64 {
	c := 1000 + float64(a.Age)*250

	switch {
	case a.BMI >= 30:
		c *= 1.5
	case a.BMI >= 25:
		c *= 1.2
	}

	if a.Smoker == insurance.SmokerYes {
		c *= 2.5
	}

	c += float64(a.Children) * 500

	if a.Sex == insurance.SexMale {
		c *= 1.05
	}

	if m, ok := regionMultipliers[a.Region]; ok {
		c *= m
	}

	c *= noise
	c = max(c, chargesFloor)
	return math.Round(c*100) / 100
}

func weightedChoice(rng *rand.Rand, weights []float64) int {
	r := rng.Float64()
	var acc float64
	for i, w := range weights {
		acc += w
		if r < acc {
			return i
		}
	}
	return len(weights) - 1
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
