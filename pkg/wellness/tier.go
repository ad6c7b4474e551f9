package wellness

// Tier maps an inclusive integer score range to a discount percentage.
type Tier struct {
	Min      int     `json:"min" yaml:"min"`
	Max      int     `json:"max" yaml:"max"`
	Discount float64 `json:"discount" yaml:"discount"`
}

// Tiers partition [0,100], checked in order.
var Tiers = []Tier{
	{Min: 90, Max: 100, Discount: 20},
	{Min: 80, Max: 89, Discount: 15},
	{Min: 70, Max: 79, Discount: 10},
	{Min: 60, Max: 69, Discount: 5},
	{Min: 0, Max: 59, Discount: 0},
}

// Contains reports whether score falls in the inclusive [Min, Max] range.
// Scores produced by Score never fall between two tiers.
func (t Tier) Contains(score float64) bool {
	return score >= float64(t.Min) && score <= float64(t.Max)
}

// TierFor returns the first tier containing score.
func TierFor(score float64) (Tier, bool) {
	for _, t := range Tiers {
		if t.Contains(score) {
			return t, true
		}
	}
	return Tier{}, false
}

// Discount returns the discount percentage for score, 0 when no tier matches.
func Discount(score float64) float64 {
	t, ok := TierFor(score)
	if !ok {
		return 0
	}
	return t.Discount
}
