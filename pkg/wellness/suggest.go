package wellness

import "github.com/mchmarny/healsure/pkg/insurance"

// suggestionThreshold is the sub-score below which a factor gets a suggestion.
const suggestionThreshold = 15

var suggestions = map[string]string{
	FactorBMI:      "Consider maintaining a healthy BMI between 18.5-24.9",
	FactorExercise: "Increase exercise frequency to at least 4-5 days per week",
	FactorDiet:     "Improve diet quality by eating more fruits, vegetables, and whole grains",
	FactorSmoking:  "Consider quitting smoking for significant health and premium benefits",
	FactorSleep:    "Aim for 7-9 hours of quality sleep per night",
	FactorStress:   "Practice stress management techniques like meditation or yoga",
}

// Suggestions returns one improvement suggestion per weak factor, in factor
// order. Smoking is driven by the raw flag rather than its sub-score.
func Suggestions(in Inputs) []string {
	b := Breakdown(in)
	list := make([]string, 0)
	for _, f := range Factors {
		weak := b[f] < suggestionThreshold
		if f == FactorSmoking {
			weak = in.Smoker == insurance.SmokerYes
		}
		if weak {
			list = append(list, suggestions[f])
		}
	}
	return list
}
