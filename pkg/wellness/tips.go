package wellness

const (
	TipsExercise  = "exercise"
	TipsNutrition = "nutrition"
	TipsSleep     = "sleep"
	TipsStress    = "stress"

	personalizedTipsLimit = 3
)

var tips = map[string][]string{
	TipsExercise: {
		"Aim for at least 150 minutes of moderate-intensity aerobic activity per week",
		"Include strength training exercises at least 2 days per week",
		"Take regular walking breaks throughout your workday",
		"Try low-impact activities like swimming or cycling if you have joint issues",
		"Include flexibility and balance exercises in your routine",
	},
	TipsNutrition: {
		"Fill half your plate with fruits and vegetables at each meal",
		"Choose whole grains over refined grains whenever possible",
		"Include lean proteins like fish, poultry, beans, and nuts",
		"Stay hydrated by drinking plenty of water throughout the day",
		"Limit processed foods high in sodium, sugar, and unhealthy fats",
	},
	TipsSleep: {
		"Maintain a consistent sleep schedule, even on weekends",
		"Avoid screens at least 1 hour before bedtime",
		"Keep your bedroom cool, dark, and quiet for optimal sleep",
		"Limit caffeine intake, especially in the afternoon and evening",
		"Create a relaxing bedtime routine to signal your body it's time to sleep",
	},
	TipsStress: {
		"Practice mindfulness meditation for just 10 minutes daily",
		"Use deep breathing exercises when feeling stressed",
		"Keep a gratitude journal to focus on positive aspects of life",
		"Maintain strong social connections with family and friends",
		"Practice time management to reduce daily stress triggers",
	},
}

var bmiTips = []string{
	"Consult with a healthcare provider about a healthy weight management plan",
	"Track your food intake and physical activity",
	"Focus on portion control and nutrient-dense foods",
}

var smokingTips = []string{
	"Speak with your doctor about smoking cessation programs",
	"Call a quitline for support and resources",
	"Consider nicotine replacement therapy or medications",
	"Join a support group for people quitting smoking",
}

var facts = []string{
	"People with higher wellness scores can save up to 20% on their insurance premiums",
	"Regular exercise can reduce healthcare costs by up to 25% annually",
	"Quitting smoking can lead to immediate health benefits and premium reductions",
	"Poor sleep quality is linked to increased healthcare utilization and costs",
	"Stress management programs can reduce medical expenses by 28%",
	"A healthy diet can prevent up to 80% of premature heart disease and stroke",
	"Maintaining a healthy BMI reduces the risk of chronic diseases significantly",
	"Just 30 minutes of daily activity can improve overall health markers",
}

// Tips returns a copy of the categorized tip catalog.
func Tips() map[string][]string {
	out := make(map[string][]string, len(tips))
	for k, v := range tips {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// PersonalizedTips returns tips for every factor in breakdown scoring below 15,
// keyed by the improvement area.
func PersonalizedTips(breakdown map[string]int) map[string][]string {
	out := make(map[string][]string)
	weak := func(f string) bool {
		v, ok := breakdown[f]
		return ok && v < suggestionThreshold
	}

	if weak(FactorBMI) {
		out["BMI Improvement"] = append([]string(nil), bmiTips...)
	}
	if weak(FactorExercise) {
		out["Exercise Improvement"] = append([]string(nil), tips[TipsExercise][:personalizedTipsLimit]...)
	}
	if weak(FactorDiet) {
		out["Nutrition Improvement"] = append([]string(nil), tips[TipsNutrition][:personalizedTipsLimit]...)
	}
	if weak(FactorSleep) {
		out["Sleep Improvement"] = append([]string(nil), tips[TipsSleep][:personalizedTipsLimit]...)
	}
	if weak(FactorStress) {
		out["Stress Management"] = append([]string(nil), tips[TipsStress][:personalizedTipsLimit]...)
	}
	if weak(FactorSmoking) {
		out["Smoking Cessation"] = append([]string(nil), smokingTips...)
	}
	return out
}

// Facts returns general wellness and premium facts.
func Facts() []string {
	return append([]string(nil), facts...)
}
