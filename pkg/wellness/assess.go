package wellness

// Assessment is the full scoring result for one set of inputs.
type Assessment struct {
	Inputs      Inputs         `json:"inputs" yaml:"inputs"`
	Score       float64        `json:"score" yaml:"score"`
	Composite   float64        `json:"composite" yaml:"composite"`
	Discount    float64        `json:"discount_percentage" yaml:"discount_percentage"`
	Tier        *Tier          `json:"tier,omitempty" yaml:"tier,omitempty"`
	Breakdown   map[string]int `json:"breakdown" yaml:"breakdown"`
	Suggestions []string       `json:"suggestions" yaml:"suggestions"`
}

// Assess validates in and scores it.
func Assess(in Inputs) (*Assessment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	score := Score(in)
	a := &Assessment{
		Inputs:      in,
		Score:       score,
		Composite:   Composite(in),
		Discount:    Discount(score),
		Breakdown:   Breakdown(in),
		Suggestions: Suggestions(in),
	}
	if t, ok := TierFor(score); ok {
		a.Tier = &t
	}
	return a, nil
}
