// Package premium combines the predicted base premium with the wellness
// discount. It is the only place the two engines meet.
package premium

import (
	"time"

	"github.com/google/uuid"
	"github.com/mchmarny/healsure/pkg/insurance"
	"github.com/mchmarny/healsure/pkg/wellness"
	"github.com/pkg/errors"
)

// Quote is a discounted premium with the inputs it was computed from.
type Quote struct {
	ID                 string              `json:"id" yaml:"id"`
	CreatedAt          time.Time           `json:"created_at" yaml:"created_at"`
	Applicant          insurance.Applicant `json:"applicant" yaml:"applicant"`
	Wellness           wellness.Inputs     `json:"wellness" yaml:"wellness"`
	BasePremium        float64             `json:"base_premium" yaml:"base_premium"`
	WellnessScore      float64             `json:"wellness_score" yaml:"wellness_score"`
	DiscountPercentage float64             `json:"discount_percentage" yaml:"discount_percentage"`
	DiscountAmount     float64             `json:"discount_amount" yaml:"discount_amount"`
	FinalPremium       float64             `json:"final_premium" yaml:"final_premium"`
	Breakdown          map[string]int      `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`
	Suggestions        []string            `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// Composition is the result of applying a discount to a base premium.
type Composition struct {
	BasePremium        float64 `json:"base_premium" yaml:"base_premium"`
	DiscountPercentage float64 `json:"discount_percentage" yaml:"discount_percentage"`
	DiscountAmount     float64 `json:"discount_amount" yaml:"discount_amount"`
	FinalPremium       float64 `json:"final_premium" yaml:"final_premium"`
}

// Compose applies discountPct to base without rounding.
func Compose(base, discountPct float64) Composition {
	return Composition{
		BasePremium:        base,
		DiscountPercentage: discountPct,
		DiscountAmount:     base * discountPct / 100,
		FinalPremium:       base * (1 - discountPct/100),
	}
}

// BasePredictor produces the undiscounted premium for an applicant.
type BasePredictor interface {
	Predict(a insurance.Applicant) (float64, error)
}

// Estimator produces quotes from a base predictor and the wellness scorer.
type Estimator struct {
	predictor BasePredictor
	now       func() time.Time
}

// NewEstimator creates an estimator backed by p.
func NewEstimator(p BasePredictor) *Estimator {
	return &Estimator{
		predictor: p,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Estimate validates both inputs, predicts the base premium, scores the
// wellness inputs and composes the final quote.
func (e *Estimator) Estimate(a insurance.Applicant, in wellness.Inputs) (*Quote, error) {
	if e.predictor == nil {
		return nil, errors.WithStack(insurance.ErrUntrainedModel)
	}
	if err := a.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid applicant")
	}
	if err := in.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid wellness inputs")
	}

	base, err := e.predictor.Predict(a)
	if err != nil {
		return nil, errors.Wrap(err, "error predicting base premium")
	}

	score := wellness.Score(in)
	c := Compose(base, wellness.Discount(score))

	return &Quote{
		ID:                 uuid.NewString(),
		CreatedAt:          e.now(),
		Applicant:          a,
		Wellness:           in,
		BasePremium:        c.BasePremium,
		WellnessScore:      score,
		DiscountPercentage: c.DiscountPercentage,
		DiscountAmount:     c.DiscountAmount,
		FinalPremium:       c.FinalPremium,
		Breakdown:          wellness.Breakdown(in),
		Suggestions:        wellness.Suggestions(in),
	}, nil
}
