package model

import (
	"context"
	"sync/atomic"

	"github.com/mchmarny/healsure/pkg/insurance"
	"github.com/pkg/errors"
)

// Predictor is a handle to the current trained State. Training builds a
// complete new State and publishes it with a single pointer swap, so readers
// never observe a forest from one training run with encoders or metrics from
// another. A failed training leaves the previous State in place.
type Predictor struct {
	opts  Options
	state atomic.Pointer[State]
}

// NewPredictor creates an untrained predictor.
func NewPredictor(opts Options) *Predictor {
	return &Predictor{opts: opts}
}

// Train fits a new State on table and swaps it in.
func (p *Predictor) Train(ctx context.Context, table insurance.Table) (*State, error) {
	s, err := Train(ctx, table, p.opts)
	if err != nil {
		return nil, err
	}
	p.state.Store(s)
	return s, nil
}

// State returns the current State or ErrUntrainedModel.
func (p *Predictor) State() (*State, error) {
	s := p.state.Load()
	if s == nil {
		return nil, errors.WithStack(insurance.ErrUntrainedModel)
	}
	return s, nil
}

// Trained reports whether a State is available.
func (p *Predictor) Trained() bool {
	return p.state.Load() != nil
}

// Predict delegates to the current State.
func (p *Predictor) Predict(a insurance.Applicant) (float64, error) {
	s, err := p.State()
	if err != nil {
		return 0, err
	}
	return s.Predict(a)
}

// FeatureImportance returns an empty list when untrained.
func (p *Predictor) FeatureImportance() []Importance {
	s := p.state.Load()
	if s == nil {
		return []Importance{}
	}
	return s.FeatureImportance()
}

// Metrics returns the current holdout metrics or ErrUntrainedModel.
func (p *Predictor) Metrics() (Metrics, error) {
	s, err := p.State()
	if err != nil {
		return Metrics{}, err
	}
	return s.Metrics(), nil
}
