package model

import (
	"context"
	"sync"
	"testing"

	"github.com/mchmarny/healsure/pkg/dataset"
	"github.com/mchmarny/healsure/pkg/insurance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictor_Untrained(t *testing.T) {
	p := NewPredictor(testOptions())
	assert.False(t, p.Trained())

	_, err := p.Predict(testApplicant())
	assert.ErrorIs(t, err, insurance.ErrUntrainedModel)

	_, err = p.Metrics()
	assert.ErrorIs(t, err, insurance.ErrUntrainedModel)

	_, err = p.State()
	assert.ErrorIs(t, err, insurance.ErrUntrainedModel)

	assert.Empty(t, p.FeatureImportance())
	assert.NotNil(t, p.FeatureImportance())
}

func TestPredictor_TrainAndPredict(t *testing.T) {
	p := NewPredictor(testOptions())
	s, err := p.Train(context.Background(), testTable(t))
	require.NoError(t, err)
	assert.True(t, p.Trained())
	assert.False(t, s.TrainedAt().IsZero())
	assert.Equal(t, testOptions(), s.Options())

	v, err := p.Predict(testApplicant())
	require.NoError(t, err)
	assert.Greater(t, v, 1000.0)

	m, err := p.Metrics()
	require.NoError(t, err)
	assert.Equal(t, s.Metrics(), m)
	assert.Len(t, p.FeatureImportance(), 6)
}

func TestPredictor_FailedRetrainKeepsState(t *testing.T) {
	p := NewPredictor(testOptions())
	first, err := p.Train(context.Background(), testTable(t))
	require.NoError(t, err)

	before, err := p.Predict(testApplicant())
	require.NoError(t, err)

	_, err = p.Train(context.Background(), insurance.Table{})
	assert.ErrorIs(t, err, insurance.ErrEmptyTrainingSet)

	current, err := p.State()
	require.NoError(t, err)
	assert.Same(t, first, current)

	after, err := p.Predict(testApplicant())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPredictor_RetrainSwapsWholeState(t *testing.T) {
	ctx := context.Background()
	p := NewPredictor(testOptions())
	first, err := p.Train(ctx, testTable(t))
	require.NoError(t, err)

	// a table without the northeast region yields a new encoder generation
	small, err := dataset.Synthetic{Rows: 200, Seed: 9}.TrainingTable(ctx)
	require.NoError(t, err)
	filtered := make(insurance.Table, 0, len(small))
	for _, r := range small {
		if r.Region != insurance.RegionNortheast {
			filtered = append(filtered, r)
		}
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			s, err := p.State()
			if err != nil {
				t.Error(err)
				return
			}
			enc, _ := s.Encoder(FeatureRegion)
			// the metrics and encoders always come from the same training run
			if s == first {
				assert.Equal(t, 4, enc.Len())
			} else {
				assert.Equal(t, 3, enc.Len())
				assert.Equal(t, len(filtered)-s.Metrics().TestRows, s.Metrics().TrainRows)
			}
		}
	}()

	second, err := p.Train(ctx, filtered)
	close(stop)
	wg.Wait()
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	_, err = p.Predict(testApplicant())
	assert.ErrorIs(t, err, insurance.ErrUnknownCategory)
}
