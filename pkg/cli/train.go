package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mchmarny/healsure/pkg/dataset"
	"github.com/mchmarny/healsure/pkg/insurance"
	"github.com/mchmarny/healsure/pkg/model"
	urfave "github.com/urfave/cli/v2"
)

var trainCmd = &urfave.Command{
	Name:    "train",
	Aliases: []string{"t"},
	Usage:   "Train the premium model and print holdout metrics and feature importance",
	UsageText: `healsure train                              # train on the configured source
   healsure train --trees 50 --seed 7          # override model options
   healsure train --path insurance.csv         # train on a local CSV file
   healsure train --source db --dataset demo   # train on a stored dataset`,
	Action: cmdTrain,
	Flags:  joinFlags(sourceFlags, modelFlags),
}

// TrainResult summarizes a training run.
type TrainResult struct {
	Rows       int                `json:"rows" yaml:"rows"`
	Options    model.Options      `json:"options" yaml:"options"`
	Metrics    model.Metrics      `json:"metrics" yaml:"metrics"`
	Importance []model.Importance `json:"importance" yaml:"importance"`
	TrainedAt  time.Time          `json:"trained_at" yaml:"trained_at"`
	Duration   string             `json:"duration" yaml:"duration"`
}

func cmdTrain(c *urfave.Context) error {
	src, err := sourceFromFlags(c)
	if err != nil {
		return err
	}

	start := time.Now()
	st, table, err := trainFrom(c, src)
	if err != nil {
		return err
	}

	res := &TrainResult{
		Rows:       len(table),
		Options:    st.Options(),
		Metrics:    st.Metrics(),
		Importance: st.FeatureImportance(),
		TrainedAt:  st.TrainedAt(),
		Duration:   time.Since(start).Round(time.Millisecond).String(),
	}

	if err := encode(c, res); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

func trainFrom(c *urfave.Context, src dataset.Source) (*model.State, insurance.Table, error) {
	table, err := src.TrainingTable(c.Context)
	if err != nil {
		return nil, nil, fmt.Errorf("loading training table: %w", err)
	}

	opts := modelOptions(c)
	slog.Debug("training", "rows", len(table), "trees", opts.Trees, "seed", opts.Seed)

	st, err := model.Train(c.Context, table, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("training model: %w", err)
	}
	return st, table, nil
}
