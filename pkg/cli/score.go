package cli

import (
	"fmt"

	"github.com/mchmarny/healsure/pkg/wellness"
	urfave "github.com/urfave/cli/v2"
)

var scoreCmd = &urfave.Command{
	Name:      "score",
	Aliases:   []string{"s"},
	Usage:     "Compute the wellness score, discount tier and suggestions",
	UsageText: `healsure score --bmi 22.5 --exercise 4 --diet Good --sleep 8 --stress 3`,
	Action:    cmdScore,
	Flags:     joinFlags([]urfave.Flag{bmiFlag, smokerFlag}, wellnessFlags),
}

func cmdScore(c *urfave.Context) error {
	a, err := wellness.Assess(wellnessFromFlags(c))
	if err != nil {
		return fmt.Errorf("scoring: %w", err)
	}

	if err := encode(c, a); err != nil {
		return fmt.Errorf("encoding score: %w", err)
	}
	return nil
}
