package cli

import (
	"fmt"
	"strings"

	"github.com/mchmarny/healsure/pkg/wellness"
	urfave "github.com/urfave/cli/v2"
)

var (
	categoryFlag = &urfave.StringFlag{
		Name:  "category",
		Usage: fmt.Sprintf("Tip category [%s]", strings.Join(tipCategories(), ", ")),
	}

	personalizedFlag = &urfave.BoolFlag{
		Name:  "personalized",
		Usage: "Only tips for the areas the wellness inputs score low on (requires --bmi)",
	}

	tipsBMIFlag = &urfave.Float64Flag{
		Name:  "bmi",
		Usage: "Body mass index, used with --personalized",
	}

	tipsCmd = &urfave.Command{
		Name:   "tips",
		Usage:  "Print health tips and wellness facts",
		Action: cmdTips,
		Flags:  joinFlags([]urfave.Flag{categoryFlag, personalizedFlag, tipsBMIFlag, smokerFlag}, wellnessFlags),
	}
)

// TipsResult is the tips catalog, filtered or personalized.
type TipsResult struct {
	Tips  map[string][]string `json:"tips" yaml:"tips"`
	Facts []string            `json:"facts,omitempty" yaml:"facts,omitempty"`
}

func tipCategories() []string {
	return []string{wellness.TipsExercise, wellness.TipsNutrition, wellness.TipsSleep, wellness.TipsStress}
}

func cmdTips(c *urfave.Context) error {
	var res *TipsResult

	if c.Bool(personalizedFlag.Name) {
		in := wellnessFromFlags(c)
		in.BMI = c.Float64(tipsBMIFlag.Name)
		if err := in.Validate(); err != nil {
			return fmt.Errorf("invalid wellness inputs: %w", err)
		}
		res = &TipsResult{Tips: wellness.PersonalizedTips(wellness.Breakdown(in))}
	} else {
		var err error
		if res, err = catalogTips(c.String(categoryFlag.Name)); err != nil {
			return err
		}
	}

	if err := encode(c, res); err != nil {
		return fmt.Errorf("encoding tips: %w", err)
	}
	return nil
}

// catalogTips returns all tips with the facts, or a single category.
func catalogTips(category string) (*TipsResult, error) {
	all := wellness.Tips()
	if category == "" {
		return &TipsResult{Tips: all, Facts: wellness.Facts()}, nil
	}

	category = strings.ToLower(category)
	list, ok := all[category]
	if !ok {
		return nil, fmt.Errorf("unknown tip category %q, expected one of %v", category, tipCategories())
	}
	return &TipsResult{Tips: map[string][]string{category: list}}, nil
}
