package cli

import (
	"fmt"
	"log/slog"

	"github.com/mchmarny/healsure/pkg/data"
	"github.com/mchmarny/healsure/pkg/premium"
	urfave "github.com/urfave/cli/v2"
)

const cliSessionID = "cli"

var (
	noSaveFlag = &urfave.BoolFlag{
		Name:  "no-save",
		Usage: "Do not record the quote in the history",
	}

	quoteCmd = &urfave.Command{
		Name:    "quote",
		Aliases: []string{"q"},
		Usage:   "Estimate the annual premium with the wellness discount applied",
		UsageText: `healsure quote --age 35 --sex male --bmi 25 --region northeast
   healsure quote --age 52 --sex female --bmi 31.2 --children 2 --smoker yes --region southeast \
     --exercise 1 --diet Poor --sleep 6 --stress 8`,
		Action: cmdQuote,
		Flags:  joinFlags(applicantFlags, wellnessFlags, []urfave.Flag{wellnessBMIFlag, noSaveFlag}, sourceFlags, modelFlags),
	}
)

func cmdQuote(c *urfave.Context) error {
	a := applicantFromFlags(c)
	in := wellnessFromFlags(c)

	// fail on bad input before paying for training
	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid applicant: %w", err)
	}
	if err := in.Validate(); err != nil {
		return fmt.Errorf("invalid wellness inputs: %w", err)
	}

	src, err := sourceFromFlags(c)
	if err != nil {
		return err
	}

	st, _, err := trainFrom(c, src)
	if err != nil {
		return err
	}

	q, err := premium.NewEstimator(st).Estimate(a, in)
	if err != nil {
		return fmt.Errorf("estimating premium: %w", err)
	}

	if !c.Bool(noSaveFlag.Name) {
		if err := data.SaveQuote(getConfig(c).DB, cliSessionID, q); err != nil {
			return fmt.Errorf("saving quote: %w", err)
		}
		slog.Debug("quote saved", "id", q.ID)
	}

	if err := encode(c, q); err != nil {
		return fmt.Errorf("encoding quote: %w", err)
	}
	return nil
}
