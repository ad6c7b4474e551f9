package cli

import (
	"fmt"
	"log/slog"

	"github.com/mchmarny/healsure/pkg/data"
	urfave "github.com/urfave/cli/v2"
)

var (
	limitFlag = &urfave.IntFlag{
		Name:  "limit",
		Usage: "Maximum number of quotes to return",
		Value: data.QuoteLimitDefault,
	}

	historyCmd = &urfave.Command{
		Name:    "history",
		Aliases: []string{"h"},
		Usage:   "Inspect the recorded premium quotes",
		Subcommands: []*urfave.Command{
			{
				Name:   "list",
				Usage:  "List recorded quotes, newest first",
				Action: cmdHistoryList,
				Flags:  []urfave.Flag{limitFlag},
			},
			{
				Name:   "summary",
				Usage:  "Print averages and total savings of the recorded quotes",
				Action: cmdHistorySummary,
			},
			{
				Name:   "clear",
				Usage:  "Delete all recorded quotes",
				Action: cmdHistoryClear,
			},
		},
	}
)

func cmdHistoryList(c *urfave.Context) error {
	list, err := data.GetQuotes(getConfig(c).DB, c.Int(limitFlag.Name))
	if err != nil {
		return fmt.Errorf("listing quotes: %w", err)
	}
	return encode(c, list)
}

func cmdHistorySummary(c *urfave.Context) error {
	s, err := data.GetQuoteSummary(getConfig(c).DB)
	if err != nil {
		return fmt.Errorf("summarizing quotes: %w", err)
	}
	return encode(c, s)
}

func cmdHistoryClear(c *urfave.Context) error {
	n, err := data.DeleteQuotes(getConfig(c).DB)
	if err != nil {
		return fmt.Errorf("clearing quotes: %w", err)
	}
	slog.Info("history cleared", "quotes", n)
	return nil
}
