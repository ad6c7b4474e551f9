package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mchmarny/healsure/pkg/data"
	"github.com/mchmarny/healsure/pkg/dataset"
	urfave "github.com/urfave/cli/v2"
)

var (
	nameFlag = &urfave.StringFlag{
		Name:  "name",
		Usage: "Name of the stored dataset",
		Value: data.DatasetNameDefault,
	}

	outFlag = &urfave.StringFlag{
		Name:  "out",
		Usage: "Output CSV file (default: stdout)",
	}

	datasetCmd = &urfave.Command{
		Name:    "dataset",
		Aliases: []string{"d"},
		Usage:   "Manage training datasets",
		Subcommands: []*urfave.Command{
			{
				Name:      "generate",
				Usage:     "Generate a synthetic dataset and store it",
				UsageText: "healsure dataset generate --name demo --rows 5000 --data-seed 7",
				Action:    cmdDatasetGenerate,
				Flags:     []urfave.Flag{nameFlag, rowsFlag, dataSeedFlag},
			},
			{
				Name:      "import",
				Usage:     "Import a CSV dataset from a file or URL and store it",
				UsageText: "healsure dataset import --name real --path insurance.csv",
				Action:    cmdDatasetImport,
				Flags:     []urfave.Flag{nameFlag, pathFlag, urlFlag},
			},
			{
				Name:   "export",
				Usage:  "Export a stored dataset as CSV",
				Action: cmdDatasetExport,
				Flags:  []urfave.Flag{nameFlag, outFlag},
			},
			{
				Name:   "stats",
				Usage:  "Print summary statistics of the training source",
				Action: cmdDatasetStats,
				Flags:  sourceFlags,
			},
			{
				Name:   "list",
				Usage:  "List stored datasets",
				Action: cmdDatasetList,
			},
			{
				Name:   "delete",
				Usage:  "Delete a stored dataset",
				Action: cmdDatasetDelete,
				Flags:  []urfave.Flag{nameFlag},
			},
		},
	}
)

func cmdDatasetGenerate(c *urfave.Context) error {
	dc := getConfig(c).Config.Data
	if c.IsSet(rowsFlag.Name) {
		dc.Rows = c.Int(rowsFlag.Name)
	}
	if c.IsSet(dataSeedFlag.Name) {
		dc.Seed = c.Int64(dataSeedFlag.Name)
	}
	dc.Source = dataset.SourceSynthetic
	return storeDataset(c, dc.Source, dataset.Synthetic{Rows: dc.Rows, Seed: dc.Seed})
}

func cmdDatasetImport(c *urfave.Context) error {
	var src dataset.Source
	kind := dataset.SourceCSV
	switch {
	case c.String(pathFlag.Name) != "":
		src = dataset.CSVFile{Path: c.String(pathFlag.Name)}
	case c.String(urlFlag.Name) != "":
		src = dataset.Remote{URL: c.String(urlFlag.Name)}
		kind = dataset.SourceURL
	default:
		return fmt.Errorf("either --%s or --%s is required", pathFlag.Name, urlFlag.Name)
	}
	return storeDataset(c, kind, src)
}

func storeDataset(c *urfave.Context, kind string, src dataset.Source) error {
	name := c.String(nameFlag.Name)
	table, err := src.TrainingTable(c.Context)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}

	if err := data.SaveDataset(getConfig(c).DB, name, kind, table); err != nil {
		return fmt.Errorf("saving dataset: %w", err)
	}
	slog.Info("dataset saved", "name", name, "rows", len(table))

	return encode(c, &data.Dataset{Name: name, Source: kind, Rows: int64(len(table))})
}

func cmdDatasetExport(c *urfave.Context) error {
	name := c.String(nameFlag.Name)
	table, err := data.GetDataset(getConfig(c).DB, name)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	if len(table) == 0 {
		return fmt.Errorf("dataset %q not found or empty", name)
	}

	w := c.App.Writer
	if p := c.String(outFlag.Name); p != "" {
		f, err := os.Create(p)
		if err != nil {
			return fmt.Errorf("creating %s: %w", p, err)
		}
		defer f.Close()
		w = f
	}

	if err := dataset.WriteCSV(w, table); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func cmdDatasetStats(c *urfave.Context) error {
	src, err := sourceFromFlags(c)
	if err != nil {
		return err
	}
	table, err := src.TrainingTable(c.Context)
	if err != nil {
		return fmt.Errorf("loading training table: %w", err)
	}
	return encode(c, dataset.Describe(table))
}

func cmdDatasetList(c *urfave.Context) error {
	list, err := data.GetDatasets(getConfig(c).DB)
	if err != nil {
		return fmt.Errorf("listing datasets: %w", err)
	}
	return encode(c, list)
}

func cmdDatasetDelete(c *urfave.Context) error {
	name := c.String(nameFlag.Name)
	if err := data.DeleteDataset(getConfig(c).DB, name); err != nil {
		return fmt.Errorf("deleting dataset: %w", err)
	}
	slog.Info("dataset deleted", "name", name)
	return nil
}
