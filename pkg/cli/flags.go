package cli

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mchmarny/healsure/pkg/config"
	"github.com/mchmarny/healsure/pkg/data"
	"github.com/mchmarny/healsure/pkg/dataset"
	"github.com/mchmarny/healsure/pkg/insurance"
	"github.com/mchmarny/healsure/pkg/model"
	"github.com/mchmarny/healsure/pkg/wellness"
	urfave "github.com/urfave/cli/v2"
)

var (
	sourceFlag = &urfave.StringFlag{
		Name:  "source",
		Usage: fmt.Sprintf("Training data source [%s] (default: from config)", strings.Join(dataset.Sources, ", ")),
	}

	rowsFlag = &urfave.IntFlag{
		Name:  "rows",
		Usage: "Number of synthetic rows to generate (default: from config)",
	}

	dataSeedFlag = &urfave.Int64Flag{
		Name:  "data-seed",
		Usage: "Seed of the synthetic data generator (default: from config)",
	}

	pathFlag = &urfave.StringFlag{
		Name:  "path",
		Usage: "Path to a CSV file with age,sex,bmi,children,smoker,region,charges columns",
	}

	urlFlag = &urfave.StringFlag{
		Name:  "url",
		Usage: "URL of a CSV file with age,sex,bmi,children,smoker,region,charges columns",
	}

	datasetFlag = &urfave.StringFlag{
		Name:  "dataset",
		Usage: "Name of the stored dataset",
		Value: data.DatasetNameDefault,
	}

	sourceFlags = []urfave.Flag{sourceFlag, rowsFlag, dataSeedFlag, pathFlag, urlFlag, datasetFlag}

	treesFlag = &urfave.IntFlag{
		Name:  "trees",
		Usage: "Number of trees in the forest (default: from config)",
	}

	seedFlag = &urfave.Int64Flag{
		Name:  "seed",
		Usage: "Seed of the train/test split and bootstrap samples (default: from config)",
	}

	maxDepthFlag = &urfave.IntFlag{
		Name:  "max-depth",
		Usage: "Maximum tree depth, 0 for unbounded (default: from config)",
	}

	modelFlags = []urfave.Flag{treesFlag, seedFlag, maxDepthFlag}

	ageFlag = &urfave.IntFlag{
		Name:     "age",
		Usage:    fmt.Sprintf("Applicant age [%d-%d]", insurance.MinAge, insurance.MaxAge),
		Required: true,
	}

	sexFlag = &urfave.StringFlag{
		Name:     "sex",
		Usage:    fmt.Sprintf("Applicant sex [%s]", strings.Join(insurance.Sexes, ", ")),
		Required: true,
	}

	bmiFlag = &urfave.Float64Flag{
		Name:     "bmi",
		Usage:    fmt.Sprintf("Body mass index [%v-%v]", insurance.MinBMI, insurance.MaxBMI),
		Required: true,
	}

	childrenFlag = &urfave.IntFlag{
		Name:  "children",
		Usage: fmt.Sprintf("Number of dependents [%d-%d]", insurance.MinChildren, insurance.MaxChildren),
	}

	smokerFlag = &urfave.StringFlag{
		Name:  "smoker",
		Usage: fmt.Sprintf("Smoker [%s]", strings.Join(insurance.Smokers, ", ")),
		Value: insurance.SmokerNo,
	}

	regionFlag = &urfave.StringFlag{
		Name:     "region",
		Usage:    fmt.Sprintf("Region [%s]", strings.Join(insurance.Regions, ", ")),
		Required: true,
	}

	applicantFlags = []urfave.Flag{ageFlag, sexFlag, bmiFlag, childrenFlag, smokerFlag, regionFlag}

	exerciseFlag = &urfave.IntFlag{
		Name:  "exercise",
		Usage: fmt.Sprintf("Exercise days per week [%d-%d]", wellness.MinExercise, wellness.MaxExercise),
		Value: 3,
	}

	dietFlag = &urfave.StringFlag{
		Name:  "diet",
		Usage: fmt.Sprintf("Diet quality [%s]", strings.Join(wellness.Diets, ", ")),
		Value: wellness.DietGood,
	}

	sleepFlag = &urfave.IntFlag{
		Name:  "sleep",
		Usage: fmt.Sprintf("Sleep hours per night [%d-%d]", wellness.MinSleep, wellness.MaxSleep),
		Value: 7,
	}

	stressFlag = &urfave.IntFlag{
		Name:  "stress",
		Usage: fmt.Sprintf("Stress level [%d-%d]", wellness.MinStress, wellness.MaxStress),
		Value: 5,
	}

	wellnessBMIFlag = &urfave.Float64Flag{
		Name:  "wellness-bmi",
		Usage: "BMI used for the wellness score (default: --bmi)",
	}

	wellnessFlags = []urfave.Flag{exerciseFlag, dietFlag, sleepFlag, stressFlag}
)

func joinFlags(groups ...[]urfave.Flag) []urfave.Flag {
	var list []urfave.Flag
	for _, g := range groups {
		list = append(list, g...)
	}
	return list
}

func dataConfig(c *urfave.Context) config.DataConfig {
	dc := getConfig(c).Config.Data
	if c.IsSet(sourceFlag.Name) {
		dc.Source = strings.ToLower(c.String(sourceFlag.Name))
	}
	if c.IsSet(rowsFlag.Name) {
		dc.Rows = c.Int(rowsFlag.Name)
	}
	if c.IsSet(dataSeedFlag.Name) {
		dc.Seed = c.Int64(dataSeedFlag.Name)
	}
	if c.IsSet(pathFlag.Name) {
		dc.Path = c.String(pathFlag.Name)
		if !c.IsSet(sourceFlag.Name) {
			dc.Source = dataset.SourceCSV
		}
	}
	if c.IsSet(urlFlag.Name) {
		dc.URL = c.String(urlFlag.Name)
		if !c.IsSet(sourceFlag.Name) {
			dc.Source = dataset.SourceURL
		}
	}
	if c.IsSet(datasetFlag.Name) || dc.Dataset == "" {
		dc.Dataset = c.String(datasetFlag.Name)
	}
	return dc
}

// newSource builds the training table source described by dc.
func newSource(dc config.DataConfig, db *sql.DB) (dataset.Source, error) {
	switch dc.Source {
	case dataset.SourceSynthetic:
		return dataset.Synthetic{Rows: dc.Rows, Seed: dc.Seed}, nil
	case dataset.SourceCSV:
		if dc.Path == "" {
			return nil, fmt.Errorf("csv source requires a path")
		}
		return dataset.CSVFile{Path: dc.Path}, nil
	case dataset.SourceURL:
		if dc.URL == "" {
			return nil, fmt.Errorf("url source requires a url")
		}
		return dataset.Remote{URL: dc.URL}, nil
	case dataset.SourceDB:
		return data.TableSource{DB: db, Name: dc.Dataset}, nil
	default:
		return nil, fmt.Errorf("unknown data source %q, expected one of %v", dc.Source, dataset.Sources)
	}
}

func sourceFromFlags(c *urfave.Context) (dataset.Source, error) {
	return newSource(dataConfig(c), getConfig(c).DB)
}

func modelOptions(c *urfave.Context) model.Options {
	opts := getConfig(c).Config.Model
	if c.IsSet(treesFlag.Name) {
		opts.Trees = c.Int(treesFlag.Name)
	}
	if c.IsSet(seedFlag.Name) {
		opts.Seed = c.Int64(seedFlag.Name)
	}
	if c.IsSet(maxDepthFlag.Name) {
		opts.MaxDepth = c.Int(maxDepthFlag.Name)
	}
	return opts
}

func applicantFromFlags(c *urfave.Context) insurance.Applicant {
	return insurance.Applicant{
		Age:      c.Int(ageFlag.Name),
		Sex:      strings.ToLower(c.String(sexFlag.Name)),
		BMI:      c.Float64(bmiFlag.Name),
		Children: c.Int(childrenFlag.Name),
		Smoker:   strings.ToLower(c.String(smokerFlag.Name)),
		Region:   strings.ToLower(c.String(regionFlag.Name)),
	}
}

func wellnessFromFlags(c *urfave.Context) wellness.Inputs {
	bmi := c.Float64(bmiFlag.Name)
	if c.IsSet(wellnessBMIFlag.Name) {
		bmi = c.Float64(wellnessBMIFlag.Name)
	}
	return wellness.Inputs{
		BMI:          bmi,
		ExerciseFreq: c.Int(exerciseFlag.Name),
		Diet:         normalizeDiet(c.String(dietFlag.Name)),
		Smoker:       strings.ToLower(c.String(smokerFlag.Name)),
		SleepHours:   c.Int(sleepFlag.Name),
		StressLevel:  c.Int(stressFlag.Name),
	}
}

// normalizeDiet maps any casing of a diet level onto its canonical name.
func normalizeDiet(v string) string {
	for _, d := range wellness.Diets {
		if strings.EqualFold(d, v) {
			return d
		}
	}
	return v
}
