package cli

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mchmarny/healsure/pkg/config"
	"github.com/mchmarny/healsure/pkg/data"
	"github.com/mchmarny/healsure/pkg/logging"
	urfave "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const (
	appName      = "healsure"
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	logLevelFlag = &urfave.StringFlag{
		Name:  "log-level",
		Usage: "Log level [debug, info, warn, error]",
		Value: "info",
	}

	dbFilePathFlag = &urfave.StringFlag{
		Name:  "db",
		Usage: "Path to the Sqlite database file",
	}

	configFlag = &urfave.StringFlag{
		Name:  "config",
		Usage: fmt.Sprintf("Path to the config file (default: ~/.%s/%s)", appName, config.FileName),
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	HomeDir string
	DBPath  string
	Debug   bool
	Format  string
	DB      *sql.DB
	Config  *config.Config
}

func getConfig(c *urfave.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.App {
	return &urfave.App{
		Name:                 appName,
		Version:              fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "Health insurance premium estimates with wellness discounts",
		Flags: []urfave.Flag{
			debugFlag,
			logLevelFlag,
			dbFilePathFlag,
			configFlag,
			formatFlag,
		},
		Commands: []*urfave.Command{
			trainCmd,
			quoteCmd,
			scoreCmd,
			tipsCmd,
			datasetCmd,
			historyCmd,
			serverCmd,
			resetCmd,
		},
		Before: setup,
		After: func(c *urfave.Context) error {
			if cfg, ok := c.App.Metadata[appConfigKey].(*appConfig); ok && cfg.DB != nil {
				cfg.DB.Close()
			}
			return nil
		},
	}
}

func setup(c *urfave.Context) error {
	level := c.String(logLevelFlag.Name)
	if c.Bool(debugFlag.Name) {
		level = "debug"
	}
	slog.SetDefault(logging.NewLogger(c.App.ErrWriter, logging.FormatText, level))

	cfg := &appConfig{
		Debug:  c.Bool(debugFlag.Name),
		Format: formatJSON,
		DBPath: c.String(dbFilePathFlag.Name),
	}

	f := strings.ToLower(c.String(formatFlag.Name))
	if f == formatYAML || f == "yml" {
		cfg.Format = formatYAML
	}

	var err error
	if p := c.String(configFlag.Name); p != "" {
		cfg.HomeDir = filepath.Dir(p)
		cfg.Config, err = config.ReadOrCreateFile(p)
	} else {
		cfg.HomeDir, _, err = config.GetOrCreateHomeDir(appName)
		if err != nil {
			return fmt.Errorf("creating home dir: %w", err)
		}
		cfg.Config, err = config.ReadOrCreate(cfg.HomeDir)
	}
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := cfg.Config.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.HomeDir, data.DataFileName)
	}
	slog.Debug("starting", "db", cfg.DBPath, "source", cfg.Config.Data.Source)

	if err := data.Init(cfg.DBPath); err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}

	if cfg.DB, err = data.GetDB(cfg.DBPath); err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	c.App.Metadata[appConfigKey] = cfg
	return nil
}

func encode(c *urfave.Context, v any) error {
	return encodeTo(c.App.Writer, getConfig(c).Format, v)
}

func encodeTo(w io.Writer, format string, v any) error {
	if format == formatYAML {
		e := yaml.NewEncoder(w)
		defer e.Close()
		return e.Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
