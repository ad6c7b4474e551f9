// Package config reads and writes the healsure YAML configuration.
package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mchmarny/healsure/pkg/dataset"
	"github.com/mchmarny/healsure/pkg/insurance"
	"github.com/mchmarny/healsure/pkg/model"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	FileName    = "config.yaml"
	PortDefault = 8080

	dirMode  = 0700
	fileMode = 0600
)

// Config represents app config object.
type Config struct {
	Model  model.Options `yaml:"model"`
	Data   DataConfig    `yaml:"data"`
	Server ServerConfig  `yaml:"server"`
}

// DataConfig selects where training tables come from.
type DataConfig struct {
	Source  string `yaml:"source"`
	Rows    int    `yaml:"rows"`
	Seed    int64  `yaml:"seed"`
	Path    string `yaml:"path,omitempty"`
	URL     string `yaml:"url,omitempty"`
	Dataset string `yaml:"dataset,omitempty"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Model: model.DefaultOptions(),
		Data: DataConfig{
			Source: dataset.SourceSynthetic,
			Rows:   dataset.RowsDefault,
			Seed:   dataset.SeedDefault,
		},
		Server: ServerConfig{
			Port: PortDefault,
		},
	}
}

// Validate rejects values no command can work with.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config required")
	}
	if err := c.Model.Validate(); err != nil {
		return errors.Wrap(err, "invalid model config")
	}

	switch c.Data.Source {
	case dataset.SourceSynthetic:
		if c.Data.Rows < 1 {
			return errors.Errorf("data rows must be positive, got %d", c.Data.Rows)
		}
	case dataset.SourceCSV:
		if c.Data.Path == "" {
			return errors.New("data path required for csv source")
		}
	case dataset.SourceURL:
		if !strings.HasPrefix(c.Data.URL, "http://") && !strings.HasPrefix(c.Data.URL, "https://") {
			return errors.Errorf("invalid data url: %q", c.Data.URL)
		}
	case dataset.SourceDB:
	default:
		return errors.Errorf("unknown data source %q, expected one of %v", c.Data.Source, dataset.Sources)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}

// Save writes c to the config file in dirPath.
func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	return SaveFile(filepath.Join(dirPath, FileName), c)
}

// SaveFile writes c to path.
func SaveFile(path string, c *Config) error {
	if path == "" {
		return errors.New("config path required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return errors.Wrapf(err, "failed to write config file: %s", path)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one with
// defaults. Keys missing from the file keep their default values.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if err := os.MkdirAll(dirPath, dirMode); err != nil {
		return nil, errors.Wrapf(err, "failed to create dir: %s", dirPath)
	}

	return ReadOrCreateFile(filepath.Join(dirPath, FileName))
}

// ReadOrCreateFile reads the config at path, writing the defaults there first
// when the file does not exist.
func ReadOrCreateFile(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating default config", "path", path)
		if err := SaveFile(path, Default()); err != nil {
			return nil, errors.Wrap(err, "failed to create default config")
		}
	}

	return Read(path)
}

// Read parses the config file at path on top of the defaults.
func Read(path string) (*Config, error) {
	j, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening config file: %s", path)
	}
	defer j.Close()

	b, err := io.ReadAll(j)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file: %s", path)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "error unmarshalling config file: %s", path)
	}
	c.Data.Source = strings.ToLower(strings.TrimSpace(c.Data.Source))
	if !insurance.Contains(dataset.Sources, c.Data.Source) {
		return nil, errors.Errorf("unknown data source %q in %s", c.Data.Source, path)
	}
	return c, nil
}

// GetOrCreateHomeDir returns the home directory for the current user.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, errors.Wrap(err, "failed to get user home dir")
	}

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "dir", dir)
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, errors.Wrapf(err, "failed to create dir: %s", dir)
		}
		created = true
	}
	return dir, created, nil
}
