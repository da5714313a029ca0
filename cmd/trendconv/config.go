package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the trendconv configuration file (~/.config/trendconv/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	OutputFormat string `yaml:"output_format"`
	OutputDir    string `yaml:"output_dir"`
	Precision    *int   `yaml:"precision"`

	StripDirs         *bool `yaml:"strip_dirs"`
	RelativeToCatalog *bool `yaml:"relative_to_catalog"`
	DiscardInvalid    *bool `yaml:"discard_invalid"`
	KeepGoing         *bool `yaml:"keep_going"`

	Timezone string `yaml:"timezone"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "trendconv", "config.yaml")
}

// LoadConfig reads the config file. A missing file yields a zero Config.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// applyConfig applies config file defaults when the corresponding flag was
// not explicitly set.
func applyConfig(c *cli.Command, cfg Config, o *options) {
	if cfg.OutputFormat != "" && !c.IsSet("output") {
		o.format = cfg.OutputFormat
	}
	if cfg.OutputDir != "" && !c.IsSet("out-dir") {
		o.outDir = cfg.OutputDir
	}
	if cfg.Precision != nil && !c.IsSet("precision") {
		o.precision = *cfg.Precision
	}
	if cfg.StripDirs != nil && !c.IsSet("strip-dirs") {
		o.stripDirs = *cfg.StripDirs
	}
	if cfg.RelativeToCatalog != nil && !c.IsSet("relative-to-catalog") {
		o.relative = *cfg.RelativeToCatalog
	}
	if cfg.DiscardInvalid != nil && !c.IsSet("keep-invalid") {
		o.keepInvalid = !*cfg.DiscardInvalid
	}
	if cfg.KeepGoing != nil && !c.IsSet("keep-going") {
		o.keepGoing = *cfg.KeepGoing
	}
	if cfg.Timezone != "" && !c.IsSet("timezone") {
		o.timezone = cfg.Timezone
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		o.logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		o.logFormat = cfg.LogFormat
	}
}
