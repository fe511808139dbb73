// Package config handles loading and validation of complexprof configuration files.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/NikitaCOEUR/complexprof/pkg/derrors"
	"github.com/NikitaCOEUR/complexprof/pkg/report"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

//go:embed defaults.yml
var defaultsYAML []byte

// SupportedConfigNames contains supported configuration file names (in order of preference)
var SupportedConfigNames = []string{
	".complexprof.yml",
	".complexprof.yaml",
	".complexprof.toml",
	".complexprof.json",
}

// ReportConfig controls where and how reports are written
type ReportConfig struct {
	Dir      string `koanf:"dir" json:"dir,omitempty" yaml:"dir" jsonschema:"description=Directory receiving complexity_<label>.log files"`
	Label    string `koanf:"label" json:"label,omitempty" yaml:"label" jsonschema:"minLength=1,description=Label embedded in the report file name"`
	Template string `koanf:"template" json:"template,omitempty" yaml:"template" jsonschema:"description=Optional text/template (with sprig functions) replacing the default report layout"`
}

// FlushConfig controls periodic flushing
type FlushConfig struct {
	Interval   time.Duration `koanf:"interval" json:"interval,omitempty" yaml:"interval" jsonschema:"type=string,pattern=^([0-9]+(\\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$,description=Time between periodic flushes (0s disables them)"`
	MaxRetries int           `koanf:"max_retries" json:"max_retries,omitempty" yaml:"max_retries" jsonschema:"minimum=-1,description=Retries of a failed report write (-1 disables retries)"`
}

// Config represents a complexprof configuration
type Config struct {
	LogLevel string       `koanf:"log_level" json:"log_level,omitempty" yaml:"log_level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,description=Log level"`
	Report   ReportConfig `koanf:"report" json:"report,omitempty" yaml:"report" jsonschema:"description=Report destination"`
	Flush    FlushConfig  `koanf:"flush" json:"flush,omitempty" yaml:"flush" jsonschema:"description=Periodic flushing"`
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	cfg, err := load("")
	if err != nil {
		// defaults.yml is embedded, a failure here is a build defect
		panic(fmt.Sprintf("invalid embedded defaults: %v", err))
	}
	return cfg
}

// Load reads path on top of the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, derrors.NewConfigurationError(path, "config file not found", err)
		}
	}
	cfg, err := load(path)
	if err != nil {
		return nil, derrors.NewConfigurationError(path, "failed to load config", err)
	}
	return cfg, nil
}

func load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultsYAML), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

// Find returns the first supported config file in dir, or "" if there is none
func Find(dir string) string {
	for _, name := range SupportedConfigNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Sink builds the report sink described by the report section
func (c *Config) Sink() (*report.FileSink, error) {
	sink := report.NewFileSink(c.Report.Dir, c.Report.Label)
	if _, err := sink.Path(); err != nil {
		return nil, derrors.NewValidationError("report.label", err.Error(), err)
	}
	if c.Report.Template != "" {
		f, err := report.NewTemplateFormatter(c.Report.Template)
		if err != nil {
			return nil, derrors.NewValidationError("report.template", "invalid report template", err)
		}
		sink.Formatter = f
	}
	return sink, nil
}
