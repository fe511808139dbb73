// Package cli implements the complexprof commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/NikitaCOEUR/complexprof/internal/config"
)

// loadConfig loads path, or the config file of the current directory when
// path is empty, falling back to the defaults
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = config.Find(wd)
		}
	}
	return config.Load(path)
}

func outOrStdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

// applyOverrides lets command line flags win over the config file
func applyOverrides(cfg *config.Config, logLevel, label, dir string) {
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if label != "" {
		cfg.Report.Label = label
	}
	if dir != "" {
		cfg.Report.Dir = dir
	}
}

func checkConfig(cfg *config.Config) error {
	result := cfg.Check()
	if result.Valid {
		return nil
	}
	first := result.Errors[0]
	return fmt.Errorf("invalid configuration: [%s] %s", first.Field, first.Message)
}
