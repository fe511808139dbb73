package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/NikitaCOEUR/complexprof/internal/view"
	"github.com/NikitaCOEUR/complexprof/pkg/report"
)

// ViewParams contains parameters for the View command
type ViewParams struct {
	ConfigPath string
	// Target is a report file, or a label resolved in the report directory.
	// Empty uses the configured label.
	Target string
	Dir    string
	// Last shows only the most recent flush
	Last bool
	Out  io.Writer
}

// View renders a report log in the terminal
func View(params ViewParams) error {
	path, err := resolveReportPath(params)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open report log: %w", err)
	}
	defer f.Close()

	reports, err := report.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if params.Last && len(reports) > 1 {
		reports = reports[len(reports)-1:]
	}

	fmt.Fprintln(outOrStdout(params.Out), view.Render(&view.Data{
		Source:  path,
		Reports: reports,
	}))
	return nil
}

func resolveReportPath(params ViewParams) (string, error) {
	if params.Target != "" {
		if info, err := os.Stat(params.Target); err == nil && !info.IsDir() {
			return params.Target, nil
		}
	}

	cfg, err := loadConfig(params.ConfigPath)
	if err != nil {
		return "", err
	}
	applyOverrides(cfg, "", params.Target, params.Dir)

	if err := report.ValidateLabel(cfg.Report.Label); err != nil {
		return "", fmt.Errorf("report log not found: %s", params.Target)
	}
	dir := cfg.Report.Dir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, report.FileName(cfg.Report.Label)), nil
}
