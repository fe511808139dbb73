package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/NikitaCOEUR/complexprof/internal/config"
)

// Init writes a sample configuration file into dir (the current directory when empty)
func Init(dir string, out io.Writer) error {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = wd
	}

	if existing := config.Find(dir); existing != "" {
		return fmt.Errorf("config file already exists: %s", existing)
	}

	path := filepath.Join(dir, config.SupportedConfigNames[0])
	if err := config.WriteSample(path); err != nil {
		return err
	}

	fmt.Fprintf(outOrStdout(out), "Created %s\n", path)
	return nil
}
