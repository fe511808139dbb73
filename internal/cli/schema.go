package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/NikitaCOEUR/complexprof/internal/config"
)

// Schema prints the configuration JSON Schema, or writes it to outputPath
func Schema(outputPath string, out io.Writer) error {
	data, err := config.SchemaJSON()
	if err != nil {
		return err
	}

	if outputPath == "" {
		fmt.Fprintln(outOrStdout(out), string(data))
		return nil
	}

	if err := os.WriteFile(outputPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	fmt.Fprintf(outOrStdout(out), "Schema written to %s\n", outputPath)
	return nil
}
