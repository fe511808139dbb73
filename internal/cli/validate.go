package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/NikitaCOEUR/complexprof/internal/config"
)

// Validate validates a complexprof configuration file
func Validate(configPath string, out io.Writer) error {
	w := outOrStdout(out)

	// If no path provided, look for config in current directory
	if configPath == "" {
		currentDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		configPath = config.Find(currentDir)
		if configPath == "" {
			return fmt.Errorf("no config file found in current directory")
		}
	}

	fmt.Fprintf(w, "Validating: %s\n\n", configPath)

	content, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// First validate with JSON Schema
	result, err := config.ValidateWithSchema(configPath, content)
	if err != nil {
		return err
	}

	// If schema validation passes, run the value checks
	if result.Valid {
		customResult, err := config.Validate(configPath)
		if err != nil {
			return err
		}
		result.Merge(customResult)
	}

	if result.Valid {
		fmt.Fprintln(w, "✅ Configuration is valid!")
		return nil
	}

	fmt.Fprintln(w, "❌ Configuration has errors:")
	for i, validationErr := range result.Errors {
		fmt.Fprintf(w, "%d. [%s] %s\n", i+1, validationErr.Field, validationErr.Message)
	}
	fmt.Fprintf(w, "\nFound %d error(s)\n", len(result.Errors))

	return fmt.Errorf("validation failed")
}
