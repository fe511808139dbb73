package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/NikitaCOEUR/complexprof/pkg/report"
	"github.com/sirupsen/logrus"
)

// ValidationError represents a validation error with details
type ValidationError struct {
	Field   string
	Message string
}

// ValidationResult contains the results of config validation
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

func (r *ValidationResult) addError(field, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}

// Merge appends the errors of other
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	for _, e := range other.Errors {
		r.addError(e.Field, e.Message)
	}
}

// Validate loads a config file and checks the values the schema cannot express
func Validate(path string) (*ValidationResult, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	result := &ValidationResult{
		Valid:  true,
		Errors: []ValidationError{},
	}

	cfg, err := Load(path)
	if err != nil {
		result.addError("syntax", fmt.Sprintf("Failed to parse config: %v", err))
		return result, nil
	}

	result.Merge(cfg.Check())
	return result, nil
}

// Check validates the loaded values
func (c *Config) Check() *ValidationResult {
	result := &ValidationResult{
		Valid:  true,
		Errors: []ValidationError{},
	}

	if _, err := logrus.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		result.addError("log_level", fmt.Sprintf("Unknown log level %q", c.LogLevel))
	}

	if err := report.ValidateLabel(c.Report.Label); err != nil {
		result.addError("report.label", err.Error())
	}

	if c.Report.Template != "" {
		if _, err := report.NewTemplateFormatter(c.Report.Template); err != nil {
			result.addError("report.template", err.Error())
		}
	}

	if c.Report.Dir != "" {
		if info, err := os.Stat(c.Report.Dir); err == nil && !info.IsDir() {
			result.addError("report.dir", fmt.Sprintf("%s is not a directory", c.Report.Dir))
		}
	}

	if c.Flush.Interval < 0 {
		result.addError("flush.interval", "Interval must not be negative")
	}

	if c.Flush.MaxRetries < -1 {
		result.addError("flush.max_retries", "Max retries must be -1 or greater")
	}

	return result
}
