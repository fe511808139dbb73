package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const sampleHeader = `# complexprof configuration
# Reports are appended to <report.dir>/complexity_<report.label>.log.
# Set flush.interval (e.g. 30s) to flush periodically.
`

// Sample renders the default configuration as commented YAML
func Sample() ([]byte, error) {
	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return nil, fmt.Errorf("failed to encode sample config: %w", err)
	}
	return append([]byte(sampleHeader), data...), nil
}

// WriteSample writes the sample configuration to path, refusing to overwrite an existing file
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	data, err := Sample()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
