package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/NikitaCOEUR/complexprof/pkg/derrors"
	"github.com/NikitaCOEUR/complexprof/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, ".", cfg.Report.Dir)
	assert.Equal(t, "default", cfg.Report.Label)
	assert.Empty(t, cfg.Report.Template)
	assert.Equal(t, time.Duration(0), cfg.Flush.Interval)
	assert.Equal(t, 3, cfg.Flush.MaxRetries)
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: ".complexprof.yml",
			content: `log_level: debug
report:
  label: api
flush:
  interval: 30s
`,
		},
		{
			name: "toml",
			file: ".complexprof.toml",
			content: `log_level = "debug"
[report]
label = "api"
[flush]
interval = "30s"
`,
		},
		{
			name:    "json",
			file:    ".complexprof.json",
			content: `{"log_level": "debug", "report": {"label": "api"}, "flush": {"interval": "30s"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "debug", cfg.LogLevel)
			assert.Equal(t, "api", cfg.Report.Label)
			assert.Equal(t, ".", cfg.Report.Dir, "unset keys keep their defaults")
			assert.Equal(t, 30*time.Second, cfg.Flush.Interval)
			assert.Equal(t, 3, cfg.Flush.MaxRetries)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yml"))
	require.Error(t, err)
	var cerr *derrors.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Error(), "not found")

	unsupported := writeFile(t, dir, "config.ini", "x=1")
	_, err = Load(unsupported)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")

	broken := writeFile(t, dir, ".complexprof.yml", "report: [unclosed")
	_, err = Load(broken)
	require.Error(t, err)
	assert.Equal(t, derrors.CodeConfiguration, derrors.CodeOf(err))
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, Find(dir))

	writeFile(t, dir, ".complexprof.json", "{}")
	yml := writeFile(t, dir, ".complexprof.yml", "")
	assert.Equal(t, yml, Find(dir), "yml is preferred")
}

func TestConfig_Sink(t *testing.T) {
	dir := t.TempDir()
	cfg := Defaults()
	cfg.Report.Dir = dir
	cfg.Report.Label = "svc"

	sink, err := cfg.Sink()
	require.NoError(t, err)
	path, err := sink.Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "complexity_svc.log"), path)
	assert.IsType(t, report.TextFormatter{}, sink.Formatter)

	cfg.Report.Template = "{{ len .Rows }}"
	sink, err = cfg.Sink()
	require.NoError(t, err)
	assert.IsType(t, &report.TemplateFormatter{}, sink.Formatter)

	cfg.Report.Template = "{{ broken"
	_, err = cfg.Sink()
	require.Error(t, err)
	assert.Equal(t, derrors.CodeValidation, derrors.CodeOf(err))

	cfg.Report.Template = ""
	cfg.Report.Label = "a/b"
	_, err = cfg.Sink()
	require.Error(t, err)
}

func TestConfig_Check(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"empty label", func(c *Config) { c.Report.Label = "" }, "report.label"},
		{"bad template", func(c *Config) { c.Report.Template = "{{ .Rows" }, "report.template"},
		{"negative interval", func(c *Config) { c.Flush.Interval = -time.Second }, "flush.interval"},
		{"bad retries", func(c *Config) { c.Flush.MaxRetries = -2 }, "flush.max_retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(cfg)

			result := cfg.Check()
			if tt.field == "" {
				assert.True(t, result.Valid)
				assert.Empty(t, result.Errors)
				return
			}
			assert.False(t, result.Valid)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, tt.field, result.Errors[0].Field)
		})
	}
}

func TestConfig_Check_DirIsFile(t *testing.T) {
	cfg := Defaults()
	cfg.Report.Dir = writeFile(t, t.TempDir(), "file", "")

	result := cfg.Check()
	assert.False(t, result.Valid)
	assert.Equal(t, "report.dir", result.Errors[0].Field)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	_, err := Validate(filepath.Join(dir, "nope.yml"))
	require.Error(t, err)

	good := writeFile(t, dir, "good.yml", "report:\n  label: api\n")
	result, err := Validate(good)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	bad := writeFile(t, dir, "bad.yml", "report:\n  label: \"a/b\"\n")
	result, err = Validate(bad)
	require.NoError(t, err)
	assert.False(t, result.Valid)

	broken := writeFile(t, dir, "broken.yml", "report: [")
	result, err = Validate(broken)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "syntax", result.Errors[0].Field)
}

func TestSchemaJSON(t *testing.T) {
	data, err := SchemaJSON()
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &schema))

	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, props, "log_level")
	assert.Contains(t, props, "report")
	assert.Contains(t, props, "flush")
}

func TestValidateWithSchema(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		valid   bool
	}{
		{"valid yaml", "c.yml", "log_level: info\nflush:\n  interval: 10s\n", true},
		{"empty yaml", "c.yaml", "", true},
		{"valid json", "c.json", `{"report": {"label": "x"}}`, true},
		{"valid toml", "c.toml", "[flush]\nmax_retries = 2\n", true},
		{"unknown key", "c.yml", "colour: blue\n", false},
		{"bad level", "c.yml", "log_level: loud\n", false},
		{"bad interval", "c.yml", "flush:\n  interval: soon\n", false},
		{"bad retries", "c.json", `{"flush": {"max_retries": -5}}`, false},
		{"yaml syntax", "c.yml", "report: [", false},
		{"json syntax", "c.json", "{", false},
		{"toml syntax", "c.toml", "[flush", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateWithSchema(tt.path, []byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid, "errors: %v", result.Errors)
		})
	}

	_, err := ValidateWithSchema("c.ini", []byte("x"))
	assert.Error(t, err)
}

func TestSample(t *testing.T) {
	data, err := Sample()
	require.NoError(t, err)
	assert.Contains(t, string(data), "# complexprof configuration")
	assert.Contains(t, string(data), "interval: 0s")

	result, err := ValidateWithSchema("sample.yml", data)
	require.NoError(t, err)
	assert.True(t, result.Valid, "errors: %v", result.Errors)

	path := filepath.Join(t.TempDir(), ".complexprof.yml")
	require.NoError(t, WriteSample(path))
	assert.Error(t, WriteSample(path), "existing files are not overwritten")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}
