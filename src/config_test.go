package main

import (
	"os"
	"reflect"
	"testing"
)

// TestLoadConfigValid tests loading a fully populated configuration file.
//
// Rationale: This is the happy path test that ensures the basic configuration
// loading functionality works correctly with a well-formed config file.
func TestLoadConfigValid(t *testing.T) {
	validConfig := `
mode: csv
input: ./data
pattern: "*.csv"
log_dir: ../logs
report_dir: ../reports
text_fields: [post_text, comment_text]
dedup_field: post_text
group_by: month
month_names: true
top_n: 25
min_count: 3
chart_width: 40
min_token_len: 2
max_token_len: 24
custom_stopwords: [covid, covid19]
freq_classes: 4
sentiment: true
db_path: ./results/pulse.db
mq_host: broker.local
mq_port: 5673
mq_queue: posts_in
watch_interval_minutes: 30
verbose: true
`

	tmpFile := createTempConfigFile(t, validConfig)
	defer os.Remove(tmpFile.Name())

	cfg, err := loadConfig(tmpFile.Name())
	if err != nil {
		t.Fatalf("Expected no error loading valid config, got: %v", err)
	}

	if cfg.Mode != "csv" {
		t.Errorf("Expected Mode to be 'csv', got '%s'", cfg.Mode)
	}
	if cfg.InputDir != "./data" {
		t.Errorf("Expected InputDir to be './data', got '%s'", cfg.InputDir)
	}
	if cfg.LogDir != "../logs" {
		t.Errorf("Expected LogDir to be '../logs', got '%s'", cfg.LogDir)
	}
	if !reflect.DeepEqual(cfg.TextFields, []string{"post_text", "comment_text"}) {
		t.Errorf("Expected two text fields, got %v", cfg.TextFields)
	}
	if cfg.GroupBy != "month" {
		t.Errorf("Expected GroupBy to be 'month', got '%s'", cfg.GroupBy)
	}
	if !cfg.MonthNames {
		t.Error("Expected MonthNames to be true")
	}
	if cfg.TopN != 25 {
		t.Errorf("Expected TopN to be 25, got %d", cfg.TopN)
	}
	if cfg.MinCount != 3 {
		t.Errorf("Expected MinCount to be 3, got %d", cfg.MinCount)
	}
	if cfg.MaxTokenLen != 24 {
		t.Errorf("Expected MaxTokenLen to be 24, got %d", cfg.MaxTokenLen)
	}
	if !reflect.DeepEqual(cfg.CustomStopwords, []string{"covid", "covid19"}) {
		t.Errorf("Expected custom stopwords, got %v", cfg.CustomStopwords)
	}
	if cfg.FreqClasses != 4 {
		t.Errorf("Expected FreqClasses to be 4, got %d", cfg.FreqClasses)
	}
	if !cfg.Sentiment {
		t.Error("Expected Sentiment to be true")
	}
	if cfg.MQPort != 5673 {
		t.Errorf("Expected MQPort to be 5673, got %d", cfg.MQPort)
	}
	if cfg.WatchMinutes != 30 {
		t.Errorf("Expected WatchMinutes to be 30, got %d", cfg.WatchMinutes)
	}
}

// TestLoadConfigDefaults tests that a minimal config picks up the
// documented defaults.
//
// Rationale: most deployments set only input and log_dir. Every other
// knob must come out with a sane default, including the default-on
// switches that plain zero values cannot express.
func TestLoadConfigDefaults(t *testing.T) {
	minimalConfig := `
input: ./data
log_dir: ../logs
`

	tmpFile := createTempConfigFile(t, minimalConfig)
	defer os.Remove(tmpFile.Name())

	cfg, err := loadConfig(tmpFile.Name())
	if err != nil {
		t.Fatalf("Expected no error loading minimal config, got: %v", err)
	}

	if cfg.Mode != "csv" {
		t.Errorf("Expected default Mode 'csv', got '%s'", cfg.Mode)
	}
	if cfg.Pattern != "*.csv" {
		t.Errorf("Expected default Pattern '*.csv', got '%s'", cfg.Pattern)
	}
	if cfg.ReportDir != "reports" {
		t.Errorf("Expected default ReportDir 'reports', got '%s'", cfg.ReportDir)
	}
	if !reflect.DeepEqual(cfg.TextFields, []string{"post_text"}) {
		t.Errorf("Expected default text fields [post_text], got %v", cfg.TextFields)
	}
	if cfg.DedupField != "post_text" {
		t.Errorf("Expected default DedupField 'post_text', got '%s'", cfg.DedupField)
	}
	if cfg.GroupBy != "none" {
		t.Errorf("Expected default GroupBy 'none', got '%s'", cfg.GroupBy)
	}
	if cfg.TopN != 20 {
		t.Errorf("Expected default TopN 20, got %d", cfg.TopN)
	}
	if cfg.ChartWidth != 50 {
		t.Errorf("Expected default ChartWidth 50, got %d", cfg.ChartWidth)
	}
	if !cfg.DropNumeric {
		t.Error("Expected DropNumeric to default to true")
	}
	if !cfg.RejectURLs {
		t.Error("Expected RejectURLs to default to true")
	}
	if cfg.FreqClasses != 5 {
		t.Errorf("Expected default FreqClasses 5, got %d", cfg.FreqClasses)
	}
	if cfg.MQHost != "localhost" || cfg.MQPort != 5672 || cfg.MQQueue != "post_rows" {
		t.Errorf("Expected default MQ settings, got %s:%d queue %s", cfg.MQHost, cfg.MQPort, cfg.MQQueue)
	}
	if cfg.WatchMinutes != 15 {
		t.Errorf("Expected default WatchMinutes 15, got %d", cfg.WatchMinutes)
	}
}

// TestLoadConfigExplicitFalse tests that default-on switches can still be
// turned off in the file.
func TestLoadConfigExplicitFalse(t *testing.T) {
	config := `
input: ./data
log_dir: ../logs
drop_numeric: false
reject_urls: false
`

	tmpFile := createTempConfigFile(t, config)
	defer os.Remove(tmpFile.Name())

	cfg, err := loadConfig(tmpFile.Name())
	if err != nil {
		t.Fatalf("Expected no error loading config, got: %v", err)
	}

	if cfg.DropNumeric {
		t.Error("Expected DropNumeric false when set explicitly")
	}
	if cfg.RejectURLs {
		t.Error("Expected RejectURLs false when set explicitly")
	}
}

// TestLoadConfigMissingLogDir tests that loading a config without log_dir
// succeeds; the requirement is enforced in main, not in loadConfig.
func TestLoadConfigMissingLogDir(t *testing.T) {
	config := `
input: ./data
`

	tmpFile := createTempConfigFile(t, config)
	defer os.Remove(tmpFile.Name())

	cfg, err := loadConfig(tmpFile.Name())
	if err != nil {
		t.Fatalf("Expected no error loading config, got: %v", err)
	}

	if cfg.LogDir != "" {
		t.Errorf("Expected LogDir to be empty, got '%s'", cfg.LogDir)
	}
}

// TestLoadConfigInvalidYAML tests that loading an invalid YAML file fails.
func TestLoadConfigInvalidYAML(t *testing.T) {
	invalidYAML := `
mode: csv
log_dir: ../logs
custom_stopwords: [covid, covid19,  # Missing closing bracket
`

	tmpFile := createTempConfigFile(t, invalidYAML)
	defer os.Remove(tmpFile.Name())

	_, err := loadConfig(tmpFile.Name())
	if err == nil {
		t.Fatal("Expected error loading invalid YAML, got nil")
	}
}

// TestLoadConfigNonexistentFile tests that loading a nonexistent file fails.
func TestLoadConfigNonexistentFile(t *testing.T) {
	_, err := loadConfig("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Expected error loading nonexistent file, got nil")
	}
}

// TestLoadConfigValidation tests that configs the pipeline could only
// fail on later are rejected up front.
//
// Rationale: an unknown field name would silently produce zero documents
// or keep every duplicate. Failing at load time points straight at the
// config line instead.
func TestLoadConfigValidation(t *testing.T) {
	testCases := []struct {
		name   string
		config string
	}{
		{
			name: "unknown_mode",
			config: `
input: ./data
log_dir: ../logs
mode: batch
`,
		},
		{
			name: "unknown_group_by",
			config: `
input: ./data
log_dir: ../logs
group_by: week
`,
		},
		{
			name: "unknown_text_field",
			config: `
input: ./data
log_dir: ../logs
text_fields: [body]
`,
		},
		{
			name: "unknown_dedup_field",
			config: `
input: ./data
log_dir: ../logs
dedup_field: likes
`,
		},
		{
			name: "empty_text_fields",
			config: `
input: ./data
log_dir: ../logs
text_fields: []
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tmpFile := createTempConfigFile(t, tc.config)
			defer os.Remove(tmpFile.Name())

			if _, err := loadConfig(tmpFile.Name()); err == nil {
				t.Fatal("Expected validation error, got nil")
			}
		})
	}
}

// TestTokenFilterFromConfig tests that the noise filter picks up the
// configured limits and switches.
func TestTokenFilterFromConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.MinTokenLen = 3
	cfg.MaxTokenLen = 12
	cfg.DropNumeric = false

	tf := cfg.tokenFilter()
	if tf.MinLen != 3 || tf.MaxLen != 12 {
		t.Errorf("Expected length limits 3..12, got %d..%d", tf.MinLen, tf.MaxLen)
	}
	if tf.DropNumeric {
		t.Error("Expected DropNumeric to carry over as false")
	}
	if !tf.DropURLs {
		t.Error("Expected DropURLs to stay on by default")
	}
}

// Helper function to create a temporary config file for testing
//
// Rationale: Tests need to create temporary config files to test various
// scenarios. This helper ensures consistent file creation and cleanup.
func createTempConfigFile(t *testing.T, content string) *os.File {
	tmpFile, err := os.CreateTemp("", "config_test_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	_, err = tmpFile.WriteString(content)
	if err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}

	err = tmpFile.Close()
	if err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	return tmpFile
}
