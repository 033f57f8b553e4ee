package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"postpulse/src/pipeline"
	"postpulse/src/records"
)

// Config holds every knob of a run, loaded from the YAML config file.
type Config struct {
	Mode            string   `yaml:"mode"`
	InputDir        string   `yaml:"input"`
	Pattern         string   `yaml:"pattern"`
	LogDir          string   `yaml:"log_dir"`
	ReportDir       string   `yaml:"report_dir"`
	TextFields      []string `yaml:"text_fields"`
	DedupField      string   `yaml:"dedup_field"`
	GroupBy         string   `yaml:"group_by"`
	MonthNames      bool     `yaml:"month_names"`
	TopN            int      `yaml:"top_n"`
	MinCount        int      `yaml:"min_count"`
	ChartWidth      int      `yaml:"chart_width"`
	MinTokenLen     int      `yaml:"min_token_len"`
	MaxTokenLen     int      `yaml:"max_token_len"`
	DropNumeric     bool     `yaml:"drop_numeric"`
	RejectURLs      bool     `yaml:"reject_urls"`
	CustomStopwords []string `yaml:"custom_stopwords"`
	StopwordFile    string   `yaml:"stopword_file"`
	FreqClasses     int      `yaml:"freq_classes"`
	Sentiment       bool     `yaml:"sentiment"`
	DBPath          string   `yaml:"db_path"`
	MQHost          string   `yaml:"mq_host"`
	MQPort          int      `yaml:"mq_port"`
	MQQueue         string   `yaml:"mq_queue"`
	WatchMinutes    int      `yaml:"watch_interval_minutes"`
	Verbose         bool     `yaml:"verbose"`
}

// defaultConfig returns a Config with the documented defaults. Keys
// present in the YAML file override them, so default-on switches like
// drop_numeric can still be turned off explicitly.
func defaultConfig() Config {
	return Config{
		Mode:         "csv",
		Pattern:      "*.csv",
		ReportDir:    "reports",
		TextFields:   []string{"post_text"},
		DedupField:   "post_text",
		GroupBy:      "none",
		TopN:         20,
		MinCount:     1,
		ChartWidth:   50,
		MinTokenLen:  1,
		DropNumeric:  true,
		RejectURLs:   true,
		FreqClasses:  5,
		MQHost:       "localhost",
		MQPort:       5672,
		MQQueue:      "post_rows",
		WatchMinutes: 15,
	}
}

// loadConfig loads the YAML config file into a Config struct.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configs the pipeline could only fail on later, such
// as field names that do not exist in the export schema.
func (c *Config) validate() error {
	switch c.Mode {
	case "csv", "mq", "watch":
	default:
		return fmt.Errorf("unknown mode %q (want csv, mq, or watch)", c.Mode)
	}
	switch c.GroupBy {
	case "none", "month", "year":
	default:
		return fmt.Errorf("unknown group_by %q (want none, month, or year)", c.GroupBy)
	}
	if len(c.TextFields) == 0 {
		return fmt.Errorf("text_fields cannot be empty")
	}
	for _, f := range c.TextFields {
		if !records.KnownField(f) {
			return fmt.Errorf("unknown text field %q", f)
		}
	}
	if !records.KnownField(c.DedupField) {
		return fmt.Errorf("unknown dedup field %q", c.DedupField)
	}
	return nil
}

// tokenFilter builds the noise filter the tokenizer applies.
func (c *Config) tokenFilter() pipeline.TokenFilter {
	return pipeline.TokenFilter{
		MinLen:      c.MinTokenLen,
		MaxLen:      c.MaxTokenLen,
		DropNumeric: c.DropNumeric,
		DropURLs:    c.RejectURLs,
	}
}
