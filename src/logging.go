package main

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	slogmulti "github.com/samber/slog-multi"
	"github.com/subosito/gotenv"

	"postpulse/src/report"
)

// setupLogger builds the run logger: colorized console output on stderr
// (stdout belongs to the charts) fanned out alongside a text log file
// under logDir for later inspection.
func setupLogger(logDir string, verbose bool) (*slog.Logger, *os.File, error) {
	// No default! logDir must be set by config and checked in main()
	if logDir == "" {
		return nil, nil, fmt.Errorf("logDir must be set in config; refusing to use a default")
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, err
	}
	logPath := filepath.Join(logDir, "pipeline.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	console := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})
	file := slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level})

	logger := slog.New(slogmulti.Fanout(console, file))
	return logger, logFile, nil
}

// loadEnv overlays a local .env file onto the environment when present.
// Broker credentials come from the environment, never from YAML.
func loadEnv() {
	if err := gotenv.Load(); err != nil {
		slog.Debug("No .env file found, using OS environment")
	}
}

// ensureStatsCSVHeader creates the stats CSV file and writes the header if it doesn't exist.
func ensureStatsCSVHeader(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			slog.Error("Failed to create stats CSV", "error", err)
			return
		}
		defer f.Close()
		writer := csv.NewWriter(f)
		writer.Write([]string{
			"timestamp", "files", "records", "duplicates_removed",
			"documents", "tokens", "kept_tokens", "distinct_words",
		})
		writer.Flush()
	}
}

// appendStats appends one run's counters to the stats CSV for machine
// consumption.
func appendStats(path string, info report.RunInfo) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		slog.Error("Failed to open stats CSV", "error", err)
		return
	}
	defer f.Close()
	writer := csv.NewWriter(f)
	writer.Write([]string{
		info.Started.Format(time.RFC3339),
		fmt.Sprintf("%d", len(info.Files)),
		fmt.Sprintf("%d", info.Records),
		fmt.Sprintf("%d", info.Duplicates),
		fmt.Sprintf("%d", info.Documents),
		fmt.Sprintf("%d", info.Tokens),
		fmt.Sprintf("%d", info.Kept),
		fmt.Sprintf("%d", info.Distinct),
	})
	writer.Flush()
}
