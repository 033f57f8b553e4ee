package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"

	"postpulse/src/filter"
	"postpulse/src/pipeline"
	"postpulse/src/records"
	"postpulse/src/report"
	"postpulse/src/sentiment"
	"postpulse/src/store"
)

// statsCSVPath holds the run ledger path once the log dir is known.
var statsCSVPath string

func main() {
	printCharts := flag.Bool("print-charts", true, "Print ASCII charts to the console")
	configPath := flag.String("config", "config/config.yaml", "Path to YAML config file")
	flag.Parse()

	// Load config from YAML file
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Require log_dir to be present and non-empty
	if cfg.LogDir == "" {
		fmt.Fprintln(os.Stderr, "ERROR: 'log_dir' must be defined in the config file and cannot be empty.")
		os.Exit(1)
	}

	logger, logFile, err := setupLogger(cfg.LogDir, cfg.Verbose)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	defer logFile.Close()
	slog.SetDefault(logger)

	loadEnv()

	// Set up stats CSV file path
	statsCSVPath = filepath.Join(cfg.LogDir, "stats.csv")
	ensureStatsCSVHeader(statsCSVPath)

	var runErr error
	switch cfg.Mode {
	case "mq":
		runErr = runMQ(cfg, *printCharts)
	case "watch":
		runErr = runWatch(cfg, *printCharts)
	default:
		runErr = runOnce(cfg, *printCharts)
	}
	if runErr != nil {
		slog.Error("Run failed", "mode", cfg.Mode, "error", runErr)
		os.Exit(1)
	}
}

// runOnce loads the export files and runs one full analysis over them.
func runOnce(cfg *Config, printCharts bool) error {
	table, err := pipeline.LoadDirectory(cfg.InputDir, cfg.Pattern)
	if err != nil {
		return fmt.Errorf("failed to load input: %w", err)
	}
	recs, err := records.FromRows(table.Rows)
	if err != nil {
		return fmt.Errorf("failed to normalize rows: %w", err)
	}

	files := make([]string, len(table.Files))
	for i, f := range table.Files {
		files[i] = filepath.Base(f)
	}
	return analyze(cfg, files, recs, printCharts)
}

// runMQ consumes one export batch from the queue, re-parses the rows,
// and analyzes them exactly like a batch run. Rows that do not fit the
// schema are logged and skipped; the sentinel decides when the batch
// ends.
func runMQ(cfg *Config, printCharts bool) error {
	user, pass := mqCredentials()
	mq, err := NewRabbitMQ(RabbitMQConfig{
		Host:     cfg.MQHost,
		Port:     cfg.MQPort,
		Username: user,
		Password: pass,
		Queue:    cfg.MQQueue,
	})
	if err != nil {
		return err
	}
	defer mq.Close()

	if info, err := mq.QueueInfo(); err == nil {
		slog.Info("Connected to RabbitMQ. Waiting for messages...",
			"queue", info["name"], "messages", info["messages"], "consumers", info["consumers"])
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rows, err := mq.ConsumeRows(ctx)
	if err != nil {
		return err
	}

	recs := make([]records.Record, 0, len(rows))
	id := 1
	for _, row := range rows {
		rec, err := records.FromRow(id, row)
		if err != nil {
			slog.Warn("Skipping unparsable row", "error", err)
			continue
		}
		recs = append(recs, rec)
		id++
	}
	return analyze(cfg, []string{"mq:" + cfg.MQQueue}, recs, printCharts)
}

// runWatch runs the batch analysis immediately, then again on a fixed
// interval until interrupted. Failed runs are logged and the watch
// keeps going, since new files may fix the problem.
func runWatch(cfg *Config, printCharts bool) error {
	interval := time.Duration(cfg.WatchMinutes) * time.Minute

	runJob := func() {
		if err := runOnce(cfg, printCharts); err != nil {
			slog.Error("Scheduled run failed", "error", err)
		}
	}
	runJob()

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if _, err := scheduler.NewJob(gocron.DurationJob(interval), gocron.NewTask(runJob)); err != nil {
		return fmt.Errorf("failed to schedule runs: %w", err)
	}
	scheduler.Start()
	slog.Info("Watching input directory", "dir", cfg.InputDir, "interval", interval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("Shutting down scheduler")
	return scheduler.Shutdown()
}

// analyze runs every stage after normalization: dedup, tokenization,
// stop-word filtering, aggregation, classes, sentiment, and reporting.
func analyze(cfg *Config, files []string, recs []records.Record, printCharts bool) error {
	started := time.Now()

	deduped, dropped := pipeline.DedupRecords(recs, cfg.DedupField)

	stops := filter.NewStopWords()
	stops.AddCustom(cfg.CustomStopwords...)
	if cfg.StopwordFile != "" {
		if err := stops.LoadFile(cfg.StopwordFile); err != nil {
			return err
		}
	}

	docs := pipeline.ExtractDocuments(deduped, cfg.TextFields)
	tokens := pipeline.TokenizeDocuments(docs, cfg.tokenFilter())
	kept := pipeline.DropWords(tokens, stops.Has)

	counts := pipeline.CountWords(kept)
	top := pipeline.TopN(counts, cfg.TopN)
	threshold := pipeline.FilterMinCount(counts, cfg.MinCount)

	// Grouped views share the token rows; only the doc-to-group mapping
	// changes with the configuration.
	var facets []report.Facet
	var grouped []pipeline.GroupedCount
	if cfg.GroupBy != "none" {
		groups := documentGroups(deduped, docs, cfg.GroupBy)
		grouped = pipeline.CountWordsGrouped(kept, groups)
		perGroup := pipeline.TopNPerGroup(pipeline.FilterMinCountGrouped(grouped, cfg.MinCount), cfg.TopN)
		for _, g := range pipeline.Groups(perGroup) {
			label := g
			if cfg.GroupBy == "month" && cfg.MonthNames {
				label = report.MonthLabel(g)
			}
			facets = append(facets, report.Facet{
				Key:    g,
				Label:  label,
				Counts: pipeline.GroupSlice(perGroup, g),
			})
		}
	}

	var classes []report.ClassRow
	if cfg.FreqClasses > 0 && len(counts) > 0 {
		fc := pipeline.BuildFreqClasses(counts, cfg.FreqClasses)
		for i := range fc.Filters {
			classes = append(classes, report.ClassRow{Class: i + 1, Words: fc.Words[i], Share: fc.Shares[i]})
		}
	}

	var overallSent *sentiment.Summary
	if cfg.Sentiment {
		overallSent = scoreSentiment(cfg, deduped, facets)
	}

	info := report.RunInfo{
		Started:    started,
		Files:      files,
		Records:    len(recs),
		Duplicates: dropped,
		Documents:  len(docs),
		Tokens:     len(tokens),
		Kept:       len(kept),
		Distinct:   len(counts),
	}

	rep := &report.Report{
		Info:       info,
		ChartWidth: cfg.ChartWidth,
		Top:        top,
		MinCount:   cfg.MinCount,
		Threshold:  threshold,
		Facets:     facets,
		Classes:    classes,
		Sentiment:  overallSent,
	}
	if cfg.ReportDir != "" {
		if err := rep.WriteFiles(cfg.ReportDir); err != nil {
			return err
		}
	}

	if printCharts {
		fmt.Printf("\nTop %d words across %d posts:\n\n", len(top), len(deduped))
		fmt.Print(report.BarChart(top, cfg.ChartWidth))
		for _, f := range facets {
			fmt.Printf("\n%s:\n\n", f.Label)
			fmt.Print(report.BarChart(f.Counts, cfg.ChartWidth))
		}
	}

	if cfg.DBPath != "" {
		if err := saveResults(cfg, info, deduped, counts, grouped); err != nil {
			return fmt.Errorf("failed to save results: %w", err)
		}
	}

	appendStats(statsCSVPath, info)
	slog.Info("Analysis complete",
		"records", info.Records,
		"duplicates_removed", info.Duplicates,
		"documents", info.Documents,
		"tokens", info.Tokens,
		"kept_tokens", info.Kept,
		"distinct_words", info.Distinct,
		"elapsed", time.Since(started))
	return nil
}

// groupKey returns the record's group key under the configured grouping,
// or "" when the record has no parsable timestamp.
func groupKey(r records.Record, groupBy string) string {
	if r.PostedAt == nil {
		return ""
	}
	switch groupBy {
	case "month":
		return r.PostedAt.MonthKey()
	case "year":
		return r.PostedAt.YearKey()
	}
	return ""
}

// documentGroups maps document ids to their record's group key. Documents
// whose record has no parsable timestamp get no entry, which drops them
// from the grouped counts only.
func documentGroups(recs []records.Record, docs []pipeline.Document, groupBy string) map[int]string {
	recordKeys := make(map[int]string, len(recs))
	for _, r := range recs {
		if key := groupKey(r, groupBy); key != "" {
			recordKeys[r.ID] = key
		}
	}
	groups := make(map[int]string, len(docs))
	for _, d := range docs {
		if key, ok := recordKeys[d.RecordID]; ok {
			groups[d.ID] = key
		}
	}
	return groups
}

// scoreSentiment scores the deduplicated posts overall and per facet.
func scoreSentiment(cfg *Config, deduped []records.Record, facets []report.Facet) *sentiment.Summary {
	texts := make([]string, len(deduped))
	for i, r := range deduped {
		texts[i] = r.PostText
	}
	overall := sentiment.Summarize(texts)

	if len(facets) > 0 {
		byGroup := make(map[string][]string)
		for _, r := range deduped {
			if key := groupKey(r, cfg.GroupBy); key != "" {
				byGroup[key] = append(byGroup[key], r.PostText)
			}
		}
		for i := range facets {
			if groupTexts, ok := byGroup[facets[i].Key]; ok {
				s := sentiment.Summarize(groupTexts)
				facets[i].Sentiment = &s
			}
		}
	}
	return &overall
}

// saveResults persists the run row, its records, and the final counts.
func saveResults(cfg *Config, info report.RunInfo, recs []records.Record, counts []pipeline.WordCount, grouped []pipeline.GroupedCount) error {
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runID, err := db.SaveRun(&store.Run{
		Started:    info.Started,
		Finished:   time.Now(),
		Files:      info.Files,
		Records:    info.Records,
		Duplicates: info.Duplicates,
		Documents:  info.Documents,
		Tokens:     info.Tokens,
		Kept:       info.Kept,
		Distinct:   info.Distinct,
	})
	if err != nil {
		return err
	}
	if err := db.SavePosts(runID, recs); err != nil {
		return err
	}
	if err := db.SaveWordCounts(runID, "", counts); err != nil {
		return err
	}
	for _, g := range pipeline.Groups(grouped) {
		if err := db.SaveWordCounts(runID, g, pipeline.GroupSlice(grouped, g)); err != nil {
			return err
		}
	}
	slog.Info("Saved run to database", "run_id", runID, "db", cfg.DBPath)
	return nil
}
