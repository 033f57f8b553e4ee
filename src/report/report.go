// Package report renders the results of an analysis run as ASCII charts,
// a markdown report, and an HTML page.
package report

import (
	"fmt"
	"html"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/russross/blackfriday/v2"

	"postpulse/src/pipeline"
	"postpulse/src/records"
	"postpulse/src/sentiment"
)

// RunInfo carries the counters of one analysis run. The same numbers go
// into the report header and the stats ledger.
type RunInfo struct {
	Started    time.Time
	Files      []string
	Records    int
	Duplicates int
	Documents  int
	Tokens     int
	Kept       int
	Distinct   int
}

// ClassRow is one line of the vocabulary class breakdown.
type ClassRow struct {
	Class int // 1-based for display
	Words int
	Share int
}

// Facet is one group's slice of the word counts, plus that group's own
// sentiment summary when scoring is on.
type Facet struct {
	Key       string
	Label     string
	Counts    []pipeline.WordCount
	Sentiment *sentiment.Summary
}

// Report collects everything a run produced, ready for rendering.
type Report struct {
	Title      string
	Info       RunInfo
	ChartWidth int
	Top        []pipeline.WordCount
	MinCount   int
	Threshold  []pipeline.WordCount
	Facets     []Facet
	Classes    []ClassRow
	Sentiment  *sentiment.Summary
}

func (r *Report) title() string {
	if r.Title == "" {
		return "PostPulse Report"
	}
	return r.Title
}

// Markdown renders the full report: header, overall chart and table, the
// threshold table, one section per facet, the vocabulary class breakdown,
// and the sentiment summary.
func (r *Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.title())
	fmt.Fprintf(&b, "Generated: %s\n\n", r.Info.Started.Format("2006-01-02 15:04:05"))
	if len(r.Info.Files) > 0 {
		fmt.Fprintf(&b, "Input files: %s\n\n", strings.Join(r.Info.Files, ", "))
	}
	fmt.Fprintf(&b, "Records: %d (%d duplicates removed)  \n", r.Info.Records, r.Info.Duplicates)
	fmt.Fprintf(&b, "Documents: %d  \n", r.Info.Documents)
	fmt.Fprintf(&b, "Tokens kept: %d of %d  \n", r.Info.Kept, r.Info.Tokens)
	fmt.Fprintf(&b, "Distinct words: %d\n\n", r.Info.Distinct)

	fmt.Fprintf(&b, "## Top %d words\n\n", len(r.Top))
	b.WriteString("```text\n")
	b.WriteString(BarChart(r.Top, r.ChartWidth))
	b.WriteString("```\n\n")
	b.WriteString(CountTable(r.Top))
	b.WriteString("\n")

	if r.MinCount > 1 {
		fmt.Fprintf(&b, "## Words used at least %d times\n\n", r.MinCount)
		b.WriteString(CountTable(r.Threshold))
		b.WriteString("\n")
	}

	for _, f := range r.Facets {
		fmt.Fprintf(&b, "## %s\n\n", f.Label)
		b.WriteString("```text\n")
		b.WriteString(BarChart(f.Counts, r.ChartWidth))
		b.WriteString("```\n\n")
		if f.Sentiment != nil {
			b.WriteString(sentimentLines(f.Sentiment))
			b.WriteString("\n")
		}
	}

	if len(r.Classes) > 0 {
		b.WriteString("## Vocabulary classes\n\n")
		b.WriteString("| Class | Words | Occurrences |\n")
		b.WriteString("|------:|------:|------------:|\n")
		for _, c := range r.Classes {
			fmt.Fprintf(&b, "| %d | %d | %d |\n", c.Class, c.Words, c.Share)
		}
		b.WriteString("\n")
	}

	if r.Sentiment != nil {
		b.WriteString("## Sentiment\n\n")
		b.WriteString(sentimentLines(r.Sentiment))
	}
	return b.String()
}

func sentimentLines(s *sentiment.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Posts scored: %d, mean compound: %.3f  \n", s.Posts, s.MeanCompound)
	fmt.Fprintf(&b, "Positive: %d, negative: %d, neutral: %d\n", s.Positive, s.Negative, s.Neutral)
	return b.String()
}

// HTML renders the markdown report as a standalone page. The default
// blackfriday extension set is used here so the fenced chart blocks come
// out as preformatted text.
func (r *Report) HTML() string {
	body := blackfriday.Run([]byte(r.Markdown()))
	return fmt.Sprintf("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>%s</title></head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(r.title()), body)
}

// WriteFiles writes report.md and report.html under dir, creating the
// directory if needed. Each run overwrites the previous report.
func (r *Report) WriteFiles(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}
	mdPath := filepath.Join(dir, "report.md")
	if err := os.WriteFile(mdPath, []byte(r.Markdown()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", mdPath, err)
	}
	htmlPath := filepath.Join(dir, "report.html")
	if err := os.WriteFile(htmlPath, []byte(r.HTML()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", htmlPath, err)
	}
	slog.Info("Wrote report", "markdown", mdPath, "html", htmlPath)
	return nil
}

// MonthLabel turns a "YYYY-MM" group key into a "Month YYYY" display
// label. Keys that do not look like month keys come back unchanged, and
// out-of-range month numbers stay numeric.
func MonthLabel(key string) string {
	year, month, ok := strings.Cut(key, "-")
	if !ok {
		return key
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return key
	}
	return records.MonthName(m) + " " + year
}
