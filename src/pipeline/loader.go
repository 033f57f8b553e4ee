package pipeline

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoInputFiles means the input directory had nothing matching the
// pattern. Loads fail up front rather than producing an empty analysis.
var ErrNoInputFiles = errors.New("no input files matched")

// SchemaMismatchError reports a file whose header width disagrees with the
// schema fixed by the first file of the load.
type SchemaMismatchError struct {
	File string
	Want int
	Got  int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch in %s: expected %d columns, got %d", filepath.Base(e.File), e.Want, e.Got)
}

// Table is the concatenated content of one load: every matching file in
// sorted name order, header rows skipped, all data rows appended in read
// order.
type Table struct {
	Files   []string   // files read, in read order
	Columns int        // column count fixed by the first file's header
	Rows    [][]string // data rows from all files
	Skipped int        // ragged or unreadable data rows dropped
}

// LoadDirectory reads every file in dir whose name matches pattern
// (default "*.csv"). Files ending in .gz are decompressed transparently.
// The first row of each file is a header and is skipped; column names are
// positional, so headers are never interpreted. The first file decides the
// column count and every later file must agree, otherwise the whole load
// fails with a SchemaMismatchError. Data rows narrower than the schema are
// dropped with a warning; wider rows are kept as-is.
func LoadDirectory(dir, pattern string) (*Table, error) {
	if pattern == "" {
		pattern = "*.csv"
	}
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("bad input pattern %q: %w", pattern, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrNoInputFiles, pattern, dir)
	}
	// Sort for reproducibility
	sort.Strings(files)

	table := &Table{Files: files}
	for _, file := range files {
		if err := table.readFile(file); err != nil {
			return nil, err
		}
	}
	slog.Info("Loaded input files",
		"files", len(table.Files),
		"rows", len(table.Rows),
		"columns", table.Columns,
		"skipped_rows", table.Skipped)
	return table, nil
}

// readFile appends one file's data rows to the table.
func (t *Table) readFile(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(file, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to open gzip %s: %w", file, err)
		}
		defer gz.Close()
		r = gz
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true // handle bare quotes in post text

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", file, err)
	}
	if t.Columns == 0 {
		t.Columns = len(header)
	} else if len(header) != t.Columns {
		return &SchemaMismatchError{File: file, Want: t.Columns, Got: len(header)}
	}

	base := filepath.Base(file)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("Skipping unreadable row", "file", base, "error", err)
			t.Skipped++
			continue
		}
		if len(row) < t.Columns {
			slog.Warn("Skipping short row", "file", base, "columns", len(row), "expected", t.Columns)
			t.Skipped++
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return nil
}
