// Package store persists analysis runs to a local SQLite file using the
// pure-Go driver, so results can be queried after the fact without any
// database server.
package store

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"postpulse/src/pipeline"
	"postpulse/src/records"
)

// Store handles all database operations.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite file at dbPath and applies the schema.
func Open(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		input_files TEXT NOT NULL,
		records INTEGER NOT NULL,
		duplicates INTEGER NOT NULL,
		documents INTEGER NOT NULL,
		tokens INTEGER NOT NULL,
		kept_tokens INTEGER NOT NULL,
		distinct_words INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS posts (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		record_id INTEGER NOT NULL,
		url TEXT,
		username TEXT,
		post_text TEXT,
		posted_year INTEGER,
		posted_month INTEGER,
		posted_day INTEGER,
		posted_clock TEXT,
		reacts INTEGER,
		comments INTEGER,
		PRIMARY KEY (run_id, record_id)
	);

	CREATE TABLE IF NOT EXISTS word_counts (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		word_group TEXT NOT NULL DEFAULT '',
		word TEXT NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (run_id, word_group, word)
	);

	CREATE INDEX IF NOT EXISTS idx_posts_run ON posts(run_id);
	CREATE INDEX IF NOT EXISTS idx_word_counts_run ON word_counts(run_id, word_group, count);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Run is the ledger row for one analysis run. The empty word_group in
// word_counts holds the overall table; group keys hold the facets.
type Run struct {
	ID         int64
	Started    time.Time
	Finished   time.Time
	Files      []string
	Records    int
	Duplicates int
	Documents  int
	Tokens     int
	Kept       int
	Distinct   int
}

// SaveRun inserts the run row and returns its id.
func (s *Store) SaveRun(run *Run) (int64, error) {
	filesJSON, _ := json.Marshal(run.Files)

	res, err := s.db.Exec(`
		INSERT INTO runs (started_at, finished_at, input_files, records,
			duplicates, documents, tokens, kept_tokens, distinct_words)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.Started, run.Finished, string(filesJSON), run.Records,
		run.Duplicates, run.Documents, run.Tokens, run.Kept, run.Distinct)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SavePosts inserts the deduplicated records of one run.
func (s *Store) SavePosts(runID int64, recs []records.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO posts (run_id, record_id, url, username, post_text,
			posted_year, posted_month, posted_day, posted_clock, reacts, comments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range recs {
		// Rows without a parsable timestamp keep NULL date columns.
		var year, month, day, clock any
		if r.PostedAt != nil {
			year, month, day, clock = r.PostedAt.Year, r.PostedAt.Month, r.PostedAt.Day, r.PostedAt.Clock
		}
		_, err := stmt.Exec(runID, r.ID, r.URL, r.Username, r.PostText,
			year, month, day, clock, r.ReactCount(), r.CommentCount())
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// SaveWordCounts inserts one frequency table under the given group key.
// The empty key is the overall table.
func (s *Store) SaveWordCounts(runID int64, group string, counts []pipeline.WordCount) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO word_counts (run_id, word_group, word, count)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, wc := range counts {
		if _, err := stmt.Exec(runID, group, wc.Word, wc.Count); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// TopWords reads back the highest-count words of one run and group.
func (s *Store) TopWords(runID int64, group string, limit int) ([]pipeline.WordCount, error) {
	rows, err := s.db.Query(`
		SELECT word, count FROM word_counts
		WHERE run_id = ? AND word_group = ?
		ORDER BY count DESC, word ASC
		LIMIT ?
	`, runID, group, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []pipeline.WordCount
	for rows.Next() {
		var wc pipeline.WordCount
		if err := rows.Scan(&wc.Word, &wc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, wc)
	}
	return counts, rows.Err()
}

// PostCount returns the number of posts saved for one run.
func (s *Store) PostCount(runID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}
