package pipeline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"postpulse/src/records"
)

// Document is one text field of one record, selected for analysis. IDs are
// dense from 1 in extraction order; RecordID and Field point back at the
// source record.
type Document struct {
	ID       int
	RecordID int
	Field    string
	Text     string
}

// TokenRow is one surviving token of one document. Token rows are a bag:
// counting is the only thing downstream, so nothing depends on order.
type TokenRow struct {
	DocID int
	Word  string
}

// ExtractDocuments pulls the named text fields out of each record, field
// order within record order. A record contributes no document for a field
// that is empty or blank.
func ExtractDocuments(recs []records.Record, fields []string) []Document {
	docs := make([]Document, 0, len(recs))
	id := 0
	for _, rec := range recs {
		for _, f := range fields {
			text, ok := rec.Field(f)
			if !ok || strings.TrimSpace(text) == "" {
				continue
			}
			id++
			docs = append(docs, Document{ID: id, RecordID: rec.ID, Field: f, Text: text})
		}
	}
	return docs
}

// nonToken matches runs of characters that are not letters, digits, or
// whitespace. Unicode classes rather than ASCII: exports carry accented
// and non-Latin text, and those are words, not punctuation.
var nonToken = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// Tokenize lowercases text, strips punctuation and symbols, and splits on
// whitespace. Empty or blank input yields no tokens. "Stay safe! #QTT"
// comes out as ["stay", "safe", "qtt"].
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	text = nonToken.ReplaceAllString(text, "")
	return strings.Fields(text)
}

// TokenFilter rejects noise tokens after tokenization and before stop word
// filtering. The zero value keeps everything.
type TokenFilter struct {
	MinLen      int  // drop tokens with fewer runes, 0 or 1 = off
	MaxLen      int  // drop tokens with more runes, 0 = off
	DropNumeric bool // drop tokens that are digits only
	DropURLs    bool // drop tokens that look like URL remnants
}

// Keep reports whether a token survives the filter.
func (tf TokenFilter) Keep(tok string) bool {
	n := utf8.RuneCountInString(tok)
	if tf.MinLen > 1 && n < tf.MinLen {
		return false
	}
	if tf.MaxLen > 0 && n > tf.MaxLen {
		return false
	}
	if tf.DropNumeric && isNumeric(tok) {
		return false
	}
	// The tokenizer strips "://", so URLs survive as one long token with a
	// recognizable prefix.
	if tf.DropURLs && (strings.HasPrefix(tok, "http") || strings.HasPrefix(tok, "www")) {
		return false
	}
	return true
}

func isNumeric(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// TokenizeDocuments tokenizes every document and emits one row per kept
// token, repeats included.
func TokenizeDocuments(docs []Document, tf TokenFilter) []TokenRow {
	var rows []TokenRow
	for _, doc := range docs {
		for _, tok := range Tokenize(doc.Text) {
			if !tf.Keep(tok) {
				continue
			}
			rows = append(rows, TokenRow{DocID: doc.ID, Word: tok})
		}
	}
	return rows
}

// DropWords removes rows whose word the predicate rejects. The survivors
// keep their order, so the output is a strict subset of the input.
func DropWords(rows []TokenRow, drop func(string) bool) []TokenRow {
	out := make([]TokenRow, 0, len(rows))
	for _, row := range rows {
		if drop(row.Word) {
			continue
		}
		out = append(out, row)
	}
	return out
}
