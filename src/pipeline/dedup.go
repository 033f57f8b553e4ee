package pipeline

import (
	"log/slog"

	"postpulse/src/records"
)

// DedupRecords keeps the first record for each distinct value of the named
// field, preserving first-seen order. Matching is exact: case or
// whitespace differences make values distinct, and no normalization
// happens here. Running it twice returns the same records. The int is the
// number of records dropped.
func DedupRecords(recs []records.Record, field string) ([]records.Record, int) {
	seen := make(map[string]bool, len(recs))
	out := make([]records.Record, 0, len(recs))
	for _, rec := range recs {
		key, ok := rec.Field(field)
		if !ok {
			// Unknown field names are rejected by config validation long
			// before this point; keep the record rather than guess a key.
			out = append(out, rec)
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rec)
	}
	dropped := len(recs) - len(out)
	if dropped > 0 {
		slog.Info("Removed duplicate records", "field", field, "dropped", dropped, "kept", len(out))
	}
	return out, dropped
}
