package pipeline

import "sort"

// WordCount is one row of a frequency table.
type WordCount struct {
	Word  string
	Count int
}

// CountWords builds the frequency table for a batch of token rows. The
// table is sorted by count descending with ties broken alphabetically, so
// equal inputs always produce identical output.
func CountWords(rows []TokenRow) []WordCount {
	counts := make(map[string]int)
	for _, row := range rows {
		counts[row.Word]++
	}
	out := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, WordCount{Word: w, Count: c})
	}
	sortCounts(out)
	return out
}

func sortCounts(counts []WordCount) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Word < counts[j].Word
	})
}

// TotalCount sums a frequency table. A table built from a batch of token
// rows sums back to exactly the number of rows.
func TotalCount(counts []WordCount) int {
	total := 0
	for _, wc := range counts {
		total += wc.Count
	}
	return total
}

// FilterMinCount keeps entries whose count is at least minCount. A
// threshold of 1 or less keeps everything; a threshold above the maximum
// count returns an empty table, which renders as an empty chart, not an
// error.
func FilterMinCount(counts []WordCount, minCount int) []WordCount {
	if minCount <= 1 {
		return counts
	}
	out := make([]WordCount, 0, len(counts))
	for _, wc := range counts {
		if wc.Count >= minCount {
			out = append(out, wc)
		}
	}
	return out
}

// TopN returns the first n entries of an already sorted table. n of zero
// or less, or past the end, returns the table unchanged.
func TopN(counts []WordCount, n int) []WordCount {
	if n <= 0 || n >= len(counts) {
		return counts
	}
	return counts[:n]
}

// GroupedCount is one row of a per-group frequency table.
type GroupedCount struct {
	Group string
	Word  string
	Count int
}

// CountWordsGrouped builds per-group frequency tables. groups maps a
// document id to its group key; rows whose document has no mapping (a post
// with an unparsable timestamp, say) fall out of the grouped view. Output
// is sorted by group ascending, then count descending, then word
// ascending.
func CountWordsGrouped(rows []TokenRow, groups map[int]string) []GroupedCount {
	type cell struct {
		group string
		word  string
	}
	counts := make(map[cell]int)
	for _, row := range rows {
		g, ok := groups[row.DocID]
		if !ok {
			continue
		}
		counts[cell{g, row.Word}]++
	}
	out := make([]GroupedCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, GroupedCount{Group: k.group, Word: k.word, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	return out
}

// Groups returns the distinct group keys of a grouped table, in the
// table's (sorted) order.
func Groups(grouped []GroupedCount) []string {
	var keys []string
	for _, gc := range grouped {
		if len(keys) == 0 || keys[len(keys)-1] != gc.Group {
			keys = append(keys, gc.Group)
		}
	}
	return keys
}

// GroupSlice returns one group's rows as a plain frequency table, order
// preserved.
func GroupSlice(grouped []GroupedCount, group string) []WordCount {
	var out []WordCount
	for _, gc := range grouped {
		if gc.Group == group {
			out = append(out, WordCount{Word: gc.Word, Count: gc.Count})
		}
	}
	return out
}

// TopNPerGroup keeps at most n rows per group. Like TopN it relies on the
// sort order CountWordsGrouped produced.
func TopNPerGroup(grouped []GroupedCount, n int) []GroupedCount {
	if n <= 0 {
		return grouped
	}
	out := make([]GroupedCount, 0, len(grouped))
	current := ""
	kept := 0
	for _, gc := range grouped {
		if gc.Group != current {
			current = gc.Group
			kept = 0
		}
		if kept < n {
			out = append(out, gc)
			kept++
		}
	}
	return out
}

// FilterMinCountGrouped keeps grouped rows whose count is at least
// minCount.
func FilterMinCountGrouped(grouped []GroupedCount, minCount int) []GroupedCount {
	if minCount <= 1 {
		return grouped
	}
	out := make([]GroupedCount, 0, len(grouped))
	for _, gc := range grouped {
		if gc.Count >= minCount {
			out = append(out, gc)
		}
	}
	return out
}
