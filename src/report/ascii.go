package report

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"postpulse/src/pipeline"
)

const defaultChartWidth = 50

// BarChart renders a frequency table as a horizontal bar chart, one row
// per word, with bars scaled so the largest count spans width cells.
// The table is rendered in the order given, which is count-descending
// when it comes straight from the aggregator.
func BarChart(counts []pipeline.WordCount, width int) string {
	if len(counts) == 0 {
		return "(nothing to chart)\n"
	}
	if width <= 0 {
		width = defaultChartWidth
	}

	max := counts[0].Count
	labelWidth := 0
	for _, wc := range counts {
		if wc.Count > max {
			max = wc.Count
		}
		if n := utf8.RuneCountInString(wc.Word); n > labelWidth {
			labelWidth = n
		}
	}
	if max < 1 {
		max = 1 // avoid div by zero on all-zero tables
	}
	countWidth := len(strconv.Itoa(max))

	var b strings.Builder
	for _, wc := range counts {
		bar := int(float64(wc.Count) / float64(max) * float64(width))
		if bar < 1 && wc.Count > 0 {
			bar = 1 // keep small counts visible
		}
		// Pad by rune count, not bytes, so accented words line up.
		pad := strings.Repeat(" ", labelWidth-utf8.RuneCountInString(wc.Word))
		fmt.Fprintf(&b, "%s%s %*d |%s\n", wc.Word, pad, countWidth+1, wc.Count, strings.Repeat("█", bar))
	}
	return b.String()
}

// CountTable renders a frequency table as a ranked markdown table.
func CountTable(counts []pipeline.WordCount) string {
	if len(counts) == 0 {
		return "(no words)\n"
	}
	var b strings.Builder
	b.WriteString("| Rank | Word | Count |\n")
	b.WriteString("|-----:|------|------:|\n")
	for i, wc := range counts {
		fmt.Fprintf(&b, "| %d | %s | %d |\n", i+1, wc.Word, wc.Count)
	}
	return b.String()
}
