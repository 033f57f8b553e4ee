package records

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PostTime is the decomposed form of an exported timestamp. The exporter
// writes "M/D/YYYY HH:MM" with no zero padding and sometimes no clock at
// all. Year, Month and Day hold the raw numeric splits without any range
// check, so a bad export like month 13 survives intact. Clock is the raw
// "HH:MM" remainder, empty when the export carried only a date. Stamp is
// the assembled time.Time; it stays zero when any field is outside
// calendar range.
type PostTime struct {
	Year  int
	Month int
	Day   int
	Clock string
	Stamp time.Time
}

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// ParsePostTime parses a raw exported timestamp. It returns nil for
// anything that does not follow the M/D/YYYY [HH:MM] shape: wrong number
// of slash parts, non-numeric pieces, or a clock without a colon. A nil
// result means "no timestamp for this row"; the row itself is kept.
func ParsePostTime(raw string) *PostTime {
	clean := normalizeWhitespace(raw)
	if clean == "" {
		return nil
	}

	datePart, clockPart, _ := strings.Cut(clean, " ")
	parts := strings.Split(datePart, "/")
	if len(parts) != 3 {
		return nil
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil
	}

	pt := &PostTime{Year: year, Month: month, Day: day}

	hour, minute := 0, 0
	if clockPart != "" {
		hs, ms, ok := strings.Cut(clockPart, ":")
		if !ok {
			return nil
		}
		hour, err = strconv.Atoi(hs)
		if err != nil {
			return nil
		}
		minute, err = strconv.Atoi(ms)
		if err != nil {
			return nil
		}
		pt.Clock = clockPart
	}

	// Only assemble a time.Time when every field is in calendar range.
	// time.Date normalizes out-of-range values (month 13 becomes January),
	// so a round-trip comparison is the validity check.
	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	if t.Year() == year && int(t.Month()) == month && t.Day() == day &&
		t.Hour() == hour && t.Minute() == minute {
		pt.Stamp = t
	}
	return pt
}

// MonthName recodes a month number into its English name. Numbers outside
// 1..12 are passed through as their decimal string, exactly as they came
// out of the export.
func MonthName(m int) string {
	if m >= 1 && m <= 12 {
		return monthNames[m-1]
	}
	return strconv.Itoa(m)
}

// MonthName returns the English name of the post's month, or the bare
// number when it is out of range.
func (pt *PostTime) MonthName() string {
	return MonthName(pt.Month)
}

// MonthKey returns a sortable year-month key like "2020-03".
func (pt *PostTime) MonthKey() string {
	return fmt.Sprintf("%d-%02d", pt.Year, pt.Month)
}

// YearKey returns the year as a string.
func (pt *PostTime) YearKey() string {
	return strconv.Itoa(pt.Year)
}

// Normalize all whitespace to a single space.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
