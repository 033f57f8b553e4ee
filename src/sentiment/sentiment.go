// Package sentiment scores post text with the VADER model and rolls the
// scores up into a per-run summary.
package sentiment

import (
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

var analyzer = govader.NewSentimentIntensityAnalyzer()

var (
	htmlTag      = regexp.MustCompile(`<[^>]*>`)
	markdownLink = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	bareURL      = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

// Clean renders markdown-ish post text to plain text and drops markup and
// links, so the scorer sees words rather than formatting. Exports written
// by scheduling tools often carry markdown, and URLs carry no sentiment.
func Clean(input string) string {
	rendered := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	text := htmlTag.ReplaceAllString(string(rendered), " ")
	text = markdownLink.ReplaceAllString(text, "$1") // keep only the link text
	text = bareURL.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// Score runs VADER over the cleaned text and returns the compound score,
// a value in [-1, 1].
func Score(text string) float64 {
	return analyzer.PolarityScores(Clean(text)).Compound
}

// Label buckets a compound score: at or above 0.20 is positive, at or
// below -0.20 is negative, anything between is neutral.
func Label(score float64) string {
	if score >= 0.20 {
		return "positive"
	}
	if score <= -0.20 {
		return "negative"
	}
	return "neutral"
}

// Summary aggregates compound scores across the posts of one run.
type Summary struct {
	Posts        int
	MeanCompound float64
	Positive     int
	Negative     int
	Neutral      int
}

// Summarize scores every text and tallies the labels. Blank posts are
// skipped so that empty rows do not drag the mean toward zero.
func Summarize(texts []string) Summary {
	var s Summary
	var sum float64
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		score := Score(t)
		sum += score
		s.Posts++
		switch Label(score) {
		case "positive":
			s.Positive++
		case "negative":
			s.Negative++
		default:
			s.Neutral++
		}
	}
	if s.Posts > 0 {
		s.MeanCompound = sum / float64(s.Posts)
	}
	return s
}
