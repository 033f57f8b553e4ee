package pipeline

import (
	"fmt"
	"testing"
)

// TestBuildFreqClassesPartition checks that classes cover the vocabulary
// in frequency order and that the occurrence shares add back up.
//
// Rationale: class boundaries drive the vocabulary breakdown in the
// report. Losing or double-counting a word there would misstate how
// much of the corpus the frequent words account for.
func TestBuildFreqClassesPartition(t *testing.T) {
	// One dominant word, a medium band, and a short tail.
	counts := []WordCount{
		{"dominant", 100},
		{"mid1", 30}, {"mid2", 30}, {"mid3", 30},
		{"tail1", 5}, {"tail2", 5}, {"tail3", 5}, {"tail4", 5},
	}

	fc := BuildFreqClasses(counts, 2)
	if len(fc.Filters) != 2 {
		t.Fatalf("Expected 2 classes, got %d", len(fc.Filters))
	}

	totalWords := 0
	totalShare := 0
	for i := range fc.Filters {
		totalWords += fc.Words[i]
		totalShare += fc.Shares[i]
	}
	if totalWords != len(counts) {
		t.Errorf("Expected %d words across classes, got %d", len(counts), totalWords)
	}
	if totalShare != 210 {
		t.Errorf("Expected shares to sum to 210, got %d", totalShare)
	}

	// 210 occurrences over 2 classes puts the boundary at 105, so the
	// dominant word and one mid word land in class 0.
	if got := fc.ClassOf("dominant"); got != 0 {
		t.Errorf("Expected 'dominant' in class 0, got %d", got)
	}
	if got := fc.ClassOf("tail4"); got != 1 {
		t.Errorf("Expected 'tail4' in class 1, got %d", got)
	}
}

func TestBuildFreqClassesEveryWordFindable(t *testing.T) {
	counts := []WordCount{
		{"a", 50}, {"b", 25}, {"c", 12}, {"d", 6},
		{"e", 3}, {"f", 2}, {"g", 1}, {"h", 1},
	}

	fc := BuildFreqClasses(counts, 3)
	for _, wc := range counts {
		found := false
		for _, f := range fc.Filters {
			if f.Contains(wc.Word) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Word %q not found in any class", wc.Word)
		}
	}
}

func TestBuildFreqClassesSingleClass(t *testing.T) {
	counts := []WordCount{{"a", 2}, {"b", 1}}

	// Zero and negative class counts collapse to a single class.
	for _, f := range []int{1, 0, -3} {
		fc := BuildFreqClasses(counts, f)
		if len(fc.Filters) != 1 {
			t.Errorf("BuildFreqClasses(f=%d): expected 1 class, got %d", f, len(fc.Filters))
			continue
		}
		if fc.Words[0] != 2 {
			t.Errorf("BuildFreqClasses(f=%d): expected both words in the class, got %d", f, fc.Words[0])
		}
	}
}

// TestBuildFreqClassesBloomBacked pushes a class over the set filter
// limit and checks that lookups still succeed.
//
// Rationale: Bloom filters can report false positives but never false
// negatives, so every inserted word must still resolve to its class.
func TestBuildFreqClassesBloomBacked(t *testing.T) {
	counts := make([]WordCount, 1500)
	for i := range counts {
		counts[i] = WordCount{Word: fmt.Sprintf("word%04d", i), Count: 1}
	}

	fc := BuildFreqClasses(counts, 1)
	if _, ok := fc.Filters[0].(*BloomFilterWrapper); !ok {
		t.Fatalf("Expected a Bloom-backed class for %d words, got %T", len(counts), fc.Filters[0])
	}
	for _, wc := range counts {
		if !fc.Filters[0].Contains(wc.Word) {
			t.Errorf("Bloom class lost word %q", wc.Word)
		}
	}
}

func TestBuildFreqClassesSmallClassesUseSets(t *testing.T) {
	counts := []WordCount{{"a", 3}, {"b", 2}, {"c", 1}}

	fc := BuildFreqClasses(counts, 2)
	for i, f := range fc.Filters {
		if _, ok := f.(*SetFilter); !ok {
			t.Errorf("Expected class %d to be set-backed, got %T", i, f)
		}
	}
}

func TestClassOfUnknownWord(t *testing.T) {
	counts := []WordCount{{"a", 10}, {"b", 1}}

	// Words never counted fall through to the last class.
	fc := BuildFreqClasses(counts, 2)
	if got := fc.ClassOf("neverseen"); got != 1 {
		t.Errorf("Expected unknown word in last class, got %d", got)
	}
}

func TestBuildFreqClassesEmptyCounts(t *testing.T) {
	fc := BuildFreqClasses(nil, 3)
	if len(fc.Filters) != 3 {
		t.Fatalf("Expected 3 empty classes, got %d", len(fc.Filters))
	}
	if got := fc.ClassOf("anything"); got != 2 {
		t.Errorf("Expected miss to land in last class, got %d", got)
	}
}
