package pipeline

import (
	"log/slog"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// FreqClassFilter answers membership for one frequency class.
type FreqClassFilter interface {
	Contains(word string) bool
}

// SetFilter backs small classes with an exact hash set.
type SetFilter struct {
	words map[string]bool
}

func (sf *SetFilter) Contains(word string) bool {
	return sf.words[word]
}

// BloomFilterWrapper backs large classes with a Bloom filter. Lookups can
// report false positives but never false negatives, which is acceptable
// for vocabulary profiling.
type BloomFilterWrapper struct {
	filter *bloom.BloomFilter
}

func (bf *BloomFilterWrapper) Contains(word string) bool {
	return bf.filter.TestString(word)
}

// setFilterMax is the class size at which membership switches from an
// exact set to a Bloom filter sized at 10 bits and 10 hashes per word.
const setFilterMax = 1000

// FreqClasses partitions a vocabulary into classes of roughly equal total
// occurrences. Class 0 holds the handful of most frequent words, the last
// class the long tail; the slices record how many distinct words and how
// many occurrences landed in each.
type FreqClasses struct {
	Filters []FreqClassFilter
	Words   []int
	Shares  []int
}

// BuildFreqClasses splits a frequency table into f classes, each covering
// roughly 1/f of all token occurrences. The table must already be sorted
// count-descending, which is how CountWords returns it. f of zero or less
// builds a single class.
func BuildFreqClasses(counts []WordCount, f int) *FreqClasses {
	if f <= 0 {
		f = 1
	}
	total := 0
	for _, wc := range counts {
		total += wc.Count
	}
	target := total / f

	// Walk the table most-frequent first, moving to the next class each
	// time the running total crosses a class boundary.
	classes := make([][]string, f)
	words := make([]int, f)
	shares := make([]int, f)
	classIdx := 0
	running := 0
	for _, wc := range counts {
		if classIdx < f-1 && running >= (classIdx+1)*target {
			classIdx++
		}
		classes[classIdx] = append(classes[classIdx], wc.Word)
		words[classIdx]++
		shares[classIdx] += wc.Count
		running += wc.Count
	}

	// Build the filters in parallel, one goroutine per class.
	filters := make([]FreqClassFilter, f)
	var wg sync.WaitGroup
	for i := 0; i < f; i++ {
		wg.Add(1)
		go func(ci int) {
			defer wg.Done()
			n := len(classes[ci])
			if n < setFilterMax {
				set := &SetFilter{words: make(map[string]bool, n)}
				for _, w := range classes[ci] {
					set.words[w] = true
				}
				filters[ci] = set
				return
			}
			bf := bloom.New(uint(n*10), 10)
			for _, w := range classes[ci] {
				bf.AddString(w)
			}
			filters[ci] = &BloomFilterWrapper{filter: bf}
		}(i)
	}
	wg.Wait()

	for i := 0; i < f; i++ {
		slog.Debug("Frequency class built", "class", i+1, "words", words[i], "occurrences", shares[i])
	}

	return &FreqClasses{Filters: filters, Words: words, Shares: shares}
}

// ClassOf returns the index of the class containing word. Words that were
// never counted land in the last class, alongside the rest of the long
// tail.
func (fc *FreqClasses) ClassOf(word string) int {
	for i, f := range fc.Filters {
		if f.Contains(word) {
			return i
		}
	}
	return len(fc.Filters) - 1
}
