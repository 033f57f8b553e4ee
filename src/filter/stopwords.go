package filter

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Source tags where a stop word came from.
type Source string

const (
	SourceStandard Source = "standard"
	SourceCustom   Source = "custom"
)

// StopWords is a set of words to drop from token streams, each tagged with
// the source that contributed it. Build the set up front (standard list,
// config words, optional file) and only query it afterwards. Entries are
// normalized the same way post text is tokenized (lowercased, punctuation
// stripped), so "Don't" in a word file matches the token "dont".
type StopWords struct {
	words map[string]Source
}

// NewStopWords returns a set preloaded with the standard English list.
func NewStopWords() *StopWords {
	sw := &StopWords{words: make(map[string]Source, len(standardWords))}
	for _, w := range standardWords {
		sw.add(w, SourceStandard)
	}
	return sw
}

// AddCustom adds caller-supplied words with the custom tag. A word already
// in the set stays a member; the tag records whichever source added it
// last.
func (sw *StopWords) AddCustom(words ...string) {
	for _, w := range words {
		sw.add(w, SourceCustom)
	}
}

// LoadFile adds custom words from a file, one word per line. Blank lines
// and lines starting with # are ignored.
func (sw *StopWords) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open stop word file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sw.add(line, SourceCustom)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading stop word file %s: %w", path, err)
	}
	return nil
}

var entryPunct = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// add normalizes an entry into token form before storing it. A multi-word
// entry contributes each of its words.
func (sw *StopWords) add(entry string, src Source) {
	clean := entryPunct.ReplaceAllString(strings.ToLower(entry), "")
	for _, w := range strings.Fields(clean) {
		sw.words[w] = src
	}
}

// Has reports whether token is a stop word. Tokens are expected to be
// lowercased already, which is what the tokenizer produces.
func (sw *StopWords) Has(token string) bool {
	_, ok := sw.words[token]
	return ok
}

// SourceOf returns the tag of the source that last added the word.
func (sw *StopWords) SourceOf(word string) (Source, bool) {
	src, ok := sw.words[word]
	return src, ok
}

// Len returns the number of distinct stop words in the set.
func (sw *StopWords) Len() int {
	return len(sw.words)
}

// CountBySource returns how many words each source contributed, for run
// summaries.
func (sw *StopWords) CountBySource() map[Source]int {
	counts := make(map[Source]int)
	for _, src := range sw.words {
		counts[src]++
	}
	return counts
}
