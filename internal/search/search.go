// Package search ranks cached pricing records and recall notices by keyword
// overlap with a customer query. The ranking exists to bound the size and
// cost of the downstream summarization call, not to be a real search engine.
package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/garagehq/servicebot/internal/pricing"
	"github.com/garagehq/servicebot/internal/recall"
)

const (
	// DefaultTopK caps how many ranked records reach the summarizer.
	DefaultTopK = 5
	// DefaultMinScore rejects single-incidental-word matches.
	DefaultMinScore = 2
	// minTokenLen drops stopword-sized tokens from scoring.
	minTokenLen = 3
)

var fold = cases.Fold()

// Options tunes the pricing ranking. Zero values fall back to the defaults.
type Options struct {
	TopK     int
	MinScore int
}

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.MinScore <= 0 {
		o.MinScore = DefaultMinScore
	}
	return o
}

// Tokenize splits a query on whitespace, case-folds each token, and drops
// tokens shorter than three characters.
func Tokenize(query string) []string {
	var tokens []string
	for _, t := range strings.Fields(query) {
		t = fold.String(t)
		if utf8.RuneCountInString(t) >= minTokenLen {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

type scoredMatch struct {
	record pricing.Record
	score  int
}

// Pricing scores every record by how many query tokens appear in its search
// blob and returns the top matches, best first. Ties keep cache order.
func Pricing(records []pricing.Record, query string, opts Options) []pricing.Record {
	opts = opts.withDefaults()

	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	var matches []scoredMatch
	for _, rec := range records {
		blob := rec.SearchBlob()
		score := 0
		for _, t := range tokens {
			if strings.Contains(blob, t) {
				score++
			}
		}
		if score >= opts.MinScore {
			matches = append(matches, scoredMatch{record: rec, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if len(matches) > opts.TopK {
		matches = matches[:opts.TopK]
	}

	out := make([]pricing.Record, len(matches))
	for i, m := range matches {
		out[i] = m.record
	}
	return out
}

// Recalls returns every notice whose folded name contains any qualifying
// query token. Looser than the pricing match on purpose: recall names are
// short and a single hit is meaningful.
func Recalls(notices []recall.Descriptor, query string) []recall.Descriptor {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	var out []recall.Descriptor
	for _, d := range notices {
		name := fold.String(d.Name)
		for _, t := range tokens {
			if strings.Contains(name, t) {
				out = append(out, d)
				break
			}
		}
	}
	return out
}
