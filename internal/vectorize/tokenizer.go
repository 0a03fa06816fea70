// Package vectorize turns text into TF-IDF weighted sparse vectors.
package vectorize

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/registry"
)

// Tokenizer produces the terms counted by the vectorizer: lowercased word
// tokens with English stopwords removed, plus n-grams of adjacent tokens.
type Tokenizer struct {
	analyze  func([]byte) analysis.TokenStream
	minLen   int
	ngramMax int
}

// NewTokenizer builds a tokenizer on bleve's standard analyzer.
func NewTokenizer(minTokenLength, ngramMax int) (*Tokenizer, error) {
	if minTokenLength < 1 {
		return nil, fmt.Errorf("min token length must be at least 1, got %d", minTokenLength)
	}
	if ngramMax < 1 {
		return nil, fmt.Errorf("ngram max must be at least 1, got %d", ngramMax)
	}
	analyzer, err := registry.NewCache().AnalyzerNamed(standard.Name)
	if err != nil {
		return nil, fmt.Errorf("load %s analyzer: %w", standard.Name, err)
	}
	return &Tokenizer{
		analyze:  analyzer.Analyze,
		minLen:   minTokenLength,
		ngramMax: ngramMax,
	}, nil
}

// Terms returns every unigram and n-gram in text, in order of appearance.
// An n-gram only spans tokens that sat next to each other in the input, so a
// dropped stopword or short token ends the run.
func (t *Tokenizer) Terms(text string) []string {
	text = collapseWhitespace(text)
	if text == "" {
		return nil
	}
	tokens := t.analyze([]byte(text))
	terms := make([]string, 0, len(tokens)*t.ngramMax)

	run := make([]string, 0, t.ngramMax)
	lastPos := -1
	for _, tok := range tokens {
		term := string(tok.Term)
		if utf8.RuneCountInString(term) < t.minLen {
			continue
		}
		if lastPos < 0 || tok.Position != lastPos+1 {
			run = run[:0]
		}
		lastPos = tok.Position

		if len(run) == t.ngramMax {
			copy(run, run[1:])
			run = run[:len(run)-1]
		}
		run = append(run, term)

		terms = append(terms, term)
		for n := 2; n <= len(run); n++ {
			terms = append(terms, strings.Join(run[len(run)-n:], " "))
		}
	}
	return terms
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
