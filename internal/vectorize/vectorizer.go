package vectorize

import (
	"fmt"
	"math"
	"sort"

	"github.com/hyperjump/simstream/internal/models"
	"github.com/hyperjump/simstream/internal/vector"
)

// Options configures a Vectorizer.
type Options struct {
	MaxFeatures    int
	NGramMax       int
	MinTokenLength int
	CacheSize      int
}

// DefaultOptions returns the standard vectorizer settings.
func DefaultOptions() Options {
	return Options{
		MaxFeatures:    50000,
		NGramMax:       2,
		MinTokenLength: 2,
		CacheSize:      1024,
	}
}

// Vectorizer fits TF-IDF models over a corpus.
type Vectorizer struct {
	opts      Options
	tokenizer *Tokenizer
}

// NewVectorizer validates opts and prepares the tokenizer.
func NewVectorizer(opts Options) (*Vectorizer, error) {
	if opts.MaxFeatures < 1 {
		return nil, fmt.Errorf("max features must be at least 1, got %d", opts.MaxFeatures)
	}
	tok, err := NewTokenizer(opts.MinTokenLength, opts.NGramMax)
	if err != nil {
		return nil, err
	}
	return &Vectorizer{opts: opts, tokenizer: tok}, nil
}

// Options returns the settings the vectorizer was built with.
func (v *Vectorizer) Options() Options {
	return v.opts
}

// Fit learns the vocabulary and IDF weights from texts and returns a frozen
// model holding the weighted, L2-normalized matrix of texts in input order.
// An empty corpus yields a model with no vocabulary and no rows.
func (v *Vectorizer) Fit(texts []string) (*Model, error) {
	docs := make([][]string, len(texts))
	df := make(map[string]int)
	for i, text := range texts {
		terms := v.tokenizer.Terms(text)
		docs[i] = terms
		seen := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	terms := selectVocabulary(df, v.opts.MaxFeatures)
	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(texts))
	for col, term := range terms {
		vocab[term] = col
		idf[col] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	m := &Model{
		tokenizer: v.tokenizer,
		vocab:     vocab,
		terms:     terms,
		idf:       idf,
		cache:     NewVectorCache(v.opts.CacheSize),
	}
	rows := make([]vector.Sparse, len(docs))
	for i, doc := range docs {
		rows[i] = m.weigh(doc)
	}
	matrix, err := vector.NewMatrix(len(terms), rows)
	if err != nil {
		return nil, fmt.Errorf("build reference matrix: %w", err)
	}
	m.matrix = matrix
	return m, nil
}

// selectVocabulary keeps at most limit terms, preferring higher document
// frequency and then lexical order, and returns them sorted ascending.
func selectVocabulary(df map[string]int, limit int) []string {
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	if len(terms) > limit {
		sort.Slice(terms, func(i, j int) bool {
			if df[terms[i]] != df[terms[j]] {
				return df[terms[i]] > df[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:limit]
	}
	sort.Strings(terms)
	return terms
}

// Model is a fitted vocabulary with its IDF weights and reference matrix.
// It is never modified after Fit returns.
type Model struct {
	tokenizer *Tokenizer
	vocab     map[string]int
	terms     []string
	idf       []float64
	matrix    *vector.Matrix
	cache     *VectorCache
}

// Transform maps text into the model's vector space. Terms outside the
// vocabulary are ignored; empty text yields a zero vector.
func (m *Model) Transform(text string) (vector.Sparse, error) {
	if m == nil || m.vocab == nil || m.tokenizer == nil {
		return vector.Sparse{}, &models.NotFittedError{}
	}
	if v, ok := m.cache.Get(text); ok {
		return v, nil
	}
	v := m.weigh(m.tokenizer.Terms(text))
	m.cache.Set(text, v)
	return v, nil
}

func (m *Model) weigh(terms []string) vector.Sparse {
	weights := make(map[int]float64)
	for _, term := range terms {
		if col, ok := m.vocab[term]; ok {
			weights[col]++
		}
	}
	for col, count := range weights {
		weights[col] = count * m.idf[col]
	}
	v := vector.NewSparse(weights)
	vector.NormalizeL2(v)
	return v
}

// Matrix returns the reference matrix built during Fit.
func (m *Model) Matrix() *vector.Matrix {
	if m == nil {
		return nil
	}
	return m.matrix
}

// VocabularySize reports the number of columns.
func (m *Model) VocabularySize() int {
	if m == nil {
		return 0
	}
	return len(m.terms)
}

// Terms returns the vocabulary in column order.
func (m *Model) Terms() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.terms))
	copy(out, m.terms)
	return out
}

// IDF returns the inverse document frequency of term and whether it is in the vocabulary.
func (m *Model) IDF(term string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	col, ok := m.vocab[term]
	if !ok {
		return 0, false
	}
	return m.idf[col], true
}

// Cache exposes the transform cache; nil when caching is disabled.
func (m *Model) Cache() *VectorCache {
	if m == nil {
		return nil
	}
	return m.cache
}
