package tfidf

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	// ErrNotFitted is returned by Transform before Fit or Load.
	ErrNotFitted = errors.New("tfidf model not fitted")
	// ErrEmptyCorpus is returned by Fit when there is nothing to learn from.
	ErrEmptyCorpus = errors.New("empty corpus for TF-IDF fit")
)

// StopwordsEnglish selects the built-in English stop word list.
const StopwordsEnglish = "english"

// tokenPattern matches maximal runs of two or more Unicode word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Model is a TF-IDF vectorizer.
// It builds a vocabulary from the corpus and computes smoothed IDF values.
type Model struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
	stopwords  map[string]struct{}
	stopList   string
}

// Option configures a Model.
type Option func(*Model)

// WithStopwords enables a named stop word list. Only "english" is known;
// an empty name disables stop word filtering.
func WithStopwords(name string) Option {
	return func(m *Model) {
		m.stopList = name
		m.stopwords = stopwordList(name)
	}
}

// New creates an unfitted model.
func New(opts ...Option) *Model {
	m := &Model{vocabulary: make(map[string]int)}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Fit builds the vocabulary and IDF values from the provided corpus,
// replacing anything learned before.
func (m *Model) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return ErrEmptyCorpus
	}
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range m.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	// Create stable ordering for vocabulary
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) == 0 {
		return errors.New("no tokens found in corpus")
	}
	n := float64(len(corpus))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	m.setVocabulary(terms, idf)
	return nil
}

// Fitted reports whether the model can transform text.
func (m *Model) Fitted() bool { return len(m.terms) > 0 }

// Dimension returns the vocabulary size, which is the vector length.
func (m *Model) Dimension() int { return len(m.terms) }

// Transform computes the L2-normalized TF-IDF vector for text.
// Terms outside the fitted vocabulary contribute nothing.
func (m *Model) Transform(text string) ([]float32, error) {
	if !m.Fitted() {
		return nil, ErrNotFitted
	}
	vec := make([]float32, len(m.terms))
	tf := make(map[int]int)
	for _, tok := range m.tokenize(text) {
		if idx, ok := m.vocabulary[tok]; ok {
			tf[idx]++
		}
	}
	if len(tf) == 0 {
		return vec, nil
	}
	weights := make(map[int]float64, len(tf))
	norm := 0.0
	for idx, count := range tf {
		w := float64(count) * m.idf[idx]
		weights[idx] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for idx, w := range weights {
		vec[idx] = float32(w / norm)
	}
	return vec, nil
}

// TransformAll transforms every text in order.
func (m *Model) TransformAll(texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Transform(t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

type persisted struct {
	Terms     []string  `json:"terms"`
	IDF       []float64 `json:"idf"`
	Stopwords string    `json:"stopwords,omitempty"`
}

// Save writes the fitted model as JSON.
func (m *Model) Save(w io.Writer) error {
	if !m.Fitted() {
		return ErrNotFitted
	}
	enc := json.NewEncoder(w)
	return enc.Encode(persisted{Terms: m.terms, IDF: m.idf, Stopwords: m.stopList})
}

// Load reads a model written by Save.
func Load(r io.Reader) (*Model, error) {
	var p persisted
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if len(p.Terms) == 0 || len(p.Terms) != len(p.IDF) {
		return nil, fmt.Errorf("corrupt model: %d terms, %d idf values", len(p.Terms), len(p.IDF))
	}
	m := New(WithStopwords(p.Stopwords))
	m.setVocabulary(p.Terms, p.IDF)
	return m, nil
}

func (m *Model) setVocabulary(terms []string, idf []float64) {
	m.terms = terms
	m.idf = idf
	m.vocabulary = make(map[string]int, len(terms))
	for i, t := range terms {
		m.vocabulary[t] = i
	}
}

func (m *Model) tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(raw) == 0 || len(m.stopwords) == 0 {
		return raw
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := m.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func stopwordList(name string) map[string]struct{} {
	if name != StopwordsEnglish {
		return nil
	}
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
