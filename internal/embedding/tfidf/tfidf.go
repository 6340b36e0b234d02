package tfidf

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"paperrag/internal/domain"
	"paperrag/internal/embedding"
)

// DefaultMaxTerms caps the vocabulary when no explicit limit is given.
const DefaultMaxTerms = 1000

// Name identifies this vectorizer in persisted snapshots.
const Name = "tfidf"

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Model is a TF-IDF vectorizer. It builds a capped vocabulary from the corpus and
// computes smoothed IDF values.
type Model struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
	maxTerms   int
	documents  int
	fitted     bool
	stopwords  map[string]struct{}
}

var _ embedding.Vectorizer = (*Model)(nil)

// New creates an unfit model keeping at most maxTerms terms.
func New(maxTerms int) *Model {
	if maxTerms <= 0 {
		maxTerms = DefaultMaxTerms
	}
	return &Model{
		vocabulary: make(map[string]int),
		maxTerms:   maxTerms,
		stopwords:  defaultStopwords(),
	}
}

// Name returns the identifier of this vectorizer implementation.
func (m *Model) Name() string { return Name }

// Fitted reports whether Fit has been called.
func (m *Model) Fitted() bool { return m.fitted }

// Dimension returns the vocabulary size.
func (m *Model) Dimension() int { return len(m.terms) }

// MaxTerms returns the vocabulary cap.
func (m *Model) MaxTerms() int { return m.maxTerms }

// Terms returns the vocabulary in dimension order.
func (m *Model) Terms() []string { return append([]string(nil), m.terms...) }

// IDF returns the weight of term, and false if the term is not in the vocabulary.
func (m *Model) IDF(term string) (float64, bool) {
	idx, ok := m.vocabulary[term]
	if !ok {
		return 0, false
	}
	return m.idf[idx], true
}

// Fit replaces the vocabulary and IDF values with ones computed from corpus.
// Terms are ranked by total count (ties by term) and the top maxTerms are kept;
// dimensions are then assigned alphabetically.
func (m *Model) Fit(corpus []string) {
	df := make(map[string]int)
	counts := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range m.tokenize(text) {
			counts[tok]++
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		ci, cj := counts[terms[i]], counts[terms[j]]
		if ci != cj {
			return ci > cj
		}
		return terms[i] < terms[j]
	})
	if len(terms) > m.maxTerms {
		terms = terms[:m.maxTerms]
	}
	sort.Strings(terms)

	n := float64(len(corpus))
	m.vocabulary = make(map[string]int, len(terms))
	m.idf = make([]float64, len(terms))
	for i, term := range terms {
		m.vocabulary[term] = i
		m.idf[i] = smoothIDF(n, float64(df[term]))
	}
	m.terms = terms
	m.documents = len(corpus)
	m.fitted = true
}

func smoothIDF(n, df float64) float64 {
	return math.Log((1+n)/(1+df)) + 1.0
}

// Transform computes the L2-normalised TF-IDF vector of text. Unknown terms are ignored.
func (m *Model) Transform(text string) embedding.SparseVector {
	if !m.fitted || len(m.terms) == 0 {
		return embedding.SparseVector{}
	}
	tf := make(map[int]int)
	for _, tok := range m.tokenize(text) {
		if idx, ok := m.vocabulary[tok]; ok {
			tf[idx]++
		}
	}
	if len(tf) == 0 {
		return embedding.SparseVector{}
	}
	indices := make([]int, 0, len(tf))
	for idx := range tf {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	vec := embedding.SparseVector{Indices: indices, Values: make([]float64, len(indices))}
	for k, idx := range indices {
		vec.Values[k] = float64(tf[idx]) * m.idf[idx]
	}
	vec.Normalize()
	return vec
}

func (m *Model) tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(raw) == 0 {
		return nil
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

// State is the persisted form of a fitted model. It is enough to reproduce Transform exactly.
type State struct {
	Name      string    `json:"name"`
	Terms     []string  `json:"terms"`
	IDF       []float64 `json:"idf"`
	MaxTerms  int       `json:"max_terms"`
	Documents int       `json:"documents"`
	Fitted    bool      `json:"fitted"`
}

// State exports the model.
func (m *Model) State() State {
	return State{
		Name:      Name,
		Terms:     append([]string(nil), m.terms...),
		IDF:       append([]float64(nil), m.idf...),
		MaxTerms:  m.maxTerms,
		Documents: m.documents,
		Fitted:    m.fitted,
	}
}

// FromState rebuilds a model from exported state.
func FromState(s State) (*Model, error) {
	if s.Name != "" && s.Name != Name {
		return nil, fmt.Errorf("%w: vectorizer %q is not %q", domain.ErrInvalidInput, s.Name, Name)
	}
	if len(s.Terms) != len(s.IDF) {
		return nil, fmt.Errorf("%w: %d terms but %d idf values", domain.ErrInvalidInput, len(s.Terms), len(s.IDF))
	}
	m := New(s.MaxTerms)
	for i, term := range s.Terms {
		if i > 0 && s.Terms[i-1] >= term {
			return nil, fmt.Errorf("%w: vocabulary not sorted at %q", domain.ErrInvalidInput, term)
		}
		m.vocabulary[term] = i
	}
	m.terms = append([]string(nil), s.Terms...)
	m.idf = append([]float64(nil), s.IDF...)
	m.documents = s.Documents
	m.fitted = s.Fitted
	return m, nil
}
