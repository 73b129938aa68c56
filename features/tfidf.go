package features

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gonum.org/v1/gonum/floats"
)

// Vectorizer defaults for the amenities column.
const (
	DefaultMinDF       = 5
	DefaultMaxDF       = 0.8
	DefaultMaxFeatures = 500
	DefaultNGramMax    = 2
)

var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// TfidfVectorizer turns free text into L2-normalized TF-IDF vectors over a
// vocabulary frozen at fit time.
type TfidfVectorizer struct {
	MinDF       int
	MaxDF       float64
	MaxFeatures int
	NGramMax    int

	Vocabulary []string
	IDF        []float64

	index map[string]int
}

// NewTfidfVectorizer returns an unfitted vectorizer with the default settings.
func NewTfidfVectorizer() *TfidfVectorizer {
	return &TfidfVectorizer{
		MinDF:       DefaultMinDF,
		MaxDF:       DefaultMaxDF,
		MaxFeatures: DefaultMaxFeatures,
		NGramMax:    DefaultNGramMax,
	}
}

// Fitted reports whether Fit has frozen a vocabulary.
func (v *TfidfVectorizer) Fitted() bool { return v.IDF != nil }

// Terms splits a document into lowercase tokens without stop words and
// expands them into n-grams of length 1 through NGramMax.
func (v *TfidfVectorizer) Terms(doc string) []string {
	lower := cases.Lower(language.Und).String(doc)
	raw := tokenPattern.FindAllString(lower, -1)
	tokens := raw[:0]
	for _, t := range raw {
		if !isStopWord(t) {
			tokens = append(tokens, t)
		}
	}

	maxN := v.NGramMax
	if maxN < 1 {
		maxN = 1
	}
	terms := make([]string, 0, len(tokens)*maxN)
	for n := 1; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

// Fit builds the vocabulary and inverse document frequencies from docs.
func (v *TfidfVectorizer) Fit(docs []string) error {
	if len(docs) == 0 {
		return ErrEmptyInput
	}
	if v.MaxDF <= 0 || v.MaxDF > 1 {
		return fmt.Errorf("tfidf: max_df %.2f outside (0, 1]", v.MaxDF)
	}

	df := make(map[string]int)
	total := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range v.Terms(doc) {
			total[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				df[term]++
			}
		}
	}

	n := len(docs)
	maxDocs := v.MaxDF * float64(n)
	kept := make([]string, 0, len(df))
	for term, count := range df {
		if count < v.MinDF || float64(count) > maxDocs {
			continue
		}
		kept = append(kept, term)
	}

	if v.MaxFeatures > 0 && len(kept) > v.MaxFeatures {
		sort.Slice(kept, func(i, j int) bool {
			if total[kept[i]] != total[kept[j]] {
				return total[kept[i]] > total[kept[j]]
			}
			return kept[i] < kept[j]
		})
		kept = kept[:v.MaxFeatures]
	}
	sort.Strings(kept)

	idf := make([]float64, len(kept))
	for i, term := range kept {
		idf[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}
	v.Vocabulary = kept
	v.IDF = idf
	v.buildIndex()
	return nil
}

func (v *TfidfVectorizer) buildIndex() {
	v.index = make(map[string]int, len(v.Vocabulary))
	for i, term := range v.Vocabulary {
		v.index[term] = i
	}
}

// TransformRow writes the TF-IDF vector of doc into dst (len Width(), zeroed).
// Terms outside the vocabulary are ignored.
func (v *TfidfVectorizer) TransformRow(dst []float64, doc string) {
	if len(dst) == 0 {
		return
	}
	for _, term := range v.Terms(doc) {
		if k, ok := v.index[term]; ok {
			dst[k]++
		}
	}
	floats.Mul(dst, v.IDF)
	if norm := floats.Norm(dst, 2); norm > 0 {
		floats.Scale(1/norm, dst)
	}
}

// Width is the vocabulary size.
func (v *TfidfVectorizer) Width() int { return len(v.Vocabulary) }
