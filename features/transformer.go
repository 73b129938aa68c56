package features

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/realslimshanky/Pricy/models"
)

var (
	// ErrEmptyInput is returned when fitting on zero rows.
	ErrEmptyInput = errors.New("features: empty input")
	// ErrNotFitted is returned by Transform before FitTransform has run.
	ErrNotFitted = errors.New("features: transformer is not fitted")
	// ErrAlreadyFitted is returned by a second FitTransform call.
	ErrAlreadyFitted = errors.New("features: transformer is already fitted")
)

// Transformer maps records to numeric feature vectors laid out as
// scaled numeric columns, then one-hot blocks, then TF-IDF amenity terms.
// Once fitted it is read-only and safe for concurrent use.
type Transformer struct {
	scaler  *StandardScaler
	encoder *OneHotEncoder
	tfidf   *TfidfVectorizer
	fitted  bool
}

// NewTransformer returns an unfitted transformer.
func NewTransformer() *Transformer {
	return &Transformer{
		scaler:  NewStandardScaler(),
		encoder: NewOneHotEncoder(),
		tfidf:   NewTfidfVectorizer(),
	}
}

// Fitted reports whether the transformer holds fitted state.
func (t *Transformer) Fitted() bool { return t.fitted }

// Width is the length of every vector produced by Transform.
func (t *Transformer) Width() int {
	return t.scaler.Width() + t.encoder.Width() + t.tfidf.Width()
}

// FitTransform learns all column statistics from records and returns their
// feature matrix. It may be called once.
func (t *Transformer) FitTransform(records []models.Record) ([][]float64, error) {
	if t.fitted {
		return nil, ErrAlreadyFitted
	}
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	numeric := make([][]float64, len(records))
	categorical := make([][]string, len(records))
	docs := make([]string, len(records))
	for i, r := range records {
		numeric[i] = r.Numeric()
		categorical[i] = r.Categorical()
		docs[i] = r.AmenitiesText
	}

	if err := t.scaler.Fit(numeric); err != nil {
		return nil, fmt.Errorf("fit scaler: %w", err)
	}
	if err := t.encoder.Fit(categorical); err != nil {
		return nil, fmt.Errorf("fit one-hot encoder: %w", err)
	}
	if err := t.tfidf.Fit(docs); err != nil {
		return nil, fmt.Errorf("fit tfidf: %w", err)
	}
	t.fitted = true

	return t.Transform(records)
}

// Transform maps records to feature vectors using the fitted state.
// Output order follows input order.
func (t *Transformer) Transform(records []models.Record) ([][]float64, error) {
	if !t.fitted {
		return nil, ErrNotFitted
	}
	out := make([][]float64, len(records))
	for i, r := range records {
		out[i] = t.transformRecord(r)
	}
	return out, nil
}

// TransformOne maps a single record.
func (t *Transformer) TransformOne(r models.Record) ([]float64, error) {
	if !t.fitted {
		return nil, ErrNotFitted
	}
	return t.transformRecord(r), nil
}

func (t *Transformer) transformRecord(r models.Record) []float64 {
	row := make([]float64, t.Width())
	ns, nc := t.scaler.Width(), t.encoder.Width()
	t.scaler.TransformRow(row[:ns], r.Numeric())
	t.encoder.TransformRow(row[ns:ns+nc], r.Categorical())
	t.tfidf.TransformRow(row[ns+nc:], r.AmenitiesText)
	return row
}

// FeatureNames lists the output columns in vector order.
func (t *Transformer) FeatureNames() []string {
	names := make([]string, 0, t.Width())
	names = append(names, models.NumericColumns[:t.scaler.Width()]...)
	for j, cats := range t.encoder.Categories {
		for _, c := range cats {
			names = append(names, models.CategoricalColumns[j]+"="+c)
		}
	}
	for _, term := range t.tfidf.Vocabulary {
		names = append(names, models.TextColumn+":"+term)
	}
	return names
}

type transformerState struct {
	Mean        []float64
	Std         []float64
	Categories  [][]string
	MinDF       int
	MaxDF       float64
	MaxFeatures int
	NGramMax    int
	Vocabulary  []string
	IDF         []float64
}

// MarshalBinary encodes the fitted state with gob.
func (t *Transformer) MarshalBinary() ([]byte, error) {
	if !t.fitted {
		return nil, ErrNotFitted
	}
	state := transformerState{
		Mean:        t.scaler.Mean,
		Std:         t.scaler.Std,
		Categories:  t.encoder.Categories,
		MinDF:       t.tfidf.MinDF,
		MaxDF:       t.tfidf.MaxDF,
		MaxFeatures: t.tfidf.MaxFeatures,
		NGramMax:    t.tfidf.NGramMax,
		Vocabulary:  t.tfidf.Vocabulary,
		IDF:         t.tfidf.IDF,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, fmt.Errorf("encode transformer: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary restores a transformer encoded by MarshalBinary.
func (t *Transformer) UnmarshalBinary(data []byte) error {
	var state transformerState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return fmt.Errorf("decode transformer: %w", err)
	}
	if len(state.Mean) != len(models.NumericColumns) || len(state.Std) != len(state.Mean) {
		return fmt.Errorf("decode transformer: %d scaled columns, want %d",
			len(state.Mean), len(models.NumericColumns))
	}
	if len(state.Categories) != len(models.CategoricalColumns) {
		return fmt.Errorf("decode transformer: %d categorical columns, want %d",
			len(state.Categories), len(models.CategoricalColumns))
	}
	if len(state.Vocabulary) != len(state.IDF) {
		return fmt.Errorf("decode transformer: vocabulary has %d terms but %d idf weights",
			len(state.Vocabulary), len(state.IDF))
	}

	t.scaler = &StandardScaler{Mean: state.Mean, Std: state.Std}
	t.encoder = &OneHotEncoder{Categories: state.Categories}
	t.encoder.buildIndex()
	t.tfidf = &TfidfVectorizer{
		MinDF:       state.MinDF,
		MaxDF:       state.MaxDF,
		MaxFeatures: state.MaxFeatures,
		NGramMax:    state.NGramMax,
		Vocabulary:  state.Vocabulary,
		IDF:         state.IDF,
	}
	t.tfidf.buildIndex()
	t.fitted = true
	return nil
}
