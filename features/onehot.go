package features

import (
	"fmt"
	"sort"
)

// OneHotEncoder maps each categorical column to a block of binary indicators
// over the categories observed at fit time. Unknown categories produce an
// all-zero block.
type OneHotEncoder struct {
	Categories [][]string

	index   []map[string]int
	offsets []int
	width   int
}

// NewOneHotEncoder returns an unfitted encoder.
func NewOneHotEncoder() *OneHotEncoder { return &OneHotEncoder{} }

// Fitted reports whether Fit has captured the vocabularies.
func (e *OneHotEncoder) Fitted() bool { return e.Categories != nil }

// Fit collects the sorted category vocabulary of every column.
func (e *OneHotEncoder) Fit(rows [][]string) error {
	if len(rows) == 0 {
		return ErrEmptyInput
	}
	nCols := len(rows[0])
	seen := make([]map[string]struct{}, nCols)
	for j := range seen {
		seen[j] = make(map[string]struct{})
	}
	for i, row := range rows {
		if len(row) != nCols {
			return fmt.Errorf("onehot: row %d has %d columns, want %d", i, len(row), nCols)
		}
		for j, v := range row {
			seen[j][v] = struct{}{}
		}
	}

	categories := make([][]string, nCols)
	for j, set := range seen {
		cats := make([]string, 0, len(set))
		for v := range set {
			cats = append(cats, v)
		}
		sort.Strings(cats)
		categories[j] = cats
	}
	e.Categories = categories
	e.buildIndex()
	return nil
}

// buildIndex derives the lookup tables from Categories.
func (e *OneHotEncoder) buildIndex() {
	e.index = make([]map[string]int, len(e.Categories))
	e.offsets = make([]int, len(e.Categories))
	e.width = 0
	for j, cats := range e.Categories {
		m := make(map[string]int, len(cats))
		for k, v := range cats {
			m[v] = k
		}
		e.index[j] = m
		e.offsets[j] = e.width
		e.width += len(cats)
	}
}

// TransformRow writes the indicators of one row into dst (len Width(), zeroed).
func (e *OneHotEncoder) TransformRow(dst []float64, row []string) {
	for j, v := range row {
		if k, ok := e.index[j][v]; ok {
			dst[e.offsets[j]+k] = 1
		}
	}
}

// Width is the total number of indicator columns.
func (e *OneHotEncoder) Width() int { return e.width }
