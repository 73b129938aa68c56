package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler centers and scales each column to zero mean and unit variance
// using statistics frozen at fit time.
type StandardScaler struct {
	Mean []float64
	Std  []float64
}

// NewStandardScaler returns an unfitted scaler.
func NewStandardScaler() *StandardScaler { return &StandardScaler{} }

// Fitted reports whether Fit has captured column statistics.
func (s *StandardScaler) Fitted() bool { return s.Mean != nil }

// Fit captures the per-column mean and population standard deviation.
// Constant columns get a scale of 1 so they transform to 0.
func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return ErrEmptyInput
	}
	r, c := len(X), len(X[0])
	mean := make([]float64, c)
	std := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			if len(X[i]) != c {
				return fmt.Errorf("scaler: row %d has %d columns, want %d", i, len(X[i]), c)
			}
			col[i] = X[i][j]
		}
		m, v := stat.PopMeanVariance(col, nil)
		mean[j] = m
		std[j] = math.Sqrt(v)
		if std[j] == 0 || math.IsNaN(std[j]) {
			std[j] = 1
		}
	}
	s.Mean, s.Std = mean, std
	return nil
}

// TransformRow scales one row into dst, which must have len(s.Mean) slots.
func (s *StandardScaler) TransformRow(dst, row []float64) {
	for j := range s.Mean {
		dst[j] = (row[j] - s.Mean[j]) / s.Std[j]
	}
}

// Width is the number of output columns.
func (s *StandardScaler) Width() int { return len(s.Mean) }
