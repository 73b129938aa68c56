package services

import (
	"errors"

	"github.com/realslimshanky/Pricy/models"
)

// ErrEmptyTrainingSet is returned when no listing survives cleaning with every
// numeric column present.
var ErrEmptyTrainingSet = errors.New("no complete listings left to train on")

// BuildTrainingFrame selects the model columns of each listing and drops
// listings with any missing numeric value. Missing categoricals stay as "".
// The returned prices are aligned with the records.
func BuildTrainingFrame(listings []*models.Listing) ([]models.Record, []float64, error) {
	records := make([]models.Record, 0, len(listings))
	prices := make([]float64, 0, len(listings))
	for _, l := range listings {
		if l == nil {
			continue
		}
		r, ok := l.Record()
		if !ok {
			continue
		}
		records = append(records, r)
		prices = append(prices, l.Price)
	}
	if len(records) == 0 {
		return nil, nil, ErrEmptyTrainingSet
	}
	return records, prices, nil
}
