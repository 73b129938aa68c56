package artifact

import (
	"fmt"

	"github.com/realslimshanky/Pricy/features"
	"github.com/realslimshanky/Pricy/models"
	"github.com/realslimshanky/Pricy/tree"
)

// Model is a loaded, read-only price model. It is safe for concurrent use.
type Model struct {
	header      Header
	transformer *features.Transformer
	regressor   *tree.DecisionTreeRegressor
}

// NewModel wraps an in-memory fitted pair, as produced by training.
func NewModel(tr *features.Transformer, reg *tree.DecisionTreeRegressor, meta Meta) (*Model, error) {
	if !tr.Fitted() || !reg.Fitted() {
		return nil, fmt.Errorf("%w: model parts are not fitted", ErrIncompatible)
	}
	if tr.Width() != reg.NumFeatures() {
		return nil, fmt.Errorf("%w: transformer width %d, regressor expects %d",
			ErrIncompatible, tr.Width(), reg.NumFeatures())
	}
	return &Model{
		header: Header{
			FormatVersion: FormatVersion,
			SchemaVersion: SchemaVersion,
			FeatureWidth:  tr.Width(),
			TrainedAt:     meta.TrainedAt,
			Rows:          meta.Rows,
			TreeDepth:     reg.Depth(),
			TreeLeaves:    reg.Leaves(),
		},
		transformer: tr,
		regressor:   reg,
	}, nil
}

// Header returns the stored model metadata.
func (m *Model) Header() Header { return m.header }

// Predict returns the predicted nightly price for one record.
func (m *Model) Predict(r models.Record) (float64, error) {
	x, err := m.transformer.TransformOne(r)
	if err != nil {
		return 0, err
	}
	return m.regressor.PredictOne(x), nil
}

// PredictBatch predicts every record in order.
func (m *Model) PredictBatch(records []models.Record) ([]float64, error) {
	X, err := m.transformer.Transform(records)
	if err != nil {
		return nil, err
	}
	return m.regressor.Predict(X), nil
}
