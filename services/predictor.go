package services

import (
	"context"
	"fmt"
	"math"

	"github.com/realslimshanky/Pricy/artifact"
	"github.com/realslimshanky/Pricy/models"
	"github.com/realslimshanky/Pricy/utils"
)

// Predictor serves price predictions from a loaded model. It holds no mutable
// state and is shared by all request handlers.
type Predictor struct {
	model *artifact.Model
}

// NewPredictor wraps a loaded model
func NewPredictor(model *artifact.Model) *Predictor {
	return &Predictor{model: model}
}

// LoadPredictor loads the model file at path
func LoadPredictor(path string, logger *utils.Logger) (*Predictor, error) {
	model, err := artifact.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	h := model.Header()
	logger.Info("Loaded model trained at %s on %d rows (feature width %d, depth %d, %d leaves)",
		h.TrainedAt.Format("2006-01-02 15:04:05"), h.Rows, h.FeatureWidth, h.TreeDepth, h.TreeLeaves)
	return NewPredictor(model), nil
}

// Predict returns the predicted nightly price for one listing
func (p *Predictor) Predict(ctx context.Context, r models.Record) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	price, err := p.model.Predict(r)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("model produced a non-finite price")
	}
	return price, nil
}

// Header returns metadata of the served model
func (p *Predictor) Header() artifact.Header { return p.model.Header() }
