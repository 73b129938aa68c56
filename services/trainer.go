package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/realslimshanky/Pricy/artifact"
	"github.com/realslimshanky/Pricy/features"
	"github.com/realslimshanky/Pricy/models"
	"github.com/realslimshanky/Pricy/storage"
	"github.com/realslimshanky/Pricy/tree"
	"github.com/realslimshanky/Pricy/utils"
)

// TrainOptions controls the optional holdout evaluation
type TrainOptions struct {
	// TestFraction of the frame held out for evaluation; 0 trains on every row
	TestFraction float64
	SplitSeed    int64

	// Optional sinks. Failures are logged and do not stop training.
	CleanSink storage.CleanStorage
	FrameSink storage.FrameStorage
}

// TrainResult summarizes a training run
type TrainResult struct {
	Header     *artifact.Header
	Model      *artifact.Model
	Insights   *models.InsightReport
	Evaluation []models.EvaluationReport

	// Actual and Predicted are the prices of the evaluation split
	// (holdout when present, training rows otherwise).
	Actual    []float64
	Predicted []float64
}

// Trainer runs the offline pipeline: clean, build the frame, fit, evaluate, save
type Trainer struct {
	cleaner  *DataCleaner
	insights *InsightService
	logger   *utils.Logger
	opts     TrainOptions
	now      func() time.Time
}

// NewTrainer creates a new Trainer
func NewTrainer(logger *utils.Logger, opts TrainOptions) *Trainer {
	return &Trainer{
		cleaner:  NewDataCleaner(logger),
		insights: NewInsightService(logger),
		logger:   logger,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Train fits a model on raw and writes the artifact to modelPath.
// No file is written when any step fails.
func (t *Trainer) Train(ctx context.Context, raw []*models.RawListing, modelPath string) (*TrainResult, error) {
	listings := t.cleaner.Clean(raw)
	result := &TrainResult{Insights: t.insights.Generate(len(raw), listings)}

	if t.opts.CleanSink != nil {
		if err := t.opts.CleanSink.SaveClean(listings); err != nil {
			t.logger.Error("Failed to store clean listings: %v", err)
		}
	}

	records, prices, err := BuildTrainingFrame(listings)
	if err != nil {
		return nil, err
	}
	t.logger.Info("Training frame: %d complete rows (%d dropped for missing numeric values)",
		len(records), len(listings)-len(records))

	if t.opts.FrameSink != nil {
		if err := t.opts.FrameSink.WriteFrame(records, prices); err != nil {
			t.logger.Error("Failed to export training frame: %v", err)
		}
	}

	trainRec, trainY, testRec, testY := splitFrame(records, prices, t.opts.TestFraction, t.opts.SplitSeed)
	if len(testRec) > 0 {
		t.logger.Info("Holding out %d of %d rows for evaluation (seed %d)",
			len(testRec), len(records), t.opts.SplitSeed)
	}

	transformer := features.NewTransformer()
	X, err := transformer.FitTransform(trainRec)
	if err != nil {
		return nil, fmt.Errorf("fit feature transformer: %w", err)
	}
	t.logger.Debug("Feature width %d", transformer.Width())

	regressor := tree.NewDecisionTreeRegressor(
		tree.WithMaxDepth(tree.DefaultMaxDepth),
		tree.WithMinSamplesLeaf(tree.DefaultMinSamplesLeaf),
	)
	start := time.Now()
	if err := regressor.FitContext(ctx, X, trainY); err != nil {
		return nil, fmt.Errorf("fit regressor: %w", err)
	}
	t.logger.Info("Fitted tree in %s: depth %d, %d leaves",
		time.Since(start).Round(time.Millisecond), regressor.Depth(), regressor.Leaves())

	trainPred := regressor.Predict(X)
	result.Evaluation = append(result.Evaluation, evaluate("train", trainY, trainPred))
	result.Actual, result.Predicted = trainY, trainPred

	if len(testRec) > 0 {
		Xtest, err := transformer.Transform(testRec)
		if err != nil {
			return nil, fmt.Errorf("transform holdout: %w", err)
		}
		testPred := regressor.Predict(Xtest)
		result.Evaluation = append(result.Evaluation, evaluate("holdout", testY, testPred))
		result.Actual, result.Predicted = testY, testPred
	}
	for _, e := range result.Evaluation {
		t.logger.Info("Evaluation on %s (%d rows): MAE %.2f, RMSE %.2f, R2 %.3f",
			e.Split, e.Rows, e.MAE, e.RMSE, e.R2)
	}

	meta := artifact.Meta{TrainedAt: t.now(), Rows: len(trainRec)}
	header, err := artifact.Save(modelPath, transformer, regressor, meta)
	if err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}
	model, err := artifact.NewModel(transformer, regressor, meta)
	if err != nil {
		return nil, err
	}
	result.Header = header
	result.Model = model
	return result, nil
}

func evaluate(split string, actual, predicted []float64) models.EvaluationReport {
	return models.EvaluationReport{
		Split: split,
		Rows:  len(actual),
		MAE:   tree.MAE(actual, predicted),
		RMSE:  tree.RMSE(actual, predicted),
		R2:    tree.R2(actual, predicted),
	}
}

// splitFrame shuffles with a fixed seed and holds out a fraction of rows.
// It returns no holdout when either side would be empty.
func splitFrame(records []models.Record, y []float64, testFraction float64, seed int64) (
	trainRec []models.Record, trainY []float64, testRec []models.Record, testY []float64) {
	n := len(records)
	nTest := int(float64(n) * testFraction)
	if testFraction <= 0 || nTest == 0 || nTest >= n {
		return records, y, nil, nil
	}

	indices := rand.New(rand.NewSource(seed)).Perm(n)
	trainRec = make([]models.Record, 0, n-nTest)
	trainY = make([]float64, 0, n-nTest)
	testRec = make([]models.Record, 0, nTest)
	testY = make([]float64, 0, nTest)
	for i, idx := range indices {
		if i < nTest {
			testRec = append(testRec, records[idx])
			testY = append(testY, y[idx])
		} else {
			trainRec = append(trainRec, records[idx])
			trainY = append(trainY, y[idx])
		}
	}
	return trainRec, trainY, testRec, testY
}
