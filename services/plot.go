package services

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotPredictions writes a predicted-vs-actual scatter chart to path.
// The image format follows the file extension (png, svg, pdf).
func PlotPredictions(path, title string, actual, predicted []float64) error {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return errors.New("plot: actual and predicted must be non-empty and aligned")
	}

	points := make(plotter.XYs, len(actual))
	hi := 0.0
	for i := range actual {
		points[i].X = actual[i]
		points[i].Y = predicted[i]
		hi = max(hi, actual[i], predicted[i])
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Actual price (€)"
	p.Y.Label.Text = "Predicted price (€)"
	p.Add(plotter.NewGrid())

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)

	ideal, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: hi, Y: hi}})
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	ideal.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(scatter, ideal)
	p.Legend.Add("listings", scatter)
	p.Legend.Add("perfect prediction", ideal)
	p.Legend.Top = true
	p.Legend.Left = true

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("plot: save %s: %w", path, err)
	}
	return nil
}
