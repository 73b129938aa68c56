package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/realslimshanky/Pricy/models"
	"github.com/realslimshanky/Pricy/utils"
)

// CSVWriter handles writing the training frame to a CSV file
type CSVWriter struct {
	filePath string
	logger   *utils.Logger
}

// NewCSVWriter creates a new CSVWriter
func NewCSVWriter(filePath string, logger *utils.Logger) *CSVWriter {
	return &CSVWriter{filePath: filePath, logger: logger}
}

// FrameHeader is the column layout of an exported training frame
func FrameHeader() []string {
	header := make([]string, 0, len(models.CategoricalColumns)+len(models.NumericColumns)+2)
	header = append(header, models.CategoricalColumns...)
	header = append(header, models.NumericColumns...)
	return append(header, models.TextColumn, "price")
}

// WriteFrame writes training records and their target prices to CSV
func (w *CSVWriter) WriteFrame(records []models.Record, prices []float64) error {
	if len(records) != len(prices) {
		return fmt.Errorf("records and prices length mismatch: %d != %d", len(records), len(prices))
	}

	// Ensure output directory exists
	dir := filepath.Dir(w.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(w.filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(FrameHeader()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, rec := range records {
		row := make([]string, 0, len(models.CategoricalColumns)+len(models.NumericColumns)+2)
		row = append(row, rec.Categorical()...)
		for _, v := range rec.Numeric() {
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		row = append(row, rec.AmenitiesText, strconv.FormatFloat(prices[i], 'f', 2, 64))
		if err := writer.Write(row); err != nil {
			w.logger.Error("Failed to write CSV row %d: %v", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	w.logger.Info("Training frame written to: %s (%d rows)", w.filePath, len(records))
	return nil
}
