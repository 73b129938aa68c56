package storage

import "github.com/realslimshanky/Pricy/models"

// RawSource defines the interface for loading raw listings
type RawSource interface {
	ReadRawListings() ([]*models.RawListing, error)
}

// CleanStorage defines the interface for storing cleaned, normalized listings
type CleanStorage interface {
	SaveClean(listings []*models.Listing) error
	Close() error
}

// FrameStorage defines the interface for exporting the training frame
type FrameStorage interface {
	WriteFrame(records []models.Record, prices []float64) error
}
