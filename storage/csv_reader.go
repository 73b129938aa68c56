package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/realslimshanky/Pricy/models"
	"github.com/realslimshanky/Pricy/utils"
)

// ErrMissingColumn is returned when the dataset header lacks a required column
var ErrMissingColumn = errors.New("dataset is missing a required column")

// RequiredColumns are the raw dataset columns the cleaner needs
var RequiredColumns = []string{
	"neighbourhood",
	"neighbourhood_cleansed",
	"neighbourhood_group_cleansed",
	"property_type",
	"room_type",
	"host_is_superhost",
	"host_has_profile_pic",
	"host_identity_verified",
	"license",
	"host_response_rate",
	"host_acceptance_rate",
	"price",
	"amenities",
	"latitude",
	"longitude",
	"accommodates",
	"bathrooms",
	"bedrooms",
	"beds",
	"minimum_nights",
	"maximum_nights",
}

// naValues are the cell contents treated as missing, same as pandas' defaults
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// CSVReader loads raw listings from a comma-separated dataset file
type CSVReader struct {
	filePath string
	logger   *utils.Logger
}

// NewCSVReader creates a new CSVReader
func NewCSVReader(filePath string, logger *utils.Logger) *CSVReader {
	return &CSVReader{filePath: filePath, logger: logger}
}

// ReadRawListings reads every row of the dataset into memory
func (r *CSVReader) ReadRawListings() ([]*models.RawListing, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	listings, err := ParseRawListings(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", r.filePath, err)
	}

	r.logger.Info("Raw listings read from: %s (%d rows)", r.filePath, len(listings))
	return listings, nil
}

// ParseRawListings decodes a listings CSV stream with a header row
func ParseRawListings(src io.Reader) ([]*models.RawListing, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	var listings []*models.RawListing
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", line, err)
		}

		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(rec) {
				return ""
			}
			val := rec[i]
			if _, na := naValues[strings.TrimSpace(val)]; na {
				return ""
			}
			return val
		}

		listings = append(listings, &models.RawListing{
			ID:                         get("id"),
			Neighbourhood:              get("neighbourhood"),
			NeighbourhoodCleansed:      get("neighbourhood_cleansed"),
			NeighbourhoodGroupCleansed: get("neighbourhood_group_cleansed"),
			PropertyType:               get("property_type"),
			RoomType:                   get("room_type"),
			HostIsSuperhost:            get("host_is_superhost"),
			HostHasProfilePic:          get("host_has_profile_pic"),
			HostIdentityVerified:       get("host_identity_verified"),
			License:                    get("license"),
			HostResponseRate:           get("host_response_rate"),
			HostAcceptanceRate:         get("host_acceptance_rate"),
			RawPrice:                   get("price"),
			Amenities:                  get("amenities"),
			Latitude:                   get("latitude"),
			Longitude:                  get("longitude"),
			Accommodates:               get("accommodates"),
			Bathrooms:                  get("bathrooms"),
			Bedrooms:                   get("bedrooms"),
			Beds:                       get("beds"),
			MinimumNights:              get("minimum_nights"),
			MaximumNights:              get("maximum_nights"),
		})
	}

	return listings, nil
}
