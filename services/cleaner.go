package services

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/realslimshanky/Pricy/models"
	"github.com/realslimshanky/Pricy/utils"
)

// truthValue is the only raw value mapped to 1 in boolean columns
const truthValue = "t"

// currencySymbol is stripped from raw prices before parsing
const currencySymbol = "€"

// DataCleaner normalizes raw dataset rows into typed Listing records
type DataCleaner struct {
	logger *utils.Logger
}

// NewDataCleaner creates a new DataCleaner
func NewDataCleaner(logger *utils.Logger) *DataCleaner {
	return &DataCleaner{logger: logger}
}

// Clean converts raw listings to cleaned listings.
// Rows whose price cannot be parsed are left out; every other malformed
// field falls back to null or 0. The input slice is never modified.
func (c *DataCleaner) Clean(raw []*models.RawListing) []*models.Listing {
	cleaned := make([]*models.Listing, 0, len(raw))

	for i, r := range raw {
		if r == nil {
			continue
		}
		listing, ok := CleanListing(r)
		if !ok {
			c.logger.Debug("Dropping row %d (id=%q): unparseable price %q", i, r.ID, r.RawPrice)
			continue
		}
		cleaned = append(cleaned, listing)
	}

	c.logger.Info("Cleaned %d listings from %d raw records (%d dropped for missing price)",
		len(cleaned), len(raw), len(raw)-len(cleaned))
	return cleaned
}

// CleanListing cleans a single raw row. It reports false when the row has no valid price.
func CleanListing(r *models.RawListing) (*models.Listing, bool) {
	price, ok := parsePrice(r.RawPrice)
	if !ok {
		return nil, false
	}

	return &models.Listing{
		ID:                         strings.TrimSpace(r.ID),
		Neighbourhood:              r.Neighbourhood,
		NeighbourhoodCleansed:      r.NeighbourhoodCleansed,
		NeighbourhoodGroupCleansed: r.NeighbourhoodGroupCleansed,
		PropertyType:               r.PropertyType,
		RoomType:                   r.RoomType,
		HostIsSuperhost:            parseTruth(r.HostIsSuperhost),
		HostHasProfilePic:          parseTruth(r.HostHasProfilePic),
		HostIdentityVerified:       parseTruth(r.HostIdentityVerified),
		IsLicensed:                 parseLicensed(r.License),
		HostResponseRate:           parsePercentage(r.HostResponseRate),
		HostAcceptanceRate:         parsePercentage(r.HostAcceptanceRate),
		Latitude:                   parseNumber(r.Latitude),
		Longitude:                  parseNumber(r.Longitude),
		Accommodates:               parseNumber(r.Accommodates),
		Bathrooms:                  parseNumber(r.Bathrooms),
		Bedrooms:                   parseNumber(r.Bedrooms),
		Beds:                       parseNumber(r.Beds),
		MinimumNights:              parseNumber(r.MinimumNights),
		MaximumNights:              parseNumber(r.MaximumNights),
		AmenitiesText:              amenitiesText(r.Amenities),
		Price:                      price,
	}, true
}

// parseTruth maps "t" to 1 and everything else, including missing values, to 0
func parseTruth(raw string) int {
	if raw == truthValue {
		return 1
	}
	return 0
}

// parseLicensed reports 1 for any non-null license, whatever it says
func parseLicensed(raw string) int {
	if raw != "" {
		return 1
	}
	return 0
}

// parsePercentage converts "95%" to 95. Unparseable input yields nil, never 0.
func parsePercentage(raw string) *int {
	s := strings.Trim(raw, "%")
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// parsePrice strips the currency symbol and parses the remaining number
func parsePrice(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, currencySymbol, ""))
	if s == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, false
	}
	return val, true
}

// parseNumber parses a plain numeric cell; missing or malformed cells yield nil
func parseNumber(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return nil
	}
	return &val
}

// amenitiesText joins the parsed amenity list with single spaces
func amenitiesText(raw string) string {
	return strings.Join(parseAmenities(raw), " ")
}

// parseAmenities decodes a serialized list such as ["Wifi", "Kitchen"] or ['Wifi', 'Kitchen'].
// Anything that is not a list of strings decodes to an empty list.
func parseAmenities(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	var items []string
	if err := json.Unmarshal([]byte(s), &items); err == nil {
		return items
	}
	items, ok := parseListLiteral(s)
	if !ok {
		return nil
	}
	return items
}

// parseListLiteral scans a list literal of quoted strings that may use single quotes.
func parseListLiteral(s string) ([]string, bool) {
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, false
	}
	body := s[1 : len(s)-1]

	var items []string
	i := 0
	expectItem := true
	for i < len(body) {
		ch := body[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == ',':
			if expectItem {
				return nil, false
			}
			expectItem = true
			i++
		case ch == '\'' || ch == '"':
			if !expectItem {
				return nil, false
			}
			item, next, ok := scanQuoted(body, i)
			if !ok {
				return nil, false
			}
			items = append(items, item)
			i = next
			expectItem = false
		default:
			return nil, false
		}
	}
	// a trailing comma is valid in a Python list literal
	return items, true
}

// scanQuoted reads a quoted string starting at body[start]; it returns the
// unescaped value and the index just past the closing quote.
func scanQuoted(body string, start int) (string, int, bool) {
	quote := body[start]
	var sb strings.Builder
	for i := start + 1; i < len(body); i++ {
		ch := body[i]
		switch {
		case ch == '\\' && i+1 < len(body):
			i++
			switch body[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(body[i])
			}
		case ch == quote:
			return sb.String(), i + 1, true
		default:
			sb.WriteByte(ch)
		}
	}
	return "", 0, false
}
