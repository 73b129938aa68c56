package services

import (
	"sort"

	"github.com/realslimshanky/Pricy/models"
	"github.com/realslimshanky/Pricy/utils"
)

// InsightService computes analytics from the cleaned dataset
type InsightService struct {
	logger *utils.Logger
}

// NewInsightService creates a new InsightService
func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate computes price and coverage statistics for the cleaned listings.
// rawCount is the number of rows read before cleaning.
func (s *InsightService) Generate(rawCount int, listings []*models.Listing) *models.InsightReport {
	report := &models.InsightReport{
		RawListings:             rawCount,
		TotalListings:           len(listings),
		DroppedListings:         rawCount - len(listings),
		ListingsByNeighbourhood: make(map[string]int),
	}

	if len(listings) == 0 {
		s.logger.Warn("No listings to generate insights from")
		return report
	}

	prices := make([]float64, 0, len(listings))
	var totalPrice float64
	licensed := 0
	report.MinPrice = listings[0].Price
	report.MaxPrice = listings[0].Price
	report.MostExpensive = listings[0]

	for _, l := range listings {
		prices = append(prices, l.Price)
		totalPrice += l.Price
		if l.Price < report.MinPrice {
			report.MinPrice = l.Price
		}
		if l.Price > report.MaxPrice {
			report.MaxPrice = l.Price
			report.MostExpensive = l
		}
		if l.IsLicensed == 1 {
			licensed++
		}

		group := l.NeighbourhoodGroupCleansed
		if group == "" {
			group = "(unknown)"
		}
		report.ListingsByNeighbourhood[group]++
	}

	report.AveragePrice = totalPrice / float64(len(listings))
	report.LicensedShare = float64(licensed) / float64(len(listings))

	sort.Float64s(prices)
	mid := len(prices) / 2
	if len(prices)%2 == 1 {
		report.MedianPrice = prices[mid]
	} else {
		report.MedianPrice = (prices[mid-1] + prices[mid]) / 2
	}

	return report
}
