package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/realslimshanky/Pricy/models"
)

const reportWidth = 55

// maxBar caps the histogram bar length in the neighbourhood section
const maxBar = 30

// PrintInsightReport formats and prints the insight report
func PrintInsightReport(w io.Writer, report *models.InsightReport) {
	border := strings.Repeat("═", reportWidth)
	thin := strings.Repeat("─", reportWidth)

	fmt.Fprintf(w, "\n╔%s╗\n", border)
	fmt.Fprintf(w, "║%s║\n", center("RENTAL PRICE DATASET INSIGHTS", reportWidth))
	fmt.Fprintf(w, "╚%s╝\n", border)

	fmt.Fprintf(w, "\n OVERVIEW\n%s\n", thin)
	fmt.Fprintf(w, "  Rows Read               : %d\n", report.RawListings)
	fmt.Fprintf(w, "  Listings With Price     : %d\n", report.TotalListings)
	fmt.Fprintf(w, "  Dropped (no price)      : %d\n", report.DroppedListings)
	fmt.Fprintf(w, "  Licensed Share          : %.1f%%\n", report.LicensedShare*100)
	fmt.Fprintf(w, "  Average Price/Night     : €%.2f\n", report.AveragePrice)
	fmt.Fprintf(w, "  Median Price/Night      : €%.2f\n", report.MedianPrice)
	fmt.Fprintf(w, "  Minimum Price/Night     : €%.2f\n", report.MinPrice)
	fmt.Fprintf(w, "  Maximum Price/Night     : €%.2f\n", report.MaxPrice)

	if report.MostExpensive != nil {
		l := report.MostExpensive
		fmt.Fprintf(w, "\n MOST EXPENSIVE LISTING\n%s\n", thin)
		if l.ID != "" {
			fmt.Fprintf(w, "  ID            : %s\n", l.ID)
		}
		fmt.Fprintf(w, "  Price         : €%.2f/night\n", l.Price)
		fmt.Fprintf(w, "  Neighbourhood : %s\n", truncate(l.NeighbourhoodCleansed, 40))
		fmt.Fprintf(w, "  Room Type     : %s\n", l.RoomType)
	}

	if len(report.ListingsByNeighbourhood) > 0 {
		fmt.Fprintf(w, "\n LISTINGS PER NEIGHBOURHOOD GROUP\n%s\n", thin)
		type groupCount struct {
			group string
			count int
		}
		groups := make([]groupCount, 0, len(report.ListingsByNeighbourhood))
		top := 0
		for g, cnt := range report.ListingsByNeighbourhood {
			groups = append(groups, groupCount{g, cnt})
			top = max(top, cnt)
		}
		sort.Slice(groups, func(i, j int) bool {
			if groups[i].count != groups[j].count {
				return groups[i].count > groups[j].count
			}
			return groups[i].group < groups[j].group
		})
		for _, gc := range groups {
			bar := strings.Repeat("▓", max(1, gc.count*maxBar/top))
			fmt.Fprintf(w, "  %-25s %5d  %s\n", truncate(gc.group, 24)+":", gc.count, bar)
		}
	}

	fmt.Fprintf(w, "\n%s\n\n", border)
}

// PrintEvaluation prints regression metrics, one line per split
func PrintEvaluation(w io.Writer, reports []models.EvaluationReport) {
	thin := strings.Repeat("─", reportWidth)
	fmt.Fprintf(w, "\n MODEL EVALUATION\n%s\n", thin)
	fmt.Fprintf(w, "  %-8s %6s %10s %10s %8s\n", "Split", "Rows", "MAE", "RMSE", "R2")
	for _, r := range reports {
		fmt.Fprintf(w, "  %-8s %6d %10.2f %10.2f %8.3f\n", r.Split, r.Rows, r.MAE, r.RMSE, r.R2)
	}
	fmt.Fprintln(w)
}

func center(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	pad := (width - len(runes)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(runes)-pad)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
