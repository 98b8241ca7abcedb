package analytics

import (
	"sort"

	"github.com/findosh/brandsales/internal/models"
)

const marginListSize = 5

// Summarize computes the lighter margin summary. Unlike Compute it never
// fails: an empty row set yields a zeroed summary.
func (s *Service) Summarize(rows []models.SalesRecord) *models.SalesSummary {
	sum := &models.SalesSummary{
		TotalCount:     len(rows),
		RankSummary:    []models.GroupSummary{},
		MonthlySummary: []models.GroupSummary{},
		MarginLeaders:  []models.MarginRow{},
		MarginLaggards: []models.MarginRow{},
	}
	if len(rows) == 0 {
		return sum
	}

	var adjRates, appRates []float64
	margins := make([]models.MarginRow, 0, len(rows))

	for i := range rows {
		r := &rows[i]
		sum.TotalSelling += r.SellingPrice
		sum.TotalAdjusted += r.AdjustedExpectedSalePrice
		sum.TotalAppraised += r.AppraisedPrice

		marginAdj := marginAgainst(r.SellingPrice, r.AdjustedExpectedSalePrice)
		if r.AdjustedExpectedSalePrice > 0 {
			adjRates = append(adjRates, marginAdj)
		}
		if r.AppraisedPrice > 0 {
			appRates = append(appRates, r.ProfitRate())
		}

		margins = append(margins, models.MarginRow{
			ID:           r.ID.String(),
			Brand:        r.Brand,
			Type:         r.Type,
			ModelNumber:  r.ModelNumber,
			SellingPrice: r.SellingPrice,
			MarginAdj:    marginAdj,
			SaleDate:     r.SaleDate,
		})
	}

	sum.AvgMarginAdj = meanFloat(adjRates)
	sum.AvgMarginApp = meanFloat(appRates)

	for _, g := range groupBy(rows, func(r *models.SalesRecord) string { return orDefault(r.Rank, "UNKNOWN") }) {
		sum.RankSummary = append(sum.RankSummary, summarizeGroup(g, true))
	}

	months := groupBy(rows, func(r *models.SalesRecord) string { return models.MonthOf(r.SaleDate) })
	for _, g := range months {
		sum.MonthlySummary = append(sum.MonthlySummary, summarizeGroup(g, false))
	}
	sort.SliceStable(sum.MonthlySummary, func(i, j int) bool {
		return sum.MonthlySummary[i].Month < sum.MonthlySummary[j].Month
	})

	sort.SliceStable(margins, func(i, j int) bool { return margins[i].MarginAdj > margins[j].MarginAdj })
	n := marginListSize
	if n > len(margins) {
		n = len(margins)
	}
	sum.MarginLeaders = append(sum.MarginLeaders, margins[:n]...)
	for i := len(margins) - 1; i >= len(margins)-n; i-- {
		sum.MarginLaggards = append(sum.MarginLaggards, margins[i])
	}

	return sum
}

func summarizeGroup(g *group, byRank bool) models.GroupSummary {
	var total int64
	for _, r := range g.rows {
		total += r.SellingPrice
	}

	gs := models.GroupSummary{
		Count:        len(g.rows),
		TotalSelling: total,
		AvgSelling:   meanInt(total, len(g.rows)),
	}
	if byRank {
		gs.Rank = g.key
	} else {
		gs.Month = g.key
	}
	return gs
}

// marginAgainst returns (selling-cost)/selling*100, or 0 when either side is
// zero
func marginAgainst(selling, cost int64) float64 {
	if cost == 0 || selling == 0 {
		return 0
	}
	return float64(selling-cost) / float64(selling) * 100
}
