package analytics

import (
	"sort"

	"github.com/findosh/brandsales/internal/models"
)

const (
	productListSize = 10

	otherLabel   = "その他"
	noRankLabel  = "N/A"
	missingLabel = "N/A"
)

// group is a set of rows sharing a key, kept in first-seen order
type group struct {
	key  string
	rows []*models.SalesRecord
}

func groupBy(rows []models.SalesRecord, key func(r *models.SalesRecord) string) []*group {
	index := make(map[string]*group)
	var groups []*group

	for i := range rows {
		r := &rows[i]
		k := key(r)
		g, ok := index[k]
		if !ok {
			g = &group{key: k}
			index[k] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, r)
	}
	return groups
}

// stats holds the per-group aggregates shared by the breakdowns. Profit
// figures only cover rows with a positive appraised price and are unweighted
// means of per-row values.
type stats struct {
	count          int
	avgPrice       float64
	avgProfit      float64
	avgProfitRate  float64
	avgNegotiation float64
}

func (g *group) stats() stats {
	var (
		priceSum, profitSum, roomSum int64
		rates                        []float64
		rooms                        int
	)

	for _, r := range g.rows {
		priceSum += r.SellingPrice
		if r.AppraisedPrice > 0 {
			profitSum += r.SellingPrice - r.AppraisedPrice
			rates = append(rates, r.ProfitRate())
		}
		if r.AdjustedExpectedSalePrice > 0 {
			roomSum += r.AdjustedExpectedSalePrice - r.AppraisedPrice
			rooms++
		}
	}

	return stats{
		count:          len(g.rows),
		avgPrice:       meanInt(priceSum, len(g.rows)),
		avgProfit:      meanInt(profitSum, len(rates)),
		avgProfitRate:  meanFloat(rates),
		avgNegotiation: meanInt(roomSum, rooms),
	}
}

func categoryMetrics(rows []models.SalesRecord) []models.CategoryMetric {
	groups := groupBy(rows, func(r *models.SalesRecord) string { return orDefault(r.Type, otherLabel) })

	out := make([]models.CategoryMetric, 0, len(groups))
	for _, g := range groups {
		st := g.stats()
		out = append(out, models.CategoryMetric{
			Category:           g.key,
			Count:              st.count,
			AvgPrice:           st.avgPrice,
			AvgGrossProfit:     st.avgProfit,
			AvgGrossProfitRate: st.avgProfitRate,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].AvgGrossProfitRate > out[j].AvgGrossProfitRate })
	return out
}

func materialMetrics(rows []models.SalesRecord) []models.MaterialMetric {
	groups := groupBy(rows, func(r *models.SalesRecord) string { return orDefault(r.Material, otherLabel) })

	out := make([]models.MaterialMetric, 0, len(groups))
	for _, g := range groups {
		st := g.stats()
		out = append(out, models.MaterialMetric{
			Material:       g.key,
			Count:          st.count,
			AvgPrice:       st.avgPrice,
			AvgGrossProfit: st.avgProfit,
			MedianPrice:    medianOf(g.rows),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func rankMetrics(rows []models.SalesRecord) []models.RankMetric {
	groups := groupBy(rows, func(r *models.SalesRecord) string { return orDefault(r.Rank, noRankLabel) })

	out := make([]models.RankMetric, 0, len(groups))
	for _, g := range groups {
		st := g.stats()
		out = append(out, models.RankMetric{
			Rank:               g.key,
			Count:              st.count,
			AvgPrice:           st.avgPrice,
			AvgGrossProfit:     st.avgProfit,
			AvgNegotiationRoom: st.avgNegotiation,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return models.RankPosition(out[i].Rank) < models.RankPosition(out[j].Rank)
	})
	return out
}

func materialRankMatrix(rows []models.SalesRecord) []models.MaterialRankCell {
	type cellKey struct{ material, rank string }

	index := make(map[cellKey]*group)
	var keys []cellKey
	for i := range rows {
		r := &rows[i]
		k := cellKey{orDefault(r.Material, otherLabel), orDefault(r.Rank, noRankLabel)}
		g, ok := index[k]
		if !ok {
			g = &group{}
			index[k] = g
			keys = append(keys, k)
		}
		g.rows = append(g.rows, r)
	}

	out := make([]models.MaterialRankCell, 0, len(keys))
	for _, k := range keys {
		g := index[k]
		st := g.stats()
		out = append(out, models.MaterialRankCell{
			Material:           k.material,
			Rank:               k.rank,
			Count:              st.count,
			MedianPrice:        medianOf(g.rows),
			AvgGrossProfitRate: st.avgProfitRate,
		})
	}
	return out
}

// rankedProducts orders rows with a positive appraised price by profit rate
// and returns the best n and the worst n, worst first
func rankedProducts(rows []models.SalesRecord, n int) (top, worst []models.ProductMetric) {
	var products []models.ProductMetric
	for i := range rows {
		r := &rows[i]
		if r.AppraisedPrice <= 0 {
			continue
		}
		products = append(products, models.ProductMetric{
			ID:              r.ID.String(),
			ModelNumber:     orDefault(r.ModelNumber, missingLabel),
			Type:            orDefault(r.Type, missingLabel),
			Material:        orDefault(r.Material, missingLabel),
			GrossProfitRate: r.ProfitRate(),
			SellingPrice:    r.SellingPrice,
			SaleDate:        r.SaleDate,
		})
	}

	sort.SliceStable(products, func(i, j int) bool { return products[i].GrossProfitRate > products[j].GrossProfitRate })

	top = products
	if len(top) > n {
		top = top[:n]
	}
	top = append([]models.ProductMetric{}, top...)

	tail := products
	if len(tail) > n {
		tail = tail[len(tail)-n:]
	}
	worst = make([]models.ProductMetric, 0, len(tail))
	for i := len(tail) - 1; i >= 0; i-- {
		worst = append(worst, tail[i])
	}
	return top, worst
}

func monthlyTrends(rows []models.SalesRecord) []models.MonthlyTrend {
	groups := groupBy(rows, func(r *models.SalesRecord) string {
		if r.YearMonth != "" {
			return r.YearMonth
		}
		return models.MonthOf(r.SaleDate)
	})

	out := make([]models.MonthlyTrend, 0, len(groups))
	for _, g := range groups {
		st := g.stats()
		var gmv int64
		for _, r := range g.rows {
			gmv += r.SellingPrice
		}
		out = append(out, models.MonthlyTrend{
			Month:              g.key,
			Count:              st.count,
			GMV:                gmv,
			AvgPrice:           st.avgPrice,
			MedianPrice:        medianOf(g.rows),
			AvgGrossProfitRate: st.avgProfitRate,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
