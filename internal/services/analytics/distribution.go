package analytics

import (
	"sort"

	"github.com/findosh/brandsales/internal/models"
)

const (
	minOutlierSample = 5
	maxOutliers      = 10
	tukeyFence       = 1.5
)

// quartiles returns nearest-rank Q1, median and Q3 at floor(n*p)
func quartiles(values []int64) (q1, median, q3 int64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0
	}

	sorted := make([]int64, n)
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return sorted[n/4], sorted[n/2], sorted[n*3/4]
}

func medianOf(rows []*models.SalesRecord) int64 {
	prices := make([]int64, len(rows))
	for i, r := range rows {
		prices[i] = r.SellingPrice
	}
	_, median, _ := quartiles(prices)
	return median
}

func priceDistribution(rows []models.SalesRecord) models.PriceDistribution {
	prices := make([]int64, len(rows))
	for i := range rows {
		prices[i] = rows[i].SellingPrice
	}

	q1, median, q3 := quartiles(prices)
	dist := models.PriceDistribution{
		Median:   median,
		Q1:       q1,
		Q3:       q3,
		Min:      prices[0],
		Max:      prices[0],
		Outliers: []models.PriceOutlier{},
	}
	for _, p := range prices {
		if p < dist.Min {
			dist.Min = p
		}
		if p > dist.Max {
			dist.Max = p
		}
	}

	if len(rows) < minOutlierSample {
		return dist
	}

	iqr := float64(q3 - q1)
	lower := float64(q1) - tukeyFence*iqr
	upper := float64(q3) + tukeyFence*iqr

	for i := range rows {
		r := &rows[i]
		price := float64(r.SellingPrice)
		if price >= lower && price <= upper {
			continue
		}
		dist.Outliers = append(dist.Outliers, models.PriceOutlier{
			ID:    r.ID.String(),
			Price: r.SellingPrice,
			Type:  orDefault(r.Type, "N/A"),
			Date:  r.SaleDate,
		})
		if len(dist.Outliers) == maxOutliers {
			break
		}
	}
	return dist
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
