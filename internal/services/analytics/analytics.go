// Package analytics computes brand sales metrics over a filtered row set
package analytics

import (
	"errors"

	"github.com/findosh/brandsales/internal/models"
	"github.com/shopspring/decimal"
)

// ErrNoData signals that the filtered row set is empty
var ErrNoData = errors.New("no data found")

var hundred = decimal.NewFromInt(100)

// Service provides sales analytics calculations. It holds no state; every
// result is a pure function of the rows passed in.
type Service struct{}

// NewService creates a new analytics service
func NewService() *Service {
	return &Service{}
}

// Compute builds the full metrics bundle for rows
func (s *Service) Compute(rows []models.SalesRecord) (*models.MetricsBundle, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	b := &models.MetricsBundle{TotalCount: len(rows)}

	var profitRevenue int64
	for i := range rows {
		r := &rows[i]
		b.GMV += r.Revenue()
		b.TotalQuantity += r.Quantity()

		if r.AppraisedPrice > 0 {
			b.TotalGrossProfit += (r.SellingPrice - r.AppraisedPrice) * r.Quantity()
			profitRevenue += r.Revenue()
		}
	}
	b.GrossMarginPct = percent(b.TotalGrossProfit, profitRevenue)

	b.NegotiationEfficiency, b.DataQuality = negotiation(rows)
	b.PriceDistribution = priceDistribution(rows)

	b.CategoryMetrics = categoryMetrics(rows)
	b.MaterialMetrics = materialMetrics(rows)
	b.RankMetrics = rankMetrics(rows)
	b.MaterialRankMatrix = materialRankMatrix(rows)
	b.TopProducts, b.WorstProducts = rankedProducts(rows, productListSize)
	b.MonthlyTrends = monthlyTrends(rows)
	b.Anomalies = detectAnomalies(rows, maxAnomalies)

	b.AvgGrossProfitRate = b.GrossMarginPct
	b.AvgNegotiationEfficiency = b.NegotiationEfficiency

	return b, nil
}

// negotiation averages 1 - appraised/adjusted over rows whose appraised price
// stayed within the adjusted ceiling, and counts the rows that break the
// pricing expectations
func negotiation(rows []models.SalesRecord) (float64, models.DataQuality) {
	var (
		dq       models.DataQuality
		sum      float64
		valid    int
		adjusted int
	)

	for i := range rows {
		r := &rows[i]

		if r.AppraisedPrice > r.AdjustedExpectedSalePrice {
			dq.CntAppraisedGtAdjusted++
		}
		if r.SellingPrice < r.AppraisedPrice {
			dq.CntSellingLtAppraised++
		}
		if r.AdjustedExpectedSalePrice == 0 {
			dq.CntAdjustedNullOrZero++
		}

		if r.AdjustedExpectedSalePrice <= 0 {
			continue
		}
		adjusted++
		if r.AppraisedPrice <= r.AdjustedExpectedSalePrice {
			valid++
			sum += 1 - float64(r.AppraisedPrice)/float64(r.AdjustedExpectedSalePrice)
		}
	}

	dq.ExcludedFromNegotiation = adjusted - valid
	if valid == 0 {
		return 0, dq
	}
	return sum / float64(valid) * 100, dq
}

// percent returns num/den*100, or 0 when den is 0
func percent(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return decimal.NewFromInt(num).Div(decimal.NewFromInt(den)).Mul(hundred).InexactFloat64()
}

// meanInt returns sum/n, or 0 when n is 0
func meanInt(sum int64, n int) float64 {
	if n == 0 {
		return 0
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(n))).InexactFloat64()
}

func meanFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
