package analytics

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/findosh/brandsales/internal/models"
)

const (
	maxAnomalies     = 20
	extremeMarginPct = 90.0
)

// detectAnomalies scans rows in order and stops after limit findings
func detectAnomalies(rows []models.SalesRecord, limit int) []models.Anomaly {
	out := []models.Anomaly{}

	add := func(r *models.SalesRecord, kind models.AnomalyType, amount float64, desc string) bool {
		out = append(out, models.Anomaly{
			ID:          r.ID.String(),
			Type:        kind,
			Description: desc,
			Amount:      amount,
			Date:        r.SaleDate,
		})
		return len(out) >= limit
	}

	for i := range rows {
		r := &rows[i]

		if r.AppraisedPrice > 0 && r.SellingPrice < r.AppraisedPrice {
			desc := fmt.Sprintf("Loss sale: Sold for %s but acquired for %s", yen(r.SellingPrice), yen(r.AppraisedPrice))
			if add(r, models.AnomalyNegativeProfit, float64(r.AppraisedPrice-r.SellingPrice), desc) {
				break
			}
		}

		if r.AppraisedPrice > 0 {
			if rate := r.ProfitRate(); rate > extremeMarginPct {
				desc := fmt.Sprintf("Extreme margin: %.1f%% profit rate", rate)
				if add(r, models.AnomalyExtremeMargin, rate, desc) {
					break
				}
			}
		}

		if r.AdjustedExpectedSalePrice > 0 && r.AppraisedPrice > r.AdjustedExpectedSalePrice {
			desc := fmt.Sprintf("Over-limit purchase: Acquired for %s exceeding limit %s", yen(r.AppraisedPrice), yen(r.AdjustedExpectedSalePrice))
			if add(r, models.AnomalyOverLimitPurchase, float64(r.AppraisedPrice-r.AdjustedExpectedSalePrice), desc) {
				break
			}
		}
	}
	return out
}

func yen(v int64) string {
	return "¥" + humanize.Comma(v)
}
