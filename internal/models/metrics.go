package models

// AnomalyType classifies a flagged sales row
type AnomalyType string

const (
	AnomalyNegativeProfit    AnomalyType = "negative_profit"
	AnomalyExtremeMargin     AnomalyType = "extreme_margin"
	AnomalyOverLimitPurchase AnomalyType = "over_limit_purchase"
)

// MetricsBundle is the aggregate computed for one filtered analytics query.
// It is never persisted.
type MetricsBundle struct {
	GMV                   int64              `json:"gmv"`
	TotalGrossProfit      int64              `json:"totalGrossProfit"`
	GrossMarginPct        float64            `json:"grossMarginPct"`
	NegotiationEfficiency float64            `json:"negotiationEfficiency"`
	TotalCount            int                `json:"totalCount"`
	TotalQuantity         int64              `json:"totalQuantity"`
	DataQuality           DataQuality        `json:"dataQuality"`
	PriceDistribution     PriceDistribution  `json:"priceDistribution"`
	CategoryMetrics       []CategoryMetric   `json:"categoryMetrics"`
	MaterialMetrics       []MaterialMetric   `json:"materialMetrics"`
	RankMetrics           []RankMetric       `json:"rankMetrics"`
	MaterialRankMatrix    []MaterialRankCell `json:"materialRankMatrix"`
	TopProducts           []ProductMetric    `json:"topProducts"`
	WorstProducts         []ProductMetric    `json:"worstProducts"`
	MonthlyTrends         []MonthlyTrend     `json:"monthlyTrends"`
	Anomalies             []Anomaly          `json:"anomalies"`

	// Deprecated aliases kept for older dashboard clients
	AvgGrossProfitRate       float64 `json:"avgGrossProfitRate"`
	AvgNegotiationEfficiency float64 `json:"avgNegotiationEfficiency"`
}

// DataQuality counts rows that violate pricing expectations
type DataQuality struct {
	CntAppraisedGtAdjusted  int `json:"cntAppraisedGtAdjusted"`
	CntSellingLtAppraised   int `json:"cntSellingLtAppraised"`
	CntAdjustedNullOrZero   int `json:"cntAdjustedNullOrZero"`
	ExcludedFromNegotiation int `json:"excludedFromNegotiation"`
}

// PriceDistribution holds nearest-rank quartiles and Tukey outliers
type PriceDistribution struct {
	Median   int64          `json:"median"`
	Q1       int64          `json:"q1"`
	Q3       int64          `json:"q3"`
	Min      int64          `json:"min"`
	Max      int64          `json:"max"`
	Outliers []PriceOutlier `json:"outliers"`
}

type PriceOutlier struct {
	ID    string `json:"id"`
	Price int64  `json:"price"`
	Type  string `json:"type"`
	Date  string `json:"date"`
}

type CategoryMetric struct {
	Category           string  `json:"category"`
	Count              int     `json:"count"`
	AvgPrice           float64 `json:"avgPrice"`
	AvgGrossProfit     float64 `json:"avgGrossProfit"`
	AvgGrossProfitRate float64 `json:"avgGrossProfitRate"`
}

type MaterialMetric struct {
	Material       string  `json:"material"`
	Count          int     `json:"count"`
	AvgPrice       float64 `json:"avgPrice"`
	AvgGrossProfit float64 `json:"avgGrossProfit"`
	MedianPrice    int64   `json:"medianPrice"`
}

type RankMetric struct {
	Rank               string  `json:"rank"`
	Count              int     `json:"count"`
	AvgPrice           float64 `json:"avgPrice"`
	AvgGrossProfit     float64 `json:"avgGrossProfit"`
	AvgNegotiationRoom float64 `json:"avgNegotiationRoom"`
}

type MaterialRankCell struct {
	Material           string  `json:"material"`
	Rank               string  `json:"rank"`
	Count              int     `json:"count"`
	MedianPrice        int64   `json:"medianPrice"`
	AvgGrossProfitRate float64 `json:"avgGrossProfitRate"`
}

// ProductMetric is one row in the top/worst margin lists
type ProductMetric struct {
	ID              string  `json:"id"`
	ModelNumber     string  `json:"model_number"`
	Type            string  `json:"type"`
	Material        string  `json:"material"`
	GrossProfitRate float64 `json:"grossProfitRate"`
	SellingPrice    int64   `json:"sellingPrice"`
	SaleDate        string  `json:"saleDate"`
}

type MonthlyTrend struct {
	Month              string  `json:"month"`
	Count              int     `json:"count"`
	GMV                int64   `json:"gmv"`
	AvgPrice           float64 `json:"avgPrice"`
	MedianPrice        int64   `json:"medianPrice"`
	AvgGrossProfitRate float64 `json:"avgGrossProfitRate"`
}

type Anomaly struct {
	ID          string      `json:"id"`
	Type        AnomalyType `json:"type"`
	Description string      `json:"description"`
	Amount      float64     `json:"amount"`
	Date        string      `json:"date"`
}

// SalesSummary is the lighter per-row margin summary served by /api/metrics
type SalesSummary struct {
	TotalSelling   int64          `json:"totalSelling"`
	TotalAdjusted  int64          `json:"totalAdjusted"`
	TotalAppraised int64          `json:"totalAppraised"`
	AvgMarginAdj   float64        `json:"avgMarginAdj"`
	AvgMarginApp   float64        `json:"avgMarginApp"`
	TotalCount     int            `json:"totalCount"`
	RankSummary    []GroupSummary `json:"rankSummary"`
	MonthlySummary []GroupSummary `json:"monthlySummary"`
	MarginLeaders  []MarginRow    `json:"marginLeaders"`
	MarginLaggards []MarginRow    `json:"marginLaggards"`
}

// GroupSummary totals selling price for one rank or one month. Only the
// matching key field is set.
type GroupSummary struct {
	Rank         string  `json:"rank,omitempty"`
	Month        string  `json:"month,omitempty"`
	Count        int     `json:"count"`
	TotalSelling int64   `json:"totalSelling"`
	AvgSelling   float64 `json:"avgSelling"`
}

// MarginRow is a sales row annotated with its margin against the adjusted
// ceiling
type MarginRow struct {
	ID           string  `json:"id"`
	Brand        string  `json:"brand"`
	Type         string  `json:"type"`
	ModelNumber  string  `json:"model_number"`
	SellingPrice int64   `json:"selling_price"`
	MarginAdj    float64 `json:"margin_adj"`
	SaleDate     string  `json:"sale_date"`
}
