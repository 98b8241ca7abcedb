// Package models defines core domain types
package models

import (
	"time"

	"github.com/google/uuid"
)

// RawRecord is one tokenized CSV line keyed by header name
type RawRecord map[string]string

// SalesRecord is a validated, normalized resale transaction
type SalesRecord struct {
	ID                        uuid.UUID `json:"id"`
	SaleDate                  string    `json:"sale_date"`
	SellingPrice              int64     `json:"selling_price"`
	SalesChannel              string    `json:"sales_channel"`
	SaleContact               string    `json:"sale_contact"`
	ItemTypeGroup             string    `json:"item_type_group"`
	Brand                     string    `json:"brand"`
	Rank                      string    `json:"rank"`
	Type                      string    `json:"type"`
	ModelNumber               string    `json:"model_number"`
	Material                  string    `json:"material"`
	SaleQuantity              int64     `json:"sale_quantity"`
	AdjustedExpectedSalePrice int64     `json:"adjusted_exp_sale_price"`
	AppraisedPrice            int64     `json:"appraised_price"`
	RowHash                   string    `json:"row_hash"`
	YearMonth                 string    `json:"year_month"`
	InsertedAt                time.Time `json:"inserted_at"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

// Quantity returns the sale quantity, treating zero as a single unit
func (r *SalesRecord) Quantity() int64 {
	if r.SaleQuantity <= 0 {
		return 1
	}
	return r.SaleQuantity
}

// Revenue is selling price times quantity
func (r *SalesRecord) Revenue() int64 {
	return r.SellingPrice * r.Quantity()
}

// DeriveYearMonth sets YearMonth from the first seven characters of SaleDate
func (r *SalesRecord) DeriveYearMonth() {
	r.YearMonth = MonthOf(r.SaleDate)
}

// MonthOf returns the YYYY-MM prefix of an ISO date
func MonthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// ProfitRate returns (selling-appraised)/selling*100 for one row.
// A zero selling price yields zero.
func (r *SalesRecord) ProfitRate() float64 {
	if r.SellingPrice == 0 {
		return 0
	}
	return float64(r.SellingPrice-r.AppraisedPrice) / float64(r.SellingPrice) * 100
}

// CSVColumns lists the recognized input headers in template order
var CSVColumns = []string{
	"sale_date",
	"selling_price",
	"sales_channel",
	"sale_contact",
	"item_type_group",
	"brand",
	"rank",
	"type",
	"model_number",
	"material",
	"sale_quantity",
	"adjusted_exp_sale_price",
	"appraised_price",
}
