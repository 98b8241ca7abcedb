package importer

import (
	"testing"

	"github.com/findosh/brandsales/internal/models"
)

func TestParseStrictDate(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"2024/02/29", "2024-02-29", false},
		{"2023/02/29", "", true},
		{"2024-3-5", "2024-03-05", false},
		{"2024/12/31", "2024-12-31", false},
		{"2024/02/30", "", true},
		{"2024/13/01", "", true},
		{"24/01/01", "", true},
		{"2024.01.01", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseStrictDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidateRecord_Defaults(t *testing.T) {
	rec, errs := ValidateRecord(models.RawRecord{
		"sale_date":     "2024/05/01",
		"selling_price": "1,250,000",
	})
	if len(errs) != 0 {
		t.Fatalf("Expected no errors, got %v", errs)
	}

	if rec.SaleDate != "2024-05-01" {
		t.Errorf("SaleDate: got %s", rec.SaleDate)
	}
	if rec.SellingPrice != 1250000 {
		t.Errorf("SellingPrice: got %d, want 1250000", rec.SellingPrice)
	}
	if rec.SaleQuantity != 1 {
		t.Errorf("SaleQuantity: got %d, want 1", rec.SaleQuantity)
	}
	if rec.AdjustedExpectedSalePrice != 0 || rec.AppraisedPrice != 0 {
		t.Error("Expected optional prices to default to 0")
	}
	if rec.Brand != "" || rec.Material != "" {
		t.Error("Expected optional strings to default to empty")
	}
	if rec.YearMonth != "2024-05" {
		t.Errorf("YearMonth: got %s", rec.YearMonth)
	}
}

func TestValidateRecord_FieldErrors(t *testing.T) {
	tests := []struct {
		name       string
		raw        models.RawRecord
		wantFields []string
	}{
		{
			name:       "non-numeric selling price",
			raw:        models.RawRecord{"sale_date": "2024/01/01", "selling_price": "abc"},
			wantFields: []string{"selling_price"},
		},
		{
			name:       "negative selling price",
			raw:        models.RawRecord{"sale_date": "2024/01/01", "selling_price": "-5"},
			wantFields: []string{"selling_price"},
		},
		{
			name:       "missing selling price",
			raw:        models.RawRecord{"sale_date": "2024/01/01"},
			wantFields: []string{"selling_price"},
		},
		{
			name:       "decimal selling price",
			raw:        models.RawRecord{"sale_date": "2024/01/01", "selling_price": "10.5"},
			wantFields: []string{"selling_price"},
		},
		{
			name: "multiple bad fields",
			raw: models.RawRecord{
				"sale_date":       "2024/02/30",
				"selling_price":   "x",
				"sale_quantity":   "0",
				"appraised_price": "-1",
			},
			wantFields: []string{"sale_date", "selling_price", "sale_quantity", "appraised_price"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := ValidateRecord(tt.raw)
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("Expected %d errors, got %d: %v", len(tt.wantFields), len(errs), errs)
			}
			for i, field := range tt.wantFields {
				if errs[i].Field != field {
					t.Errorf("Error %d: got field %s, want %s", i, errs[i].Field, field)
				}
				if errs[i].Message == "" {
					t.Errorf("Error %d: expected a message", i)
				}
			}
		})
	}
}
