package models

import "strings"

// SalesFilter narrows a sales query. Empty fields are not applied.
type SalesFilter struct {
	Brand     string `json:"brand,omitempty"`
	Type      string `json:"type,omitempty"`
	Material  string `json:"material,omitempty"`
	Rank      string `json:"rank,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Limit     int    `json:"-"`
	Offset    int    `json:"-"`
}

// Normalized returns a copy with the brand upper-cased and dates in the
// stored YYYY-MM-DD form
func (f SalesFilter) Normalized() SalesFilter {
	f.Brand = strings.ToUpper(strings.TrimSpace(f.Brand))
	f.Type = strings.TrimSpace(f.Type)
	f.Material = strings.TrimSpace(f.Material)
	f.Rank = strings.TrimSpace(f.Rank)
	f.StartDate = normalizeDate(f.StartDate)
	f.EndDate = normalizeDate(f.EndDate)
	return f
}

// Matches reports whether a record passes the filter. Material is a
// case-insensitive substring match; dates are inclusive.
func (f SalesFilter) Matches(r *SalesRecord) bool {
	if f.Brand != "" && r.Brand != f.Brand {
		return false
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.Rank != "" && r.Rank != f.Rank {
		return false
	}
	if f.Material != "" && !strings.Contains(strings.ToLower(r.Material), strings.ToLower(f.Material)) {
		return false
	}
	if f.StartDate != "" && r.SaleDate < f.StartDate {
		return false
	}
	if f.EndDate != "" && r.SaleDate > f.EndDate {
		return false
	}
	return true
}

const (
	// DefaultPageSize is the listing limit used when none is given
	DefaultPageSize = 100
	// MaxPageSize bounds a single listing page
	MaxPageSize = 1000
)

// PageLimit returns the listing limit, falling back to DefaultPageSize and
// capped at MaxPageSize
func (f SalesFilter) PageLimit() int {
	switch {
	case f.Limit <= 0:
		return DefaultPageSize
	case f.Limit > MaxPageSize:
		return MaxPageSize
	}
	return f.Limit
}

func normalizeDate(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "/", "-")
}
