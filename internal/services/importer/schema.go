package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/findosh/brandsales/internal/models"
)

var datePattern = regexp.MustCompile(`^(\d{4})[/-](\d{1,2})[/-](\d{1,2})$`)

// ValidateRecord converts one raw CSV record into a normalized SalesRecord.
// Every invalid field produces its own FieldError; the record is only usable
// when the returned slice is empty.
func ValidateRecord(raw models.RawRecord) (models.SalesRecord, []models.FieldError) {
	var (
		rec  models.SalesRecord
		errs []models.FieldError
	)

	fail := func(field, format string, args ...interface{}) {
		errs = append(errs, models.FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if date, err := parseStrictDate(raw["sale_date"]); err != nil {
		fail("sale_date", "%v", err)
	} else {
		rec.SaleDate = date
	}

	price, ok, err := parseInteger(raw["selling_price"])
	switch {
	case err != nil:
		fail("selling_price", "expected integer, got %q", raw["selling_price"])
	case !ok:
		fail("selling_price", "required")
	case price < 0:
		fail("selling_price", "must be non-negative, got %d", price)
	default:
		rec.SellingPrice = price
	}

	rec.SaleQuantity = 1
	if qty, ok, err := parseInteger(raw["sale_quantity"]); err != nil {
		fail("sale_quantity", "expected integer, got %q", raw["sale_quantity"])
	} else if ok {
		if qty < 1 {
			fail("sale_quantity", "must be a positive integer, got %d", qty)
		} else {
			rec.SaleQuantity = qty
		}
	}

	if v, ok, err := parseInteger(raw["adjusted_exp_sale_price"]); err != nil {
		fail("adjusted_exp_sale_price", "expected integer, got %q", raw["adjusted_exp_sale_price"])
	} else if ok && v < 0 {
		fail("adjusted_exp_sale_price", "must be non-negative, got %d", v)
	} else {
		rec.AdjustedExpectedSalePrice = v
	}

	if v, ok, err := parseInteger(raw["appraised_price"]); err != nil {
		fail("appraised_price", "expected integer, got %q", raw["appraised_price"])
	} else if ok && v < 0 {
		fail("appraised_price", "must be non-negative, got %d", v)
	} else {
		rec.AppraisedPrice = v
	}

	rec.SalesChannel = strings.TrimSpace(raw["sales_channel"])
	rec.SaleContact = strings.TrimSpace(raw["sale_contact"])
	rec.ItemTypeGroup = strings.TrimSpace(raw["item_type_group"])
	rec.Brand = strings.TrimSpace(raw["brand"])
	rec.Rank = strings.TrimSpace(raw["rank"])
	rec.Type = strings.TrimSpace(raw["type"])
	rec.ModelNumber = strings.TrimSpace(raw["model_number"])
	rec.Material = strings.TrimSpace(raw["material"])

	if len(errs) == 0 {
		rec.DeriveYearMonth()
	}
	return rec, errs
}

// parseStrictDate accepts YYYY/MM/DD or YYYY-MM-DD and rejects dates that
// do not exist on the calendar
func parseStrictDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("required")
	}

	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("invalid date format: %s. Expected YYYY/MM/DD or YYYY-MM-DD", s)
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", fmt.Errorf("invalid date: %s", s)
	}

	return t.Format("2006-01-02"), nil
}

// parseInteger strips thousands separators and parses a base-10 integer.
// ok is false when the field is absent or blank.
func parseInteger(s string) (value int64, ok bool, err error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false, nil
	}

	value, err = strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return value, true, nil
}
