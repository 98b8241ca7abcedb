package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/findosh/brandsales/internal/models"
)

// RowHash derives the deduplication key of a sales row from its nine
// identity fields. The brand argument is the resolved brand, not rec.Brand.
func RowHash(rec *models.SalesRecord, brand string) string {
	fields := []string{
		rec.SaleDate,
		strings.ToUpper(strings.TrimSpace(brand)),
		strings.ToLower(strings.TrimSpace(rec.Type)),
		strings.ToLower(strings.TrimSpace(rec.Rank)),
		strings.ToLower(strings.TrimSpace(rec.ModelNumber)),
		strconv.FormatInt(rec.Quantity(), 10),
		strconv.FormatInt(rec.AdjustedExpectedSalePrice, 10),
		strconv.FormatInt(rec.AppraisedPrice, 10),
		strconv.FormatInt(rec.SellingPrice, 10),
	}

	sum := sha256.Sum256([]byte(strings.Join(fields, "|")))
	return hex.EncodeToString(sum[:])
}

// NormalizeBrand is the stored form of a resolved brand. RowHash applies the
// same normalization so the column and the hash never disagree.
func NormalizeBrand(brand string) string {
	return strings.ToUpper(strings.TrimSpace(brand))
}
