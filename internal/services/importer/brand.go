package importer

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/findosh/brandsales/internal/models"
)

// UnknownBrand is returned when no rule identifies the brand
const UnknownBrand = "UNKNOWN"

// filenameBrands maps filename tokens to canonical brand names. Order
// matters: the first token contained in the filename wins.
var filenameBrands = []struct {
	token string
	brand string
}{
	{"moncler", "MONCLER"},
	{"louis_vuitton", "LOUIS VUITTON"},
	{"louisvuitton", "LOUIS VUITTON"},
	{"lv", "LOUIS VUITTON"},
	{"chanel", "CHANEL"},
	{"hermes", "HERMES"},
	{"gucci", "GUCCI"},
	{"prada", "PRADA"},
	{"dior", "DIOR"},
	{"cartier", "CARTIER"},
	{"rolex", "ROLEX"},
	{"celine", "CELINE"},
	{"bottega", "BOTTEGA VENETA"},
	{"bottega_veneta", "BOTTEGA VENETA"},
	{"balenciaga", "BALENCIAGA"},
	{"burberry", "BURBERRY"},
	{"fendi", "FENDI"},
	{"coach", "COACH"},
	{"canada_goose", "CANADA GOOSE"},
	{"canadagoose", "CANADA GOOSE"},
	{"supreme", "SUPREME"},
	{"off_white", "OFF-WHITE"},
	{"offwhite", "OFF-WHITE"},
}

// itemGroupBrands is the secondary keyword pass over item_type_group
var itemGroupBrands = []struct {
	keyword string
	brand   string
}{
	{"moncler", "MONCLER"},
	{"louis vuitton", "LOUIS VUITTON"},
	{"chanel", "CHANEL"},
	{"hermes", "HERMES"},
	{"gucci", "GUCCI"},
	{"prada", "PRADA"},
	{"cartier", "CARTIER"},
	{"rolex", "ROLEX"},
}

// priceTier picks a brand when the price strictly exceeds min
type priceTier struct {
	min   int64
	brand string
}

// brandRule is one step of the content heuristic. resolve returns the brand
// and true when the rule applies.
type brandRule struct {
	name    string
	resolve func(f ruleFields) (string, bool)
}

// ruleFields are the lowercased row attributes the rules inspect
type ruleFields struct {
	material      string
	itemType      string
	modelNumber   string
	itemTypeGroup string
	price         int64
}

var (
	lvModelPattern     = regexp.MustCompile(`^[mn]\d{5}`)
	chanelModelPattern = regexp.MustCompile(`^a\d{5}`)
	rolexModelPattern  = regexp.MustCompile(`^\d{6}`)
)

// contentRules are evaluated in order; the first match wins
var contentRules = []brandRule{
	{
		name: "model number",
		resolve: func(f ruleFields) (string, bool) {
			switch {
			case f.modelNumber == "":
				return "", false
			case lvModelPattern.MatchString(f.modelNumber):
				return "LOUIS VUITTON", true
			case chanelModelPattern.MatchString(f.modelNumber):
				return "CHANEL", true
			case strings.Contains(f.modelNumber, "birkin"), strings.Contains(f.modelNumber, "kelly"):
				return "HERMES", true
			case rolexModelPattern.MatchString(f.modelNumber):
				return "ROLEX", true
			}
			return "", false
		},
	},
	{
		name: "down outerwear",
		resolve: func(f ruleFields) (string, bool) {
			if !containsAny(f.material, "ダウン", "down") || !containsAny(f.itemType, "アウター", "ジャケット", "コート") {
				return "", false
			}
			if brand, ok := byTier(f.price, []priceTier{{100000, "MONCLER"}, {50000, "CANADA GOOSE"}}); ok {
				return brand, true
			}
			return "MONCLER", true
		},
	},
	{
		name: "leather bag",
		resolve: func(f ruleFields) (string, bool) {
			if !containsAny(f.material, "レザー", "leather") || !containsAny(f.itemType, "バッグ", "bag") {
				return "", false
			}
			return byTier(f.price, []priceTier{
				{2000000, "HERMES"},
				{500000, "CHANEL"},
				{300000, "LOUIS VUITTON"},
				{100000, "GUCCI"},
			})
		},
	},
	{
		name: "monogram",
		resolve: func(f ruleFields) (string, bool) {
			return "LOUIS VUITTON", containsAny(f.material, "モノグラム", "monogram")
		},
	},
	{
		name: "gg canvas",
		resolve: func(f ruleFields) (string, bool) {
			return "GUCCI", containsAny(f.material, "gg", "グッチ")
		},
	},
	{
		name: "item type group",
		resolve: func(f ruleFields) (string, bool) {
			for _, kw := range itemGroupBrands {
				if strings.Contains(f.itemTypeGroup, kw.keyword) {
					return kw.brand, true
				}
			}
			return "", false
		},
	},
	{
		name: "watch",
		resolve: func(f ruleFields) (string, bool) {
			if !containsAny(f.itemType, "時計", "watch") {
				return "", false
			}
			return byTier(f.price, []priceTier{
				{3000000, "ROLEX"},
				{1000000, "PATEK PHILIPPE"},
				{500000, "OMEGA"},
				{300000, "CARTIER"},
			})
		},
	},
	{
		name: "jewelry",
		resolve: func(f ruleFields) (string, bool) {
			if !containsAny(f.itemType, "ネックレス", "指輪", "ブレスレット") {
				return "", false
			}
			return byTier(f.price, []priceTier{
				{1000000, "CARTIER"},
				{500000, "TIFFANY"},
				{300000, "BULGARI"},
			})
		},
	},
}

// DetermineBrand resolves the brand of a record. An explicit brand wins,
// then the filename hint, then the content heuristic. It never fails.
func DetermineBrand(rec *models.SalesRecord, filename string) string {
	if brand := strings.TrimSpace(rec.Brand); brand != "" {
		return brand
	}

	if brand, ok := BrandFromFilename(filename); ok {
		return brand
	}

	return inferBrandFromContent(rec)
}

// BrandFromFilename matches the extension-less, lowercased filename against
// the known brand tokens
func BrandFromFilename(filename string) (string, bool) {
	if filename == "" {
		return "", false
	}

	base := filepath.Base(filename)
	name := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	for _, fb := range filenameBrands {
		if strings.Contains(name, fb.token) {
			return fb.brand, true
		}
	}
	return "", false
}

func inferBrandFromContent(rec *models.SalesRecord) string {
	f := ruleFields{
		material:      strings.ToLower(rec.Material),
		itemType:      strings.ToLower(rec.Type),
		modelNumber:   strings.ToLower(rec.ModelNumber),
		itemTypeGroup: strings.ToLower(rec.ItemTypeGroup),
		price:         rec.SellingPrice,
	}

	for _, rule := range contentRules {
		if brand, ok := rule.resolve(f); ok {
			return brand
		}
	}
	return UnknownBrand
}

func byTier(price int64, tiers []priceTier) (string, bool) {
	for _, t := range tiers {
		if price > t.min {
			return t.brand, true
		}
	}
	return "", false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// BrandSlug converts a brand name into its URL form
func BrandSlug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// BrandFromSlug restores the stored (upper-case) brand name from a slug
func BrandFromSlug(slug string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(slug)), "-", " ")
}
