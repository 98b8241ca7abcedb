package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/findosh/brandsales/internal/models"
	"github.com/google/uuid"
)

const salesColumns = `id, sale_date, selling_price, sales_channel, sale_contact, item_type_group,
	brand, rank, type, model_number, material, sale_quantity, adjusted_exp_sale_price,
	appraised_price, row_hash, year_month, inserted_at, updated_at`

// SalesRepository provides sales data access
type SalesRepository struct {
	db *DB
}

// NewSalesRepository creates a new sales repository
func NewSalesRepository(db *DB) *SalesRepository {
	return &SalesRepository{db: db}
}

// UpsertSales writes a batch in one statement keyed on row_hash. Rows that
// share a hash within the batch collapse to the last occurrence.
func (r *SalesRepository) UpsertSales(ctx context.Context, batch []models.SalesRecord) error {
	batch = dedupeByHash(batch)
	if len(batch) == 0 {
		return nil
	}

	now := time.Now().UTC()
	const cols = 18
	placeholders := make([]string, 0, len(batch))
	args := make([]interface{}, 0, len(batch)*cols)

	for _, s := range batch {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		id := s.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		args = append(args,
			id.String(),
			s.SaleDate,
			s.SellingPrice,
			s.SalesChannel,
			s.SaleContact,
			s.ItemTypeGroup,
			s.Brand,
			s.Rank,
			s.Type,
			s.ModelNumber,
			s.Material,
			s.Quantity(),
			s.AdjustedExpectedSalePrice,
			s.AppraisedPrice,
			s.RowHash,
			models.MonthOf(s.SaleDate),
			now,
			now,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO sales (%s)
		VALUES %s
		ON CONFLICT (row_hash) DO UPDATE SET
			sale_date = excluded.sale_date,
			selling_price = excluded.selling_price,
			sales_channel = excluded.sales_channel,
			sale_contact = excluded.sale_contact,
			item_type_group = excluded.item_type_group,
			brand = excluded.brand,
			rank = excluded.rank,
			type = excluded.type,
			model_number = excluded.model_number,
			material = excluded.material,
			sale_quantity = excluded.sale_quantity,
			adjusted_exp_sale_price = excluded.adjusted_exp_sale_price,
			appraised_price = excluded.appraised_price,
			year_month = excluded.year_month,
			updated_at = excluded.updated_at
	`, salesColumns, strings.Join(placeholders, ", "))

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to upsert sales: %w", err)
	}
	return nil
}

// FindSales returns every row matching the filter
func (r *SalesRepository) FindSales(ctx context.Context, filter models.SalesFilter) ([]models.SalesRecord, error) {
	where, args := buildWhere(filter.Normalized())
	query := fmt.Sprintf("SELECT %s FROM sales%s ORDER BY sale_date, id", salesColumns, where)
	return r.query(ctx, query, args...)
}

// ListSales returns a page of matching rows, newest sale first
func (r *SalesRepository) ListSales(ctx context.Context, filter models.SalesFilter) ([]models.SalesRecord, error) {
	where, args := buildWhere(filter.Normalized())
	query := fmt.Sprintf("SELECT %s FROM sales%s ORDER BY sale_date DESC, id LIMIT ? OFFSET ?", salesColumns, where)
	args = append(args, filter.PageLimit(), filter.Offset)
	return r.query(ctx, query, args...)
}

// ListBrands returns the distinct non-empty brands in name order
func (r *SalesRepository) ListBrands(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT brand FROM sales WHERE brand <> '' ORDER BY brand")
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	defer rows.Close()

	var brands []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

// CountByBrand returns how many rows carry the brand
func (r *SalesRepository) CountByBrand(ctx context.Context, brand string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, r.db.Rebind("SELECT COUNT(*) FROM sales WHERE brand = ?"), brand).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count brand: %w", err)
	}
	return n, nil
}

func (r *SalesRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.SalesRecord, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []models.SalesRecord
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *s)
	}
	return sales, rows.Err()
}

func scanSale(rows *sql.Rows) (*models.SalesRecord, error) {
	var s models.SalesRecord
	var id string

	err := rows.Scan(
		&id,
		&s.SaleDate,
		&s.SellingPrice,
		&s.SalesChannel,
		&s.SaleContact,
		&s.ItemTypeGroup,
		&s.Brand,
		&s.Rank,
		&s.Type,
		&s.ModelNumber,
		&s.Material,
		&s.SaleQuantity,
		&s.AdjustedExpectedSalePrice,
		&s.AppraisedPrice,
		&s.RowHash,
		&s.YearMonth,
		&s.InsertedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan sale: %w", err)
	}

	s.ID, _ = uuid.Parse(id)
	return &s, nil
}

// buildWhere renders the filter as a WHERE clause with ? placeholders
func buildWhere(f models.SalesFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)

	add := func(cond string, arg interface{}) {
		conds = append(conds, cond)
		args = append(args, arg)
	}

	if f.Brand != "" {
		add("brand = ?", f.Brand)
	}
	if f.Type != "" {
		add("type = ?", f.Type)
	}
	if f.Material != "" {
		add("LOWER(material) LIKE ?", "%"+strings.ToLower(f.Material)+"%")
	}
	if f.Rank != "" {
		add("rank = ?", f.Rank)
	}
	if f.StartDate != "" {
		add("sale_date >= ?", f.StartDate)
	}
	if f.EndDate != "" {
		add("sale_date <= ?", f.EndDate)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// dedupeByHash keeps the last row for each hash while preserving first-seen
// order
func dedupeByHash(batch []models.SalesRecord) []models.SalesRecord {
	index := make(map[string]int, len(batch))
	out := make([]models.SalesRecord, 0, len(batch))
	for _, s := range batch {
		if i, ok := index[s.RowHash]; ok {
			out[i] = s
			continue
		}
		index[s.RowHash] = len(out)
		out = append(out, s)
	}
	return out
}
