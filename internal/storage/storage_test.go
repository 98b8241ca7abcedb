package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/findosh/brandsales/internal/models"
)

func sampleSales() []models.SalesRecord {
	return []models.SalesRecord{
		{SaleDate: "2024-01-10", SellingPrice: 100000, Brand: "CHANEL", Type: "バッグ", Rank: "A", Material: "Caviar Leather", RowHash: "h1", AppraisedPrice: 70000},
		{SaleDate: "2024-02-10", SellingPrice: 200000, Brand: "CHANEL", Type: "財布", Rank: "S", Material: "Lambskin", RowHash: "h2"},
		{SaleDate: "2024-03-10", SellingPrice: 300000, Brand: "GUCCI", Type: "バッグ", Rank: "B", Material: "GG Canvas", RowHash: "h3"},
	}
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		url  string
		want Dialect
	}{
		{"postgres://user@localhost/sales", DialectPostgres},
		{"postgresql://user@localhost/sales", DialectPostgres},
		{"sales.db", DialectSQLite},
		{"file::memory:?cache=shared", DialectSQLite},
	}

	for _, tt := range tests {
		if got := DialectFor(tt.url); got != tt.want {
			t.Errorf("DialectFor(%q): got %s, want %s", tt.url, got, tt.want)
		}
	}
}

func TestRebind(t *testing.T) {
	pg := &DB{dialect: DialectPostgres}
	if got := pg.Rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Errorf("Unexpected postgres rebind: %s", got)
	}

	lite := &DB{dialect: DialectSQLite}
	if got := lite.Rebind("a = ?"); got != "a = ?" {
		t.Errorf("Expected sqlite query unchanged, got %s", got)
	}
}

func TestBuildWhere(t *testing.T) {
	where, args := buildWhere(models.SalesFilter{Brand: "CHANEL", Material: "Leather", StartDate: "2024-01-01"})
	want := " WHERE brand = ? AND LOWER(material) LIKE ? AND sale_date >= ?"
	if where != want {
		t.Errorf("got %q, want %q", where, want)
	}
	if len(args) != 3 || args[1] != "%leather%" {
		t.Errorf("Unexpected args: %v", args)
	}

	if where, args := buildWhere(models.SalesFilter{}); where != "" || args != nil {
		t.Error("Expected empty filter to produce no clause")
	}
}

func TestDedupeByHash(t *testing.T) {
	batch := []models.SalesRecord{
		{RowHash: "a", SellingPrice: 1},
		{RowHash: "b", SellingPrice: 2},
		{RowHash: "a", SellingPrice: 3},
	}

	out := dedupeByHash(batch)
	if len(out) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(out))
	}
	if out[0].RowHash != "a" || out[0].SellingPrice != 3 {
		t.Errorf("Expected last occurrence to win in first position, got %+v", out[0])
	}
}

func testStores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := Open(filepath.Join(t.TempDir(), "sales.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStore_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.UpsertSales(ctx, sampleSales()); err != nil {
				t.Fatalf("First upsert failed: %v", err)
			}

			updated := sampleSales()
			updated[0].SalesChannel = "online"
			if err := store.UpsertSales(ctx, updated); err != nil {
				t.Fatalf("Second upsert failed: %v", err)
			}

			all, err := store.FindSales(ctx, models.SalesFilter{})
			if err != nil {
				t.Fatalf("FindSales failed: %v", err)
			}
			if len(all) != 3 {
				t.Fatalf("Expected 3 rows after re-upsert, got %d", len(all))
			}
			if all[0].SalesChannel != "online" {
				t.Errorf("Expected replaced fields, got %q", all[0].SalesChannel)
			}
			if all[0].YearMonth != "2024-01" {
				t.Errorf("Expected derived year_month, got %q", all[0].YearMonth)
			}
			if all[0].SaleQuantity != 1 {
				t.Errorf("Expected default quantity, got %d", all[0].SaleQuantity)
			}
		})
	}
}

func TestStore_Filters(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.UpsertSales(ctx, sampleSales()); err != nil {
				t.Fatalf("Upsert failed: %v", err)
			}

			tests := []struct {
				filter models.SalesFilter
				want   int
			}{
				{models.SalesFilter{Brand: "chanel"}, 2},
				{models.SalesFilter{Material: "leather"}, 1},
				{models.SalesFilter{Type: "バッグ"}, 2},
				{models.SalesFilter{Rank: "S"}, 1},
				{models.SalesFilter{StartDate: "2024-02-10", EndDate: "2024-03-10"}, 2},
				{models.SalesFilter{Brand: "PRADA"}, 0},
			}

			for _, tt := range tests {
				got, err := store.FindSales(ctx, tt.filter)
				if err != nil {
					t.Fatalf("FindSales failed: %v", err)
				}
				if len(got) != tt.want {
					t.Errorf("%+v: got %d rows, want %d", tt.filter, len(got), tt.want)
				}
			}
		})
	}
}

func TestStore_ListAndBrands(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.UpsertSales(ctx, sampleSales()); err != nil {
				t.Fatalf("Upsert failed: %v", err)
			}

			page, err := store.ListSales(ctx, models.SalesFilter{Limit: 2})
			if err != nil {
				t.Fatalf("ListSales failed: %v", err)
			}
			if len(page) != 2 || page[0].SaleDate != "2024-03-10" {
				t.Errorf("Expected newest first page of 2, got %+v", page)
			}

			next, err := store.ListSales(ctx, models.SalesFilter{Limit: 2, Offset: 2})
			if err != nil {
				t.Fatalf("ListSales failed: %v", err)
			}
			if len(next) != 1 {
				t.Errorf("Expected 1 row on second page, got %d", len(next))
			}

			brands, err := store.ListBrands(ctx)
			if err != nil {
				t.Fatalf("ListBrands failed: %v", err)
			}
			if len(brands) != 2 || brands[0] != "CHANEL" || brands[1] != "GUCCI" {
				t.Errorf("Unexpected brands: %v", brands)
			}

			n, err := store.CountByBrand(ctx, "CHANEL")
			if err != nil || n != 2 {
				t.Errorf("CountByBrand: got %d, %v", n, err)
			}
		})
	}
}

func TestStore_IngestLogs(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			failed := []models.FailedRowReport{{
				Row:    2,
				Data:   models.RawRecord{"selling_price": "abc"},
				Errors: []models.FieldError{{Field: "selling_price", Message: "expected integer"}},
			}}

			if err := store.InsertIngestLog(ctx, models.NewIngestLog("a.csv", 3, 2, failed)); err != nil {
				t.Fatalf("InsertIngestLog failed: %v", err)
			}
			if err := store.InsertIngestLog(ctx, models.NewIngestLog("b.csv", 1, 1, nil)); err != nil {
				t.Fatalf("InsertIngestLog failed: %v", err)
			}

			logs, err := store.RecentIngestLogs(ctx, 10)
			if err != nil {
				t.Fatalf("RecentIngestLogs failed: %v", err)
			}
			if len(logs) != 2 {
				t.Fatalf("Expected 2 logs, got %d", len(logs))
			}

			var withFailures *models.IngestLog
			for i := range logs {
				if logs[i].Filename == "a.csv" {
					withFailures = &logs[i]
				}
			}
			if withFailures == nil || len(withFailures.FailedRows) != 1 {
				t.Fatalf("Expected failed rows to round-trip, got %+v", withFailures)
			}
			if withFailures.FailedRows[0].Errors[0].Field != "selling_price" {
				t.Errorf("Unexpected failed row: %+v", withFailures.FailedRows[0])
			}
		})
	}
}

func TestMemoryStore_RecentIngestLogsLargeLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.InsertIngestLog(ctx, models.NewIngestLog("a.csv", 1, 1, nil)); err != nil {
		t.Fatalf("InsertIngestLog failed: %v", err)
	}

	logs, err := store.RecentIngestLogs(ctx, 1<<62)
	if err != nil {
		t.Fatalf("RecentIngestLogs failed: %v", err)
	}
	if len(logs) != 1 {
		t.Errorf("Expected 1 log, got %d", len(logs))
	}
}
