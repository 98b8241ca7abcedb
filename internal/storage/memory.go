package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/findosh/brandsales/internal/models"
	"github.com/google/uuid"
)

// MemoryStore is a thread-safe in-process Store keyed on row hash
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	sales map[string]models.SalesRecord
	logs  []models.IngestLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sales: make(map[string]models.SalesRecord)}
}

// UpsertSales inserts new hashes and replaces rows whose hash already exists
func (s *MemoryStore) UpsertSales(ctx context.Context, batch []models.SalesRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, rec := range batch {
		rec.YearMonth = models.MonthOf(rec.SaleDate)
		rec.SaleQuantity = rec.Quantity()
		rec.UpdatedAt = now

		if existing, ok := s.sales[rec.RowHash]; ok {
			rec.ID = existing.ID
			rec.InsertedAt = existing.InsertedAt
		} else {
			if rec.ID == uuid.Nil {
				rec.ID = uuid.New()
			}
			rec.InsertedAt = now
			s.order = append(s.order, rec.RowHash)
		}
		s.sales[rec.RowHash] = rec
	}
	return nil
}

// FindSales returns matching rows ordered by sale date
func (s *MemoryStore) FindSales(ctx context.Context, filter models.SalesFilter) ([]models.SalesRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := s.matching(filter.Normalized())
	sort.SliceStable(out, func(i, j int) bool { return out[i].SaleDate < out[j].SaleDate })
	return out, nil
}

// ListSales returns a page of matching rows, newest sale first
func (s *MemoryStore) ListSales(ctx context.Context, filter models.SalesFilter) ([]models.SalesRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := s.matching(filter.Normalized())
	sort.SliceStable(out, func(i, j int) bool { return out[i].SaleDate > out[j].SaleDate })

	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if limit := filter.PageLimit(); limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// ListBrands returns the distinct non-empty brands in name order
func (s *MemoryStore) ListBrands(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var brands []string
	for _, rec := range s.sales {
		if rec.Brand != "" && !seen[rec.Brand] {
			seen[rec.Brand] = true
			brands = append(brands, rec.Brand)
		}
	}
	sort.Strings(brands)
	return brands, nil
}

// CountByBrand returns how many rows carry the brand
func (s *MemoryStore) CountByBrand(ctx context.Context, brand string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, rec := range s.sales {
		if rec.Brand == brand {
			n++
		}
	}
	return n, nil
}

// InsertIngestLog appends an audit entry
func (s *MemoryStore) InsertIngestLog(ctx context.Context, entry *models.IngestLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, *entry)
	return nil
}

// RecentIngestLogs returns the newest audit entries first
func (s *MemoryStore) RecentIngestLogs(ctx context.Context, limit int) ([]models.IngestLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit > len(s.logs) {
		limit = len(s.logs)
	}
	out := make([]models.IngestLog, 0, limit)
	for i := len(s.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.logs[i])
	}
	return out, nil
}

// Len returns the number of stored sales rows
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sales)
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) matching(filter models.SalesFilter) []models.SalesRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.SalesRecord
	for _, hash := range s.order {
		rec := s.sales[hash]
		if filter.Matches(&rec) {
			out = append(out, rec)
		}
	}
	return out
}
