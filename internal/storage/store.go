package storage

import (
	"context"
	"fmt"

	"github.com/findosh/brandsales/internal/models"
)

// MemoryURL selects the in-process store instead of a SQL database
const MemoryURL = "memory"

// Store is the datastore used by the ingest pipeline and the query handlers
type Store interface {
	UpsertSales(ctx context.Context, batch []models.SalesRecord) error
	FindSales(ctx context.Context, filter models.SalesFilter) ([]models.SalesRecord, error)
	ListSales(ctx context.Context, filter models.SalesFilter) ([]models.SalesRecord, error)
	ListBrands(ctx context.Context) ([]string, error)
	CountByBrand(ctx context.Context, brand string) (int, error)
	InsertIngestLog(ctx context.Context, entry *models.IngestLog) error
	RecentIngestLogs(ctx context.Context, limit int) ([]models.IngestLog, error)
	Close() error
}

// SQLStore backs Store with the sales and ingest_logs tables
type SQLStore struct {
	*SalesRepository
	logs *IngestLogRepository
	db   *DB
}

// NewSQLStore wires the repositories over one connection
func NewSQLStore(db *DB) *SQLStore {
	return &SQLStore{
		SalesRepository: NewSalesRepository(db),
		logs:            NewIngestLogRepository(db),
		db:              db,
	}
}

// InsertIngestLog appends an audit entry
func (s *SQLStore) InsertIngestLog(ctx context.Context, entry *models.IngestLog) error {
	return s.logs.InsertIngestLog(ctx, entry)
}

// RecentIngestLogs returns the newest audit entries
func (s *SQLStore) RecentIngestLogs(ctx context.Context, limit int) ([]models.IngestLog, error) {
	return s.logs.Recent(ctx, limit)
}

// Close closes the underlying connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Open returns the store for a database URL, running migrations for SQL
// backends
func Open(databaseURL string) (Store, error) {
	if databaseURL == MemoryURL {
		return NewMemoryStore(), nil
	}

	db, err := New(databaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return NewSQLStore(db), nil
}
