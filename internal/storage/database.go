// Package storage provides database access and repositories
package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect identifies the SQL flavour behind a DB
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
	dialect Dialect
}

// DialectFor picks the driver for a database URL. postgres:// URLs use
// lib/pq, anything else is treated as a SQLite file path.
func DialectFor(databaseURL string) Dialect {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// New creates a new database connection
func New(databaseURL string) (*DB, error) {
	dialect := DialectFor(databaseURL)

	db, err := sql.Open(string(dialect), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect == DialectSQLite {
		// Enable WAL mode for better concurrency
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	} else if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{DB: db, dialect: dialect}, nil
}

// Dialect returns the SQL flavour of the connection
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Rebind rewrites ? placeholders to $n for postgres
func (db *DB) Rebind(query string) string {
	if db.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// Migrate runs database migrations
func (db *DB) Migrate() error {
	timestamp := "DATETIME"
	if db.dialect == DialectPostgres {
		timestamp = "TIMESTAMPTZ"
	}

	migrations := []string{
		fmt.Sprintf(createSalesTable, timestamp, timestamp),
		createSalesIndexes,
		fmt.Sprintf(createIngestLogsTable, timestamp),
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

const createSalesTable = `
CREATE TABLE IF NOT EXISTS sales (
	id TEXT PRIMARY KEY,
	sale_date TEXT NOT NULL,
	selling_price BIGINT NOT NULL,
	sales_channel TEXT NOT NULL DEFAULT '',
	sale_contact TEXT NOT NULL DEFAULT '',
	item_type_group TEXT NOT NULL DEFAULT '',
	brand TEXT NOT NULL DEFAULT '',
	rank TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL DEFAULT '',
	model_number TEXT NOT NULL DEFAULT '',
	material TEXT NOT NULL DEFAULT '',
	sale_quantity BIGINT NOT NULL DEFAULT 1,
	adjusted_exp_sale_price BIGINT NOT NULL DEFAULT 0,
	appraised_price BIGINT NOT NULL DEFAULT 0,
	row_hash TEXT NOT NULL UNIQUE,
	year_month TEXT NOT NULL DEFAULT '',
	inserted_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP
)
`

const createSalesIndexes = `
CREATE INDEX IF NOT EXISTS idx_sales_brand ON sales(brand);
CREATE INDEX IF NOT EXISTS idx_sales_sale_date ON sales(sale_date);
CREATE INDEX IF NOT EXISTS idx_sales_brand_year_month ON sales(brand, year_month)
`

const createIngestLogsTable = `
CREATE TABLE IF NOT EXISTS ingest_logs (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	processed INTEGER NOT NULL DEFAULT 0,
	inserted INTEGER NOT NULL DEFAULT 0,
	updated INTEGER NOT NULL DEFAULT 0,
	failed_rows TEXT,
	created_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP
)
`
