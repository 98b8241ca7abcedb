package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/findosh/brandsales/internal/models"
	"github.com/google/uuid"
)

// IngestLogRepository stores the per-upload audit trail
type IngestLogRepository struct {
	db *DB
}

// NewIngestLogRepository creates a new ingest log repository
func NewIngestLogRepository(db *DB) *IngestLogRepository {
	return &IngestLogRepository{db: db}
}

// InsertIngestLog appends one audit entry. Failed rows are stored as JSON,
// or NULL when there are none.
func (r *IngestLogRepository) InsertIngestLog(ctx context.Context, entry *models.IngestLog) error {
	var failed interface{}
	if len(entry.FailedRows) > 0 {
		data, err := json.Marshal(entry.FailedRows)
		if err != nil {
			return fmt.Errorf("failed to encode failed rows: %w", err)
		}
		failed = string(data)
	}

	query := `
		INSERT INTO ingest_logs (id, filename, processed, inserted, updated, failed_rows, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		entry.ID.String(),
		entry.Filename,
		entry.Processed,
		entry.Inserted,
		entry.Updated,
		failed,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ingest log: %w", err)
	}
	return nil
}

// Recent returns the newest audit entries
func (r *IngestLogRepository) Recent(ctx context.Context, limit int) ([]models.IngestLog, error) {
	query := `
		SELECT id, filename, processed, inserted, updated, failed_rows, created_at
		FROM ingest_logs ORDER BY created_at DESC LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingest logs: %w", err)
	}
	defer rows.Close()

	var logs []models.IngestLog
	for rows.Next() {
		var (
			entry  models.IngestLog
			id     string
			failed *string
		)
		if err := rows.Scan(&id, &entry.Filename, &entry.Processed, &entry.Inserted, &entry.Updated, &failed, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ingest log: %w", err)
		}
		entry.ID, _ = uuid.Parse(id)
		if failed != nil && *failed != "" {
			if err := json.Unmarshal([]byte(*failed), &entry.FailedRows); err != nil {
				return nil, fmt.Errorf("failed to decode failed rows: %w", err)
			}
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
