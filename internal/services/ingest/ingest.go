// Package ingest runs the CSV upload pipeline: parse, resolve brand, hash,
// batch upsert and audit
package ingest

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/findosh/brandsales/internal/metrics"
	"github.com/findosh/brandsales/internal/models"
	"github.com/findosh/brandsales/internal/services/audit"
	"github.com/findosh/brandsales/internal/services/importer"
)

// DefaultBatchSize is the number of rows sent per upsert
const DefaultBatchSize = 500

// ErrUnsupportedType rejects uploads that are not .csv files
var ErrUnsupportedType = errors.New("unsupported file type: only .csv files are accepted")

// SalesWriter upserts sales rows keyed on row hash
type SalesWriter interface {
	UpsertSales(ctx context.Context, batch []models.SalesRecord) error
}

// Service coordinates one ingestion per call and keeps no state between
// calls
type Service struct {
	sales     SalesWriter
	audit     audit.Writer
	parser    *importer.Parser
	metrics   *metrics.Registry
	batchSize int
}

// Option configures a Service
type Option func(*Service)

// WithBatchSize overrides DefaultBatchSize
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithMetrics records ingestion counters on reg
func WithMetrics(reg *metrics.Registry) Option {
	return func(s *Service) { s.metrics = reg }
}

// NewService creates an ingestion service
func NewService(sales SalesWriter, auditWriter audit.Writer, maxRows int, opts ...Option) *Service {
	s := &Service{
		sales:     sales,
		audit:     auditWriter,
		parser:    importer.NewParser(maxRows),
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest processes one uploaded file. A wrong file type, malformed CSV or too
// many rows is returned as an error; everything else, including failed
// batches, is reported in the outcome.
func (s *Service) Ingest(ctx context.Context, filename string, r io.Reader) (*models.IngestOutcome, error) {
	start := time.Now()

	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return nil, ErrUnsupportedType
	}

	parsed, err := s.parser.Parse(r)
	if err != nil {
		return nil, err
	}

	processed := parsed.Total()
	failed := len(parsed.Failed)

	if len(parsed.Valid) == 0 && failed > 0 {
		outcome := &models.IngestOutcome{
			Status:    models.IngestValidationFailed,
			Processed: processed,
			Failed:    failed,
			Details:   models.SampleFailures(parsed.Failed),
		}
		s.record(outcome, start)
		return outcome, nil
	}

	rows := prepareRows(parsed.Valid, filename)

	var (
		upserted    int
		batchErrors []models.BatchError
	)
	for i := 0; i < len(rows); i += s.batchSize {
		end := i + s.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[i:end]

		if err := s.sales.UpsertSales(ctx, batch); err != nil {
			log.Printf("ingest %s: batch %d failed: %v", filename, i/s.batchSize+1, err)
			batchErrors = append(batchErrors, models.BatchError{
				Batch: i/s.batchSize + 1,
				Error: err.Error(),
			})
			continue
		}
		upserted += len(batch)
	}

	entry := models.NewIngestLog(filename, processed, upserted, parsed.Failed)
	if err := s.audit.InsertIngestLog(ctx, entry); err != nil {
		log.Printf("ingest %s: failed to write audit log: %v", filename, err)
		if s.metrics != nil {
			s.metrics.AuditFailures.Inc()
		}
	}

	outcome := &models.IngestOutcome{
		Status:    models.IngestOK,
		OK:        true,
		Processed: processed,
		Upserted:  upserted,
		Failed:    failed,
	}
	if len(batchErrors) > 0 {
		outcome.Status = models.IngestPartialFailure
		outcome.OK = false
		outcome.BatchErrors = batchErrors
	}

	s.record(outcome, start)
	return outcome, nil
}

// prepareRows resolves each row's brand once and derives the row hash from
// that same value
func prepareRows(valid []models.SalesRecord, filename string) []models.SalesRecord {
	rows := make([]models.SalesRecord, len(valid))
	for i := range valid {
		rec := valid[i]
		brand := importer.NormalizeBrand(importer.DetermineBrand(&rec, filename))
		rec.Brand = brand
		rec.RowHash = importer.RowHash(&rec, brand)
		rec.DeriveYearMonth()
		rows[i] = rec
	}
	return rows
}

func (s *Service) record(outcome *models.IngestOutcome, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.Ingests.WithLabelValues(string(outcome.Status)).Inc()
	s.metrics.RowsUpserted.Add(float64(outcome.Upserted))
	s.metrics.RowsFailed.Add(float64(outcome.Failed))
	s.metrics.BatchFailures.Add(float64(len(outcome.BatchErrors)))
	s.metrics.IngestDuration.Observe(time.Since(start).Seconds())
}
