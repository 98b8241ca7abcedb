// Package audit records one entry per ingestion attempt
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"

	"github.com/findosh/brandsales/internal/models"
)

// Writer persists or forwards an ingest audit entry
type Writer interface {
	InsertIngestLog(ctx context.Context, entry *models.IngestLog) error
}

// MultiWriter fans out entries to every writer. All writers are attempted;
// their errors are joined.
type MultiWriter struct {
	writers []Writer
}

func NewMultiWriter(ws ...Writer) *MultiWriter {
	return &MultiWriter{writers: ws}
}

func (m *MultiWriter) InsertIngestLog(ctx context.Context, entry *models.IngestLog) error {
	var errs []error
	for _, w := range m.writers {
		if err := w.InsertIngestLog(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Logger writes audit entries as JSON lines for log aggregation
type Logger struct {
	writer *log.Logger
}

// NewLogger creates an audit logger writing to stdout
func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout)
}

// NewLoggerTo creates an audit logger writing to w
func NewLoggerTo(w io.Writer) *Logger {
	return &Logger{writer: log.New(w, "[INGEST-AUDIT] ", log.LstdFlags)}
}

func (l *Logger) InsertIngestLog(ctx context.Context, entry *models.IngestLog) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	l.writer.Println(string(data))
	return nil
}
