package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/findosh/brandsales/internal/models"
	"github.com/findosh/brandsales/internal/services/importer"
	"github.com/findosh/brandsales/internal/services/ingest"
)

const maxIngestLogs = 100

type validationFailedResponse struct {
	Error   string                   `json:"error"`
	Details []models.FailedRowReport `json:"details"`
}

type partialFailureResponse struct {
	OK          bool                `json:"ok"`
	Error       string              `json:"error"`
	Processed   int                 `json:"processed"`
	Upserted    int                 `json:"upserted"`
	Failed      int                 `json:"failed"`
	BatchErrors []models.BatchError `json:"batchErrors"`
}

// Ingest accepts a multipart CSV upload in the "file" field
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	if !h.requireMethod(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.UploadMaxBytes)
	if err := r.ParseMultipartForm(h.cfg.UploadMaxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.jsonError(w, "Upload exceeds maximum size", http.StatusRequestEntityTooLarge)
			return
		}
		h.jsonError(w, "No file provided", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.jsonError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	outcome, err := h.ingestService.Ingest(r.Context(), header.Filename, file)
	if err != nil {
		var parseErr *importer.ParseError
		switch {
		case errors.Is(err, ingest.ErrUnsupportedType):
			h.jsonError(w, "Only CSV files are allowed", http.StatusBadRequest)
		case errors.Is(err, importer.ErrTooManyRows):
			h.jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
		case errors.As(err, &parseErr):
			h.jsonError(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("ingest %s: %v", header.Filename, err)
			h.jsonError(w, "InternalError", http.StatusInternalServerError)
		}
		return
	}

	switch outcome.Status {
	case models.IngestValidationFailed:
		h.writeJSON(w, http.StatusBadRequest, validationFailedResponse{
			Error:   string(models.IngestValidationFailed),
			Details: outcome.Details,
		})
	case models.IngestPartialFailure:
		h.writeJSON(w, http.StatusMultiStatus, partialFailureResponse{
			Error:       string(models.IngestPartialFailure),
			Processed:   outcome.Processed,
			Upserted:    outcome.Upserted,
			Failed:      outcome.Failed,
			BatchErrors: outcome.BatchErrors,
		})
	default:
		h.writeJSON(w, http.StatusOK, outcome)
	}
}

// IngestLogs lists the most recent ingestion audit entries
func (h *Handler) IngestLogs(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", 20)
	if !ok || limit == 0 {
		h.jsonError(w, "Invalid limit", http.StatusBadRequest)
		return
	}
	if limit > maxIngestLogs {
		limit = maxIngestLogs
	}

	logs, err := h.store.RecentIngestLogs(r.Context(), limit)
	if err != nil {
		log.Printf("failed to load ingest logs: %v", err)
		h.jsonError(w, "Failed to fetch ingest logs", http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []models.IngestLog{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": logs})
}
