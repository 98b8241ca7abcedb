package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/findosh/brandsales/internal/models"
	"github.com/findosh/brandsales/internal/services/analytics"
)

type noDataResponse struct {
	Error   string             `json:"error"`
	Filters models.SalesFilter `json:"filters"`
}

// APIAnalytics returns the full metrics bundle for the filtered rows
func (h *Handler) APIAnalytics(w http.ResponseWriter, r *http.Request) {
	if !h.requireMethod(w, r, http.MethodGet) {
		return
	}

	filter := filterFromQuery(r)
	rows, err := h.store.FindSales(r.Context(), filter)
	if err != nil {
		log.Printf("analytics: failed to fetch rows: %v", err)
		h.countQuery("error")
		h.jsonError(w, "Failed to fetch data", http.StatusInternalServerError)
		return
	}

	bundle, err := h.analyticsService.Compute(rows)
	if errors.Is(err, analytics.ErrNoData) {
		h.countQuery("empty")
		h.writeJSON(w, http.StatusNotFound, noDataResponse{Error: "No data found", Filters: filter})
		return
	}
	if err != nil {
		log.Printf("analytics: %v", err)
		h.countQuery("error")
		h.jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.countQuery("ok")
	h.writeJSON(w, http.StatusOK, bundle)
}

// APIMetrics returns the margin summary. An empty row set yields a zeroed
// summary rather than 404.
func (h *Handler) APIMetrics(w http.ResponseWriter, r *http.Request) {
	if !h.requireMethod(w, r, http.MethodGet) {
		return
	}

	filter := filterFromQuery(r)
	rows, err := h.store.FindSales(r.Context(), filter)
	if err != nil {
		log.Printf("metrics summary: failed to fetch rows: %v", err)
		h.jsonError(w, "Failed to fetch metrics", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":    h.analyticsService.Summarize(rows),
		"filters": filter,
	})
}

func (h *Handler) countQuery(result string) {
	if h.metrics != nil {
		h.metrics.AnalyticsQueries.WithLabelValues(result).Inc()
	}
}
