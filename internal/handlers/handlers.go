// Package handlers provides HTTP request handlers
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/findosh/brandsales/internal/config"
	"github.com/findosh/brandsales/internal/metrics"
	"github.com/findosh/brandsales/internal/models"
	"github.com/findosh/brandsales/internal/services/analytics"
	"github.com/findosh/brandsales/internal/services/auth"
	"github.com/findosh/brandsales/internal/services/ingest"
	"github.com/findosh/brandsales/internal/storage"
)

// Handler contains all HTTP handlers and dependencies
type Handler struct {
	cfg              *config.Config
	store            storage.Store
	ingestService    *ingest.Service
	analyticsService *analytics.Service
	authService      *auth.Service
	metrics          *metrics.Registry
}

// New creates a new handler with all dependencies. reg may be nil.
func New(
	cfg *config.Config,
	store storage.Store,
	ingestService *ingest.Service,
	analyticsService *analytics.Service,
	authService *auth.Service,
	reg *metrics.Registry,
) *Handler {
	return &Handler{
		cfg:              cfg,
		store:            store,
		ingestService:    ingestService,
		analyticsService: analyticsService,
		authService:      authService,
		metrics:          reg,
	}
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v with the given status
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// jsonError writes a JSON error response
func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		h.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// filterFromQuery reads the shared filter parameters
func filterFromQuery(r *http.Request) models.SalesFilter {
	q := r.URL.Query()
	return models.SalesFilter{
		Brand:     q.Get("brand"),
		Type:      q.Get("type"),
		Material:  q.Get("material"),
		Rank:      q.Get("rank"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	}.Normalized()
}

// queryInt parses a non-negative integer parameter, returning def when absent
func queryInt(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
