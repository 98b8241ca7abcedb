package handlers

import (
	"log"
	"net/http"

	"github.com/findosh/brandsales/internal/models"
)

type pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// APISales lists matching sales, newest first
func (h *Handler) APISales(w http.ResponseWriter, r *http.Request) {
	if !h.requireMethod(w, r, http.MethodGet) {
		return
	}

	limit, ok := queryInt(r, "limit", models.DefaultPageSize)
	if !ok {
		h.jsonError(w, "Invalid limit", http.StatusBadRequest)
		return
	}
	offset, ok := queryInt(r, "offset", 0)
	if !ok {
		h.jsonError(w, "Invalid offset", http.StatusBadRequest)
		return
	}

	filter := filterFromQuery(r)
	filter.Limit = limit
	filter.Offset = offset

	rows, err := h.store.ListSales(r.Context(), filter)
	if err != nil {
		log.Printf("failed to list sales: %v", err)
		h.jsonError(w, "Failed to fetch sales data", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []models.SalesRecord{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":       rows,
		"total":      len(rows),
		"filters":    filter,
		"pagination": pagination{Limit: filter.PageLimit(), Offset: offset},
	})
}
