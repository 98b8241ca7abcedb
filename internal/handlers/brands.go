package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/findosh/brandsales/internal/services/importer"
)

type brandEntry struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count,omitempty"`
}

// APIBrands lists the distinct stored brands with their URL slugs
func (h *Handler) APIBrands(w http.ResponseWriter, r *http.Request) {
	if !h.requireMethod(w, r, http.MethodGet) {
		return
	}

	names, err := h.store.ListBrands(r.Context())
	if err != nil {
		log.Printf("failed to list brands: %v", err)
		h.jsonError(w, "Failed to fetch brands", http.StatusInternalServerError)
		return
	}

	brands := make([]brandEntry, 0, len(names))
	for _, name := range names {
		brands = append(brands, brandEntry{Name: name, Slug: importer.BrandSlug(name)})
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": brands})
}

// APIBrand resolves /api/brands/{slug} and reports how many rows it holds
func (h *Handler) APIBrand(w http.ResponseWriter, r *http.Request) {
	if !h.requireMethod(w, r, http.MethodGet) {
		return
	}

	slug := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/brands/"), "/")
	if slug == "" {
		h.jsonError(w, "Brand required", http.StatusBadRequest)
		return
	}

	name := importer.BrandFromSlug(slug)
	count, err := h.store.CountByBrand(r.Context(), name)
	if err != nil {
		log.Printf("failed to count brand %s: %v", name, err)
		h.jsonError(w, "Failed to fetch brand", http.StatusInternalServerError)
		return
	}
	if count == 0 {
		h.jsonError(w, "Brand not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, brandEntry{Name: name, Slug: importer.BrandSlug(name), Count: count})
}
