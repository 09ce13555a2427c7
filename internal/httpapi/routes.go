// Package httpapi exposes the catalog over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"storefront-catalog/internal/catalogindex"
	"storefront-catalog/internal/catalogmeta"
	"storefront-catalog/internal/model"
	"storefront-catalog/internal/search"
	"storefront-catalog/internal/vendor"
)

// Pinger checks the vendor API.
type Pinger interface {
	Ping(ctx context.Context) (int, []byte, error)
}

// API holds the handlers' collaborators.
type API struct {
	Search *search.Service
	Index  search.Index
	Vendor Pinger
}

// RegisterRoutes wires the catalog routes onto r.
func RegisterRoutes(r *mux.Router, api *API) {
	r.HandleFunc("/healthz", livenessHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", api.vendorHealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/catalog-search", api.searchHandler).Methods(http.MethodGet)
	r.HandleFunc("/catalog-meta", api.metaHandler).Methods(http.MethodGet)
}

// NewHandler returns the router wrapped with CORS for the given origins.
func NewHandler(api *API, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	RegisterRoutes(r, api)
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept"},
	})
	return c.Handler(r)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("HTTP: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}

func livenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// vendorHealthHandler relays the vendor ping. Missing credentials are a
// server error here, unlike in search.
func (a *API) vendorHealthHandler(w http.ResponseWriter, r *http.Request) {
	status, body, err := a.Vendor.Ping(r.Context())
	switch {
	case errors.Is(err, vendor.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, "missing VENDOR_USERNAME or VENDOR_PASSWORD")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (a *API) searchHandler(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := model.SearchQuery{
		Text:     params.Get("q"),
		Brand:    params.Get("brand"),
		Category: params.Get("type"),
	}

	resp, err := a.Search.Search(r.Context(), q)
	switch {
	case errors.Is(err, search.ErrEmptyQuery), errors.Is(err, search.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("HTTP: catalog-search failed: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"count":   len(resp.Results),
		"results": resp.Results,
	})
}

func (a *API) metaHandler(w http.ResponseWriter, r *http.Request) {
	meta := catalogmeta.Build(a.Index.Load(catalogindex.SourcePrimary))
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":                true,
		"brands":            meta.Brands,
		"categories":        meta.Categories,
		"brandToCategories": meta.BrandToCategories,
		"categoryToBrands":  meta.CategoryToBrands,
	})
}
