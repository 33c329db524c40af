package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elitelephant/protocol-guardian/internal/services"
)

// CatalogListItem is one entry in the catalog listing.
type CatalogListItem struct {
	Name     string `json:"name"`
	FileName string `json:"file_name"`
}

// CatalogHandler serves the content catalogs available on this server.
//
// GET /v1/catalogs          - List available catalogs
// GET /v1/catalogs/{file}   - Read one catalog by file name
type CatalogHandler struct {
	storage services.Storage
	logger  *slog.Logger
}

func NewCatalogHandler(storage services.Storage, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Catalogs are read-only.")
		return
	}

	filename := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/catalogs"), "/")
	if filename == "" {
		h.handleList(w, r)
		return
	}
	h.handleGet(w, r, filename)
}

func (h *CatalogHandler) handleList(w http.ResponseWriter, r *http.Request) {
	catalogs, err := h.storage.ListCatalogs(r.Context())
	if err != nil {
		h.logger.Error("Failed to list catalogs", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to list catalogs")
		return
	}

	items := make([]CatalogListItem, 0, len(catalogs))
	for name, file := range catalogs {
		items = append(items, CatalogListItem{Name: name, FileName: file})
	}

	if err := json.NewEncoder(w).Encode(items); err != nil {
		h.logger.Error("Failed to encode catalog list", "error", err)
	}
}

func (h *CatalogHandler) handleGet(w http.ResponseWriter, r *http.Request, filename string) {
	cat, err := h.storage.GetCatalog(r.Context(), filename)
	if err != nil {
		h.logger.Warn("Catalog not found", "catalog", filename, "error", err)
		h.writeError(w, http.StatusNotFound, "Catalog not found: "+filename)
		return
	}

	if err := json.NewEncoder(w).Encode(cat); err != nil {
		h.logger.Error("Failed to encode catalog", "error", err)
	}
}

func (h *CatalogHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}
