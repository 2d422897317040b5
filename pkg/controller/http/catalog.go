package http

import (
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/fetchcr/pkg/domain/interfaces"
	"github.com/m-mizutani/fetchcr/pkg/domain/model"
)

// CatalogHandler serves one listing page with resolved download links
type CatalogHandler struct {
	catalogUC interfaces.CatalogUseCase
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogUC interfaces.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{catalogUC: catalogUC}
}

// Handle processes GET /api/catalog?page=N
func (h *CatalogHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := r.URL.Query().Get("page")

	entries, err := h.catalogUC.ListCatalog(ctx, page)
	if err != nil {
		ctxlog.From(ctx).Error("Failed to list catalog", "page", page, "error", err)
		writeError(w, err, http.StatusBadGateway)
		return
	}

	if entries == nil {
		entries = []model.CatalogEntry{}
	}
	writeJSON(ctx, w, http.StatusOK, entries)
}
