package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/weilandt/circ-api/internal/api/shared"
	"github.com/weilandt/circ-api/internal/domain"
	"github.com/weilandt/circ-api/internal/service"
)

// CatalogHandler handles catalog management and search requests.
type CatalogHandler struct {
	circulation service.CirculationService
	validator   *validator.Validate
}

// NewCatalogHandler creates a new CatalogHandler with the given dependencies.
func NewCatalogHandler(circulation service.CirculationService) *CatalogHandler {
	return &CatalogHandler{
		circulation: circulation,
		validator:   validator.New(),
	}
}

// CreateMedia handles POST /media. Admin only.
func (h *CatalogHandler) CreateMedia(w http.ResponseWriter, r *http.Request) {
	var req CreateMediaRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	item, err := h.circulation.AddMedia(
		r.Context(),
		req.ID,
		req.Title,
		req.Author,
		domain.Category(req.Category),
		req.TotalCopies,
	)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewMediaResponse(item))
}

// UpdateCopies handles PUT /media/{id}/copies. Admin only.
func (h *CatalogHandler) UpdateCopies(w http.ResponseWriter, r *http.Request) {
	mediaID := chi.URLParam(r, "id")
	if mediaID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Media ID is required")
		return
	}

	var req UpdateCopiesRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	item, err := h.circulation.SetTotalCopies(r.Context(), mediaID, req.TotalCopies)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewMediaResponse(item))
}

// Search handles GET /media?q=keyword. An empty keyword returns the whole
// catalog.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("q")

	items, err := h.circulation.SearchMedia(r.Context(), keyword)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	results := make([]MediaResponse, 0, len(items))
	for _, item := range items {
		results = append(results, NewMediaResponse(item))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, results)
}
