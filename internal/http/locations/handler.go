package locations

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mowbraylabs/retailpulse/internal/location"
)

type Handler struct {
	catalog location.Catalog
}

func NewHandler(catalog location.Catalog) *Handler {
	return &Handler{catalog: catalog}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
}

type locationResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Currency string    `json:"currency"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	locs, err := h.catalog.ListLocations(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]locationResponse, len(locs))
	for i, loc := range locs {
		resp[i] = locationResponse{ID: loc.ID, Name: loc.Name, Currency: loc.Currency}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
