package budget

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mowbraylabs/retailpulse/internal/budget"
)

type Handler struct {
	svc *budget.Service
}

func NewHandler(svc *budget.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/bulk-delete", h.bulkDelete)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createRequest struct {
	LocationID uuid.UUID   `json:"location_id"`
	Date       string      `json:"date"`
	Amount     int64       `json:"amount"`
	Type       budget.Type `json:"type,omitempty"`
	Notes      string      `json:"notes,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	if req.Amount < 0 {
		http.Error(w, "amount must be non-negative", http.StatusBadRequest)
		return
	}

	entry, err := h.svc.Create(r.Context(), budget.CreateParams{
		LocationID: req.LocationID,
		Date:       date,
		Amount:     req.Amount,
		Type:       req.Type,
		Notes:      req.Notes,
	})
	if err != nil {
		if errors.Is(err, budget.ErrConflict) {
			http.Error(w, "budget already exists for this location, date and type", http.StatusConflict)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusCreated, toResponse(entry))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := budget.ListFilter{Page: 1, PageSize: 50}

	q := r.URL.Query()

	if s := q.Get("location_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid location_id", http.StatusBadRequest)
			return
		}

		filter.LocationID = &id
	}

	if s := q.Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = &t
		}
	}

	if s := q.Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = &t
		}
	}

	if s := q.Get("type"); s != "" {
		entryType := budget.Type(s)
		filter.Type = &entryType
	}

	if page := intParam(q.Get("page")); page > 0 {
		filter.Page = page
	}

	if size := intParam(q.Get("page_size")); size > 0 {
		filter.PageSize = min(size, 1000)
	}

	entries, total, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toListResponse(entries, total))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	entry, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			http.Error(w, "budget entry not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, toResponse(entry))
}

type updateRequest struct {
	Amount *int64       `json:"amount,omitempty"`
	Type   *budget.Type `json:"type,omitempty"`
	Notes  *string      `json:"notes,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Amount != nil && *req.Amount < 0 {
		http.Error(w, "amount must be non-negative", http.StatusBadRequest)
		return
	}

	entry, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			http.Error(w, "budget entry not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if req.Amount != nil {
		entry.Amount = *req.Amount
	}

	if req.Type != nil {
		entry.Type = *req.Type
	}

	if req.Notes != nil {
		entry.Notes = *req.Notes
	}

	if err := h.svc.Update(r.Context(), entry); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(entry))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type bulkDeleteRequest struct {
	// Explicit ids, or a period/location selection to clear.
	IDs        []uuid.UUID `json:"ids,omitempty"`
	LocationID *uuid.UUID  `json:"location_id,omitempty"`
	StartDate  string      `json:"start_date,omitempty"`
	EndDate    string      `json:"end_date,omitempty"`
}

// bulkDelete clears a selection of budget entries. The deletion is not
// atomic: the response reports succeeded and failed ids separately, and a
// partial failure leaves the rest deleted.
func (h *Handler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ids := req.IDs

	if len(ids) == 0 {
		filter := budget.ListFilter{LocationID: req.LocationID}

		start, err := time.Parse(time.DateOnly, req.StartDate)
		if err != nil {
			http.Error(w, "ids or a start_date/end_date selection is required", http.StatusBadRequest)
			return
		}

		end, err := time.Parse(time.DateOnly, req.EndDate)
		if err != nil {
			http.Error(w, "ids or a start_date/end_date selection is required", http.StatusBadRequest)
			return
		}

		filter.StartDate = &start
		filter.EndDate = &end

		entries, _, err := h.svc.List(r.Context(), filter)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		for _, entry := range entries {
			ids = append(ids, entry.ID)
		}
	}

	result := h.svc.BulkDelete(r.Context(), ids)

	writeJSON(w, http.StatusOK, toBulkDeleteResponse(result))
}

func intParam(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}

	return n
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
