package budget

import (
	"time"

	"github.com/google/uuid"

	"github.com/mowbraylabs/retailpulse/internal/budget"
)

type entryResponse struct {
	ID         uuid.UUID   `json:"id"`
	LocationID uuid.UUID   `json:"location_id"`
	Date       string      `json:"date"`
	Amount     int64       `json:"amount"`
	Currency   string      `json:"currency"`
	Type       budget.Type `json:"type"`
	Notes      string      `json:"notes,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

type listResponse struct {
	Budgets []entryResponse `json:"budgets"`
	Total   int             `json:"total"`
}

func toResponse(entry *budget.Entry) entryResponse {
	return entryResponse{
		ID:         entry.ID,
		LocationID: entry.LocationID,
		Date:       entry.Date.Format(time.DateOnly),
		Amount:     entry.Amount,
		Currency:   entry.Currency,
		Type:       entry.Type,
		Notes:      entry.Notes,
		CreatedAt:  entry.CreatedAt,
		UpdatedAt:  entry.UpdatedAt,
	}
}

func toListResponse(entries []*budget.Entry, total int) listResponse {
	resp := listResponse{
		Budgets: make([]entryResponse, len(entries)),
		Total:   total,
	}
	for i, entry := range entries {
		resp.Budgets[i] = toResponse(entry)
	}

	return resp
}

type bulkDeleteResponse struct {
	Deleted []uuid.UUID         `json:"deleted"`
	Failed  []bulkDeleteFailure `json:"failed"`
}

type bulkDeleteFailure struct {
	ID     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
}

func toBulkDeleteResponse(result *budget.BulkDeleteResult) bulkDeleteResponse {
	resp := bulkDeleteResponse{
		Deleted: result.Deleted,
		Failed:  make([]bulkDeleteFailure, len(result.Failed)),
	}
	for i, f := range result.Failed {
		resp.Failed[i] = bulkDeleteFailure{ID: f.ID, Reason: f.Reason}
	}

	if resp.Deleted == nil {
		resp.Deleted = []uuid.UUID{}
	}

	return resp
}
