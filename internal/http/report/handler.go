package report

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mowbraylabs/retailpulse/internal/budget"
	"github.com/mowbraylabs/retailpulse/internal/coverage"
	"github.com/mowbraylabs/retailpulse/internal/location"
	"github.com/mowbraylabs/retailpulse/internal/pivot"
)

// defaultCoverageDays is the window used when the caller gives no dates:
// the 30 days ending yesterday. Today is excluded because its sales summary
// is still being written.
const defaultCoverageDays = 30

type Handler struct {
	budgetSvc *budget.Service
	catalog   location.Catalog
	activity  coverage.ActivitySource
}

func NewHandler(budgetSvc *budget.Service, catalog location.Catalog, activity coverage.ActivitySource) *Handler {
	return &Handler{budgetSvc: budgetSvc, catalog: catalog, activity: activity}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/budget-grid", h.grid)
	r.Get("/budget-coverage", h.coverage)
}

type columnResponse struct {
	LocationID uuid.UUID `json:"location_id"`
	Name       string    `json:"name"`
}

type gridRowResponse struct {
	Date    string   `json:"date"`
	Amounts []*int64 `json:"amounts"`
	Total   int64    `json:"total"`
}

type rollupRowResponse struct {
	LocationID uuid.UUID `json:"location_id"`
	Name       string    `json:"name"`
	Total      int64     `json:"total"`
	DayCount   int       `json:"day_count"`
	Average    int64     `json:"average"`
	Share      float64   `json:"share"`
}

type gridResponse struct {
	Columns      []columnResponse    `json:"columns"`
	Rows         []gridRowResponse   `json:"rows"`
	Rollup       []rollupRowResponse `json:"rollup"`
	GrandTotal   int64               `json:"grand_total"`
	DistinctDays int                 `json:"distinct_days"`
}

func toGridResponse(view *pivot.View) gridResponse {
	resp := gridResponse{
		Columns:      make([]columnResponse, len(view.Columns)),
		Rows:         make([]gridRowResponse, len(view.Rows)),
		Rollup:       make([]rollupRowResponse, len(view.Rollup)),
		GrandTotal:   view.GrandTotal,
		DistinctDays: view.DistinctDays,
	}

	for i, col := range view.Columns {
		resp.Columns[i] = columnResponse{LocationID: col.LocationID, Name: col.Name}
	}

	for i, row := range view.Rows {
		amounts := make([]*int64, len(row.Amounts))

		for j, amount := range row.Amounts {
			if amount == pivot.NoAmount {
				continue
			}

			amounts[j] = &row.Amounts[j]
		}

		resp.Rows[i] = gridRowResponse{
			Date:    row.Date.Format(time.DateOnly),
			Amounts: amounts,
			Total:   row.Total,
		}
	}

	for i, row := range view.Rollup {
		resp.Rollup[i] = rollupRowResponse{
			LocationID: row.LocationID,
			Name:       row.Name,
			Total:      row.Total,
			DayCount:   row.DayCount,
			Average:    row.Average,
			Share:      row.Share,
		}
	}

	return resp
}

func (h *Handler) grid(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseFilter(w, r)
	if !ok {
		return
	}

	entries, _, err := h.budgetSvc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	names, err := h.nameLookup(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toGridResponse(pivot.Build(entries, names)))
}

type coverageRecordResponse struct {
	LocationID   uuid.UUID `json:"location_id"`
	LocationName string    `json:"location_name"`
	SalesDays    int       `json:"sales_days"`
	BudgetDays   int       `json:"budget_days"`
	MissingDays  []string  `json:"missing_days"`
}

type coverageResponse struct {
	StartDate string                   `json:"start_date"`
	EndDate   string                   `json:"end_date"`
	Locations []coverageRecordResponse `json:"locations"`
}

func (h *Handler) coverage(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseFilter(w, r)
	if !ok {
		return
	}

	window := defaultWindow(time.Now().UTC())

	if filter.StartDate != nil {
		window.Start = *filter.StartDate
	}

	if filter.EndDate != nil {
		window.End = *filter.EndDate
	}

	filter.StartDate = &window.Start
	filter.EndDate = &window.End

	activity, err := h.activity.SalesDays(r.Context(), window, filter.LocationID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	entries, _, err := h.budgetSvc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	names, err := h.nameLookup(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	records := coverage.Analyze(activity, entries, names)

	resp := coverageResponse{
		StartDate: window.Start.Format(time.DateOnly),
		EndDate:   window.End.Format(time.DateOnly),
		Locations: make([]coverageRecordResponse, len(records)),
	}

	for i, record := range records {
		missing := make([]string, len(record.MissingDays))
		for j, day := range record.MissingDays {
			missing[j] = day.Format(time.DateOnly)
		}

		resp.Locations[i] = coverageRecordResponse{
			LocationID:   record.LocationID,
			LocationName: record.LocationName,
			SalesDays:    record.SalesDays,
			BudgetDays:   record.BudgetDays,
			MissingDays:  missing,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func defaultWindow(now time.Time) coverage.Window {
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)

	return coverage.Window{Start: end.AddDate(0, 0, -(defaultCoverageDays - 1)), End: end}
}

// parseFilter reads the shared location/date query parameters. Reports are
// unpaginated; a window is expected to be at most a few months.
func parseFilter(w http.ResponseWriter, r *http.Request) (budget.ListFilter, bool) {
	var filter budget.ListFilter

	q := r.URL.Query()

	if s := q.Get("location_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid location_id", http.StatusBadRequest)
			return filter, false
		}

		filter.LocationID = &id
	}

	if s := q.Get("start_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			http.Error(w, "invalid start_date, expected YYYY-MM-DD", http.StatusBadRequest)
			return filter, false
		}

		filter.StartDate = &t
	}

	if s := q.Get("end_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			http.Error(w, "invalid end_date, expected YYYY-MM-DD", http.StatusBadRequest)
			return filter, false
		}

		filter.EndDate = &t
	}

	return filter, true
}

func (h *Handler) nameLookup(ctx context.Context) (pivot.NameFunc, error) {
	locs, err := h.catalog.ListLocations(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]string, len(locs))
	for _, loc := range locs {
		byID[loc.ID] = loc.Name
	}

	return func(id uuid.UUID) string {
		if name, ok := byID[id]; ok {
			return name
		}

		return id.String()
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
