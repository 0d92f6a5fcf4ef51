package importcsv

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mowbraylabs/retailpulse/internal/budget"
	"github.com/mowbraylabs/retailpulse/internal/importer"
	"github.com/mowbraylabs/retailpulse/internal/location"
)

// maxUploadBytes caps budget file uploads. Files are a few thousand rows at
// most; anything larger is not a budget grid.
const maxUploadBytes = 5 << 20

type Handler struct {
	budgetSvc *budget.Service
	catalog   location.Catalog
}

func NewHandler(budgetSvc *budget.Service, catalog location.Catalog) *Handler {
	return &Handler{budgetSvc: budgetSvc, catalog: catalog}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/validate", h.validate)
	r.Post("/", h.upload)
}

type cellDTO struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type reportResponse struct {
	DataRows           int       `json:"data_rows"`
	MatchedLocations   []string  `json:"matched_locations"`
	UnmatchedLocations []string  `json:"unmatched_locations"`
	AmbiguousLocations []string  `json:"ambiguous_locations"`
	InvalidDateRows    []int     `json:"invalid_date_rows"`
	InvalidAmountCells []cellDTO `json:"invalid_amount_cells"`
	DuplicateDates     []string  `json:"duplicate_dates"`
	ValidEntries       int       `json:"valid_entries"`
	Blocking           bool      `json:"blocking"`
	Startable          bool      `json:"startable"`
}

type uploadResponse struct {
	Message            string   `json:"message"`
	RowsProcessed      int      `json:"rows_processed"`
	Created            int      `json:"created"`
	Updated            int      `json:"updated"`
	UnmatchedLocations []string `json:"unmatched_locations"`
}

func toReportResponse(report *importer.Report) reportResponse {
	resp := reportResponse{
		DataRows:           report.DataRows,
		MatchedLocations:   orEmpty(report.MatchedLocations),
		UnmatchedLocations: orEmpty(report.UnmatchedLocations),
		AmbiguousLocations: orEmpty(report.AmbiguousLocations),
		InvalidDateRows:    report.InvalidDateRows,
		InvalidAmountCells: make([]cellDTO, len(report.InvalidAmountCells)),
		DuplicateDates:     orEmpty(report.DuplicateDates),
		ValidEntries:       report.ValidEntries,
		Blocking:           report.Blocking(),
		Startable:          report.Startable(),
	}

	if resp.InvalidDateRows == nil {
		resp.InvalidDateRows = []int{}
	}

	for i, cell := range report.InvalidAmountCells {
		resp.InvalidAmountCells[i] = cellDTO{Row: cell.Row, Col: cell.Col}
	}

	return resp
}

// validate runs the full validation pipeline without writing anything.
// The dashboard calls this on every file selection; diagnostics are always
// computed fresh, so re-selecting the same file reproduces them exactly.
func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	report, _, _, ok := h.parseAndValidate(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, toReportResponse(report))
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	report, table, index, ok := h.parseAndValidate(w, r)
	if !ok {
		return
	}

	if report.Blocking() || !report.Startable() {
		// Validation failures are corrected in the source file; there is no
		// in-place editing. The full diagnostics go back with the refusal.
		writeJSON(w, http.StatusUnprocessableEntity, toReportResponse(report))
		return
	}

	params, skipped := importer.BuildUpserts(table, index)

	result, err := h.budgetSvc.Reconcile(r.Context(), params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Message:            fmt.Sprintf("Budget upload complete. %d created, %d updated.", result.Created, result.Updated),
		RowsProcessed:      report.DataRows,
		Created:            result.Created,
		Updated:            result.Updated,
		UnmatchedLocations: orEmpty(skipped),
	})
}

// parseAndValidate handles the multipart form, ingest and validation steps
// shared by both endpoints. It writes the error response itself when ok is
// false.
func (h *Handler) parseAndValidate(w http.ResponseWriter, r *http.Request) (*importer.Report, *importer.ParsedTable, *location.Index, bool) {
	file, ok := h.formFile(w, r)
	if !ok {
		return nil, nil, nil, false
	}
	defer file.Close()

	table, err := importer.Ingest(file)
	if err != nil {
		http.Error(w, "failed to parse file: "+err.Error(), http.StatusBadRequest)
		return nil, nil, nil, false
	}

	locs, err := h.catalog.ListLocations(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, nil, nil, false
	}

	index := location.NewIndex(locs)

	return importer.Validate(table, index), table, index, true
}

func (h *Handler) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return nil, false
	}

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		file.Close()
		http.Error(w, "file must be a .csv", http.StatusBadRequest)

		return nil, false
	}

	if header.Size > maxUploadBytes {
		file.Close()
		http.Error(w, "file too large, maximum size is 5 MB", http.StatusRequestEntityTooLarge)

		return nil, false
	}

	return file, true
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
