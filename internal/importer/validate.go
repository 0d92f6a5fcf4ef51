package importer

import (
	"github.com/mowbraylabs/retailpulse/internal/budget"
	"github.com/mowbraylabs/retailpulse/internal/location"
)

// Cell addresses a data cell: Row is the zero-based data-row index (header
// excluded), Col the zero-based column index within the row.
type Cell struct {
	Row int
	Col int
}

// Report is the full validation verdict for one uploaded file. It is derived
// data: recomputed fresh on every call, never cached, so re-validating the
// same file reproduces identical diagnostics.
type Report struct {
	Headers  []string
	DataRows int

	// Canonical location names, in header order.
	MatchedLocations []string
	// Header values with no case-insensitive catalog match.
	UnmatchedLocations []string
	// Header values matching two or more catalog locations; excluded from
	// the write like unmatched ones, but called out separately.
	AmbiguousLocations []string

	InvalidDateRows    []int
	InvalidAmountCells []Cell
	// Date strings (verbatim) appearing on more than one data row,
	// regardless of whether the date itself is valid.
	DuplicateDates []string

	// Count of non-empty valid amount cells under matched columns.
	ValidEntries int
}

// Blocking reports whether the upload must be refused outright: malformed
// cells have to be corrected in the source file, there is no in-place edit.
func (r *Report) Blocking() bool {
	return r.DataRows == 0 || len(r.InvalidDateRows) > 0 || len(r.InvalidAmountCells) > 0
}

// Startable reports whether an upload would write anything at all. A file
// can be non-blocking yet pointless: every column unmatched, or no valid
// entries. Callers surface that as "upload disabled", distinct from a
// validation failure.
func (r *Report) Startable() bool {
	return !r.Blocking() && len(r.MatchedLocations) > 0 && r.ValidEntries > 0
}

// SkippedColumns returns the header values that will not be written
// (unmatched plus ambiguous), for upload result reporting.
func (r *Report) SkippedColumns() []string {
	skipped := make([]string, 0, len(r.UnmatchedLocations)+len(r.AmbiguousLocations))
	skipped = append(skipped, r.UnmatchedLocations...)
	skipped = append(skipped, r.AmbiguousLocations...)

	return skipped
}

// Validate classifies every header column and data cell of a parsed table
// against the location catalog. Pure and deterministic: no I/O, safe to
// re-run on every file selection.
func Validate(table *ParsedTable, index *location.Index) *Report {
	report := &Report{
		Headers:  table.Headers,
		DataRows: len(table.Rows),
	}

	for _, header := range locationHeaders(table) {
		loc, res := index.Resolve(header.name)

		switch res {
		case location.ResolutionMatched:
			report.MatchedLocations = append(report.MatchedLocations, loc.Name)
		case location.ResolutionAmbiguous:
			report.AmbiguousLocations = append(report.AmbiguousLocations, header.name)
		default:
			report.UnmatchedLocations = append(report.UnmatchedLocations, header.name)
		}
	}

	matched := matchedColumns(table, index)
	matchedSet := make(map[int]struct{}, len(matched))

	for _, col := range matched {
		matchedSet[col.index] = struct{}{}
	}

	dateCount := make(map[string]int, len(table.Rows))

	for rowIdx, row := range table.Rows {
		dateStr := cell(row, 0)
		dateCount[dateStr]++

		if _, ok := ParseDate(dateStr); !ok {
			report.InvalidDateRows = append(report.InvalidDateRows, rowIdx)
		}

		for colIdx := 1; colIdx < len(table.Headers); colIdx++ {
			value := cell(row, colIdx)
			if value == "" {
				// Designed mechanism for "no change for this location/day".
				continue
			}

			if _, err := ParseAmount(value); err != nil {
				report.InvalidAmountCells = append(report.InvalidAmountCells, Cell{Row: rowIdx, Col: colIdx})
				continue
			}

			if _, ok := matchedSet[colIdx]; ok {
				report.ValidEntries++
			}
		}
	}

	// Duplicates in first-appearance order.
	seen := make(map[string]struct{}, len(dateCount))

	for _, row := range table.Rows {
		dateStr := cell(row, 0)
		if dateCount[dateStr] < 2 {
			continue
		}

		if _, dup := seen[dateStr]; dup {
			continue
		}

		seen[dateStr] = struct{}{}
		report.DuplicateDates = append(report.DuplicateDates, dateStr)
	}

	return report
}

// BuildUpserts flattens a validated table into upsert params in file order,
// one per (valid date, matched column, non-empty valid amount) triple, plus
// the skipped column names. Duplicate dates deliberately stay in: applying
// rows in file order makes the last row win, which matches the upsert
// semantics the diagnostics warned about.
func BuildUpserts(table *ParsedTable, index *location.Index) ([]budget.UpsertParams, []string) {
	matched := matchedColumns(table, index)

	var skipped []string

	for _, header := range locationHeaders(table) {
		if _, res := index.Resolve(header.name); res != location.ResolutionMatched {
			skipped = append(skipped, header.name)
		}
	}

	var params []budget.UpsertParams

	for _, row := range table.Rows {
		date, ok := ParseDate(cell(row, 0))
		if !ok {
			continue
		}

		for _, col := range matched {
			value := cell(row, col.index)
			if value == "" {
				continue
			}

			amount, err := ParseAmount(value)
			if err != nil {
				continue
			}

			params = append(params, budget.UpsertParams{
				LocationID: col.location.ID,
				Date:       date,
				Amount:     amount,
			})
		}
	}

	return params, skipped
}

type headerColumn struct {
	index int
	name  string
}

func locationHeaders(table *ParsedTable) []headerColumn {
	if len(table.Headers) < 2 {
		return nil
	}

	headers := make([]headerColumn, 0, len(table.Headers)-1)
	for i, name := range table.Headers[1:] {
		headers = append(headers, headerColumn{index: i + 1, name: name})
	}

	return headers
}

type matchedColumn struct {
	index    int
	location location.Location
}

func matchedColumns(table *ParsedTable, index *location.Index) []matchedColumn {
	var cols []matchedColumn

	for _, header := range locationHeaders(table) {
		loc, res := index.Resolve(header.name)
		if res != location.ResolutionMatched {
			continue
		}

		cols = append(cols, matchedColumn{index: header.index, location: loc})
	}

	return cols
}
