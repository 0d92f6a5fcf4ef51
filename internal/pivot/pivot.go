// Package pivot builds the read-side views of budget data: the per-day
// calendar grid and the per-location period rollup. Both are pure
// computations over an in-memory entry list; scoping to a window or a
// single location is the caller's list filter.
package pivot

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mowbraylabs/retailpulse/internal/budget"
)

// Column identifies one location column of the daily grid. Columns are
// derived from the filtered data, not from the full location catalog.
type Column struct {
	LocationID uuid.UUID
	Name       string
}

// GridRow is one date line of the calendar view.
type GridRow struct {
	Date    time.Time
	Amounts []int64 // aligned with View.Columns; -1 means no entry
	Total   int64   // sum of present amounts; meaningful when >1 column
}

// RollupRow summarizes one location over the period.
type RollupRow struct {
	LocationID uuid.UUID
	Name       string
	Total      int64
	DayCount   int
	Average    int64   // Total / DayCount, integer pence
	Share      float64 // percentage of the grand total
}

// View is the pivot of a flat entry list: date x location daily grid plus
// the period rollup.
type View struct {
	Columns    []Column
	Rows       []GridRow // dates ascending
	Rollup     []RollupRow
	GrandTotal int64
	// DistinctDays is the number of distinct dates across all entries.
	DistinctDays int
}

// NoAmount marks a grid cell with no budget entry.
const NoAmount int64 = -1

type nameLookup interface {
	Name(id uuid.UUID) string
}

// NameFunc adapts a function to the name lookup the builder needs.
type NameFunc func(id uuid.UUID) string

func (f NameFunc) Name(id uuid.UUID) string { return f(id) }

// Build pivots entries into a View. Columns keep stable first-appearance
// order; rollup rows are ordered by descending total with ties broken by
// that same appearance order. Deterministic for a given input order.
func Build(entries []*budget.Entry, names nameLookup) *View {
	view := &View{}

	colIdx := make(map[uuid.UUID]int)
	cells := make(map[time.Time]map[uuid.UUID]int64)
	appearance := make(map[uuid.UUID]int)

	for _, e := range entries {
		if _, ok := colIdx[e.LocationID]; !ok {
			colIdx[e.LocationID] = len(view.Columns)
			appearance[e.LocationID] = len(view.Columns)
			view.Columns = append(view.Columns, Column{
				LocationID: e.LocationID,
				Name:       names.Name(e.LocationID),
			})
		}

		day := e.Date
		if cells[day] == nil {
			cells[day] = make(map[uuid.UUID]int64)
		}

		cells[day][e.LocationID] = e.Amount
	}

	dates := make([]time.Time, 0, len(cells))
	for day := range cells {
		dates = append(dates, day)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	view.DistinctDays = len(dates)

	totals := make(map[uuid.UUID]int64)
	dayCounts := make(map[uuid.UUID]int)

	for _, day := range dates {
		row := GridRow{
			Date:    day,
			Amounts: make([]int64, len(view.Columns)),
		}

		for i := range row.Amounts {
			row.Amounts[i] = NoAmount
		}

		for locID, amount := range cells[day] {
			row.Amounts[colIdx[locID]] = amount
			row.Total += amount
			totals[locID] += amount
			dayCounts[locID]++
			view.GrandTotal += amount
		}

		view.Rows = append(view.Rows, row)
	}

	for _, col := range view.Columns {
		row := RollupRow{
			LocationID: col.LocationID,
			Name:       col.Name,
			Total:      totals[col.LocationID],
			DayCount:   dayCounts[col.LocationID],
		}

		if row.DayCount > 0 {
			row.Average = row.Total / int64(row.DayCount)
		}

		if view.GrandTotal > 0 {
			row.Share = float64(row.Total) / float64(view.GrandTotal) * 100
		}

		view.Rollup = append(view.Rollup, row)
	}

	sort.SliceStable(view.Rollup, func(i, j int) bool {
		if view.Rollup[i].Total != view.Rollup[j].Total {
			return view.Rollup[i].Total > view.Rollup[j].Total
		}

		return appearance[view.Rollup[i].LocationID] < appearance[view.Rollup[j].LocationID]
	})

	return view
}
