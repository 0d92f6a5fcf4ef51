// Package coverage cross-references sales activity against budget entries
// to report the days a trading location was left without a target.
package coverage

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mowbraylabs/retailpulse/internal/budget"
)

// Window is an inclusive calendar date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// ActivitySource is the external collaborator that knows which locations
// traded on which days. Only sales-side days matter: a location with no
// recorded activity owes no budget and never appears in the report.
type ActivitySource interface {
	SalesDays(ctx context.Context, window Window, locationID *uuid.UUID) (map[uuid.UUID][]time.Time, error)
}

// Record is the per-location coverage result for one query window.
// Derived data; recomputed on demand, never persisted.
type Record struct {
	LocationID   uuid.UUID
	LocationName string
	SalesDays    int
	BudgetDays   int
	MissingDays  []time.Time // ascending
}

type nameLookup interface {
	Name(id uuid.UUID) string
}

// NameFunc adapts a function to the name lookup Analyze needs.
type NameFunc func(id uuid.UUID) string

func (f NameFunc) Name(id uuid.UUID) string { return f(id) }

// Analyze computes, for every location with sales activity in the window,
// the days that traded without a budget entry. Budget entries on days
// outside a location's activity set never produce a gap. Results are
// ordered by location name.
func Analyze(activity map[uuid.UUID][]time.Time, entries []*budget.Entry, names nameLookup) []Record {
	budgeted := make(map[uuid.UUID]map[time.Time]struct{})

	for _, e := range entries {
		if budgeted[e.LocationID] == nil {
			budgeted[e.LocationID] = make(map[time.Time]struct{})
		}

		budgeted[e.LocationID][e.Date] = struct{}{}
	}

	records := make([]Record, 0, len(activity))

	for locID, days := range activity {
		record := Record{
			LocationID:   locID,
			LocationName: names.Name(locID),
			SalesDays:    len(days),
		}

		for _, day := range days {
			if _, ok := budgeted[locID][day]; ok {
				record.BudgetDays++
				continue
			}

			record.MissingDays = append(record.MissingDays, day)
		}

		sort.Slice(record.MissingDays, func(i, j int) bool {
			return record.MissingDays[i].Before(record.MissingDays[j])
		})

		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].LocationName != records[j].LocationName {
			return records[i].LocationName < records[j].LocationName
		}

		return records[i].LocationID.String() < records[j].LocationID.String()
	})

	return records
}
