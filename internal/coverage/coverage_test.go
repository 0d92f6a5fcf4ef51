package coverage_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mowbraylabs/retailpulse/internal/budget"
	"github.com/mowbraylabs/retailpulse/internal/coverage"
)

var (
	locA = uuid.New()
	locB = uuid.New()
)

func names() coverage.NameFunc {
	lookup := map[uuid.UUID]string{locA: "Store A", locB: "Store B"}

	return func(id uuid.UUID) string { return lookup[id] }
}

func day(d int) time.Time {
	return time.Date(2026, 2, d, 0, 0, 0, 0, time.UTC)
}

func budgetOn(loc uuid.UUID, days ...int) []*budget.Entry {
	entries := make([]*budget.Entry, 0, len(days))
	for _, d := range days {
		entries = append(entries, &budget.Entry{
			ID:         uuid.New(),
			LocationID: loc,
			Date:       day(d),
			Amount:     5000,
		})
	}

	return entries
}

func TestAnalyze_MissingDaysAreSalesMinusBudget(t *testing.T) {
	activity := map[uuid.UUID][]time.Time{
		locA: {day(1), day(2), day(3), day(4)},
	}

	records := coverage.Analyze(activity, budgetOn(locA, 2, 4), names())

	require.Len(t, records, 1)
	assert.Equal(t, "Store A", records[0].LocationName)
	assert.Equal(t, 4, records[0].SalesDays)
	assert.Equal(t, 2, records[0].BudgetDays)
	assert.Equal(t, []time.Time{day(1), day(3)}, records[0].MissingDays)
}

func TestAnalyze_BudgetOutsideActivityIgnored(t *testing.T) {
	activity := map[uuid.UUID][]time.Time{
		locA: {day(1)},
	}

	// Budget entries on non-trading days do not offset anything.
	records := coverage.Analyze(activity, budgetOn(locA, 1, 10, 11), names())

	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].BudgetDays)
	assert.Empty(t, records[0].MissingDays)
}

func TestAnalyze_LocationWithoutActivityContributesNothing(t *testing.T) {
	activity := map[uuid.UUID][]time.Time{
		locA: {day(1)},
	}

	records := coverage.Analyze(activity, budgetOn(locB, 1, 2, 3), names())

	require.Len(t, records, 1)
	assert.Equal(t, locA, records[0].LocationID)
	assert.Equal(t, []time.Time{day(1)}, records[0].MissingDays)
}

func TestAnalyze_OrderedByLocationName(t *testing.T) {
	activity := map[uuid.UUID][]time.Time{
		locB: {day(1)},
		locA: {day(1)},
	}

	records := coverage.Analyze(activity, nil, names())

	require.Len(t, records, 2)
	assert.Equal(t, "Store A", records[0].LocationName)
	assert.Equal(t, "Store B", records[1].LocationName)
}

func TestAnalyze_MissingDaysSorted(t *testing.T) {
	activity := map[uuid.UUID][]time.Time{
		locA: {day(9), day(2), day(5)},
	}

	records := coverage.Analyze(activity, nil, names())

	require.Len(t, records, 1)
	assert.Equal(t, []time.Time{day(2), day(5), day(9)}, records[0].MissingDays)
}

func TestAnalyze_Empty(t *testing.T) {
	assert.Empty(t, coverage.Analyze(nil, nil, names()))
}
