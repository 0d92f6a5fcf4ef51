package pivot_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mowbraylabs/retailpulse/internal/budget"
	"github.com/mowbraylabs/retailpulse/internal/pivot"
)

var (
	locA = uuid.New()
	locB = uuid.New()
	locC = uuid.New()
)

func names() pivot.NameFunc {
	lookup := map[uuid.UUID]string{locA: "Store A", locB: "Store B", locC: "Store C"}

	return func(id uuid.UUID) string { return lookup[id] }
}

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func entry(loc uuid.UUID, date time.Time, amount int64) *budget.Entry {
	return &budget.Entry{
		ID:         uuid.New(),
		LocationID: loc,
		Date:       date,
		Amount:     amount,
		Currency:   budget.CurrencyGBP,
		Type:       budget.TypeDaily,
	}
}

func TestBuild_DailyGrid(t *testing.T) {
	entries := []*budget.Entry{
		entry(locA, day(2026, 2, 2), 5100),
		entry(locB, day(2026, 2, 1), 4500),
		entry(locA, day(2026, 2, 1), 5000),
	}

	view := pivot.Build(entries, names())

	require.Len(t, view.Columns, 2)
	assert.Equal(t, "Store A", view.Columns[0].Name, "first-appearance column order")
	assert.Equal(t, "Store B", view.Columns[1].Name)

	require.Len(t, view.Rows, 2)
	assert.Equal(t, day(2026, 2, 1), view.Rows[0].Date, "dates ascending")
	assert.Equal(t, []int64{5000, 4500}, view.Rows[0].Amounts)
	assert.Equal(t, int64(9500), view.Rows[0].Total)
	assert.Equal(t, []int64{5100, pivot.NoAmount}, view.Rows[1].Amounts)
	assert.Equal(t, int64(5100), view.Rows[1].Total)

	assert.Equal(t, 2, view.DistinctDays)
}

func TestBuild_RollupOrderAndShares(t *testing.T) {
	entries := []*budget.Entry{
		entry(locA, day(2026, 2, 1), 1000),
		entry(locB, day(2026, 2, 1), 3000),
		entry(locB, day(2026, 2, 2), 3000),
		entry(locC, day(2026, 2, 1), 1000),
	}

	view := pivot.Build(entries, names())

	require.Len(t, view.Rollup, 3)
	assert.Equal(t, "Store B", view.Rollup[0].Name, "descending total")
	assert.Equal(t, "Store A", view.Rollup[1].Name, "tie broken by input order")
	assert.Equal(t, "Store C", view.Rollup[2].Name)

	assert.Equal(t, int64(6000), view.Rollup[0].Total)
	assert.Equal(t, 2, view.Rollup[0].DayCount)
	assert.Equal(t, int64(3000), view.Rollup[0].Average)

	var shares float64
	for _, row := range view.Rollup {
		shares += row.Share
	}

	assert.InDelta(t, 100.0, shares, 1e-9, "shares sum to 100 percent")
}

func TestBuild_TotalsAgree(t *testing.T) {
	entries := []*budget.Entry{
		entry(locA, day(2026, 2, 1), 5000),
		entry(locA, day(2026, 2, 2), 5100),
		entry(locB, day(2026, 2, 1), 4500),
		entry(locC, day(2026, 2, 3), 7777),
	}

	view := pivot.Build(entries, names())

	var rollupSum, rowSum int64

	for _, row := range view.Rollup {
		rollupSum += row.Total
	}

	for _, row := range view.Rows {
		rowSum += row.Total
	}

	assert.Equal(t, view.GrandTotal, rollupSum)
	assert.Equal(t, view.GrandTotal, rowSum)
	assert.Equal(t, int64(22377), view.GrandTotal)
}

func TestBuild_Empty(t *testing.T) {
	view := pivot.Build(nil, names())

	assert.Empty(t, view.Columns)
	assert.Empty(t, view.Rows)
	assert.Empty(t, view.Rollup)
	assert.Zero(t, view.GrandTotal)
	assert.Zero(t, view.DistinctDays)
}

func TestBuild_SingleLocation(t *testing.T) {
	entries := []*budget.Entry{
		entry(locA, day(2026, 2, 1), 5000),
		entry(locA, day(2026, 2, 2), 0),
	}

	view := pivot.Build(entries, names())

	require.Len(t, view.Columns, 1)
	assert.Equal(t, int64(5000), view.GrandTotal)
	assert.Equal(t, 2, view.Rollup[0].DayCount, "a zero target still counts as a budgeted day")
	assert.Equal(t, int64(2500), view.Rollup[0].Average)
}
