package importer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mowbraylabs/retailpulse/internal/importer"
	"github.com/mowbraylabs/retailpulse/internal/location"
)

var (
	storeA = location.Location{ID: uuid.New(), Name: "Store A"}
	storeB = location.Location{ID: uuid.New(), Name: "Store B"}
)

func testIndex() *location.Index {
	return location.NewIndex([]location.Location{storeA, storeB})
}

func ingest(t *testing.T, raw string) *importer.ParsedTable {
	t.Helper()

	table, err := importer.Ingest(strings.NewReader(raw))
	require.NoError(t, err)

	return table
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestIngest_PreservesRowOrder(t *testing.T) {
	table := ingest(t, "date,Store A,Store B\n2026-02-02,5100,\n2026-02-01,5000,4500\n")

	assert.Equal(t, []string{"date", "Store A", "Store B"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "2026-02-02", table.Rows[0][0])
	assert.Equal(t, "2026-02-01", table.Rows[1][0])
}

func TestIngest_DropsEmptyDateRows(t *testing.T) {
	table := ingest(t, "date,Store A\n2026-02-01,5000\n,9999\n2026-02-02,5100\n")

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "2026-02-01", table.Rows[0][0])
	assert.Equal(t, "2026-02-02", table.Rows[1][0])
}

func TestIngest_SkipsLeadingBlankLines(t *testing.T) {
	table := ingest(t, "\n\ndate,Store A\n2026-02-01,5000\n")

	assert.Equal(t, []string{"date", "Store A"}, table.Headers)
	assert.Len(t, table.Rows, 1)
}

func TestIngest_TrimsCells(t *testing.T) {
	table := ingest(t, "date , Store A \n 2026-02-01 , 5000 \n")

	assert.Equal(t, []string{"date", "Store A"}, table.Headers)
	assert.Equal(t, []string{"2026-02-01", "5000"}, table.Rows[0])
}

func TestIngest_CRLF(t *testing.T) {
	table := ingest(t, "date,Store A\r\n2026-02-01,5000\r\n")

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "5000", table.Rows[0][1])
}

func TestIngest_Empty(t *testing.T) {
	table := ingest(t, "")

	assert.Empty(t, table.Headers)
	assert.Empty(t, table.Rows)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in    string
		want  time.Time
		valid bool
	}{
		{"2026-02-01", date(2026, 2, 1), true},
		{"01/02/2026", date(2026, 2, 1), true},
		{"2026-02-31", time.Time{}, false}, // day out of range
		{"31/04/2026", time.Time{}, false},
		{"01-02-2026", time.Time{}, false},
		{"yesterday", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := importer.ParseDate(tt.in)
			assert.Equal(t, tt.valid, ok)

			if tt.valid {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"5000", 500000, false},
		{"5,000", 500000, false},
		{"5000.50", 500050, false},
		{"1,234,567.89", 123456789, false},
		{"0", 0, false},
		{"-10", 0, true},
		{"ten pounds", 0, true},
		{"12.34.56", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := importer.ParseAmount(tt.in)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_CleanFile(t *testing.T) {
	table := ingest(t, "date,Store A,Store B\n2026-02-01,5000,4500\n02/02/2026,5100,\n")
	report := importer.Validate(table, testIndex())

	assert.False(t, report.Blocking())
	assert.True(t, report.Startable())
	assert.Equal(t, []string{"Store A", "Store B"}, report.MatchedLocations)
	assert.Empty(t, report.UnmatchedLocations)
	assert.Empty(t, report.InvalidDateRows)
	assert.Empty(t, report.InvalidAmountCells)
	assert.Empty(t, report.DuplicateDates)
	assert.Equal(t, 3, report.ValidEntries)
}

func TestValidate_DuplicateDateScenario(t *testing.T) {
	// Duplicate dates warn but never block; both rows stay in, and the
	// second one wins at reconcile time.
	table := ingest(t, "date,Store A,Store B\n2026-02-01,5000,4500\n2026-02-01,5100,4600\n")
	report := importer.Validate(table, testIndex())

	assert.Equal(t, []string{"2026-02-01"}, report.DuplicateDates)
	assert.Equal(t, []string{"Store A", "Store B"}, report.MatchedLocations)
	assert.False(t, report.Blocking())
	assert.Equal(t, 4, report.ValidEntries)

	params, skipped := importer.BuildUpserts(table, testIndex())
	require.Len(t, params, 4)
	assert.Empty(t, skipped)

	// File order preserved: the last two upserts carry the second row's values.
	assert.Equal(t, int64(500000), params[0].Amount)
	assert.Equal(t, int64(510000), params[2].Amount)
	assert.Equal(t, storeA.ID, params[2].LocationID)
	assert.Equal(t, int64(460000), params[3].Amount)
	assert.Equal(t, date(2026, 2, 1), params[3].Date)
}

func TestValidate_UnknownStoreScenario(t *testing.T) {
	table := ingest(t, "date,Unknown Store\n2026-02-01,5000\n")
	report := importer.Validate(table, testIndex())

	assert.Equal(t, []string{"Unknown Store"}, report.UnmatchedLocations)
	assert.Empty(t, report.MatchedLocations)
	assert.Zero(t, report.ValidEntries)
	assert.False(t, report.Blocking())
	assert.False(t, report.Startable(), "no matched target to write to")
}

func TestValidate_DuplicateInvalidDateStillFlagged(t *testing.T) {
	table := ingest(t, "date,Store A\nnot-a-date,5000\nnot-a-date,5100\n")
	report := importer.Validate(table, testIndex())

	assert.Equal(t, []string{"not-a-date"}, report.DuplicateDates)
	assert.Equal(t, []int{0, 1}, report.InvalidDateRows)
	assert.True(t, report.Blocking())
}

func TestValidate_InvalidAmountBlocks(t *testing.T) {
	table := ingest(t, "date,Store A,Store B\n2026-02-01,abc,4500\n2026-02-02,5000,-10\n")
	report := importer.Validate(table, testIndex())

	assert.Equal(t, []importer.Cell{{Row: 0, Col: 1}, {Row: 1, Col: 2}}, report.InvalidAmountCells)
	assert.True(t, report.Blocking())
	assert.False(t, report.Startable())
}

func TestValidate_EmptyCellsSkipNotError(t *testing.T) {
	table := ingest(t, "date,Store A,Store B\n2026-02-01,,4500\n")
	report := importer.Validate(table, testIndex())

	assert.Empty(t, report.InvalidAmountCells)
	assert.Equal(t, 1, report.ValidEntries)
	assert.True(t, report.Startable())
}

func TestValidate_NoDataRowsBlocks(t *testing.T) {
	for _, raw := range []string{"", "date,Store A\n"} {
		table := ingest(t, raw)
		report := importer.Validate(table, testIndex())
		assert.True(t, report.Blocking())
		assert.False(t, report.Startable())
	}
}

func TestValidate_AmbiguousNameExcluded(t *testing.T) {
	idx := location.NewIndex([]location.Location{
		storeA,
		{ID: uuid.New(), Name: "Camden"},
		{ID: uuid.New(), Name: "camden"},
	})

	table := ingest(t, "date,Camden,Store A\n2026-02-01,4000,5000\n")
	report := importer.Validate(table, idx)

	assert.Equal(t, []string{"Camden"}, report.AmbiguousLocations)
	assert.Equal(t, []string{"Store A"}, report.MatchedLocations)
	assert.Equal(t, 1, report.ValidEntries)

	params, skipped := importer.BuildUpserts(table, idx)
	require.Len(t, params, 1)
	assert.Equal(t, storeA.ID, params[0].LocationID)
	assert.Equal(t, []string{"Camden"}, skipped)
}

func TestValidate_InvalidAmountUnderUnmatchedColumnStillBlocks(t *testing.T) {
	// Cell validity is judged for every column beyond the date; matching
	// only decides what gets written.
	table := ingest(t, "date,Unknown Store,Store A\n2026-02-01,abc,5000\n")
	report := importer.Validate(table, testIndex())

	assert.Equal(t, []importer.Cell{{Row: 0, Col: 1}}, report.InvalidAmountCells)
	assert.True(t, report.Blocking())
	assert.Equal(t, 1, report.ValidEntries)
}

func TestValidate_Deterministic(t *testing.T) {
	raw := "date,Store A,Nowhere\n2026-02-01,5000,1\n2026-02-01,oops,2\n"

	first := importer.Validate(ingest(t, raw), testIndex())
	second := importer.Validate(ingest(t, raw), testIndex())

	assert.Equal(t, first, second)
}

func TestBuildUpserts_SkipsUnparseableLeftovers(t *testing.T) {
	// BuildUpserts is only called on startable tables, but it must stay
	// safe on anything: invalid dates and amounts are skipped, not written.
	table := ingest(t, "date,Store A\nbad-date,5000\n2026-02-01,5000\n")

	params, _ := importer.BuildUpserts(table, testIndex())
	require.Len(t, params, 1)
	assert.Equal(t, date(2026, 2, 1), params[0].Date)
}
