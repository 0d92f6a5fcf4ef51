package location_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mowbraylabs/retailpulse/internal/location"
)

func TestIndex_Resolve(t *testing.T) {
	storeA := location.Location{ID: uuid.New(), Name: "Store A"}
	storeB := location.Location{ID: uuid.New(), Name: " Store B "}

	idx := location.NewIndex([]location.Location{storeA, storeB})

	tests := []struct {
		name   string
		header string
		want   location.Resolution
		wantID uuid.UUID
	}{
		{"ExactMatch", "Store A", location.ResolutionMatched, storeA.ID},
		{"CaseInsensitive", "STORE a", location.ResolutionMatched, storeA.ID},
		{"TrimsWhitespace", "  store b\t", location.ResolutionMatched, storeB.ID},
		{"Unmatched", "Unknown Store", location.ResolutionUnmatched, uuid.Nil},
		{"NoPartialMatch", "Store", location.ResolutionUnmatched, uuid.Nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, res := idx.Resolve(tt.header)
			assert.Equal(t, tt.want, res)
			assert.Equal(t, tt.wantID, loc.ID)
		})
	}
}

func TestIndex_AmbiguousNames(t *testing.T) {
	locs := []location.Location{
		{ID: uuid.New(), Name: "Camden"},
		{ID: uuid.New(), Name: "CAMDEN "},
		{ID: uuid.New(), Name: "Soho"},
	}

	idx := location.NewIndex(locs)

	_, res := idx.Resolve("camden")
	assert.Equal(t, location.ResolutionAmbiguous, res)

	loc, res := idx.Resolve("Soho")
	assert.Equal(t, location.ResolutionMatched, res)
	assert.Equal(t, "Soho", loc.Name)

	assert.Equal(t, 2, idx.Len())
}

func TestIndex_SkipsBlankNames(t *testing.T) {
	idx := location.NewIndex([]location.Location{{ID: uuid.New(), Name: "   "}})

	_, res := idx.Resolve("")
	assert.Equal(t, location.ResolutionUnmatched, res)
	assert.Equal(t, 0, idx.Len())
}
