package location

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Location is immutable reference data owned by the store-catalog service.
// Names are the join key for budget file column headers.
type Location struct {
	ID       uuid.UUID
	Name     string
	Currency string
}

// Catalog is the external collaborator that owns the location list.
type Catalog interface {
	ListLocations(ctx context.Context) ([]Location, error)
}

// Resolution classifies how a header column resolved against the catalog.
type Resolution int

const (
	// ResolutionMatched means the header resolved to exactly one location.
	ResolutionMatched Resolution = iota
	// ResolutionUnmatched means no location name matched.
	ResolutionUnmatched
	// ResolutionAmbiguous means two or more locations share the folded name.
	// Ambiguous headers are never written to: picking either location would
	// book money against the wrong store.
	ResolutionAmbiguous
)

// Index is a case-insensitive, whitespace-trimmed lookup from location name
// to location. Matching is by exact name only; there is no partial or fuzzy
// matching.
type Index struct {
	byName    map[string]Location
	ambiguous map[string]struct{}
}

func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewIndex builds an Index from the catalog's locations. Names that collide
// after trimming and case-folding are recorded as ambiguous rather than one
// of them silently winning.
func NewIndex(locations []Location) *Index {
	idx := &Index{
		byName:    make(map[string]Location, len(locations)),
		ambiguous: make(map[string]struct{}),
	}

	for _, loc := range locations {
		key := foldName(loc.Name)
		if key == "" {
			continue
		}

		if _, exists := idx.byName[key]; exists {
			idx.ambiguous[key] = struct{}{}
			continue
		}

		idx.byName[key] = loc
	}

	return idx
}

// Resolve matches a single header column against the index.
func (idx *Index) Resolve(header string) (Location, Resolution) {
	key := foldName(header)

	if _, ok := idx.ambiguous[key]; ok {
		return Location{}, ResolutionAmbiguous
	}

	loc, ok := idx.byName[key]
	if !ok {
		return Location{}, ResolutionUnmatched
	}

	return loc, ResolutionMatched
}

// Len reports how many uniquely-named locations the index holds.
func (idx *Index) Len() int {
	return len(idx.byName)
}
