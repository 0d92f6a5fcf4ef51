package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mowbraylabs/retailpulse/internal/location"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListLocations(ctx context.Context) ([]location.Location, error) {
	query := `
		SELECT id, name, currency
		FROM locations
		WHERE is_active
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	defer rows.Close()

	var locs []location.Location

	for rows.Next() {
		var loc location.Location
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Currency); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}

		locs = append(locs, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating location rows: %w", err)
	}

	return locs, nil
}
