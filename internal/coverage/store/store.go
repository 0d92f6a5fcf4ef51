package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mowbraylabs/retailpulse/internal/coverage"
)

// Store reads trading activity from the pre-aggregated daily sales summary
// maintained by the sales sync pipeline.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) SalesDays(ctx context.Context, window coverage.Window, locationID *uuid.UUID) (map[uuid.UUID][]time.Time, error) {
	query := `
		SELECT location_id, date
		FROM daily_sales_summary
		WHERE date >= $1 AND date <= $2 AND transaction_count > 0
	`

	args := []any{window.Start, window.End}

	if locationID != nil {
		query += " AND location_id = $3"

		args = append(args, *locationID)
	}

	query += " ORDER BY date ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sales days: %w", err)
	}
	defer rows.Close()

	activity := make(map[uuid.UUID][]time.Time)

	for rows.Next() {
		var locID uuid.UUID

		var day time.Time

		if err := rows.Scan(&locID, &day); err != nil {
			return nil, fmt.Errorf("scanning sales day: %w", err)
		}

		activity[locID] = append(activity[locID], day.UTC())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sales day rows: %w", err)
	}

	return activity, nil
}
