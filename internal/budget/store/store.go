package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mowbraylabs/retailpulse/internal/budget"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectEntryColumns = `
	b.id, b.location_id, b.date, b.budget_amount, b.currency, b.budget_type,
	b.notes, b.created_at, b.updated_at
`

// scanEntry reads a budget row from the scanner.
// Expected column order: id, location_id, date, budget_amount, currency, budget_type, notes, created_at, updated_at
func scanEntry(s scanner) (*budget.Entry, error) {
	var entry budget.Entry

	var typeStr string

	var notes sql.NullString

	if err := s.Scan(
		&entry.ID, &entry.LocationID, &entry.Date, &entry.Amount, &entry.Currency,
		&typeStr, &notes, &entry.CreatedAt, &entry.UpdatedAt,
	); err != nil {
		return nil, err
	}

	entry.Type = budget.Type(typeStr)
	entry.Notes = notes.String

	return &entry, nil
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *Store) CreateEntry(ctx context.Context, entry *budget.Entry) error {
	query := `
		INSERT INTO budgets (location_id, date, budget_amount, currency, budget_type, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		entry.LocationID,
		entry.Date,
		entry.Amount,
		entry.Currency,
		entry.Type,
		nullable(entry.Notes),
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return budget.ErrConflict
		}

		return fmt.Errorf("creating budget entry: %w", err)
	}

	return nil
}

func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (*budget.Entry, error) {
	query := `SELECT ` + selectEntryColumns + `
		FROM budgets b
		WHERE b.id = $1`

	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, budget.ErrNotFound
		}

		return nil, fmt.Errorf("getting budget entry: %w", err)
	}

	return entry, nil
}

func (s *Store) UpdateEntry(ctx context.Context, entry *budget.Entry) error {
	query := `
		UPDATE budgets
		SET budget_amount = $1, budget_type = $2, notes = $3, updated_at = NOW()
		WHERE id = $4
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.Amount,
		entry.Type,
		nullable(entry.Notes),
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("updating budget entry: %w", err)
	}

	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM budgets WHERE id = $1`

	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting budget entry: %w", err)
	}

	return nil
}

func (s *Store) ListEntries(ctx context.Context, filter budget.ListFilter) ([]*budget.Entry, int, error) {
	where := " WHERE 1=1"

	var args []any

	argIdx := 1

	if filter.LocationID != nil {
		where += fmt.Sprintf(" AND b.location_id = $%d", argIdx)

		args = append(args, *filter.LocationID)
		argIdx++
	}

	if filter.StartDate != nil {
		where += fmt.Sprintf(" AND b.date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		where += fmt.Sprintf(" AND b.date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.Type != nil {
		where += fmt.Sprintf(" AND b.budget_type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM budgets b"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting budget entries: %w", err)
	}

	query := `SELECT ` + selectEntryColumns + ` FROM budgets b` + where + " ORDER BY b.date ASC, b.location_id ASC"

	if filter.PageSize > 0 {
		page := max(filter.Page, 1)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, filter.PageSize, (page-1)*filter.PageSize)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing budget entries: %w", err)
	}
	defer rows.Close()

	var entries []*budget.Entry

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning budget entry: %w", err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating budget rows: %w", err)
	}

	return entries, total, nil
}

type reconcileTx struct {
	tx *sql.Tx
}

func (s *Store) BeginReconcile(ctx context.Context) (budget.ReconcileTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning reconcile tx: %w", err)
	}

	return &reconcileTx{tx: tx}, nil
}

func (rtx *reconcileTx) Commit() error   { return rtx.tx.Commit() }
func (rtx *reconcileTx) Rollback() error { return rtx.tx.Rollback() }

// Upsert inserts or replaces the daily target for (location, date). The
// xmax system column is 0 only for freshly inserted rows, which tells an
// insert apart from a conflict-update without a second query.
func (rtx *reconcileTx) Upsert(ctx context.Context, params budget.UpsertParams) (bool, error) {
	query := `
		INSERT INTO budgets (location_id, date, budget_amount, currency, budget_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (location_id, date, budget_type)
		DO UPDATE SET budget_amount = EXCLUDED.budget_amount, currency = EXCLUDED.currency, updated_at = NOW()
		RETURNING (xmax = 0)
	`

	var created bool

	err := rtx.tx.QueryRowContext(ctx, query,
		params.LocationID,
		params.Date,
		params.Amount,
		budget.CurrencyGBP,
		budget.TypeDaily,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("upserting budget entry: %w", err)
	}

	return created, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
