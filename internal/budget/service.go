package budget

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=budget
type Repository interface {
	CreateEntry(ctx context.Context, entry *Entry) error
	GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	UpdateEntry(ctx context.Context, entry *Entry) error
	DeleteEntry(ctx context.Context, id uuid.UUID) error
	ListEntries(ctx context.Context, filter ListFilter) ([]*Entry, int, error)

	BeginReconcile(ctx context.Context) (ReconcileTx, error)
}

// ReconcileTx is one storage transaction covering a whole upload. The
// (location_id, date, budget_type) uniqueness is enforced by the store, so
// Upsert either inserts a new row or replaces the amount of the existing one.
type ReconcileTx interface {
	Upsert(ctx context.Context, params UpsertParams) (created bool, err error)
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	LocationID uuid.UUID
	Date       time.Time
	Amount     int64
	Type       Type
	Notes      string
}

type UpsertParams struct {
	LocationID uuid.UUID
	Date       time.Time
	Amount     int64
}

type ListFilter struct {
	LocationID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	Type       *Type

	// Page is 1-based; PageSize <= 0 disables pagination.
	Page     int
	PageSize int
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Entry, error) {
	entryType := params.Type
	if entryType == "" {
		entryType = TypeDaily
	}

	entry := &Entry{
		LocationID: params.LocationID,
		Date:       params.Date,
		Amount:     params.Amount,
		Currency:   CurrencyGBP,
		Type:       entryType,
		Notes:      params.Notes,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

func (s *Service) Update(ctx context.Context, entry *Entry) error {
	return s.repo.UpdateEntry(ctx, entry)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteEntry(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Entry, int, error) {
	return s.repo.ListEntries(ctx, filter)
}

// ReconcileResult reports what a bulk upload did to the store.
type ReconcileResult struct {
	Created int
	Updated int
}

// Reconcile applies validated upload rows as upserts in file order, so a
// duplicate date later in the file overwrites the earlier row's amounts.
// The whole upload runs in one storage transaction; there is no partial
// commit. Two reconciliations racing on the same (location, date) key are
// last-write-wins, which is accepted for operator-driven imports.
func (s *Service) Reconcile(ctx context.Context, params []UpsertParams) (*ReconcileResult, error) {
	if len(params) == 0 {
		return &ReconcileResult{}, nil
	}

	rtx, err := s.repo.BeginReconcile(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin reconcile: %w", err)
	}
	defer rtx.Rollback()

	result := &ReconcileResult{}

	for _, p := range params {
		created, err := rtx.Upsert(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("upsert %s %s: %w", p.LocationID, p.Date.Format(time.DateOnly), err)
		}

		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	if err := rtx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reconcile: %w", err)
	}

	return result, nil
}

// bulkDeleteChunkSize bounds how many deletions are in flight at once.
const bulkDeleteChunkSize = 10

type BulkDeleteFailure struct {
	ID     uuid.UUID
	Reason string
}

type BulkDeleteResult struct {
	Deleted []uuid.UUID
	Failed  []BulkDeleteFailure
}

// BulkDelete removes entries in fixed-size batches. Each batch is submitted
// concurrently and fully awaited before the next starts; one item's failure
// never aborts its siblings or later batches, and nothing is rolled back.
// Callers wanting the true surviving set must re-query rather than trust
// the counts.
func (s *Service) BulkDelete(ctx context.Context, ids []uuid.UUID) *BulkDeleteResult {
	result := &BulkDeleteResult{}

	var mu sync.Mutex

	for start := 0; start < len(ids); start += bulkDeleteChunkSize {
		end := min(start+bulkDeleteChunkSize, len(ids))

		var wg sync.WaitGroup

		for _, id := range ids[start:end] {
			id := id

			wg.Add(1)

			go func() {
				defer wg.Done()

				err := s.repo.DeleteEntry(ctx, id)

				mu.Lock()
				defer mu.Unlock()

				if err != nil {
					result.Failed = append(result.Failed, BulkDeleteFailure{ID: id, Reason: err.Error()})
					return
				}

				result.Deleted = append(result.Deleted, id)
			}()
		}

		wg.Wait()
	}

	return result
}
