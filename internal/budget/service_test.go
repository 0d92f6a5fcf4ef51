package budget_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mowbraylabs/retailpulse/internal/budget"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    budget.CreateParams
		setupMock func(m *budget.MockRepository)
		wantErr   error
	}

	locID := uuid.New()

	tests := []testCase{
		{
			name: "Success",
			params: budget.CreateParams{
				LocationID: locID,
				Date:       day(2026, 2, 1),
				Amount:     500000,
			},
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().
					CreateEntry(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e *budget.Entry) error {
						assert.Equal(t, budget.CurrencyGBP, e.Currency)
						assert.Equal(t, budget.TypeDaily, e.Type)
						e.ID = uuid.New()
						e.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name: "ConflictOnExistingKey",
			params: budget.CreateParams{
				LocationID: locID,
				Date:       day(2026, 2, 1),
				Amount:     500000,
			},
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().
					CreateEntry(gomock.Any(), gomock.Any()).
					Return(budget.ErrConflict)
			},
			wantErr: budget.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := budget.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := budget.NewService(repo)
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, got)
			assert.NotEmpty(t, got.ID)
		})
	}
}

func TestService_Reconcile_CountsCreatedAndUpdated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := budget.NewMockRepository(ctrl)
	rtx := budget.NewMockReconcileTx(ctrl)
	svc := budget.NewService(repo)

	params := []budget.UpsertParams{
		{LocationID: uuid.New(), Date: day(2026, 2, 1), Amount: 500000},
		{LocationID: uuid.New(), Date: day(2026, 2, 1), Amount: 450000},
		{LocationID: uuid.New(), Date: day(2026, 2, 2), Amount: 510000},
	}

	repo.EXPECT().BeginReconcile(gomock.Any()).Return(rtx, nil)
	rtx.EXPECT().Upsert(gomock.Any(), params[0]).Return(true, nil)
	rtx.EXPECT().Upsert(gomock.Any(), params[1]).Return(true, nil)
	rtx.EXPECT().Upsert(gomock.Any(), params[2]).Return(false, nil)
	rtx.EXPECT().Commit().Return(nil)
	rtx.EXPECT().Rollback().Return(nil)

	result, err := svc.Reconcile(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Updated)
}

func TestService_Reconcile_IsUpsertFixedPoint(t *testing.T) {
	// Reconciling the same rows twice must create on the first run and only
	// update on the second.
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := budget.NewMockRepository(ctrl)
	svc := budget.NewService(repo)

	params := []budget.UpsertParams{
		{LocationID: uuid.New(), Date: day(2026, 2, 1), Amount: 500000},
		{LocationID: uuid.New(), Date: day(2026, 2, 1), Amount: 450000},
	}

	seen := make(map[budget.UpsertParams]bool)

	repo.EXPECT().BeginReconcile(gomock.Any()).DoAndReturn(func(context.Context) (budget.ReconcileTx, error) {
		rtx := budget.NewMockReconcileTx(ctrl)
		rtx.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p budget.UpsertParams) (bool, error) {
				created := !seen[p]
				seen[p] = true
				return created, nil
			}).Times(len(params))
		rtx.EXPECT().Commit().Return(nil)
		rtx.EXPECT().Rollback().Return(nil)
		return rtx, nil
	}).Times(2)

	first, err := svc.Reconcile(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)
	assert.Equal(t, 0, first.Updated)

	second, err := svc.Reconcile(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Updated)
}

func TestService_Reconcile_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := budget.NewMockRepository(ctrl)
	svc := budget.NewService(repo)

	result, err := svc.Reconcile(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Zero(t, result.Updated)
}

func TestService_Reconcile_UpsertFailureRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := budget.NewMockRepository(ctrl)
	rtx := budget.NewMockReconcileTx(ctrl)
	svc := budget.NewService(repo)

	params := []budget.UpsertParams{
		{LocationID: uuid.New(), Date: day(2026, 2, 1), Amount: 500000},
	}

	repo.EXPECT().BeginReconcile(gomock.Any()).Return(rtx, nil)
	rtx.EXPECT().Upsert(gomock.Any(), params[0]).Return(false, errors.New("constraint violated"))
	rtx.EXPECT().Rollback().Return(nil)

	_, err := svc.Reconcile(context.Background(), params)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "constraint violated")
}

func TestService_BulkDelete_ToleratesPartialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := budget.NewMockRepository(ctrl)
	svc := budget.NewService(repo)

	ids := make([]uuid.UUID, 25)
	for i := range ids {
		ids[i] = uuid.New()
	}

	// One id in the middle of the first chunk fails; every sibling and every
	// later chunk must still be attempted.
	bad := ids[3]

	repo.EXPECT().
		DeleteEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id uuid.UUID) error {
			if id == bad {
				return errors.New("row locked")
			}
			return nil
		}).
		Times(len(ids))

	result := svc.BulkDelete(context.Background(), ids)

	assert.Len(t, result.Deleted, 24)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, bad, result.Failed[0].ID)
	assert.Equal(t, "row locked", result.Failed[0].Reason)

	var want []uuid.UUID

	for _, id := range ids {
		if id != bad {
			want = append(want, id)
		}
	}

	assert.ElementsMatch(t, want, result.Deleted)
}

func TestService_BulkDelete_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := budget.NewMockRepository(ctrl)
	svc := budget.NewService(repo)

	result := svc.BulkDelete(context.Background(), nil)
	assert.Empty(t, result.Deleted)
	assert.Empty(t, result.Failed)
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := budget.NewMockRepository(ctrl)
	svc := budget.NewService(repo)

	filter := budget.ListFilter{Page: 1, PageSize: 50}

	repo.EXPECT().
		ListEntries(gomock.Any(), filter).
		Return([]*budget.Entry{{ID: uuid.New()}, {ID: uuid.New()}}, 7, nil)

	entries, total, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 7, total)
}
