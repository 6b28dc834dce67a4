package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stagepass/settlement/internal/domain/debt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestDebtRepository_GetByOwner(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &DebtRepository{querier: mock, logger: logger}
	ownerID := uuid.New()
	now := time.Now()

	expectedRecord := &debt.Record{
		OwnerID:            ownerID,
		RemainingDebtCents: 5000,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	query := `
		SELECT owner_id, remaining_debt_cents, created_at, updated_at
		FROM debt_records
		WHERE owner_id = \$1
	`

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"owner_id", "remaining_debt_cents", "created_at", "updated_at"}).
			AddRow(expectedRecord.OwnerID, expectedRecord.RemainingDebtCents, expectedRecord.CreatedAt, expectedRecord.UpdatedAt)
		mock.ExpectQuery(query).WithArgs(ownerID).WillReturnRows(rows)

		rec, err := repo.GetByOwner(ctx, ownerID)
		assert.NoError(t, err)
		assert.Equal(t, expectedRecord, rec)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no row means zero debt", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(ownerID).WillReturnError(pgx.ErrNoRows)

		rec, err := repo.GetByOwner(ctx, ownerID)
		assert.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, ownerID, rec.OwnerID)
		assert.False(t, rec.HasDebt())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		expectedErr := errors.New("db connection error")
		mock.ExpectQuery(query).WithArgs(ownerID).WillReturnError(expectedErr)

		rec, err := repo.GetByOwner(ctx, ownerID)
		assert.Error(t, err)
		assert.Nil(t, rec)
		assert.Contains(t, err.Error(), "failed to get debt record")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDebtRepository_ApplySettlement(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &DebtRepository{querier: mock, logger: logger}
	ownerID := uuid.New()

	query := `
		UPDATE debt_records
		SET remaining_debt_cents = GREATEST\(remaining_debt_cents - \$1, 0\), updated_at = NOW\(\)
		WHERE owner_id = \$2
		RETURNING remaining_debt_cents
	`

	t.Run("partial repayment", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"remaining_debt_cents"}).AddRow(int64(4500))
		mock.ExpectQuery(query).WithArgs(int64(500), ownerID).WillReturnRows(rows)

		remaining, err := repo.ApplySettlement(ctx, ownerID, 500)
		assert.NoError(t, err)
		assert.Equal(t, int64(4500), remaining)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("overpayment clamps at zero", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"remaining_debt_cents"}).AddRow(int64(0))
		mock.ExpectQuery(query).WithArgs(int64(9999), ownerID).WillReturnRows(rows)

		remaining, err := repo.ApplySettlement(ctx, ownerID, 9999)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), remaining)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no ledger row", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(int64(500), ownerID).WillReturnError(pgx.ErrNoRows)

		remaining, err := repo.ApplySettlement(ctx, ownerID, 500)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), remaining)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		expectedErr := errors.New("db connection error")
		mock.ExpectQuery(query).WithArgs(int64(500), ownerID).WillReturnError(expectedErr)

		remaining, err := repo.ApplySettlement(ctx, ownerID, 500)
		assert.Error(t, err)
		assert.Equal(t, int64(0), remaining)
		assert.Contains(t, err.Error(), "failed to apply settlement")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
