// Package postgres provides PostgreSQL implementations of the domain repositories.
// It holds the platform debt ledger and performs the atomic, floor-clamped
// decrements the settlement engine relies on.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stagepass/settlement/internal/domain/debt"
	"github.com/stagepass/settlement/internal/platform/persistence"
)

// DebtRepository implements the debt.Repository interface for PostgreSQL
type DebtRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewDebtRepository creates a new PostgreSQL debt repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewDebtRepository(logger *slog.Logger, db *persistence.PostgresDB) debt.Repository {
	return &DebtRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// GetByOwner retrieves the owner's debt record. An owner without a ledger row
// simply has no debt, so a zero-debt record is returned instead of an error.
func (r *DebtRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*debt.Record, error) {
	query := `
		SELECT owner_id, remaining_debt_cents, created_at, updated_at
		FROM debt_records
		WHERE owner_id = $1
	`

	var rec debt.Record
	err := r.querier.QueryRow(ctx, query, ownerID).Scan(
		&rec.OwnerID,
		&rec.RemainingDebtCents,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return debt.ZeroRecord(ownerID), nil
		}
		r.logger.Error("Failed to get debt record", "ownerID", ownerID.String(), "error", err)
		return nil, fmt.Errorf("failed to get debt record: %w", err)
	}

	return &rec, nil
}

// ApplySettlement atomically decrements the owner's remaining debt by the
// collected amount and returns the new balance. GREATEST keeps the balance
// from going negative when the collected amount exceeds what is owed, and the
// single UPDATE keeps concurrent confirmations for the same owner safe.
func (r *DebtRepository) ApplySettlement(ctx context.Context, ownerID uuid.UUID, amountCents int64) (int64, error) {
	query := `
		UPDATE debt_records
		SET remaining_debt_cents = GREATEST(remaining_debt_cents - $1, 0), updated_at = NOW()
		WHERE owner_id = $2
		RETURNING remaining_debt_cents
	`

	var remaining int64
	err := r.querier.QueryRow(ctx, query, amountCents, ownerID).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No ledger row means nothing was owed. The settlement still
			// happened on the provider side, there is just no debt to retire.
			return 0, nil
		}
		r.logger.Error("Failed to apply settlement to debt record", "ownerID", ownerID.String(), "error", err)
		return 0, fmt.Errorf("failed to apply settlement: %w", err)
	}

	return remaining, nil
}
