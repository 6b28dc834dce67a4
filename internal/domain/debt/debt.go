// Package debt models the outstanding balance a connected party (event
// organizer or marketplace vendor) owes the platform. The settlement engine
// reads this ledger when computing a charge distribution and decrements it
// when a confirmed charge has actually collected a settlement amount.
package debt

import (
	"time"

	"github.com/google/uuid"
	"github.com/stagepass/settlement/internal/domain/money"
)

// Record holds an owner's outstanding platform debt
type Record struct {
	OwnerID            uuid.UUID `json:"owner_id"`
	RemainingDebtCents int64     `json:"remaining_debt_cents"` // Stored in cents/minor units
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ZeroRecord returns the default no-debt record for an owner. Absence of a
// ledger row is not an error, so readers fall back to this.
func ZeroRecord(ownerID uuid.UUID) *Record {
	return &Record{OwnerID: ownerID}
}

// HasDebt reports whether any balance remains outstanding
func (r *Record) HasDebt() bool {
	return r.RemainingDebtCents > 0
}

// Remaining returns the outstanding balance as a money amount
func (r *Record) Remaining() money.Amount {
	return money.Amount(r.RemainingDebtCents)
}
