package charge

import (
	"github.com/stagepass/settlement/internal/domain/debt"
	"github.com/stagepass/settlement/internal/domain/money"
)

// Distribution is the outcome of splitting a gross amount between the
// platform and the connected party.
type Distribution struct {
	SettlementCents       money.Amount
	TotalPlatformFeeCents money.Amount
}

// ComputeDistribution decides how much of a charge the platform keeps. The
// settlement skim is capped at the transaction's own nominal fee, so the total
// platform take on a single order never exceeds twice the ordinary commission
// regardless of how large the outstanding debt is.
//
// A nominal fee larger than the gross amount is a configuration error upstream
// (fee misconfigured for the order) and is rejected, not clamped.
func ComputeDistribution(grossAmount, nominalFee money.Amount, d *debt.Record) (Distribution, error) {
	if nominalFee > grossAmount {
		return Distribution{}, ErrFeeExceedsGross
	}

	var settlement money.Amount
	if d != nil && d.HasDebt() && nominalFee > 0 {
		settlement = money.Min(d.Remaining(), nominalFee)
	}

	// The platform's total take must never exceed what the customer pays.
	// A fee schedule above 50% of gross can trip this once debt is skimmed;
	// that is a misconfiguration, not something to clamp quietly.
	total := nominalFee.Add(settlement)
	if total > grossAmount {
		return Distribution{}, ErrFeeExceedsGross
	}

	return Distribution{
		SettlementCents:       settlement,
		TotalPlatformFeeCents: total,
	}, nil
}
