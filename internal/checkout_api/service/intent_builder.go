package service

import (
	"log/slog"
	"strconv"

	"github.com/stagepass/settlement/internal/domain/charge"
	"github.com/stagepass/settlement/internal/domain/debt"
	"github.com/stagepass/settlement/internal/domain/money"
	"github.com/stagepass/settlement/internal/provider"
)

// IntentBuilder assembles a charge.Request from a checkout attempt and the
// owner's current debt. It owns pattern resolution: a requested split is
// downgraded to a platform-only charge when the connected account cannot
// receive funds, with the downgrade reported so the caller can persist it.
type IntentBuilder struct {
	verifier           provider.AccountVerifier
	minimumChargeCents int64
	logger             *slog.Logger
}

// NewIntentBuilder creates a new intent builder
func NewIntentBuilder(logger *slog.Logger, verifier provider.AccountVerifier, minimumChargeCents int64) *IntentBuilder {
	return &IntentBuilder{
		verifier:           verifier,
		minimumChargeCents: minimumChargeCents,
		logger:             logger,
	}
}

// Build produces the provider-agnostic charge request for the attempt.
// splitHonored reports whether the requested pattern survived; it is false
// only when a split was requested and had to be downgraded.
func (b *IntentBuilder) Build(input *CheckoutInput, debtRecord *debt.Record) (*charge.Request, bool, error) {
	if err := money.ValidateCurrency(input.Currency); err != nil {
		return nil, false, err
	}
	if input.GrossAmountCents.Cents() < b.minimumChargeCents {
		return nil, false, charge.ErrAmountBelowMinimum
	}
	// The fee bound holds for every charge, not just splits: a platform-only
	// charge still carries the nominal fee, and a fee above gross is a
	// misconfiguration regardless of which pattern ends up resolved.
	if input.NominalFeeCents > input.GrossAmountCents {
		return nil, false, charge.ErrFeeExceedsGross
	}

	pattern, splitHonored, err := b.resolvePattern(input)
	if err != nil {
		return nil, false, err
	}

	dist := charge.Distribution{}
	if pattern != charge.PatternNone {
		dist, err = charge.ComputeDistribution(input.GrossAmountCents, input.NominalFeeCents, debtRecord)
		if err != nil {
			return nil, false, err
		}
	}

	req := &charge.Request{
		GrossAmountCents:   input.GrossAmountCents,
		Context:            input.Context,
		ConnectedAccountID: input.ConnectedAccountID,
		NominalFeeCents:    input.NominalFeeCents,
		SettlementCents:    dist.SettlementCents,
		Pattern:            pattern,
		IdempotencyKey:     charge.DeriveIdempotencyKey(input.OrderID, input.GrossAmountCents, input.AttemptToken),
		Metadata:           b.buildMetadata(input, dist.SettlementCents),
	}
	if pattern == charge.PatternNone {
		req.ConnectedAccountID = ""
	}

	return req, splitHonored, nil
}

// resolvePattern decides which charge pattern to actually use. A platform-only
// context always charges without a transfer leg; a split context requires a
// connected account, and an unusable one downgrades the charge rather than
// blocking the sale.
func (b *IntentBuilder) resolvePattern(input *CheckoutInput) (charge.Pattern, bool, error) {
	if !input.Context.IsSplit() || input.Pattern == charge.PatternNone {
		return charge.PatternNone, true, nil
	}

	if input.ConnectedAccountID == "" {
		return "", false, charge.ErrMissingConnectedAccount
	}

	if !b.verifier.Usable(input.ConnectedAccountID) {
		b.logger.Warn("Connected account unusable, downgrading to platform-only charge",
			"order_id", input.OrderID,
			"connected_account_id", input.ConnectedAccountID,
			"requested_pattern", string(input.Pattern),
		)
		return charge.PatternNone, false, nil
	}

	return input.Pattern, true, nil
}

// buildMetadata merges caller metadata with the correlation keys that must
// round-trip through the provider and come back on webhook notifications.
func (b *IntentBuilder) buildMetadata(input *CheckoutInput, settlement money.Amount) map[string]string {
	metadata := make(map[string]string, len(input.Metadata)+5)
	for k, v := range input.Metadata {
		metadata[k] = v
	}
	metadata[charge.MetadataOrderID] = input.OrderID
	metadata[charge.MetadataOrderNumber] = input.OrderNumber
	metadata[charge.MetadataOwnerID] = input.OwnerID.String()
	metadata[charge.MetadataSettlementCents] = strconv.FormatInt(settlement.Cents(), 10)
	metadata[charge.MetadataContext] = string(input.Context)
	return metadata
}
