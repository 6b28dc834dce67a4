package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stagepass/settlement/internal/domain/debt"
	"github.com/stagepass/settlement/internal/domain/order"
	"github.com/stagepass/settlement/internal/provider"
)

// CheckoutServiceImpl implements the CheckoutService interface
type CheckoutServiceImpl struct {
	orderRepo       order.Repository
	debtRepo        debt.Repository
	providerClient  provider.Client
	intentBuilder   *IntentBuilder
	debtReadTimeout time.Duration
	logger          *slog.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	logger *slog.Logger,
	orderRepo order.Repository,
	debtRepo debt.Repository,
	providerClient provider.Client,
	intentBuilder *IntentBuilder,
	debtReadTimeout time.Duration,
) CheckoutService {
	return &CheckoutServiceImpl{
		orderRepo:       orderRepo,
		debtRepo:        debtRepo,
		providerClient:  providerClient,
		intentBuilder:   intentBuilder,
		debtReadTimeout: debtReadTimeout,
		logger:          logger,
	}
}

// CreateCheckout builds the charge for an order and creates it with the
// payment provider. The debt read is advisory: if the ledger cannot be
// reached in time the checkout proceeds without a settlement skim rather
// than blocking the sale.
func (s *CheckoutServiceImpl) CreateCheckout(ctx context.Context, input *CheckoutInput) (*CheckoutResult, error) {
	ord, err := s.orderRepo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	debtRecord := s.readDebt(ctx, input.OwnerID)

	chargeReq, splitHonored, err := s.intentBuilder.Build(input, debtRecord)
	if err != nil {
		s.logger.Error("Failed to build charge request",
			"order_id", input.OrderID,
			"error", err,
		)
		return nil, err
	}

	handle, err := s.providerClient.CreateCharge(ctx, chargeReq)
	if err != nil {
		s.logger.Error("Provider charge creation failed",
			"order_id", input.OrderID,
			"pattern", string(chargeReq.Pattern),
			"error", err,
		)
		return nil, err
	}

	if err := s.orderRepo.AttachCharge(ctx, ord.ID, handle.ChargeID, chargeReq.Pattern, splitHonored); err != nil {
		// The charge exists at the provider; idempotency keying makes a
		// client retry of this attempt safe.
		s.logger.Error("Failed to attach charge to order",
			"order_id", ord.ID,
			"charge_id", handle.ChargeID,
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("Checkout created",
		"order_id", ord.ID,
		"charge_id", handle.ChargeID,
		"pattern", string(chargeReq.Pattern),
		"split_honored", splitHonored,
		"settlement_cents", chargeReq.SettlementCents.Cents(),
	)

	return &CheckoutResult{
		ChargeID:              handle.ChargeID,
		ClientSecret:          handle.ClientSecret,
		Pattern:               chargeReq.Pattern,
		SplitHonored:          splitHonored,
		SettlementCents:       chargeReq.SettlementCents.Cents(),
		TotalPlatformFeeCents: chargeReq.TotalPlatformFeeCents().Cents(),
	}, nil
}

// GetDebtByOwner returns the owner's current debt record
func (s *CheckoutServiceImpl) GetDebtByOwner(ctx context.Context, ownerID uuid.UUID) (*debt.Record, error) {
	return s.debtRepo.GetByOwner(ctx, ownerID)
}

// readDebt fetches the owner's debt under a short timeout. Any failure is
// treated as zero debt: the skim is opportunistic and must never make a
// checkout depend on the debt ledger's availability.
func (s *CheckoutServiceImpl) readDebt(ctx context.Context, ownerID uuid.UUID) *debt.Record {
	readCtx, cancel := context.WithTimeout(ctx, s.debtReadTimeout)
	defer cancel()

	record, err := s.debtRepo.GetByOwner(readCtx, ownerID)
	if err != nil {
		s.logger.Warn("Debt read failed, proceeding without settlement skim",
			"owner_id", ownerID.String(),
			"error", err,
		)
		return debt.ZeroRecord(ownerID)
	}
	return record
}
