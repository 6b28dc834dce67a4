package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stagepass/settlement/internal/domain/charge"
	"github.com/stagepass/settlement/internal/domain/debt"
	"github.com/stagepass/settlement/internal/domain/order"
	"github.com/stagepass/settlement/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) AttachCharge(ctx context.Context, id, providerChargeID string, pattern charge.Pattern, splitHonored bool) error {
	args := m.Called(ctx, id, providerChargeID, pattern, splitHonored)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkSettled(ctx context.Context, id, eventID string, capturedAmountCents int64) error {
	args := m.Called(ctx, id, eventID, capturedAmountCents)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkFailed(ctx context.Context, id, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

type MockDebtRepository struct {
	mock.Mock
}

func (m *MockDebtRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*debt.Record, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*debt.Record), args.Error(1)
}

func (m *MockDebtRepository) ApplySettlement(ctx context.Context, ownerID uuid.UUID, amountCents int64) (int64, error) {
	args := m.Called(ctx, ownerID, amountCents)
	return args.Get(0).(int64), args.Error(1)
}

type MockProviderClient struct {
	mock.Mock
}

func (m *MockProviderClient) CreateCharge(ctx context.Context, req *charge.Request) (*provider.ChargeHandle, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.ChargeHandle), args.Error(1)
}

func newCheckoutService(orderRepo order.Repository, debtRepo debt.Repository, client provider.Client) CheckoutService {
	builder := NewIntentBuilder(testLogger(), provider.NewHeuristicVerifier(), 50)
	return NewCheckoutService(testLogger(), orderRepo, debtRepo, client, builder, 2*time.Second)
}

func pendingOrder(id string, ownerID uuid.UUID) *order.Order {
	return &order.Order{
		ID:               id,
		OrderNumber:      "SP-2024-0001",
		OwnerID:          ownerID,
		Status:           order.StatusPending,
		GrossAmountCents: 10000,
	}
}

func TestCheckoutService_CreateCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("SuccessWithSkim", func(t *testing.T) {
		input := splitInput()
		orderRepo := new(MockOrderRepository)
		debtRepo := new(MockDebtRepository)
		client := new(MockProviderClient)

		orderRepo.On("GetByID", mock.Anything, "ord_1").Return(pendingOrder("ord_1", input.OwnerID), nil)
		debtRepo.On("GetByOwner", mock.Anything, input.OwnerID).Return(&debt.Record{OwnerID: input.OwnerID, RemainingDebtCents: 500}, nil)
		client.On("CreateCharge", mock.Anything, mock.MatchedBy(func(req *charge.Request) bool {
			return req.SettlementCents.Cents() == 500 && req.Pattern == charge.PatternDestination
		})).Return(&provider.ChargeHandle{ChargeID: "ch_abc", ClientSecret: "secret", Status: "requires_confirmation"}, nil)
		orderRepo.On("AttachCharge", mock.Anything, "ord_1", "ch_abc", charge.PatternDestination, true).Return(nil)

		svc := newCheckoutService(orderRepo, debtRepo, client)
		result, err := svc.CreateCheckout(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, "ch_abc", result.ChargeID)
		assert.True(t, result.SplitHonored)
		assert.Equal(t, int64(500), result.SettlementCents)
		assert.Equal(t, int64(1500), result.TotalPlatformFeeCents)

		orderRepo.AssertExpectations(t)
		debtRepo.AssertExpectations(t)
		client.AssertExpectations(t)
	})

	t.Run("DebtReadFailureProceedsWithoutSkim", func(t *testing.T) {
		input := splitInput()
		orderRepo := new(MockOrderRepository)
		debtRepo := new(MockDebtRepository)
		client := new(MockProviderClient)

		orderRepo.On("GetByID", mock.Anything, "ord_1").Return(pendingOrder("ord_1", input.OwnerID), nil)
		debtRepo.On("GetByOwner", mock.Anything, input.OwnerID).Return(nil, errors.New("connection refused"))
		client.On("CreateCharge", mock.Anything, mock.MatchedBy(func(req *charge.Request) bool {
			return req.SettlementCents.Cents() == 0
		})).Return(&provider.ChargeHandle{ChargeID: "ch_abc", ClientSecret: "secret"}, nil)
		orderRepo.On("AttachCharge", mock.Anything, "ord_1", "ch_abc", charge.PatternDestination, true).Return(nil)

		svc := newCheckoutService(orderRepo, debtRepo, client)
		result, err := svc.CreateCheckout(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, int64(0), result.SettlementCents)
		assert.Equal(t, int64(1000), result.TotalPlatformFeeCents)
	})

	t.Run("OrderNotFound", func(t *testing.T) {
		input := splitInput()
		orderRepo := new(MockOrderRepository)
		debtRepo := new(MockDebtRepository)
		client := new(MockProviderClient)

		orderRepo.On("GetByID", mock.Anything, "ord_1").Return(nil, order.ErrOrderNotFound{OrderID: "ord_1"})

		svc := newCheckoutService(orderRepo, debtRepo, client)
		_, err := svc.CreateCheckout(ctx, input)

		assert.ErrorIs(t, err, order.ErrOrderNotFound{})
		client.AssertNotCalled(t, "CreateCharge")
	})

	t.Run("UnusableAccountDowngradePersisted", func(t *testing.T) {
		input := splitInput()
		input.ConnectedAccountID = "acct_sandbox123456789"
		orderRepo := new(MockOrderRepository)
		debtRepo := new(MockDebtRepository)
		client := new(MockProviderClient)

		orderRepo.On("GetByID", mock.Anything, "ord_1").Return(pendingOrder("ord_1", input.OwnerID), nil)
		debtRepo.On("GetByOwner", mock.Anything, input.OwnerID).Return(&debt.Record{OwnerID: input.OwnerID, RemainingDebtCents: 500}, nil)
		client.On("CreateCharge", mock.Anything, mock.MatchedBy(func(req *charge.Request) bool {
			return req.Pattern == charge.PatternNone && req.ConnectedAccountID == ""
		})).Return(&provider.ChargeHandle{ChargeID: "ch_abc", ClientSecret: "secret"}, nil)
		orderRepo.On("AttachCharge", mock.Anything, "ord_1", "ch_abc", charge.PatternNone, false).Return(nil)

		svc := newCheckoutService(orderRepo, debtRepo, client)
		result, err := svc.CreateCheckout(ctx, input)

		require.NoError(t, err)
		assert.False(t, result.SplitHonored)
		assert.Equal(t, charge.PatternNone, result.Pattern)

		orderRepo.AssertExpectations(t)
	})

	t.Run("ProviderRejectionPropagated", func(t *testing.T) {
		input := splitInput()
		orderRepo := new(MockOrderRepository)
		debtRepo := new(MockDebtRepository)
		client := new(MockProviderClient)

		orderRepo.On("GetByID", mock.Anything, "ord_1").Return(pendingOrder("ord_1", input.OwnerID), nil)
		debtRepo.On("GetByOwner", mock.Anything, input.OwnerID).Return(debt.ZeroRecord(input.OwnerID), nil)
		client.On("CreateCharge", mock.Anything, mock.Anything).
			Return(nil, provider.RejectionError{Code: "card_declined", Reason: "insufficient funds"})

		svc := newCheckoutService(orderRepo, debtRepo, client)
		_, err := svc.CreateCheckout(ctx, input)

		var rejection provider.RejectionError
		assert.ErrorAs(t, err, &rejection)
		orderRepo.AssertNotCalled(t, "AttachCharge")
	})

	t.Run("AttachChargeFailure", func(t *testing.T) {
		input := splitInput()
		orderRepo := new(MockOrderRepository)
		debtRepo := new(MockDebtRepository)
		client := new(MockProviderClient)

		orderRepo.On("GetByID", mock.Anything, "ord_1").Return(pendingOrder("ord_1", input.OwnerID), nil)
		debtRepo.On("GetByOwner", mock.Anything, input.OwnerID).Return(debt.ZeroRecord(input.OwnerID), nil)
		client.On("CreateCharge", mock.Anything, mock.Anything).
			Return(&provider.ChargeHandle{ChargeID: "ch_abc"}, nil)
		orderRepo.On("AttachCharge", mock.Anything, "ord_1", "ch_abc", charge.PatternDestination, true).
			Return(errors.New("db error"))

		svc := newCheckoutService(orderRepo, debtRepo, client)
		_, err := svc.CreateCheckout(ctx, input)

		assert.Error(t, err)
	})
}

func TestCheckoutService_GetDebtByOwner(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	orderRepo := new(MockOrderRepository)
	debtRepo := new(MockDebtRepository)
	client := new(MockProviderClient)

	expected := &debt.Record{OwnerID: ownerID, RemainingDebtCents: 2500}
	debtRepo.On("GetByOwner", mock.Anything, ownerID).Return(expected, nil)

	svc := newCheckoutService(orderRepo, debtRepo, client)
	record, err := svc.GetDebtByOwner(ctx, ownerID)

	require.NoError(t, err)
	assert.Equal(t, expected, record)
	debtRepo.AssertExpectations(t)
}
