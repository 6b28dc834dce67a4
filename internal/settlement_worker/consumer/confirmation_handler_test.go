package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"log/slog"

	"github.com/google/uuid"
	"github.com/stagepass/settlement/internal/domain/order"
	"github.com/stagepass/settlement/internal/domain/shared"
	"github.com/stagepass/settlement/internal/domain/webhookevent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockApplyService struct {
	mock.Mock
}

func (m *MockApplyService) ApplyConfirmation(ctx context.Context, confirmation *shared.SettlementConfirmation) error {
	args := m.Called(ctx, confirmation)
	return args.Error(0)
}

type MockDeadLetterPublisher struct {
	mock.Mock
}

func (m *MockDeadLetterPublisher) PublishToDLQ(ctx context.Context, key string, value []byte, reason string) error {
	args := m.Called(ctx, key, value, reason)
	return args.Error(0)
}

func (m *MockDeadLetterPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func confirmationMessage(t *testing.T) ([]byte, *shared.SettlementConfirmation) {
	t.Helper()
	confirmation := &shared.SettlementConfirmation{
		EventID:             "evt_123",
		Provider:            webhookevent.ProviderStripe,
		EventType:           "charge.captured",
		OrderID:             "ord_1",
		OwnerID:             uuid.New(),
		SettlementCents:     500,
		CapturedAmountCents: 10000,
		CorrelationID:       "corr-1",
	}
	value, err := json.Marshal(confirmation)
	require.NoError(t, err)
	return value, confirmation
}

func TestConfirmationHandler_HandleMessage(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	key := []byte("ord_1")

	t.Run("successful processing commits offset", func(t *testing.T) {
		mockService := &MockApplyService{}
		mockDLQ := &MockDeadLetterPublisher{}
		value, _ := confirmationMessage(t)

		mockService.On("ApplyConfirmation", mock.Anything, mock.MatchedBy(func(c *shared.SettlementConfirmation) bool {
			return c.EventID == "evt_123" && c.SettlementCents == 500
		})).Return(nil)

		handler := NewConfirmationHandler(logger, mockService, mockDLQ)
		err := handler.HandleMessage(ctx, key, value)

		assert.NoError(t, err)
		mockService.AssertExpectations(t)
		mockDLQ.AssertNotCalled(t, "PublishToDLQ", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unmarshal failure goes to DLQ and commits", func(t *testing.T) {
		mockService := &MockApplyService{}
		mockDLQ := &MockDeadLetterPublisher{}
		value := []byte("not json")

		mockDLQ.On("PublishToDLQ", mock.Anything, "ord_1", value, mock.Anything).Return(nil)

		handler := NewConfirmationHandler(logger, mockService, mockDLQ)
		err := handler.HandleMessage(ctx, key, value)

		assert.NoError(t, err)
		mockDLQ.AssertExpectations(t)
		mockService.AssertNotCalled(t, "ApplyConfirmation", mock.Anything, mock.Anything)
	})

	t.Run("unmarshal failure with failing DLQ returns error", func(t *testing.T) {
		mockService := &MockApplyService{}
		mockDLQ := &MockDeadLetterPublisher{}
		value := []byte("not json")

		mockDLQ.On("PublishToDLQ", mock.Anything, "ord_1", value, mock.Anything).Return(errors.New("dlq unavailable"))

		handler := NewConfirmationHandler(logger, mockService, mockDLQ)
		err := handler.HandleMessage(ctx, key, value)

		assert.Error(t, err)
	})

	t.Run("unmarshal failure without DLQ returns error for redelivery", func(t *testing.T) {
		mockService := &MockApplyService{}
		value := []byte("not json")

		handler := NewConfirmationHandler(logger, mockService, nil)
		err := handler.HandleMessage(ctx, key, value)

		assert.Error(t, err)
	})

	t.Run("validation error goes to DLQ and commits", func(t *testing.T) {
		mockService := &MockApplyService{}
		mockDLQ := &MockDeadLetterPublisher{}
		value, _ := confirmationMessage(t)

		mockService.On("ApplyConfirmation", mock.Anything, mock.Anything).Return(shared.ErrMissingOrderID)
		mockDLQ.On("PublishToDLQ", mock.Anything, "ord_1", value, shared.ErrMissingOrderID.Error()).Return(nil)

		handler := NewConfirmationHandler(logger, mockService, mockDLQ)
		err := handler.HandleMessage(ctx, key, value)

		assert.NoError(t, err)
		mockDLQ.AssertExpectations(t)
	})

	t.Run("unknown order goes to DLQ and commits", func(t *testing.T) {
		mockService := &MockApplyService{}
		mockDLQ := &MockDeadLetterPublisher{}
		value, _ := confirmationMessage(t)
		notFound := order.ErrOrderNotFound{OrderID: "ord_1"}

		mockService.On("ApplyConfirmation", mock.Anything, mock.Anything).Return(notFound)
		mockDLQ.On("PublishToDLQ", mock.Anything, "ord_1", value, notFound.Error()).Return(nil)

		handler := NewConfirmationHandler(logger, mockService, mockDLQ)
		err := handler.HandleMessage(ctx, key, value)

		assert.NoError(t, err)
		mockDLQ.AssertExpectations(t)
	})

	t.Run("permanent error with failing DLQ returns error", func(t *testing.T) {
		mockService := &MockApplyService{}
		mockDLQ := &MockDeadLetterPublisher{}
		value, _ := confirmationMessage(t)

		mockService.On("ApplyConfirmation", mock.Anything, mock.Anything).Return(shared.ErrInvalidAmount)
		mockDLQ.On("PublishToDLQ", mock.Anything, "ord_1", value, mock.Anything).Return(errors.New("dlq unavailable"))

		handler := NewConfirmationHandler(logger, mockService, mockDLQ)
		err := handler.HandleMessage(ctx, key, value)

		assert.Error(t, err)
	})

	t.Run("transient error leaves offset uncommitted", func(t *testing.T) {
		mockService := &MockApplyService{}
		mockDLQ := &MockDeadLetterPublisher{}
		value, _ := confirmationMessage(t)

		mockService.On("ApplyConfirmation", mock.Anything, mock.Anything).Return(errors.New("database timeout"))

		handler := NewConfirmationHandler(logger, mockService, mockDLQ)
		err := handler.HandleMessage(ctx, key, value)

		assert.Error(t, err)
		mockDLQ.AssertNotCalled(t, "PublishToDLQ", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
