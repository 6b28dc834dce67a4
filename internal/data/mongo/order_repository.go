package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stagepass/settlement/internal/domain/charge"
	"github.com/stagepass/settlement/internal/domain/order"
)

const (
	// OrderCollectionName is the name of the order collection in MongoDB
	OrderCollectionName = "orders"
)

// OrderRepository implements the order.Repository interface for MongoDB
type OrderRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewOrderRepository creates a new MongoDB order repository
func NewOrderRepository(logger *slog.Logger, db *mongo.Database) order.Repository {
	return &OrderRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves an order by its storefront-assigned id.
// Returns ErrOrderNotFound if no order exists with the given id.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	collection := r.db.Collection(OrderCollectionName)

	filter := bson.M{"_id": id}
	var ord order.Order
	err := collection.FindOne(ctx, filter).Decode(&ord)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, order.ErrOrderNotFound{OrderID: id}
		}
		r.logger.Error("Failed to get order",
			"order_id", id,
			"error", err)
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &ord, nil
}

// AttachCharge records the provider charge created for this order and moves
// it to PAYMENT_PENDING. Returns ErrOrderNotFound if the order doesn't exist.
func (r *OrderRepository) AttachCharge(ctx context.Context, id, providerChargeID string, pattern charge.Pattern, splitHonored bool) error {
	collection := r.db.Collection(OrderCollectionName)

	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"status":             order.StatusPaymentPending,
			"provider_charge_id": providerChargeID,
			"charge_pattern":     pattern,
			"split_honored":      splitHonored,
			"updated_at":         time.Now(),
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to attach charge to order",
			"order_id", id,
			"provider_charge_id", providerChargeID,
			"error", err)
		return fmt.Errorf("failed to attach charge to order: %w", err)
	}

	if result.MatchedCount == 0 {
		return order.ErrOrderNotFound{OrderID: id}
	}

	return nil
}

// MarkSettled finalizes the order with the confirming notification id and
// the amount the provider actually captured.
func (r *OrderRepository) MarkSettled(ctx context.Context, id, eventID string, capturedAmountCents int64) error {
	collection := r.db.Collection(OrderCollectionName)

	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"status":               order.StatusSettled,
			"settled_event_id":     eventID,
			"settled_amount_cents": capturedAmountCents,
			"updated_at":           time.Now(),
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to mark order settled",
			"order_id", id,
			"event_id", eventID,
			"error", err)
		return fmt.Errorf("failed to mark order settled: %w", err)
	}

	if result.MatchedCount == 0 {
		return order.ErrOrderNotFound{OrderID: id}
	}

	return nil
}

// MarkFailed records a terminal payment failure reported by the provider
func (r *OrderRepository) MarkFailed(ctx context.Context, id, reason string) error {
	collection := r.db.Collection(OrderCollectionName)

	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"status":         order.StatusFailed,
			"failure_reason": reason,
			"updated_at":     time.Now(),
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to mark order failed",
			"order_id", id,
			"error", err)
		return fmt.Errorf("failed to mark order failed: %w", err)
	}

	if result.MatchedCount == 0 {
		return order.ErrOrderNotFound{OrderID: id}
	}

	return nil
}
