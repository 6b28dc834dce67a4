// Package mongo provides MongoDB implementations of the domain repositories.
// It holds the webhook dedup ledger and the settlement-facing slice of the
// order store.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stagepass/settlement/internal/domain/webhookevent"
)

const (
	// EventCollectionName is the name of the webhook dedup ledger collection
	EventCollectionName = "webhook_events"
)

// EventRepository implements the webhookevent.Repository interface for MongoDB
type EventRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewEventRepository creates a new MongoDB webhook event repository
func NewEventRepository(logger *slog.Logger, db *mongo.Database) webhookevent.Repository {
	return &EventRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the unique (provider, event_id) index the dedup
// ledger depends on. RecordIfNew is only a conditional insert because this
// index exists; call it during startup before serving traffic.
func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(EventCollectionName)

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "provider", Value: 1},
			{Key: "event_id", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("uniq_provider_event_id"),
	})
	if err != nil {
		r.logger.Error("Failed to create webhook event index", "error", err)
		return fmt.Errorf("failed to create webhook event index: %w", err)
	}

	return nil
}

// RecordIfNew inserts the record unless one already exists for the same
// (provider, event_id). The unique index turns a concurrent duplicate
// delivery into a duplicate key error, which is reported as created=false
// rather than a failure.
func (r *EventRepository) RecordIfNew(ctx context.Context, record *webhookevent.Record) (bool, error) {
	collection := r.db.Collection(EventCollectionName)

	_, err := collection.InsertOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		r.logger.Error("Failed to record webhook event",
			"provider", string(record.Provider),
			"event_id", record.EventID,
			"error", err)
		return false, fmt.Errorf("failed to record webhook event: %w", err)
	}

	return true, nil
}

// IsRecorded reports whether a notification has already been processed
func (r *EventRepository) IsRecorded(ctx context.Context, provider webhookevent.Provider, eventID string) (bool, error) {
	collection := r.db.Collection(EventCollectionName)

	filter := bson.M{"provider": provider, "event_id": eventID}
	err := collection.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		r.logger.Error("Failed to check webhook event",
			"provider", string(provider),
			"event_id", eventID,
			"error", err)
		return false, fmt.Errorf("failed to check webhook event: %w", err)
	}

	return true, nil
}

// EvictExpired removes every record whose retention window has passed and
// returns how many were removed
func (r *EventRepository) EvictExpired(ctx context.Context, now time.Time) (int64, error) {
	collection := r.db.Collection(EventCollectionName)

	filter := bson.M{"expires_at": bson.M{"$lt": now}}
	result, err := collection.DeleteMany(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to evict expired webhook events", "error", err)
		return 0, fmt.Errorf("failed to evict expired webhook events: %w", err)
	}

	return result.DeletedCount, nil
}
