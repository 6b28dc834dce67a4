package webhookevent

import (
	"context"
	"time"
)

// Repository manages dedup ledger persistence. The storage layer must back
// RecordIfNew with a unique constraint on (provider, event_id): a conditional
// write, not a read-then-write pair, so concurrent deliveries of the same
// notification serialize correctly.
type Repository interface {
	// RecordIfNew inserts the record unless one already exists for the same
	// (provider, event_id). Returns true when this call created the record;
	// under concurrent delivery at most one caller observes true.
	RecordIfNew(ctx context.Context, record *Record) (bool, error)

	// IsRecorded is a pure read used for idempotent early exit before any
	// business effect is attempted.
	IsRecorded(ctx context.Context, provider Provider, eventID string) (bool, error)

	// EvictExpired removes every record with expires_at before now and
	// returns how many were removed. Maintenance only; skipping it costs
	// ledger space, never correctness.
	EvictExpired(ctx context.Context, now time.Time) (int64, error)
}
