// Package sweeper evicts expired entries from the webhook dedup ledger on an
// interval. Eviction is pure maintenance: an entry only becomes evictable
// after every provider's redelivery window has closed, so removing it can
// never let a duplicate notification back in.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/stagepass/settlement/internal/config"
	"github.com/stagepass/settlement/internal/domain/webhookevent"
)

// Sweeper periodically removes expired webhook event records
type Sweeper struct {
	eventRepo     webhookevent.Repository
	logger        *slog.Logger
	sweepInterval time.Duration
}

func NewSweeper(
	cfg *config.SettlementConfig,
	eventRepo webhookevent.Repository,
	logger *slog.Logger,
) *Sweeper {
	return &Sweeper{
		eventRepo:     eventRepo,
		logger:        logger,
		sweepInterval: cfg.SweepInterval,
	}
}

// Start begins sweeping until context is canceled
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting webhook ledger sweeper",
		"sweep_interval", s.sweepInterval.String(),
	)
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Webhook ledger sweeper stopping due to context cancellation.")
			return
		case <-ticker.C:
			s.logger.Debug("Sweeper tick: evicting expired webhook events")
			if err := s.sweepOnce(ctx); err != nil {
				s.logger.Error("Error during webhook ledger sweep", "error", err)
			}
		}
	}
}

// sweepOnce runs a single eviction pass. A failed pass costs nothing but
// ledger space; the next tick picks up where this one left off.
func (s *Sweeper) sweepOnce(ctx context.Context) error {
	evicted, err := s.eventRepo.EvictExpired(ctx, time.Now())
	if err != nil {
		return err
	}

	if evicted > 0 {
		s.logger.Info("Evicted expired webhook events", "count", evicted)
	} else {
		s.logger.Debug("No expired webhook events found.")
	}
	return nil
}
