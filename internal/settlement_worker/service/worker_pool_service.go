package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/stagepass/settlement/internal/domain/shared"
)

// WorkerPoolApplyService implements the ApplyService interface on top of a
// bounded worker pool
type WorkerPoolApplyService struct {
	baseService ApplyService
	pool        *ants.Pool
	logger      *slog.Logger
	// Use a mutex to protect access to the results map
	mu      sync.Mutex
	results map[string]chan error
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolApplyService(
	baseService ApplyService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolApplyService, error) {
	// Create a new worker pool with the specified size
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolApplyService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
		results:     make(map[string]chan error),
	}, nil
}

// ApplyConfirmation submits a confirmation to the worker pool for processing.
func (s *WorkerPoolApplyService) ApplyConfirmation(ctx context.Context, confirmation *shared.SettlementConfirmation) error {
	logger := s.logger
	if confirmation.CorrelationID != "" {
		logger = s.logger.With("correlation_id", confirmation.CorrelationID)
	}

	logger.Info("Submitting confirmation to worker pool",
		"event_id", confirmation.EventID,
		"order_id", confirmation.OrderID,
	)

	// Create a channel to receive the result of the processing
	resultChan := make(chan error, 1)

	// Store the result channel in the result map
	eventID := confirmation.EventID
	s.mu.Lock()
	s.results[eventID] = resultChan
	s.mu.Unlock()

	// Create a copy of the confirmation to avoid data races
	confirmationCopy := *confirmation

	// Submit the task to the worker pool
	err := s.pool.Submit(func() {
		// Process the confirmation using the base service
		err := s.baseService.ApplyConfirmation(ctx, &confirmationCopy)

		// Send the result to the channel
		resultChan <- err

		// Remove the result channel from the map
		s.mu.Lock()
		delete(s.results, eventID)
		close(resultChan)
		s.mu.Unlock()
	})

	if err != nil {
		// If we couldn't submit the task to the pool, remove the result channel
		s.mu.Lock()
		delete(s.results, eventID)
		close(resultChan)
		s.mu.Unlock()

		logger.Error("Failed to submit confirmation to worker pool",
			"event_id", confirmation.EventID,
			"error", err,
		)
		return err
	}

	// Wait for the result from the worker
	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolApplyService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolApplyService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolApplyService) Capacity() int {
	return s.pool.Cap()
}
