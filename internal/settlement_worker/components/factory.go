package components

import (
	"log/slog"

	"github.com/stagepass/settlement/internal/config"
	"github.com/stagepass/settlement/internal/domain/debt"
	"github.com/stagepass/settlement/internal/domain/order"
	"github.com/stagepass/settlement/internal/settlement_worker/service"
)

// CreateApplyService creates a new ApplyService with all its dependencies.
func CreateApplyService(
	debtRepo debt.Repository,
	orderRepo order.Repository,
	logger *slog.Logger,
	cfg *config.Config,
) service.ApplyService {
	validator := NewConfirmationValidator(orderRepo, logger)

	baseService := service.NewApplyService(
		logger,
		validator,
		debtRepo,
		orderRepo,
	)

	workerPoolService, err := service.NewWorkerPoolApplyService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)

	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool apply service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
