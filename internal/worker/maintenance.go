package worker

import (
	"context"
	"time"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/repository"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/services"
)

// MaintenanceWorker runs the periodic housekeeping the request path never
// does: deactivating expired public share links and sweeping the
// verification-code store.
type MaintenanceWorker struct {
	publicShareRepo repository.PublicFileShareRepository
	verification    *services.VerificationService
	interval        time.Duration
	logger          *pkg.Logger
}

// NewMaintenanceWorker creates a new maintenance worker
func NewMaintenanceWorker(
	publicShareRepo repository.PublicFileShareRepository,
	verification *services.VerificationService,
	interval time.Duration,
	logger *pkg.Logger,
) *MaintenanceWorker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &MaintenanceWorker{
		publicShareRepo: publicShareRepo,
		verification:    verification,
		interval:        interval,
		logger:          logger.WithPrefix("maintenance"),
	}
}

// Start runs the maintenance loop until ctx is cancelled
func (w *MaintenanceWorker) Start(ctx context.Context) {
	w.logger.Info("maintenance worker started", map[string]interface{}{
		"interval": w.interval.String(),
	})

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("maintenance worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single maintenance pass
func (w *MaintenanceWorker) RunOnce(ctx context.Context) {
	start := time.Now()

	deactivated, err := w.publicShareRepo.DeactivateExpired(ctx)
	if err != nil {
		w.logger.Error("failed to deactivate expired shares", map[string]interface{}{
			"error": err.Error(),
		})
	}

	evicted := w.verification.Sweep()

	w.logger.Debug("maintenance pass finished", map[string]interface{}{
		"deactivatedShares": deactivated,
		"evictedCodes":      evicted,
		"duration":          time.Since(start).String(),
	})
}
