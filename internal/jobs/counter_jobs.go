package jobs

import (
	"context"

	"fromprom-backend/internal/logger"
)

// ReconcileCounters recomputes the denormalized like/bookmark/comment
// counters from their backing records. Counter bumps are lossy under
// races and partial deletes; this job repairs the drift.
func (jr *JobRunner) ReconcileCounters() {
	jr.runWithRecovery("ReconcileCounters", func() {
		ctx := context.Background()

		repaired, err := jr.services.Interaction.ReconcileCounters(ctx)
		if err != nil {
			logger.Error("Counter reconciliation failed", "error", err)
			return
		}
		logger.Info("Counter reconciliation finished", "repaired", repaired)
	})
}
