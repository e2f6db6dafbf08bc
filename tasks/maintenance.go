package tasks

import (
	"context"
	"log/slog"
	"time"

	"score-bot/utils/database"
)

// CooldownPruner is the part of the engine the cooldown task touches.
type CooldownPruner interface {
	PruneCooldowns(maxAge time.Duration) int
}

// ReconcileSlots resets reaction-role slot counters that drifted from the
// recorded holders. It runs at startup and after cleanup sweeps.
func ReconcileSlots(ctx context.Context, db *database.DB) (int64, error) {
	n, err := database.ReconcileSlots(ctx, db)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Warn("reconciled drifted reaction-role slots", "mappings", n)
	}
	return n, nil
}

// PruneCooldowns drops cooldown stamps older than maxAge.
func PruneCooldowns(p CooldownPruner, maxAge time.Duration) int {
	n := p.PruneCooldowns(maxAge)
	slog.Debug("pruned cooldown stamps", "removed", n)
	return n
}
