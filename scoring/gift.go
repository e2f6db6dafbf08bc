package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"score-bot/model"
	"score-bot/utils/database"
)

// Gift moves up to amount of the upvotes fromID received to toID and returns
// how many were moved. Previously gifted upvotes are given away before
// native ones.
func (e *Engine) Gift(ctx context.Context, guildID, fromID, toID string, amount int64) (int64, error) {
	if fromID == toID {
		return 0, fmt.Errorf("cannot gift score to yourself: %w", model.ErrInvalidArgument)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("gift amount must be positive: %w", model.ErrInvalidArgument)
	}

	from, ok, err := e.resolver.FindUser(ctx, guildID, fromID)
	if err != nil || !ok {
		return 0, err
	}
	to, err := e.resolver.User(ctx, guildID, toID)
	if err != nil {
		return 0, err
	}

	var moved int64
	err = e.db.InTx(ctx, func(tx *sqlx.Tx) error {
		upvotes, err := database.ReceivedUpvotes(ctx, tx, from)
		if err != nil {
			return err
		}
		moved, err = database.ReassignUpvotes(ctx, tx, from, to, min(amount, upvotes))
		return err
	})
	if err != nil {
		return 0, model.WrapStore("gift score", err)
	}
	if moved == 0 {
		return 0, nil
	}

	ScoreMovedTotal.WithLabelValues("gift").Add(float64(moved))
	slog.Info("score gifted", "guild", guildID, "from", fromID, "to", toID, "amount", moved)

	var errs []error
	for _, user := range []string{fromID, toID} {
		if _, err := e.SyncLevelUpRoles(ctx, guildID, user); err != nil {
			errs = append(errs, fmt.Errorf("sync level-up roles of %s: %w", user, err))
		}
	}
	return moved, errors.Join(errs...)
}
