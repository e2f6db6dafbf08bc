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

// ErrDropGone means the departed member's score no longer exists, for
// example because a cleanup sweep forgot the member while the drop was open.
var ErrDropGone = errors.New("score drop is gone")

// Drop is the score a departed member left behind, offered in a drop channel.
type Drop struct {
	GuildID   string
	UserID    string
	ChannelID string
	Score     model.UserScore
}

// DropOffer returns the drop to announce when userID leaves guildID. There
// is none when the score module is off, the guild has no drop channel, or
// the user holds no score.
func (e *Engine) DropOffer(ctx context.Context, guildID, userID string) (Drop, bool, error) {
	drop := Drop{GuildID: guildID, UserID: userID}

	guild, ok, err := e.resolver.FindGuild(ctx, guildID)
	if err != nil || !ok {
		return drop, false, err
	}
	modules, err := e.modules.Get(ctx, guild)
	if err != nil {
		return drop, false, model.WrapStore("load modules", err)
	}
	if !modules.Score {
		return drop, false, nil
	}
	user, ok, err := e.resolver.FindUser(ctx, guildID, userID)
	if err != nil || !ok {
		return drop, false, err
	}

	drop.Score, err = database.ReceivedStats(ctx, e.db, user)
	if err != nil {
		return drop, false, model.WrapStore("load score", err)
	}
	if drop.Score.Upvotes+drop.Score.Downvotes == 0 {
		return drop, false, nil
	}

	drop.ChannelID, ok, err = database.RandomDropChannel(ctx, e.db, guild)
	if err != nil {
		return drop, false, model.WrapStore("pick drop channel", err)
	}
	return drop, ok, nil
}

// PickUp hands the whole score of the departed fromID to toID and forgets
// fromID, in one transaction. It returns the number of ledger rows moved,
// or ErrDropGone when there was nothing left to move.
func (e *Engine) PickUp(ctx context.Context, guildID, fromID, toID string) (int64, error) {
	if fromID == toID {
		return 0, fmt.Errorf("cannot pick up your own score: %w", model.ErrInvalidArgument)
	}
	from, ok, err := e.resolver.FindUser(ctx, guildID, fromID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrDropGone
	}
	to, err := e.resolver.User(ctx, guildID, toID)
	if err != nil {
		return 0, err
	}

	var moved int64
	err = e.db.InTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if moved, err = database.TransferScore(ctx, tx, from, to); err != nil {
			return err
		}
		if moved == 0 {
			return ErrDropGone
		}
		return database.ForgetUser(ctx, tx, from)
	})
	if errors.Is(err, ErrDropGone) {
		return 0, err
	}
	if err != nil {
		return 0, model.WrapStore("pick up score", err)
	}

	ScoreMovedTotal.WithLabelValues("pickup").Add(float64(moved))
	slog.Info("score picked up", "guild", guildID, "from", fromID, "to", toID, "rows", moved)

	if _, err := e.SyncLevelUpRoles(ctx, guildID, toID); err != nil {
		return moved, fmt.Errorf("sync level-up roles of %s: %w", toID, err)
	}
	return moved, nil
}

// ForgetMember removes a departed member and everything they hold,
// releasing any reaction-role slots first.
func (e *Engine) ForgetMember(ctx context.Context, guildID, userID string) error {
	user, ok, err := e.resolver.FindUser(ctx, guildID, userID)
	if err != nil || !ok {
		return err
	}
	err = e.db.InTx(ctx, func(tx *sqlx.Tx) error {
		return database.ForgetUser(ctx, tx, user)
	})
	if err != nil {
		return model.WrapStore("forget member", err)
	}
	slog.Info("member forgotten", "guild", guildID, "user", userID)
	return nil
}
