package scoring

import (
	"context"
	"log/slog"

	"score-bot/model"
	"score-bot/utils/database"
)

// ModerationResult reports which actions an evaluation applied.
type ModerationResult struct {
	Score   int64
	Pinned  bool
	Deleted bool
}

// EvaluateAutoModeration compares the live score of a message with the
// guild's pin and delete thresholds. Pinning only happens while the message
// is unpinned; messages that no longer exist are left alone.
func (e *Engine) EvaluateAutoModeration(ctx context.Context, guildID, channelID, messageID string) (ModerationResult, error) {
	var res ModerationResult

	guild, ok, err := e.resolver.FindGuild(ctx, guildID)
	if err != nil || !ok {
		return res, err
	}
	message, ok, err := e.resolver.FindMessage(ctx, guildID, channelID, messageID)
	if err != nil || !ok {
		return res, err
	}

	score, reactions, err := database.MessageScore(ctx, e.db, message)
	if err != nil {
		return res, model.WrapStore("compute message score", err)
	}
	if reactions == 0 {
		return res, nil
	}
	res.Score = score

	thresholds, err := database.Moderation(ctx, e.db, guild)
	if err != nil {
		return res, model.WrapStore("load moderation", err)
	}

	if thresholds.Pin != nil && crossed(score, *thresholds.Pin) {
		pinned, err := e.pin(ctx, channelID, messageID)
		if err != nil {
			return res, err
		}
		res.Pinned = pinned
	}

	if thresholds.Delete != nil && crossed(score, *thresholds.Delete) {
		err := e.platform.DeleteMessage(ctx, channelID, messageID)
		switch {
		case model.IsNotFound(err):
		case err != nil:
			return res, model.WrapPlatform("delete message", err)
		default:
			res.Deleted = true
			ModerationActionsTotal.WithLabelValues("delete").Inc()
			slog.Info("message deleted by score", "guild", guildID, "channel", channelID, "message", messageID, "score", score)
		}
	}
	return res, nil
}

func (e *Engine) pin(ctx context.Context, channelID, messageID string) (bool, error) {
	msg, err := e.platform.Message(ctx, channelID, messageID)
	if model.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, model.WrapPlatform("fetch message", err)
	}
	if msg.Pinned {
		return false, nil
	}

	err = e.platform.PinMessage(ctx, channelID, messageID)
	if model.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, model.WrapPlatform("pin message", err)
	}
	ModerationActionsTotal.WithLabelValues("pin").Inc()
	slog.Info("message pinned by score", "channel", channelID, "message", messageID)
	return true, nil
}

// crossed reports whether score reached threshold in the threshold's direction.
func crossed(score, threshold int64) bool {
	if threshold >= 0 {
		return score >= threshold
	}
	return score <= threshold
}
