package scoring

import (
	"context"
	"log/slog"

	"score-bot/model"
	"score-bot/utils/database"
)

// Vote is a reaction that may count as score.
type Vote struct {
	GuildID   string
	ChannelID string
	MessageID string
	ReactorID string
	AuthorID  string
	// ReactorRoles select the applicable cooldown.
	ReactorRoles []string
	Emoji        model.Emoji
}

// RecordReaction adds a ledger row for v. Self-reactions and unclassified
// emojis are ignored; a reactor on cooldown gets OutcomeCooldown and the
// caller is expected to retract the reaction. Replayed events return
// OutcomeDuplicate without touching the cooldown window.
func (e *Engine) RecordReaction(ctx context.Context, v Vote) (Outcome, error) {
	if v.ReactorID == v.AuthorID {
		return OutcomeIgnored, nil
	}

	emoji, ok, err := e.resolver.FindEmoji(ctx, v.GuildID, v.Emoji)
	if err != nil || !ok {
		return OutcomeIgnored, err
	}
	guild, err := e.resolver.Guild(ctx, v.GuildID)
	if err != nil {
		return OutcomeIgnored, err
	}
	scoreEmoji, _, ok, err := database.ScoreEmojiFor(ctx, e.db, guild, emoji)
	if err != nil {
		return OutcomeIgnored, model.WrapStore("classify emoji", err)
	}
	if !ok {
		return OutcomeIgnored, nil
	}

	userFrom, err := e.resolver.User(ctx, v.GuildID, v.ReactorID)
	if err != nil {
		return OutcomeIgnored, err
	}
	userTo, err := e.resolver.User(ctx, v.GuildID, v.AuthorID)
	if err != nil {
		return OutcomeIgnored, err
	}
	message, err := e.resolver.Message(ctx, v.GuildID, v.ChannelID, v.MessageID)
	if err != nil {
		return OutcomeIgnored, err
	}

	exists, err := database.ScoreReactionExists(ctx, e.db, userFrom, message, scoreEmoji)
	if err != nil {
		return OutcomeIgnored, model.WrapStore("check score reaction", err)
	}
	if exists {
		return OutcomeDuplicate, nil
	}

	cooldown, err := e.cooldownFor(ctx, guild, v.ReactorRoles)
	if err != nil {
		return OutcomeIgnored, err
	}
	stamp, ok := e.cooldowns.CheckAndStamp(v.GuildID+":"+v.ReactorID, cooldown)
	if !ok {
		slog.Debug("reaction on cooldown", "guild", v.GuildID, "user", v.ReactorID, "cooldown", cooldown)
		return OutcomeCooldown, nil
	}

	inserted, err := database.InsertScoreReaction(ctx, e.db, guild, userFrom, userTo, message, scoreEmoji)
	if err != nil {
		e.cooldowns.Undo(stamp)
		return OutcomeIgnored, model.WrapStore("record score reaction", err)
	}
	if !inserted {
		e.cooldowns.Undo(stamp)
		return OutcomeDuplicate, nil
	}

	return OutcomeRecorded, e.afterScoreChange(ctx, v.GuildID, v.ChannelID, v.MessageID, v.AuthorID)
}

// RemoveReaction deletes the ledger row of reactorID's emoji reaction on a
// message, if any, and re-synchronises the user who held that score.
func (e *Engine) RemoveReaction(ctx context.Context, guildID, channelID, messageID, reactorID string, emoji model.Emoji) (Outcome, error) {
	guild, ok, err := e.resolver.FindGuild(ctx, guildID)
	if err != nil || !ok {
		return OutcomeIgnored, err
	}
	userFrom, ok, err := e.resolver.FindUser(ctx, guildID, reactorID)
	if err != nil || !ok {
		return OutcomeIgnored, err
	}
	message, ok, err := e.resolver.FindMessage(ctx, guildID, channelID, messageID)
	if err != nil || !ok {
		return OutcomeIgnored, err
	}
	emojiID, ok, err := e.resolver.FindEmoji(ctx, guildID, emoji)
	if err != nil || !ok {
		return OutcomeIgnored, err
	}

	holder, ok, err := database.DeleteScoreReaction(ctx, e.db, guild, userFrom, message, emojiID)
	if err != nil {
		return OutcomeIgnored, model.WrapStore("delete score reaction", err)
	}
	if !ok {
		return OutcomeIgnored, nil
	}
	return OutcomeRemoved, e.afterScoreChange(ctx, guildID, channelID, messageID, holder)
}

// RemoveAllReactions clears the ledger rows of a message and returns the
// users whose score changed, each of which is re-synchronised.
func (e *Engine) RemoveAllReactions(ctx context.Context, guildID, channelID, messageID string) ([]string, error) {
	message, ok, err := e.resolver.FindMessage(ctx, guildID, channelID, messageID)
	if err != nil || !ok {
		return nil, err
	}
	users, err := database.DeleteMessageScoreReactions(ctx, e.db, message)
	if err != nil {
		return nil, model.WrapStore("clear message score", err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return users, e.afterScoreChange(ctx, guildID, channelID, messageID, users...)
}
