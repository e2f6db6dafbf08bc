package handlers

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"score-bot/bot"
	"score-bot/model"
	"score-bot/scoring"
	"score-bot/utils"
)

func toReaction(r *discordgo.MessageReaction, member *discordgo.Member) model.Reaction {
	reaction := model.Reaction{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		UserID:    r.UserID,
		Emoji:     model.Emoji{ID: r.Emoji.ID, Name: r.Emoji.Name},
	}
	if member != nil && member.User != nil {
		reaction.Member = &model.Member{
			GuildID: r.GuildID,
			UserID:  member.User.ID,
			Bot:     member.User.Bot,
			Roles:   member.Roles,
		}
	}
	return reaction
}

// eventContext bounds one gateway event and tags its log lines.
func eventContext(b *bot.Bot) (context.Context, context.CancelFunc, *slog.Logger) {
	ctx, cancel := context.WithTimeout(b.Context(), b.GetConfig().InteractionTimeout)
	return ctx, cancel, slog.With("event_id", uuid.NewString())
}

func reportFailure(b *bot.Bot, log *slog.Logger, op string, err error) {
	log.Error("event failed", "op", op, "err", err)
	utils.LogError(b.Session, b.GetConfig().LogChannelID, "Reactions", op, err)
}

func onReactionAdd(b *bot.Bot) func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	return func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		if r.GuildID == "" {
			return
		}
		ctx, cancel, log := eventContext(b)
		defer cancel()

		outcome, err := b.Engine.ReactionAdd(ctx, toReaction(r.MessageReaction, r.Member))
		log = log.With("guild", r.GuildID, "message", r.MessageID, "user", r.UserID, "outcome", outcome.String())
		if err != nil {
			reportFailure(b, log, "ReactionAdd", err)
			return
		}
		if outcome != scoring.OutcomeIgnored {
			log.Debug("reaction added")
		}
	}
}

func onReactionRemove(b *bot.Bot) func(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	return func(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
		if r.GuildID == "" {
			return
		}
		ctx, cancel, log := eventContext(b)
		defer cancel()

		outcome, err := b.Engine.ReactionRemove(ctx, toReaction(r.MessageReaction, nil))
		log = log.With("guild", r.GuildID, "message", r.MessageID, "user", r.UserID, "outcome", outcome.String())
		if err != nil {
			reportFailure(b, log, "ReactionRemove", err)
			return
		}
		if outcome != scoring.OutcomeIgnored {
			log.Debug("reaction removed")
		}
	}
}

func onReactionRemoveAll(b *bot.Bot) func(s *discordgo.Session, r *discordgo.MessageReactionRemoveAll) {
	return func(s *discordgo.Session, r *discordgo.MessageReactionRemoveAll) {
		if r.GuildID == "" {
			return
		}
		ctx, cancel, log := eventContext(b)
		defer cancel()

		users, err := b.Engine.ReactionRemoveAll(ctx, r.GuildID, r.ChannelID, r.MessageID)
		log = log.With("guild", r.GuildID, "message", r.MessageID)
		if err != nil {
			reportFailure(b, log, "ReactionRemoveAll", err)
			return
		}
		log.Debug("reactions cleared", "affected_users", len(users))
	}
}
