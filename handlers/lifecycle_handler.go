package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"score-bot/bot"
	"score-bot/scoring"
	"score-bot/utils"
	"score-bot/utils/database"
)

func onMemberRemove(b *bot.Bot, pickups *Pickups) func(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	return func(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
		if m.Member == nil || m.User == nil {
			return
		}
		ctx, cancel, log := eventContext(b)
		defer cancel()
		log = log.With("guild", m.GuildID, "user", m.User.ID)

		drop, ok, err := b.Engine.DropOffer(ctx, m.GuildID, m.User.ID)
		if err != nil {
			reportFailure(b, log, "DropOffer", err)
			return
		}
		if !ok {
			if err := b.Engine.ForgetMember(ctx, m.GuildID, m.User.ID); err != nil {
				reportFailure(b, log, "ForgetMember", err)
			}
			return
		}
		cancel()
		offerDrop(b, pickups, log, drop)
	}
}

func dropEmbed(drop scoring.Drop) *discordgo.MessageEmbed {
	return embed("Score drop", fmt.Sprintf(
		"<@%s> left the server and dropped a score of %d (%d upvotes, %d downvotes). The first to pick it up keeps it.",
		drop.UserID, drop.Score.Total(), drop.Score.Upvotes, drop.Score.Downvotes))
}

// offerDrop announces the drop and hands it to whoever picks it up first.
// Unclaimed drops expire after the pickup timeout and the score is deleted.
func offerDrop(b *bot.Bot, pickups *Pickups, log *slog.Logger, drop scoring.Drop) {
	cfg := b.GetConfig()
	token, picked := pickups.Offer()

	msg, err := b.Session.ChannelMessageSendComplex(drop.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{dropEmbed(drop)},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Pick up",
					Style:    discordgo.PrimaryButton,
					CustomID: pickupPrefix + token,
					Emoji:    &discordgo.ComponentEmoji{Name: "🎁"},
				},
			}},
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		pickups.Withdraw(token)
		log.Warn("could not announce score drop", "channel", drop.ChannelID, "err", err)
		forget(b, log, drop)
		return
	}

	wait, cancel := context.WithTimeout(b.Context(), cfg.PickupTimeout)
	picker, ok := pickups.Await(wait, token, picked)
	cancel()

	result := embed("Score drop", fmt.Sprintf("The score of <@%s> was not picked up and is gone.", drop.UserID))
	if ok {
		ctx, cancel := context.WithTimeout(b.Context(), cfg.InteractionTimeout)
		moved, err := b.Engine.PickUp(ctx, drop.GuildID, drop.UserID, picker)
		cancel()
		switch {
		case errors.Is(err, scoring.ErrDropGone):
			log.Info("score drop vanished before pickup", "picker", picker)
			result = embed("Score drop", fmt.Sprintf("The score of <@%s> is no longer available.", drop.UserID))
		case err != nil:
			reportFailure(b, log, "PickUp", err)
			result = embed("Score drop", "The score could not be picked up.")
		default:
			log.Info("score drop picked up", "picker", picker, "rows", moved)
			result = embed("Score drop", fmt.Sprintf("<@%s> picked up the score of <@%s>.", picker, drop.UserID))
		}
	} else {
		forget(b, log, drop)
	}

	_, err = b.Session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:              msg.ID,
		Channel:         msg.ChannelID,
		Embeds:          &[]*discordgo.MessageEmbed{result},
		Components:      &[]discordgo.MessageComponent{},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		log.Warn("could not close score drop", "message", msg.ID, "err", err)
	}
}

func forget(b *bot.Bot, log *slog.Logger, drop scoring.Drop) {
	ctx, cancel := context.WithTimeout(b.Context(), b.GetConfig().InteractionTimeout)
	defer cancel()
	if err := b.Engine.ForgetMember(ctx, drop.GuildID, drop.UserID); err != nil {
		reportFailure(b, log, "ForgetMember", err)
	}
}

func handlePickupClick(pickups *Pickups) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Member == nil || i.Member.User == nil {
			return
		}
		token := strings.TrimPrefix(i.MessageComponentData().CustomID, pickupPrefix)
		if !pickups.Claim(token, i.Member.User.ID) {
			utils.SendErrorResponse(s, i, "This drop is no longer available.")
			return
		}
		err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		})
		if err != nil {
			slog.Warn("could not acknowledge pickup", "err", err)
		}
	}
}

func onGuildDelete(b *bot.Bot) func(s *discordgo.Session, g *discordgo.GuildDelete) {
	return func(s *discordgo.Session, g *discordgo.GuildDelete) {
		// Unavailable guilds are outages, not removals.
		if g.Guild == nil || g.Unavailable {
			return
		}
		ctx, cancel, log := eventContext(b)
		defer cancel()
		n, err := database.DeleteGuild(ctx, b.DB, g.ID)
		if err != nil {
			reportFailure(b, log.With("guild", g.ID), "GuildDelete", err)
			return
		}
		b.Engine.Modules().Reset()
		log.Info("guild removed", "guild", g.ID, "rows", n)
	}
}

func onChannelDelete(b *bot.Bot) func(s *discordgo.Session, c *discordgo.ChannelDelete) {
	return func(s *discordgo.Session, c *discordgo.ChannelDelete) {
		if c.Channel == nil || c.GuildID == "" {
			return
		}
		ctx, cancel, log := eventContext(b)
		defer cancel()
		if _, err := database.DeleteChannel(ctx, b.DB, c.GuildID, c.ID); err != nil {
			reportFailure(b, log.With("guild", c.GuildID, "channel", c.ID), "ChannelDelete", err)
		}
	}
}

func onGuildEmojisUpdate(b *bot.Bot) func(s *discordgo.Session, e *discordgo.GuildEmojisUpdate) {
	return func(s *discordgo.Session, e *discordgo.GuildEmojisUpdate) {
		ctx, cancel, log := eventContext(b)
		defer cancel()
		log = log.With("guild", e.GuildID)

		guild, ok, err := b.Engine.Resolver().FindGuild(ctx, e.GuildID)
		if err != nil {
			reportFailure(b, log, "GuildEmojisUpdate", err)
			return
		}
		if !ok {
			return
		}
		keep := make([]string, 0, len(e.Emojis))
		for _, emoji := range e.Emojis {
			keep = append(keep, emoji.ID)
		}
		n, err := database.DeleteGuildEmojisExcept(ctx, b.DB, guild, keep)
		if err != nil {
			reportFailure(b, log, "GuildEmojisUpdate", err)
			return
		}
		if n > 0 {
			log.Info("removed deleted emojis", "count", n)
		}
	}
}
