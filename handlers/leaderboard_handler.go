package handlers

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"score-bot/bot"
	"score-bot/tasks"
	"score-bot/utils/database"
)

// handleLeaderboard posts a leaderboard message in the invoking channel, or
// refreshes the existing one. A guild has at most one leaderboard; posting in
// another channel moves it.
func handleLeaderboard(ctx context.Context, b *bot.Bot, i *discordgo.InteractionCreate) (*discordgo.MessageEmbed, error) {
	res := b.Engine.Resolver()
	guild, err := res.Guild(ctx, i.GuildID)
	if err != nil {
		return nil, err
	}

	state, ok, err := database.Leaderboard(ctx, b.DB, guild)
	if err != nil {
		return nil, err
	}
	if ok && state.ChannelID == i.ChannelID {
		if err := tasks.UpdateLeaderboard(ctx, b.Session, b.DB, state); err != nil {
			return nil, err
		}
		// The message may have been deleted, in which case a new one is posted.
		if _, still, err := database.Leaderboard(ctx, b.DB, guild); err != nil || still {
			return embed("Leaderboard", "Leaderboard refreshed."), err
		}
	}

	channel, err := res.Channel(ctx, i.GuildID, i.ChannelID)
	if err != nil {
		return nil, err
	}
	board, err := tasks.GenerateLeaderboardEmbed(ctx, b.DB, guild)
	if err != nil {
		return nil, err
	}
	msg, err := b.Session.ChannelMessageSendEmbed(i.ChannelID, board, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("post leaderboard: %w", err)
	}
	if err := database.SetLeaderboard(ctx, b.DB, guild, channel, msg.ID); err != nil {
		return nil, err
	}
	if ok {
		// Best effort; the old message simply stops being updated otherwise.
		_ = b.Session.ChannelMessageDelete(state.ChannelID, state.MessageID, discordgo.WithContext(ctx))
	}
	return embed("Leaderboard", fmt.Sprintf("Leaderboard posted in <#%s>.", i.ChannelID)), nil
}
