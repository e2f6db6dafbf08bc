package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"

	"score-bot/model"
	"score-bot/utils/database"
)

const (
	leaderboardSize    = 10
	leaderboardWorkers = 5
)

// GenerateLeaderboardEmbed renders the top scores of guild.
func GenerateLeaderboardEmbed(ctx context.Context, db database.Queryer, guild int64) (*discordgo.MessageEmbed, error) {
	entries, err := database.TopScores(ctx, db, guild, leaderboardSize)
	if err != nil {
		return nil, err
	}
	return leaderboardEmbed(entries, time.Now()), nil
}

func leaderboardEmbed(entries []model.ScoreEntry, now time.Time) *discordgo.MessageEmbed {
	var builder strings.Builder
	if len(entries) == 0 {
		builder.WriteString("Nobody has any score yet.")
	}
	for i, e := range entries {
		medal := fmt.Sprintf("%d.", i+1)
		switch i {
		case 0:
			medal = "🥇"
		case 1:
			medal = "🥈"
		case 2:
			medal = "🥉"
		}
		fmt.Fprintf(&builder, "%s <@%s>: %d\n", medal, e.UserID, e.Score)
	}

	return &discordgo.MessageEmbed{
		Title:       "🏆 Leaderboard",
		Description: builder.String(),
		Timestamp:   now.Format(time.RFC3339),
		Color:       0x00ff00,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Updated every 10 minutes"},
	}
}

// UpdateLeaderboard refreshes one leaderboard message. A leaderboard whose
// message was deleted is forgotten.
func UpdateLeaderboard(ctx context.Context, s *discordgo.Session, db *database.DB, state model.LeaderboardState) error {
	guild, ok, err := database.NewResolver(db).FindGuild(ctx, state.GuildID)
	if err != nil || !ok {
		return err
	}
	embed, err := GenerateLeaderboardEmbed(ctx, db, guild)
	if err != nil {
		return err
	}
	_, err = s.ChannelMessageEditEmbed(state.ChannelID, state.MessageID, embed, discordgo.WithContext(ctx))
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound {
		slog.Info("leaderboard message is gone", "guild", state.GuildID, "message", state.MessageID)
		return database.DeleteLeaderboard(ctx, db, state.GuildID)
	}
	if err != nil {
		return fmt.Errorf("edit leaderboard of guild %s: %w", state.GuildID, err)
	}
	return nil
}

// UpdateLeaderboards refreshes every leaderboard, a few at a time.
func UpdateLeaderboards(ctx context.Context, s *discordgo.Session, db *database.DB) error {
	states, err := database.Leaderboards(ctx, db)
	if err != nil {
		return err
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(leaderboardWorkers)
	errs := make([]error, len(states))
	for i, state := range states {
		eg.Go(func() error {
			errs[i] = UpdateLeaderboard(ctx, s, db, state)
			return nil
		})
	}
	_ = eg.Wait()
	return errors.Join(errs...)
}
