package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"score-bot/model"
)

const leaderboardColumns = `
	SELECT g.guild AS guild_id, c.channel AS channel_id, l.message AS message_id
	FROM score_leaderboards l
	INNER JOIN guilds g ON l.guild = g.id
	INNER JOIN channels c ON l.channel = c.id`

// TopScores returns the limit highest scores of guild.
func TopScores(ctx context.Context, q Queryer, guild int64, limit int) ([]model.ScoreEntry, error) {
	var entries []model.ScoreEntry
	err := selectAll(ctx, q, &entries, `
		SELECT u."user" AS "user", SUM(CASE WHEN se.upvote THEN 1 ELSE -1 END) AS score
		FROM score_reactions r
		INNER JOIN score_emojis se ON r.emoji = se.id
		INNER JOIN users u ON r.user_to = u.id
		WHERE r.guild = ?
		GROUP BY u.id, u."user"
		ORDER BY score DESC, u.id
		LIMIT ?`, guild, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top scores: %w", err)
	}
	return entries, nil
}

// SetLeaderboard records the message showing guild's leaderboard.
func SetLeaderboard(ctx context.Context, q Queryer, guild, channel int64, messageID string) error {
	_, err := exec(ctx, q, `
		INSERT INTO score_leaderboards (guild, channel, message) VALUES (?, ?, ?)
		ON CONFLICT (guild) DO UPDATE SET channel = excluded.channel, message = excluded.message`,
		guild, channel, messageID)
	if err != nil {
		return fmt.Errorf("failed to save leaderboard: %w", err)
	}
	return nil
}

// Leaderboard returns the leaderboard message of guild, if any.
func Leaderboard(ctx context.Context, q Queryer, guild int64) (model.LeaderboardState, bool, error) {
	var state model.LeaderboardState
	err := get(ctx, q, &state, leaderboardColumns+` WHERE l.guild = ?`, guild)
	if errors.Is(err, sql.ErrNoRows) {
		return state, false, nil
	}
	if err != nil {
		return state, false, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return state, true, nil
}

// Leaderboards lists every leaderboard message.
func Leaderboards(ctx context.Context, q Queryer) ([]model.LeaderboardState, error) {
	var states []model.LeaderboardState
	if err := selectAll(ctx, q, &states, leaderboardColumns+` ORDER BY l.guild`); err != nil {
		return nil, fmt.Errorf("failed to list leaderboards: %w", err)
	}
	return states, nil
}

// DeleteLeaderboard forgets the leaderboard of guildID.
func DeleteLeaderboard(ctx context.Context, q Queryer, guildID string) error {
	_, err := exec(ctx, q, `
		DELETE FROM score_leaderboards
		WHERE guild IN (SELECT id FROM guilds WHERE guild = ?)`, guildID)
	if err != nil {
		return fmt.Errorf("failed to delete leaderboard: %w", err)
	}
	return nil
}
