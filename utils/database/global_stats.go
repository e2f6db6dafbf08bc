package database

import (
	"context"
	"fmt"

	"score-bot/model"
)

// GlobalStatsResult aggregates one platform user across every guild.
type GlobalStatsResult struct {
	Guilds   int64
	Received model.UserScore
	Given    model.UserScore
	// Rank is 1-based among all users with a score; 0 when the user has none.
	Rank int64
}

// GlobalStats collects the score of userID over all guilds.
func GlobalStats(ctx context.Context, q Queryer, userID string) (GlobalStatsResult, error) {
	var result GlobalStatsResult

	if err := get(ctx, q, &result.Guilds, `SELECT COUNT(*) FROM users WHERE "user" = ?`, userID); err != nil {
		return result, fmt.Errorf("failed to count guilds: %w", err)
	}

	const totals = `
		SELECT
			COALESCE(SUM(CASE WHEN se.upvote THEN 1 ELSE 0 END), 0) AS upvotes,
			COALESCE(SUM(CASE WHEN se.upvote THEN 0 ELSE 1 END), 0) AS downvotes,
			COALESCE(SUM(CASE WHEN r.native THEN 0 WHEN se.upvote THEN 1 ELSE -1 END), 0) AS gifted
		FROM score_reactions r
		INNER JOIN score_emojis se ON r.emoji = se.id
		INNER JOIN users u ON u.id = r.%s
		WHERE u."user" = ?`
	if err := get(ctx, q, &result.Received, fmt.Sprintf(totals, "user_to"), userID); err != nil {
		return result, fmt.Errorf("failed to query received score: %w", err)
	}
	if err := get(ctx, q, &result.Given, fmt.Sprintf(totals, "user_from"), userID); err != nil {
		return result, fmt.Errorf("failed to query given score: %w", err)
	}

	if result.Received.Upvotes+result.Received.Downvotes == 0 {
		return result, nil
	}
	var ahead int64
	err := get(ctx, q, &ahead, `
		SELECT COUNT(*) FROM (
			SELECT u."user", SUM(CASE WHEN se.upvote THEN 1 ELSE -1 END) AS score
			FROM score_reactions r
			INNER JOIN score_emojis se ON r.emoji = se.id
			INNER JOIN users u ON r.user_to = u.id
			WHERE u."user" <> ?
			GROUP BY u."user"
		) totals
		WHERE totals.score > ?`, userID, result.Received.Total())
	if err != nil {
		return result, fmt.Errorf("failed to compute global rank: %w", err)
	}
	result.Rank = ahead + 1
	return result, nil
}
