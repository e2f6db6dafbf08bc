package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"score-bot/model"
)

// ScoreEmojiFor returns the score emoji row classifying emoji within guild.
func ScoreEmojiFor(ctx context.Context, q Queryer, guild, emoji int64) (id int64, upvote bool, ok bool, err error) {
	var row struct {
		ID     int64 `db:"id"`
		Upvote bool  `db:"upvote"`
	}
	err = get(ctx, q, &row, `SELECT id, upvote FROM score_emojis WHERE guild = ? AND emoji = ?`, guild, emoji)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("failed to classify emoji: %w", err)
	}
	return row.ID, row.Upvote, true, nil
}

// ScoreReactionExists reports whether userFrom already scored message with scoreEmoji.
func ScoreReactionExists(ctx context.Context, q Queryer, userFrom, message, scoreEmoji int64) (bool, error) {
	var n int64
	err := get(ctx, q, &n, `SELECT COUNT(*) FROM score_reactions WHERE user_from = ? AND message = ? AND emoji = ?`,
		userFrom, message, scoreEmoji)
	if err != nil {
		return false, fmt.Errorf("failed to check score reaction: %w", err)
	}
	return n > 0, nil
}

// InsertScoreReaction adds a native ledger row. It returns false when the row
// already existed, which happens for replayed events.
func InsertScoreReaction(ctx context.Context, q Queryer, guild, userFrom, userTo, message, scoreEmoji int64) (bool, error) {
	n, err := exec(ctx, q, `
		INSERT INTO score_reactions (guild, user_from, user_to, message, emoji, native)
		VALUES (?, ?, ?, ?, ?, TRUE)
		ON CONFLICT DO NOTHING`,
		guild, userFrom, userTo, message, scoreEmoji)
	if err != nil {
		return false, fmt.Errorf("failed to insert score reaction: %w", err)
	}
	return n == 1, nil
}

// DeleteScoreReaction removes the ledger row of userFrom's reaction with the
// given emoji and returns the external id of the user who held the score.
func DeleteScoreReaction(ctx context.Context, q Queryer, guild, userFrom, message, emoji int64) (string, bool, error) {
	var holders []int64
	err := selectAll(ctx, q, &holders, `
		DELETE FROM score_reactions
		WHERE user_from = ? AND message = ?
		AND emoji IN (SELECT id FROM score_emojis WHERE guild = ? AND emoji = ?)
		RETURNING user_to`,
		userFrom, message, guild, emoji)
	if err != nil {
		return "", false, fmt.Errorf("failed to delete score reaction: %w", err)
	}
	if len(holders) == 0 {
		return "", false, nil
	}

	users, err := ExternalUsers(ctx, q, holders)
	if err != nil {
		return "", false, err
	}
	if len(users) == 0 {
		return "", false, nil
	}
	return users[0], true, nil
}

// DeleteMessageScoreReactions removes every ledger row of a message and returns
// the distinct external ids of the users whose score changed.
func DeleteMessageScoreReactions(ctx context.Context, q Queryer, message int64) ([]string, error) {
	var holders []int64
	err := selectAll(ctx, q, &holders, `DELETE FROM score_reactions WHERE message = ? RETURNING user_to`, message)
	if err != nil {
		return nil, fmt.Errorf("failed to delete message score reactions: %w", err)
	}
	if len(holders) == 0 {
		return nil, nil
	}
	return ExternalUsers(ctx, q, holders)
}

// ExternalUsers maps user surrogate keys back to distinct external ids.
func ExternalUsers(ctx context.Context, q Queryer, ids []int64) ([]string, error) {
	query, args, err := in(`SELECT DISTINCT "user" FROM users WHERE id IN (?) ORDER BY "user"`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build user query: %w", err)
	}
	var users []string
	if err := selectAll(ctx, q, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to map users: %w", err)
	}
	return users, nil
}

// UserScore is the aggregate score user currently holds.
func UserScore(ctx context.Context, q Queryer, user int64) (int64, error) {
	var score int64
	err := get(ctx, q, &score, `
		SELECT COALESCE(SUM(CASE WHEN se.upvote THEN 1 ELSE -1 END), 0)
		FROM score_reactions r
		INNER JOIN score_emojis se ON r.emoji = se.id
		WHERE r.user_to = ?`, user)
	if err != nil {
		return 0, fmt.Errorf("failed to compute user score: %w", err)
	}
	return score, nil
}

// MessageScore is the aggregate score of a message and the number of ledger
// rows it is made of.
func MessageScore(ctx context.Context, q Queryer, message int64) (score, reactions int64, err error) {
	var row struct {
		Score     int64 `db:"score"`
		Reactions int64 `db:"reactions"`
	}
	err = get(ctx, q, &row, `
		SELECT COALESCE(SUM(CASE WHEN se.upvote THEN 1 ELSE -1 END), 0) AS score, COUNT(*) AS reactions
		FROM score_reactions r
		INNER JOIN score_emojis se ON r.emoji = se.id
		WHERE r.message = ?`, message)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute message score: %w", err)
	}
	return row.Score, row.Reactions, nil
}

// ReceivedUpvotes counts the upvote rows user currently holds.
func ReceivedUpvotes(ctx context.Context, q Queryer, user int64) (int64, error) {
	var n int64
	err := get(ctx, q, &n, `
		SELECT COUNT(*) FROM score_reactions r
		INNER JOIN score_emojis se ON r.emoji = se.id
		WHERE r.user_to = ? AND se.upvote`, user)
	if err != nil {
		return 0, fmt.Errorf("failed to count upvotes: %w", err)
	}
	return n, nil
}

// ReassignUpvotes moves up to limit of from's upvote rows to to, taking
// previously reassigned rows before native ones.
func ReassignUpvotes(ctx context.Context, q Queryer, from, to, limit int64) (int64, error) {
	n, err := exec(ctx, q, `
		UPDATE score_reactions
		SET user_to = ?, native = FALSE
		WHERE id IN (
			SELECT r.id FROM score_reactions r
			INNER JOIN score_emojis se ON r.emoji = se.id
			WHERE r.user_to = ? AND se.upvote
			ORDER BY r.native, r.id
			LIMIT ?
		)`, to, from, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign upvotes: %w", err)
	}
	return n, nil
}

// TransferScore moves every row from holds to to.
func TransferScore(ctx context.Context, q Queryer, from, to int64) (int64, error) {
	n, err := exec(ctx, q, `UPDATE score_reactions SET user_to = ?, native = FALSE WHERE user_to = ?`, to, from)
	if err != nil {
		return 0, fmt.Errorf("failed to transfer score: %w", err)
	}
	return n, nil
}

// MinCooldown returns the smallest cooldown configured for any of roleIDs.
func MinCooldown(ctx context.Context, q Queryer, guild int64, roleIDs []string) (sql.NullInt64, error) {
	var cooldown sql.NullInt64
	if len(roleIDs) == 0 {
		return cooldown, nil
	}
	query, args, err := in(`
		SELECT MIN(c.cooldown) FROM score_cooldowns c
		INNER JOIN roles r ON c.role = r.id
		WHERE r.guild = ? AND r.role IN (?)`, guild, roleIDs)
	if err != nil {
		return cooldown, fmt.Errorf("failed to build cooldown query: %w", err)
	}
	if err := get(ctx, q, &cooldown, query, args...); err != nil {
		return cooldown, fmt.Errorf("failed to query cooldown: %w", err)
	}
	return cooldown, nil
}

// ReceivedStats summarises the score user holds.
func ReceivedStats(ctx context.Context, q Queryer, user int64) (model.UserScore, error) {
	var s model.UserScore
	err := get(ctx, q, &s, `
		SELECT
			COALESCE(SUM(CASE WHEN se.upvote THEN 1 ELSE 0 END), 0) AS upvotes,
			COALESCE(SUM(CASE WHEN se.upvote THEN 0 ELSE 1 END), 0) AS downvotes,
			COALESCE(SUM(CASE WHEN r.native THEN 0 WHEN se.upvote THEN 1 ELSE -1 END), 0) AS gifted
		FROM score_reactions r
		INNER JOIN score_emojis se ON r.emoji = se.id
		WHERE r.user_to = ?`, user)
	if err != nil {
		return s, fmt.Errorf("failed to query received score: %w", err)
	}
	return s, nil
}

// GivenStats summarises the reactions user gave.
func GivenStats(ctx context.Context, q Queryer, user int64) (model.UserScore, error) {
	var s model.UserScore
	err := get(ctx, q, &s, `
		SELECT
			COALESCE(SUM(CASE WHEN se.upvote THEN 1 ELSE 0 END), 0) AS upvotes,
			COALESCE(SUM(CASE WHEN se.upvote THEN 0 ELSE 1 END), 0) AS downvotes,
			COALESCE(SUM(CASE WHEN r.native THEN 0 WHEN se.upvote THEN 1 ELSE -1 END), 0) AS gifted
		FROM score_reactions r
		INNER JOIN score_emojis se ON r.emoji = se.id
		WHERE r.user_from = ?`, user)
	if err != nil {
		return s, fmt.Errorf("failed to query given score: %w", err)
	}
	return s, nil
}

// ScoreRank returns the 1-based rank of user among all score holders of guild.
// Users without any score are ranked after everyone else.
func ScoreRank(ctx context.Context, q Queryer, guild, user int64) (int64, error) {
	score, err := UserScore(ctx, q, user)
	if err != nil {
		return 0, err
	}
	var ahead int64
	err = get(ctx, q, &ahead, `
		SELECT COUNT(*) FROM (
			SELECT r.user_to, SUM(CASE WHEN se.upvote THEN 1 ELSE -1 END) AS score
			FROM score_reactions r
			INNER JOIN score_emojis se ON r.emoji = se.id
			WHERE r.guild = ? AND r.user_to <> ?
			GROUP BY r.user_to
		) totals
		WHERE totals.score > ?`, guild, user, score)
	if err != nil {
		return 0, fmt.Errorf("failed to compute rank: %w", err)
	}
	return ahead + 1, nil
}

// ReceivedEmojis breaks the score user holds down by emoji, most used first.
func ReceivedEmojis(ctx context.Context, q Queryer, user int64) ([]model.EmojiCount, error) {
	var rows []model.EmojiCount
	err := selectAll(ctx, q, &rows, `
		SELECT COALESCE(e.guild_emoji, '') AS guild_emoji, COALESCE(e.unicode, '') AS unicode, COUNT(*) AS count
		FROM score_reactions r
		INNER JOIN score_emojis se ON r.emoji = se.id
		INNER JOIN emojis e ON se.emoji = e.id
		WHERE r.user_to = ?
		GROUP BY e.id, e.guild_emoji, e.unicode
		ORDER BY count DESC`, user)
	if err != nil {
		return nil, fmt.Errorf("failed to query emoji breakdown: %w", err)
	}
	return rows, nil
}
