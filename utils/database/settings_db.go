package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"score-bot/model"
)

// Modules returns the feature switches of guild. Guilds without a row have
// every module disabled.
func Modules(ctx context.Context, q Queryer, guild int64) (model.Modules, error) {
	var m model.Modules
	err := get(ctx, q, &m, `SELECT score, reaction_roles FROM modules WHERE guild = ?`, guild)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Modules{}, nil
	}
	if err != nil {
		return m, fmt.Errorf("failed to query modules: %w", err)
	}
	return m, nil
}

// SetModule switches one module of guild on or off.
func SetModule(ctx context.Context, q Queryer, guild int64, module string, enabled bool) error {
	var column string
	switch module {
	case model.ModuleScore:
		column = "score"
	case model.ModuleReactionRoles:
		column = "reaction_roles"
	default:
		return fmt.Errorf("unknown module %q: %w", module, model.ErrInvalidArgument)
	}

	query := fmt.Sprintf(`
		INSERT INTO modules (guild, %[1]s) VALUES (?, ?)
		ON CONFLICT (guild) DO UPDATE SET %[1]s = excluded.%[1]s`, column)
	if _, err := exec(ctx, q, query, guild, enabled); err != nil {
		return fmt.Errorf("failed to set module %s: %w", module, err)
	}
	return nil
}

// SetScoreEmoji classifies emoji as an upvote or downvote in guild.
func SetScoreEmoji(ctx context.Context, q Queryer, guild, emoji int64, upvote bool) error {
	_, err := exec(ctx, q, `
		INSERT INTO score_emojis (guild, emoji, upvote) VALUES (?, ?, ?)
		ON CONFLICT (guild, emoji) DO UPDATE SET upvote = excluded.upvote`, guild, emoji, upvote)
	if err != nil {
		return fmt.Errorf("failed to set score emoji: %w", err)
	}
	return nil
}

// RemoveScoreEmoji stops counting emoji. Reactions made with it are dropped
// from the ledger.
func RemoveScoreEmoji(ctx context.Context, q Queryer, guild, emoji int64) (int64, error) {
	n, err := exec(ctx, q, `DELETE FROM score_emojis WHERE guild = ? AND emoji = ?`, guild, emoji)
	if err != nil {
		return 0, fmt.Errorf("failed to remove score emoji: %w", err)
	}
	return n, nil
}

// ScoreEmojis lists the score emojis of guild.
func ScoreEmojis(ctx context.Context, q Queryer, guild int64) ([]model.ScoreEmoji, error) {
	var emojis []model.ScoreEmoji
	err := selectAll(ctx, q, &emojis, `
		SELECT se.id, se.upvote, COALESCE(e.guild_emoji, '') AS guild_emoji, COALESCE(e.unicode, '') AS unicode
		FROM score_emojis se
		INNER JOIN emojis e ON se.emoji = e.id
		WHERE se.guild = ?
		ORDER BY se.upvote DESC, se.id`, guild)
	if err != nil {
		return nil, fmt.Errorf("failed to list score emojis: %w", err)
	}
	return emojis, nil
}

// AddScoreRole registers role as the level-up role for score.
func AddScoreRole(ctx context.Context, q Queryer, guild, role, score int64) (bool, error) {
	n, err := exec(ctx, q, `INSERT INTO score_roles (guild, role, score) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		guild, role, score)
	if err != nil {
		return false, fmt.Errorf("failed to add score role: %w", err)
	}
	return n == 1, nil
}

// RemoveScoreRole removes a level-up threshold.
func RemoveScoreRole(ctx context.Context, q Queryer, role, score int64) (int64, error) {
	n, err := exec(ctx, q, `DELETE FROM score_roles WHERE role = ? AND score = ?`, role, score)
	if err != nil {
		return 0, fmt.Errorf("failed to remove score role: %w", err)
	}
	return n, nil
}

// ScoreRoles lists the level-up thresholds of guild ordered by score.
func ScoreRoles(ctx context.Context, q Queryer, guild int64) ([]model.ScoreRole, error) {
	var roles []model.ScoreRole
	err := selectAll(ctx, q, &roles, `
		SELECT r.role, sr.score
		FROM score_roles sr
		INNER JOIN roles r ON sr.role = r.id
		WHERE sr.guild = ?
		ORDER BY sr.score, r.role`, guild)
	if err != nil {
		return nil, fmt.Errorf("failed to list score roles: %w", err)
	}
	return roles, nil
}

// SetCooldown sets the reaction cooldown of role in seconds.
func SetCooldown(ctx context.Context, q Queryer, role, seconds int64) error {
	_, err := exec(ctx, q, `
		INSERT INTO score_cooldowns (role, cooldown) VALUES (?, ?)
		ON CONFLICT (role) DO UPDATE SET cooldown = excluded.cooldown`, role, seconds)
	if err != nil {
		return fmt.Errorf("failed to set cooldown: %w", err)
	}
	return nil
}

// ResetCooldown removes the cooldown of role.
func ResetCooldown(ctx context.Context, q Queryer, role int64) (int64, error) {
	n, err := exec(ctx, q, `DELETE FROM score_cooldowns WHERE role = ?`, role)
	if err != nil {
		return 0, fmt.Errorf("failed to reset cooldown: %w", err)
	}
	return n, nil
}

// Cooldowns lists the role cooldowns of guild.
func Cooldowns(ctx context.Context, q Queryer, guild int64) ([]model.RoleCooldown, error) {
	var cooldowns []model.RoleCooldown
	err := selectAll(ctx, q, &cooldowns, `
		SELECT r.role, c.cooldown
		FROM score_cooldowns c
		INNER JOIN roles r ON c.role = r.id
		WHERE r.guild = ?
		ORDER BY c.cooldown`, guild)
	if err != nil {
		return nil, fmt.Errorf("failed to list cooldowns: %w", err)
	}
	return cooldowns, nil
}

// Moderation returns the auto-pin and auto-delete thresholds of guild.
func Moderation(ctx context.Context, q Queryer, guild int64) (model.Moderation, error) {
	var m model.Moderation
	var row struct {
		Pin    sql.NullInt64 `db:"pin"`
		Delete sql.NullInt64 `db:"delete"`
	}
	err := get(ctx, q, &row, `
		SELECT
			(SELECT score FROM score_auto_pin WHERE guild = ?) AS pin,
			(SELECT score FROM score_auto_delete WHERE guild = ?) AS "delete"`, guild, guild)
	if err != nil {
		return m, fmt.Errorf("failed to query moderation: %w", err)
	}
	if row.Pin.Valid {
		m.Pin = &row.Pin.Int64
	}
	if row.Delete.Valid {
		m.Delete = &row.Delete.Int64
	}
	return m, nil
}

// Moderation actions.
const (
	ModerationPin    = "pin"
	ModerationDelete = "delete"
)

// SetModeration sets the threshold of action in guild, or disables it when
// score is nil.
func SetModeration(ctx context.Context, q Queryer, guild int64, action string, score *int64) error {
	var table string
	switch action {
	case ModerationPin:
		table = "score_auto_pin"
	case ModerationDelete:
		table = "score_auto_delete"
	default:
		return fmt.Errorf("unknown moderation action %q: %w", action, model.ErrInvalidArgument)
	}

	var err error
	if score == nil {
		_, err = exec(ctx, q, `DELETE FROM `+table+` WHERE guild = ?`, guild)
	} else {
		_, err = exec(ctx, q, `
			INSERT INTO `+table+` (guild, score) VALUES (?, ?)
			ON CONFLICT (guild) DO UPDATE SET score = excluded.score`, guild, *score)
	}
	if err != nil {
		return fmt.Errorf("failed to set %s threshold: %w", action, err)
	}
	return nil
}

// AddDropChannel makes channel eligible for score drops.
func AddDropChannel(ctx context.Context, q Queryer, channel int64) (bool, error) {
	n, err := exec(ctx, q, `INSERT INTO score_drops (channel) VALUES (?) ON CONFLICT DO NOTHING`, channel)
	if err != nil {
		return false, fmt.Errorf("failed to add drop channel: %w", err)
	}
	return n == 1, nil
}

// RemoveDropChannel removes channel from the drop channels.
func RemoveDropChannel(ctx context.Context, q Queryer, channel int64) (int64, error) {
	n, err := exec(ctx, q, `DELETE FROM score_drops WHERE channel = ?`, channel)
	if err != nil {
		return 0, fmt.Errorf("failed to remove drop channel: %w", err)
	}
	return n, nil
}

// DropChannels lists the drop channels of guild.
func DropChannels(ctx context.Context, q Queryer, guild int64) ([]string, error) {
	var channels []string
	err := selectAll(ctx, q, &channels, `
		SELECT c.channel FROM score_drops d
		INNER JOIN channels c ON d.channel = c.id
		WHERE c.guild = ?
		ORDER BY c.channel`, guild)
	if err != nil {
		return nil, fmt.Errorf("failed to list drop channels: %w", err)
	}
	return channels, nil
}

// RandomDropChannel picks one drop channel of guild at random.
func RandomDropChannel(ctx context.Context, q Queryer, guild int64) (string, bool, error) {
	var channel string
	err := get(ctx, q, &channel, `
		SELECT c.channel FROM score_drops d
		INNER JOIN channels c ON d.channel = c.id
		WHERE c.guild = ?
		ORDER BY RANDOM()
		LIMIT 1`, guild)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to pick drop channel: %w", err)
	}
	return channel, true, nil
}
