package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Entity is a stored platform identifier with its surrogate key.
type Entity struct {
	ID       int64  `db:"id"`
	External string `db:"external"`
}

// StoredMessage is a tracked message together with its channel.
type StoredMessage struct {
	ID        int64  `db:"id"`
	ChannelID string `db:"channel"`
	MessageID string `db:"message"`
}

// ForgetUser releases every slot user holds and removes the user, which
// cascades to the reactions it gave and received.
func ForgetUser(ctx context.Context, tx *sqlx.Tx, user int64) error {
	if _, err := ReleaseHolderSlots(ctx, tx, user); err != nil {
		return err
	}
	if _, err := exec(ctx, tx, `DELETE FROM users WHERE id = ?`, user); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// DeleteGuild removes every row belonging to guildID.
func DeleteGuild(ctx context.Context, q Queryer, guildID string) (int64, error) {
	n, err := exec(ctx, q, `DELETE FROM guilds WHERE guild = ?`, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete guild: %w", err)
	}
	return n, nil
}

// DeleteChannel removes channelID of guildID with its messages, reactions and mappings.
func DeleteChannel(ctx context.Context, q Queryer, guildID, channelID string) (int64, error) {
	n, err := exec(ctx, q, `
		DELETE FROM channels
		WHERE channel = ? AND guild IN (SELECT id FROM guilds WHERE guild = ?)`, channelID, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete channel: %w", err)
	}
	return n, nil
}

// DeleteMessage removes a tracked message.
func DeleteMessage(ctx context.Context, q Queryer, message int64) error {
	if _, err := exec(ctx, q, `DELETE FROM messages WHERE id = ?`, message); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// DeleteGuildEmojisExcept removes the custom emojis of guild that are not in keep.
func DeleteGuildEmojisExcept(ctx context.Context, q Queryer, guild int64, keep []string) (int64, error) {
	return deleteExcept(ctx, q, `DELETE FROM emojis WHERE guild = ?`, `guild_emoji`, guild, keep)
}

// DeleteRolesExcept removes the roles of guild that are not in keep.
func DeleteRolesExcept(ctx context.Context, q Queryer, guild int64, keep []string) (int64, error) {
	return deleteExcept(ctx, q, `DELETE FROM roles WHERE guild = ?`, `role`, guild, keep)
}

// DeleteChannelsExcept removes the channels of guild that are not in keep.
func DeleteChannelsExcept(ctx context.Context, q Queryer, guild int64, keep []string) (int64, error) {
	return deleteExcept(ctx, q, `DELETE FROM channels WHERE guild = ?`, `channel`, guild, keep)
}

func deleteExcept(ctx context.Context, q Queryer, base, column string, guild int64, keep []string) (int64, error) {
	query, args := base, []interface{}{guild}
	if len(keep) > 0 {
		var err error
		query, args, err = in(base+` AND `+column+` NOT IN (?)`, guild, keep)
		if err != nil {
			return 0, fmt.Errorf("failed to build cleanup query: %w", err)
		}
	}
	n, err := exec(ctx, q, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to clean %s: %w", column, err)
	}
	return n, nil
}

// Guilds lists every stored guild.
func Guilds(ctx context.Context, q Queryer) ([]Entity, error) {
	var guilds []Entity
	if err := selectAll(ctx, q, &guilds, `SELECT id, guild AS external FROM guilds ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}
	return guilds, nil
}

// Users lists the stored users of guild.
func Users(ctx context.Context, q Queryer, guild int64) ([]Entity, error) {
	var users []Entity
	if err := selectAll(ctx, q, &users, `SELECT id, "user" AS external FROM users WHERE guild = ? ORDER BY id`, guild); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Messages lists the tracked messages of guild.
func Messages(ctx context.Context, q Queryer, guild int64) ([]StoredMessage, error) {
	var messages []StoredMessage
	err := selectAll(ctx, q, &messages, `
		SELECT m.id, c.channel, m.message
		FROM messages m
		INNER JOIN channels c ON m.channel = c.id
		WHERE c.guild = ?
		ORDER BY m.id`, guild)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}
