package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"score-bot/model"
)

// identity describes how one kind of external identifier maps to its
// surrogate key.
type identity struct {
	kind   string
	lookup string
	insert string
}

var (
	guildIdentity = identity{
		kind:   "guild",
		lookup: `SELECT id FROM guilds WHERE guild = ?`,
		insert: `INSERT INTO guilds (guild) VALUES (?) ON CONFLICT DO NOTHING RETURNING id`,
	}
	userIdentity = identity{
		kind:   "user",
		lookup: `SELECT id FROM users WHERE guild = ? AND "user" = ?`,
		insert: `INSERT INTO users (guild, "user") VALUES (?, ?) ON CONFLICT DO NOTHING RETURNING id`,
	}
	roleIdentity = identity{
		kind:   "role",
		lookup: `SELECT id FROM roles WHERE guild = ? AND role = ?`,
		insert: `INSERT INTO roles (guild, role) VALUES (?, ?) ON CONFLICT DO NOTHING RETURNING id`,
	}
	channelIdentity = identity{
		kind:   "channel",
		lookup: `SELECT id FROM channels WHERE guild = ? AND channel = ?`,
		insert: `INSERT INTO channels (guild, channel) VALUES (?, ?) ON CONFLICT DO NOTHING RETURNING id`,
	}
	messageIdentity = identity{
		kind:   "message",
		lookup: `SELECT id FROM messages WHERE channel = ? AND message = ?`,
		insert: `INSERT INTO messages (channel, message) VALUES (?, ?) ON CONFLICT DO NOTHING RETURNING id`,
	}
	guildEmojiIdentity = identity{
		kind:   "guild emoji",
		lookup: `SELECT id FROM emojis WHERE guild = ? AND guild_emoji = ?`,
		insert: `INSERT INTO emojis (guild, guild_emoji) VALUES (?, ?) ON CONFLICT DO NOTHING RETURNING id`,
	}
	unicodeEmojiIdentity = identity{
		kind:   "unicode emoji",
		lookup: `SELECT id FROM emojis WHERE unicode = ?`,
		insert: `INSERT INTO emojis (unicode) VALUES (?) ON CONFLICT DO NOTHING RETURNING id`,
	}
)

// Resolver maps external platform identifiers to surrogate keys, creating
// rows on first reference. It holds no locks: a lost insert race is detected
// through the unique constraint and answered by reading the winner's row.
type Resolver struct {
	q Queryer
}

// NewResolver creates a resolver over db.
func NewResolver(db *DB) *Resolver {
	return &Resolver{q: db}
}

func (r *Resolver) resolve(ctx context.Context, id identity, args ...interface{}) (int64, error) {
	var key int64

	err := get(ctx, r.q, &key, id.lookup, args...)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, model.WrapStore("lookup "+id.kind, err)
	}

	err = get(ctx, r.q, &key, id.insert, args...)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, model.WrapStore("insert "+id.kind, err)
	}

	// Another caller inserted the same identifier between our lookup and insert.
	slog.Debug("insert race detected", "kind", id.kind, "key", args)
	err = get(ctx, r.q, &key, id.lookup, args...)
	if err == nil {
		return key, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		slog.Error("unable to resolve identifier after insert conflict", "kind", id.kind, "key", args)
		return 0, fmt.Errorf("%s %v: %w", id.kind, args, model.ErrIdentityRaceExhausted)
	}
	return 0, model.WrapStore("relookup "+id.kind, err)
}

func (r *Resolver) find(ctx context.Context, id identity, args ...interface{}) (int64, bool, error) {
	var key int64
	err := get(ctx, r.q, &key, id.lookup, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, model.WrapStore("lookup "+id.kind, err)
	}
	return key, true, nil
}

// Guild resolves a guild id.
func (r *Resolver) Guild(ctx context.Context, guildID string) (int64, error) {
	return r.resolve(ctx, guildIdentity, guildID)
}

// User resolves a member of a guild.
func (r *Resolver) User(ctx context.Context, guildID, userID string) (int64, error) {
	guild, err := r.Guild(ctx, guildID)
	if err != nil {
		return 0, err
	}
	return r.resolve(ctx, userIdentity, guild, userID)
}

// Role resolves a guild role.
func (r *Resolver) Role(ctx context.Context, guildID, roleID string) (int64, error) {
	guild, err := r.Guild(ctx, guildID)
	if err != nil {
		return 0, err
	}
	return r.resolve(ctx, roleIdentity, guild, roleID)
}

// Channel resolves a guild channel.
func (r *Resolver) Channel(ctx context.Context, guildID, channelID string) (int64, error) {
	guild, err := r.Guild(ctx, guildID)
	if err != nil {
		return 0, err
	}
	return r.resolve(ctx, channelIdentity, guild, channelID)
}

// Message resolves a message, creating its channel first if needed.
func (r *Resolver) Message(ctx context.Context, guildID, channelID, messageID string) (int64, error) {
	channel, err := r.Channel(ctx, guildID, channelID)
	if err != nil {
		return 0, err
	}
	return r.resolve(ctx, messageIdentity, channel, messageID)
}

// Emoji resolves a custom emoji within its guild or a unicode emoji globally.
func (r *Resolver) Emoji(ctx context.Context, guildID string, emoji model.Emoji) (int64, error) {
	if !emoji.Custom() {
		return r.resolve(ctx, unicodeEmojiIdentity, emoji.Name)
	}
	guild, err := r.Guild(ctx, guildID)
	if err != nil {
		return 0, err
	}
	return r.resolve(ctx, guildEmojiIdentity, guild, emoji.ID)
}

// FindGuild looks a guild up without creating it.
func (r *Resolver) FindGuild(ctx context.Context, guildID string) (int64, bool, error) {
	return r.find(ctx, guildIdentity, guildID)
}

// FindUser looks a user up without creating it.
func (r *Resolver) FindUser(ctx context.Context, guildID, userID string) (int64, bool, error) {
	guild, ok, err := r.FindGuild(ctx, guildID)
	if !ok || err != nil {
		return 0, false, err
	}
	return r.find(ctx, userIdentity, guild, userID)
}

// FindMessage looks a message up without creating it.
func (r *Resolver) FindMessage(ctx context.Context, guildID, channelID, messageID string) (int64, bool, error) {
	guild, ok, err := r.FindGuild(ctx, guildID)
	if !ok || err != nil {
		return 0, false, err
	}
	channel, ok, err := r.find(ctx, channelIdentity, guild, channelID)
	if !ok || err != nil {
		return 0, false, err
	}
	return r.find(ctx, messageIdentity, channel, messageID)
}

// FindEmoji looks an emoji up without creating it.
func (r *Resolver) FindEmoji(ctx context.Context, guildID string, emoji model.Emoji) (int64, bool, error) {
	if !emoji.Custom() {
		return r.find(ctx, unicodeEmojiIdentity, emoji.Name)
	}
	guild, ok, err := r.FindGuild(ctx, guildID)
	if !ok || err != nil {
		return 0, false, err
	}
	return r.find(ctx, guildEmojiIdentity, guild, emoji.ID)
}
