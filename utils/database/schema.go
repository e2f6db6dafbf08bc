package database

import (
	"context"
	"fmt"
	"strings"
)

// Tables are created in dependency order. {{serial}} is replaced per driver.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS guilds (
		id {{serial}},
		guild TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id {{serial}},
		guild BIGINT NOT NULL REFERENCES guilds(id) ON DELETE CASCADE,
		"user" TEXT NOT NULL,
		UNIQUE (guild, "user")
	)`,
	`CREATE TABLE IF NOT EXISTS roles (
		id {{serial}},
		guild BIGINT NOT NULL REFERENCES guilds(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		UNIQUE (guild, role)
	)`,
	`CREATE TABLE IF NOT EXISTS channels (
		id {{serial}},
		guild BIGINT NOT NULL REFERENCES guilds(id) ON DELETE CASCADE,
		channel TEXT NOT NULL,
		UNIQUE (guild, channel)
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id {{serial}},
		channel BIGINT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
		message TEXT NOT NULL,
		UNIQUE (channel, message)
	)`,
	`CREATE TABLE IF NOT EXISTS emojis (
		id {{serial}},
		guild BIGINT REFERENCES guilds(id) ON DELETE CASCADE,
		guild_emoji TEXT,
		unicode TEXT UNIQUE,
		UNIQUE (guild, guild_emoji),
		CHECK ((guild_emoji IS NULL) <> (unicode IS NULL))
	)`,
	`CREATE TABLE IF NOT EXISTS score_emojis (
		id {{serial}},
		guild BIGINT NOT NULL REFERENCES guilds(id) ON DELETE CASCADE,
		emoji BIGINT NOT NULL REFERENCES emojis(id) ON DELETE CASCADE,
		upvote BOOLEAN NOT NULL,
		UNIQUE (guild, emoji)
	)`,
	`CREATE TABLE IF NOT EXISTS score_reactions (
		id {{serial}},
		guild BIGINT NOT NULL REFERENCES guilds(id) ON DELETE CASCADE,
		user_from BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		user_to BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		message BIGINT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
		emoji BIGINT NOT NULL REFERENCES score_emojis(id) ON DELETE CASCADE,
		native BOOLEAN NOT NULL DEFAULT TRUE,
		UNIQUE (user_from, message, emoji)
	)`,
	`CREATE INDEX IF NOT EXISTS score_reactions_user_to ON score_reactions (user_to)`,
	`CREATE INDEX IF NOT EXISTS score_reactions_message ON score_reactions (message)`,
	`CREATE TABLE IF NOT EXISTS score_cooldowns (
		role BIGINT PRIMARY KEY REFERENCES roles(id) ON DELETE CASCADE,
		cooldown BIGINT NOT NULL CHECK (cooldown >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS score_roles (
		id {{serial}},
		guild BIGINT NOT NULL REFERENCES guilds(id) ON DELETE CASCADE,
		role BIGINT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
		score BIGINT NOT NULL,
		UNIQUE (role, score)
	)`,
	`CREATE TABLE IF NOT EXISTS reaction_roles (
		id {{serial}},
		guild BIGINT NOT NULL REFERENCES guilds(id) ON DELETE CASCADE,
		message BIGINT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
		emoji BIGINT NOT NULL REFERENCES emojis(id) ON DELETE CASCADE,
		role BIGINT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
		capacity BIGINT CHECK (capacity IS NULL OR capacity >= 0),
		slots BIGINT CHECK (slots IS NULL OR slots >= 0),
		UNIQUE (message, emoji, role)
	)`,
	`CREATE TABLE IF NOT EXISTS given_roles (
		id {{serial}},
		holder BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		reaction_role BIGINT NOT NULL REFERENCES reaction_roles(id) ON DELETE CASCADE,
		UNIQUE (holder, reaction_role)
	)`,
	`CREATE TABLE IF NOT EXISTS modules (
		guild BIGINT PRIMARY KEY REFERENCES guilds(id) ON DELETE CASCADE,
		score BOOLEAN NOT NULL DEFAULT FALSE,
		reaction_roles BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS score_auto_pin (
		guild BIGINT PRIMARY KEY REFERENCES guilds(id) ON DELETE CASCADE,
		score BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS score_auto_delete (
		guild BIGINT PRIMARY KEY REFERENCES guilds(id) ON DELETE CASCADE,
		score BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS score_drops (
		channel BIGINT PRIMARY KEY REFERENCES channels(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS score_leaderboards (
		guild BIGINT PRIMARY KEY REFERENCES guilds(id) ON DELETE CASCADE,
		channel BIGINT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
		message TEXT NOT NULL
	)`,
}

// Migrate creates all tables that do not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.driver == DriverPostgres {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	for _, stmt := range schema {
		stmt = strings.ReplaceAll(stmt, "{{serial}}", serial)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
