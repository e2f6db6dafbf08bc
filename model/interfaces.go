package model

import "context"

// Platform is the subset of the chat platform API the scoring engine needs.
// Implementations return an error wrapping ErrNotFound when the addressed
// member, message, role or emoji no longer exists.
type Platform interface {
	Member(ctx context.Context, guildID, userID string) (*Member, error)
	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error
	AddRoles(ctx context.Context, guildID, userID string, roleIDs []string) error
	RemoveRoles(ctx context.Context, guildID, userID string, roleIDs []string) error

	Message(ctx context.Context, channelID, messageID string) (*Message, error)
	PinMessage(ctx context.Context, channelID, messageID string) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	RemoveReaction(ctx context.Context, channelID, messageID string, emoji Emoji, userID string) error

	EmojiExists(ctx context.Context, guildID, emojiID string) (bool, error)
}
