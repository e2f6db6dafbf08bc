package model

import "time"

// Member is a guild member as seen by the platform.
type Member struct {
	GuildID string
	UserID  string
	Bot     bool
	Roles   []string
}

// HasRole reports whether the member currently holds roleID.
func (m *Member) HasRole(roleID string) bool {
	for _, r := range m.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}

// Message is a platform message with the fields the engine reads.
type Message struct {
	ID        string
	ChannelID string
	AuthorID  string
	Pinned    bool
}

// Emoji identifies a reaction emoji. Custom guild emojis carry an ID,
// unicode emojis only a Name.
type Emoji struct {
	ID   string
	Name string
}

// Custom reports whether the emoji is a guild emoji rather than unicode.
func (e Emoji) Custom() bool {
	return e.ID != ""
}

// APIName is the form the platform expects in reaction endpoints.
func (e Emoji) APIName() string {
	if e.Custom() {
		return e.Name + ":" + e.ID
	}
	return e.Name
}

func (e Emoji) String() string {
	if e.Custom() {
		return "<:" + e.Name + ":" + e.ID + ">"
	}
	return e.Name
}

// Reaction is an inbound reaction add/remove event.
type Reaction struct {
	GuildID   string
	ChannelID string
	MessageID string
	UserID    string
	Emoji     Emoji
	// Member is populated on reaction-add when the gateway includes it.
	Member *Member
}

// Modules are the per-guild feature switches.
type Modules struct {
	Score         bool `db:"score"`
	ReactionRoles bool `db:"reaction_roles"`
}

// Module names accepted by the module command.
const (
	ModuleScore         = "score"
	ModuleReactionRoles = "reaction-roles"
)

// ScoreEmoji classifies an emoji as an upvote or downvote within a guild.
type ScoreEmoji struct {
	ID         int64  `db:"id"`
	Upvote     bool   `db:"upvote"`
	GuildEmoji string `db:"guild_emoji"`
	Unicode    string `db:"unicode"`
}

// ScoreRole maps a score threshold to a level-up role.
type ScoreRole struct {
	RoleID string `db:"role"`
	Score  int64  `db:"score"`
}

// RoleCooldown is a per-role reaction cooldown.
type RoleCooldown struct {
	RoleID  string `db:"role"`
	Seconds int64  `db:"cooldown"`
}

// Cooldown returns the cooldown as a duration.
func (c RoleCooldown) Cooldown() time.Duration {
	return time.Duration(c.Seconds) * time.Second
}

// ReactionRole is a reaction-role mapping. Capacity and Slots are nil for
// unlimited mappings; Slots is the remaining capacity.
type ReactionRole struct {
	ID       int64  `db:"id"`
	RoleID   string `db:"role"`
	RoleDBID int64  `db:"role_id"`
	Capacity *int64 `db:"capacity"`
	Slots    *int64 `db:"slots"`
	// Held is set when the user being evaluated holds the role through this mapping.
	Held bool `db:"held"`
}

// ReactionRoleListing describes a configured mapping for display.
type ReactionRoleListing struct {
	ChannelID  string `db:"channel"`
	MessageID  string `db:"message"`
	GuildEmoji string `db:"guild_emoji"`
	Unicode    string `db:"unicode"`
	RoleID     string `db:"role"`
	Capacity   *int64 `db:"capacity"`
	Slots      *int64 `db:"slots"`
}

// Limited reports whether the mapping has a slot capacity.
func (r ReactionRole) Limited() bool {
	return r.Capacity != nil
}

// UserScore aggregates the score a user received within a guild.
type UserScore struct {
	Upvotes   int64 `db:"upvotes"`
	Downvotes int64 `db:"downvotes"`
	Gifted    int64 `db:"gifted"`
}

// Total is upvotes minus downvotes.
func (s UserScore) Total() int64 {
	return s.Upvotes - s.Downvotes
}

// EmojiCount is one row of an emoji usage breakdown.
type EmojiCount struct {
	GuildEmoji string `db:"guild_emoji"`
	Unicode    string `db:"unicode"`
	Count      int64  `db:"count"`
}

// Emoji converts the row back to a reaction emoji.
func (c EmojiCount) Emoji() Emoji {
	if c.GuildEmoji != "" {
		return Emoji{ID: c.GuildEmoji, Name: "_"}
	}
	return Emoji{Name: c.Unicode}
}

// Moderation thresholds of a guild; nil means disabled.
type Moderation struct {
	Pin    *int64
	Delete *int64
}
