package model

// LeaderboardState holds the necessary information to find and update a leaderboard message.
type LeaderboardState struct {
	GuildID   string `db:"guild_id"`
	ChannelID string `db:"channel_id"`
	MessageID string `db:"message_id"`
}

// ScoreEntry is one line of a leaderboard.
type ScoreEntry struct {
	UserID string `db:"user"`
	Score  int64  `db:"score"`
}
