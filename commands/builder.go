package commands

import (
	"github.com/bwmarrin/discordgo"

	"score-bot/commands/defs"
)

// GenerateCommands returns every application command the bot serves.
func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Module,
		defs.Emoji,
		defs.LevelUp,
		defs.Cooldown,
		defs.Moderation,
		defs.ReactionRole,
		defs.Drop,
		defs.Clean,
		defs.Leaderboard,
		defs.Score,
		defs.Given,
		defs.Gift,
		defs.Global,
		defs.About,
	}
}
