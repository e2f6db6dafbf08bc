package defs

import "github.com/bwmarrin/discordgo"

var manageGuild int64 = discordgo.PermissionManageGuild

var dmAllowed = false

func subcommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

func option(t discordgo.ApplicationCommandOptionType, name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        t,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func adminCommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     name,
		Description:              description,
		DefaultMemberPermissions: &manageGuild,
		DMPermission:             &dmAllowed,
		Options:                  options,
	}
}

var moduleChoice = &discordgo.ApplicationCommandOption{
	Type:        discordgo.ApplicationCommandOptionString,
	Name:        "module",
	Description: "Module to toggle",
	Required:    true,
	Choices: []*discordgo.ApplicationCommandOptionChoice{
		{Name: "score", Value: "score"},
		{Name: "reaction-roles", Value: "reaction-roles"},
	},
}

var Module = adminCommand("module", "Enable or disable a module in this server",
	subcommand("enable", "Enable a module", moduleChoice),
	subcommand("disable", "Disable a module", moduleChoice),
	subcommand("list", "Show module states"),
)

var Emoji = adminCommand("emoji", "Configure score emojis",
	subcommand("add", "Count an emoji as an upvote or downvote",
		option(discordgo.ApplicationCommandOptionString, "emoji", "Emoji", true),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "type",
			Description: "Vote type",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "upvote", Value: "upvote"},
				{Name: "downvote", Value: "downvote"},
			},
		},
	),
	subcommand("remove", "Stop counting an emoji",
		option(discordgo.ApplicationCommandOptionString, "emoji", "Emoji", true)),
	subcommand("list", "List score emojis"),
)

var LevelUp = adminCommand("levelup", "Configure level-up roles",
	subcommand("add", "Grant a role at a score",
		option(discordgo.ApplicationCommandOptionRole, "role", "Role", true),
		option(discordgo.ApplicationCommandOptionInteger, "score", "Score threshold, negative for penalty roles", true)),
	subcommand("remove", "Remove a level-up role",
		option(discordgo.ApplicationCommandOptionRole, "role", "Role", true),
		option(discordgo.ApplicationCommandOptionInteger, "score", "Score threshold", true)),
	subcommand("list", "List level-up roles"),
)

var Cooldown = adminCommand("cooldown", "Configure reaction cooldowns per role",
	subcommand("set", "Set the cooldown of a role",
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "role",
			Description: "Role",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "seconds",
			Description: "Cooldown in seconds",
			Required:    true,
			MinValue:    new(float64),
		}),
	subcommand("reset", "Use the default cooldown for a role",
		option(discordgo.ApplicationCommandOptionRole, "role", "Role", true)),
	subcommand("list", "List role cooldowns"),
)

var Moderation = adminCommand("moderation", "Pin or delete messages by score",
	subcommand("pin", "Pin messages reaching a score, omit to disable",
		option(discordgo.ApplicationCommandOptionInteger, "score", "Score", false)),
	subcommand("delete", "Delete messages reaching a score, omit to disable",
		option(discordgo.ApplicationCommandOptionInteger, "score", "Score", false)),
	subcommand("show", "Show moderation thresholds"),
)

var ReactionRole = adminCommand("reactionrole", "Configure reaction roles",
	subcommand("add", "Grant a role when reacting to a message",
		option(discordgo.ApplicationCommandOptionString, "message", "Message link", true),
		option(discordgo.ApplicationCommandOptionString, "emoji", "Emoji", true),
		option(discordgo.ApplicationCommandOptionRole, "role", "Role", true),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "slots",
			Description: "Maximum number of holders, omit for unlimited",
			MinValue:    new(float64),
		}),
	subcommand("remove", "Remove a reaction role",
		option(discordgo.ApplicationCommandOptionString, "message", "Message link", true),
		option(discordgo.ApplicationCommandOptionString, "emoji", "Emoji", true),
		option(discordgo.ApplicationCommandOptionRole, "role", "Role", true)),
	subcommand("list", "List reaction roles"),
)

var Drop = adminCommand("drop", "Configure score drop channels",
	subcommand("add", "Offer departed members' score in a channel",
		option(discordgo.ApplicationCommandOptionChannel, "channel", "Channel", true)),
	subcommand("remove", "Stop dropping score in a channel",
		option(discordgo.ApplicationCommandOptionChannel, "channel", "Channel", true)),
	subcommand("list", "List drop channels"),
)

var Clean = adminCommand("clean", "Remove stored data of deleted users, roles, channels and messages")

// Leaderboard posts the score leaderboard in the current channel. The message
// is refreshed by the scheduler.
var Leaderboard = adminCommand("leaderboard", "Post or refresh the score leaderboard in this channel")
