package defs

import "github.com/bwmarrin/discordgo"

var Score = &discordgo.ApplicationCommand{
	Name:         "score",
	Description:  "Show the score a member received",
	DMPermission: &dmAllowed,
	Options: []*discordgo.ApplicationCommandOption{
		option(discordgo.ApplicationCommandOptionUser, "user", "Member, defaults to you", false),
	},
}

var Given = &discordgo.ApplicationCommand{
	Name:         "given",
	Description:  "Show the votes a member gave",
	DMPermission: &dmAllowed,
	Options: []*discordgo.ApplicationCommandOption{
		option(discordgo.ApplicationCommandOptionUser, "user", "Member, defaults to you", false),
	},
}

var Gift = &discordgo.ApplicationCommand{
	Name:         "gift",
	Description:  "Give some of your upvotes to another member",
	DMPermission: &dmAllowed,
	Options: []*discordgo.ApplicationCommandOption{
		option(discordgo.ApplicationCommandOptionUser, "user", "Receiver", true),
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "amount",
			Description: "Number of upvotes",
			Required:    true,
			MinValue:    &one,
		},
	},
}

var one = 1.0

var About = &discordgo.ApplicationCommand{
	Name:        "about",
	Description: "Show bot and system information",
}

var Global = &discordgo.ApplicationCommand{
	Name:         "global",
	Description:  "Show the score a user received across all servers",
	DMPermission: &dmAllowed,
	Options: []*discordgo.ApplicationCommandOption{
		option(discordgo.ApplicationCommandOptionUser, "user", "User, defaults to you", false),
	},
}
