package handlers

import (
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"score-bot/bot"
)

func Register(b *bot.Bot) {
	pickups := NewPickups()
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b, pickups)
}

func addHandlers(b *bot.Bot, pickups *Pickups) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("logged in", "user", r.User.Username, "guilds", len(r.Guilds))
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		handleInteractionCreate(s, i, b, pickups)
	})
	b.Session.AddHandler(onReactionAdd(b))
	b.Session.AddHandler(onReactionRemove(b))
	b.Session.AddHandler(onReactionRemoveAll(b))
	b.Session.AddHandler(onMemberRemove(b, pickups))
	b.Session.AddHandler(onGuildDelete(b))
	b.Session.AddHandler(onChannelDelete(b))
	b.Session.AddHandler(onGuildEmojisUpdate(b))
}

func handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, pickups *Pickups) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	case discordgo.InteractionMessageComponent:
		if strings.HasPrefix(i.MessageComponentData().CustomID, pickupPrefix) {
			handlePickupClick(pickups)(s, i)
		}
	}
}
