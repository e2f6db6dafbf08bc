package handlers

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"score-bot/bot"
	"score-bot/utils"
)

// command answers an application command with an embed.
type command struct {
	permission string
	// deferred commands acknowledge first and answer with a follow-up.
	deferred bool
	run      func(ctx context.Context, b *bot.Bot, i *discordgo.InteractionCreate) (*discordgo.MessageEmbed, error)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	cmds := map[string]command{
		"module":       {permission: utils.AdminPermission, run: handleModule},
		"emoji":        {permission: utils.AdminPermission, run: handleEmoji},
		"levelup":      {permission: utils.AdminPermission, run: handleLevelUp},
		"cooldown":     {permission: utils.AdminPermission, run: handleCooldown},
		"moderation":   {permission: utils.AdminPermission, run: handleModeration},
		"reactionrole": {permission: utils.AdminPermission, run: handleReactionRole},
		"drop":         {permission: utils.AdminPermission, run: handleDrop},
		"clean":        {permission: utils.AdminPermission, deferred: true, run: handleClean},
		"leaderboard":  {permission: utils.AdminPermission, run: handleLeaderboard},
		"score":        {permission: utils.UserPermission, run: handleScore},
		"given":        {permission: utils.UserPermission, run: handleGiven},
		"gift":         {permission: utils.UserPermission, run: handleGift},
		"global":       {permission: utils.UserPermission, run: handleGlobal},
		"about":        {permission: utils.UserPermission, run: handleAbout},
	}

	handlers := make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate), len(cmds))
	for name, cmd := range cmds {
		handlers[name] = func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			cmd.handle(b, s, i)
		}
	}
	return handlers
}

func (c command) handle(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	cfg := b.GetConfig()
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		utils.SendErrorResponse(s, i, "This command can only be used in a server.")
		return
	}
	level := utils.CheckPermission(i.Member.User.ID, i.Member.Permissions, cfg.OwnerIDs)
	if !utils.Allowed(level, c.permission) {
		utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
		return
	}

	ctx, cancel := context.WithTimeout(b.Context(), cfg.InteractionTimeout)
	defer cancel()

	name := i.ApplicationCommandData().Name
	if c.deferred {
		if err := utils.DeferResponse(s, i, false); err != nil {
			slog.Warn("defer failed", "command", name, "err", err)
			return
		}
	}

	embed, err := c.run(ctx, b, i)
	if err != nil {
		slog.Error("command failed", "command", name, "guild", i.GuildID, "user", i.Member.User.ID, "err", err)
		if c.deferred {
			utils.SendFollowUpError(s, i.Interaction, userMessage(err))
		} else {
			utils.SendErrorResponse(s, i, userMessage(err))
		}
		return
	}

	if c.deferred {
		_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
			Embeds: &[]*discordgo.MessageEmbed{embed},
		})
		if err != nil {
			slog.Warn("follow-up failed", "command", name, "err", err)
		}
		return
	}
	utils.SendEmbedResponse(s, i, embed)
}

func embed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       0x5865F2,
	}
}
