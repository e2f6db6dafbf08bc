package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"score-bot/bot"
	"score-bot/model"
	"score-bot/utils/database"
)

const cleanTimeout = 14 * time.Minute

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func handleModule(ctx context.Context, b *bot.Bot, i *discordgo.InteractionCreate) (*discordgo.MessageEmbed, error) {
	sub, opts := subcommand(i)
	guild, err := b.Engine.Resolver().Guild(ctx, i.GuildID)
	if err != nil {
		return nil, err
	}
	if sub != "list" {
		module := opts.string("module")
		if err := b.Engine.Modules().Set(ctx, guild, module, sub == "enable"); err != nil {
			return nil, err
		}
		return embed("Module", fmt.Sprintf("Module `%s` is now %s.", module, onOff(sub == "enable"))), nil
	}
	modules, err := b.Engine.Modules().Get(ctx, guild)
	if err != nil {
		return nil, err
	}
	return embed("Modules", fmt.Sprintf("`%s`: %s\n`%s`: %s",
		model.ModuleScore, onOff(modules.Score),
		model.ModuleReactionRoles, onOff(modules.ReactionRoles))), nil
}

// guildEmoji parses an emoji option and checks that a custom emoji belongs
// to the guild.
func guildEmoji(ctx context.Context, b *bot.Bot, guildID, raw string) (model.Emoji, error) {
	emoji, err := parseEmoji(raw)
	if err != nil {
		return emoji, err
	}
	if emoji.Custom() {
		ok, err := b.Platform.EmojiExists(ctx, guildID, emoji.ID)
		if err != nil {
			return emoji, err
		}
		if !ok {
			return emoji, fmt.Errorf("%s is not an emoji of this server: %w", emoji, model.ErrInvalidArgument)
		}
	}
	return emoji, nil
}

func handleEmoji(ctx context.Context, b *bot.Bot, i *discordgo.InteractionCreate) (*discordgo.MessageEmbed, error) {
	sub, opts := subcommand(i)
	db, res := b.DB, b.Engine.Resolver()
	guild, err := res.Guild(ctx, i.GuildID)
	if err != nil {
		return nil, err
	}

	if sub == "list" {
		emojis, err := database.ScoreEmojis(ctx, db, guild)
		if err != nil {
			return nil, err
		}
		var up, down []string
		for _, e := range emojis {
			s := model.EmojiCount{GuildEmoji: e.GuildEmoji, Unicode: e.Unicode}.Emoji().String()
			if e.Upvote {
				up = append(up, s)
			} else {
				down = append(down, s)
			}
		}
		return embed("Score emojis", fmt.Sprintf("Upvotes: %s\nDownvotes: %s", list(up), list(down))), nil
	}

	emoji, err := guildEmoji(ctx, b, i.GuildID, opts.string("emoji"))
	if err != nil {
		return nil, err
	}
	id, err := res.Emoji(ctx, i.GuildID, emoji)
	if err != nil {
		return nil, err
	}
	switch sub {
	case "add":
		upvote := opts.string("type") == "upvote"
		if err := database.SetScoreEmoji(ctx, db, guild, id, upvote); err != nil {
			return nil, err
		}
		kind := "downvote"
		if upvote {
			kind = "upvote"
		}
		return embed("Score emojis", fmt.Sprintf("%s now counts as an %s.", emoji, kind)), nil
	default:
		n, err := database.RemoveScoreEmoji(ctx, db, guild, id)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return embed("Score emojis", fmt.Sprintf("%s was not a score emoji.", emoji)), nil
		}
		return embed("Score emojis", fmt.Sprintf("%s no longer counts.", emoji)), nil
	}
}

func handleLevelUp(ctx context.Context, b *bot.Bot, i *discordgo.InteractionCreate) (*discordgo.MessageEmbed, error) {
	sub, opts := subcommand(i)
	db, res := b.DB, b.Engine.Resolver()
	guild, err := res.Guild(ctx, i.GuildID)
	if err != nil {
		return nil, err
	}

	if sub == "list" {
		roles, err := database.ScoreRoles(ctx, db, guild)
		if err != nil {
			return nil, err
		}
		lines := make([]string, 0, len(roles))
		for _, r := range roles {
			lines = append(lines, fmt.Sprintf("`%d`: <@&%s>", r.Score, r.RoleID))
		}
		return embed("Level-up roles", list(lines)), nil
	}

	roleID := opts.id("role")
	score, _ := opts.int("score")
	role, err := res.Role(ctx, i.GuildID, roleID)
	if err != nil {
		return nil, err
	}
	if sub == "add" {
		added, err := database.AddScoreRole(ctx, db, guild, role, score)
		if err != nil {
			return nil, err
		}
		if !added {
			return embed("Level-up roles", fmt.Sprintf("<@&%s> is already granted at %d.", roleID, score)), nil
		}
		return embed("Level-up roles", fmt.Sprintf("<@&%s> is granted at a score of %d.", roleID, score)), nil
	}
	n, err := database.RemoveScoreRole(ctx, db, role, score)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return embed("Level-up roles", fmt.Sprintf("<@&%s> was not granted at %d.", roleID, score)), nil
	}
	return embed("Level-up roles", fmt.Sprintf("<@&%s> is no longer granted at %d.", roleID, score)), nil
}

func handleCooldown(ctx context.Context, b *bot.Bot, i *discordgo.InteractionCreate) (*discordgo.MessageEmbed, error) {
	sub, opts := subcommand(i)
	db, res := b.DB, b.Engine.Resolver()

	if sub == "list" {
		guild, err := res.Guild(ctx, i.GuildID)
		if err != nil {
			return nil, err
		}
		cooldowns, err := database.Cooldowns(ctx, db, guild)
		if err != nil {
			return nil, err
		}
		lines := make([]string, 0, len(cooldowns)+1)
		lines = append(lines, fmt.Sprintf("Default: %s", b.GetConfig().DefaultCooldown))
		for _, c := range cooldowns {
			lines = append(lines, fmt.Sprintf("<@&%s>: %s", c.RoleID, c.Cooldown()))
		}
		return embed("Cooldowns", strings.Join(lines, "\n")), nil
	}

	roleID := opts.id("role")
	role, err := res.Role(ctx, i.GuildID, roleID)
	if err != nil {
		return nil, err
	}
	if sub == "set" {
		seconds, _ := opts.int("seconds")
		if seconds < 0 {
			return nil, fmt.Errorf("cooldown cannot be negative: %w", model.ErrInvalidArgument)
		}
		if err := database.SetCooldown(ctx, db, role, seconds); err != nil {
			return nil, err
		}
		return embed("Cooldowns", fmt.Sprintf("<@&%s> can vote every %s.", roleID, time.Duration(seconds)*time.Second)), nil
	}
	if _, err := database.ResetCooldown(ctx, db, role); err != nil {
		return nil, err
	}
	return embed("Cooldowns", fmt.Sprintf("<@&%s> uses the default cooldown.", roleID)), nil
}

func handleModeration(ctx context.Context, b *bot.Bot, i *discordgo.InteractionCreate) (*discordgo.MessageEmbed, error) {
	sub, opts := subcommand(i)
	guild, err := b.Engine.Resolver().Guild(ctx, i.GuildID)
	if err != nil {
		return nil, err
	}

	if sub == "show" {
		m, err := database.Moderation(ctx, b.DB, guild)
		if err != nil {
			return nil, err
		}
		return embed("Moderation", fmt.Sprintf("Pin at: %s\nDelete at: %s", threshold(m.Pin), threshold(m.Delete))), nil
	}

	var score *int64
	if v, ok := opts.int("score"); ok {
		score = &v
	}
	action := database.ModerationPin
	if sub == "delete" {
		action = database.ModerationDelete
	}
	if err := database.SetModeration(ctx, b.DB, guild, action, score); err != nil {
		return nil, err
	}
	if score == nil {
		return embed("Moderation", fmt.Sprintf("Automatic %s is disabled.", action)), nil
	}
	verb := "pinned"
	if action == database.ModerationDelete {
		verb = "deleted"
	}
	return embed("Moderation", fmt.Sprintf("Messages reaching a score of %d are %s.", *score, verb)), nil
}

func threshold(v *int64) string {
	if v == nil {
		return "disabled"
	}
	return fmt.Sprint(*v)
}

func handleReactionRole(ctx context.Context, b *bot.Bot, i *discordgo.InteractionCreate) (*discordgo.MessageEmbed, error) {
	sub, opts := subcommand(i)
	db, res := b.DB, b.Engine.Resolver()
	guild, err := res.Guild(ctx, i.GuildID)
	if err != nil {
		return nil, err
	}

	if sub == "list" {
		listings, err := database.ListReactionRoles(ctx, db, guild)
		if err != nil {
			return nil, err
		}
		lines := make([]string, 0, len(listings))
		for _, l := range listings {
			emoji := model.EmojiCount{GuildEmoji: l.GuildEmoji, Unicode: l.Unicode}.Emoji()
			slots := "unlimited"
			if l.Capacity != nil && l.Slots != nil {
				slots = fmt.Sprintf("%d/%d free", *l.Slots, *l.Capacity)
			}
			lines = append(lines, fmt.Sprintf("https://discord.com/channels/%s/%s/%s %s <@&%s> (%s)",
				i.GuildID, l.ChannelID, l.MessageID, emoji, l.RoleID, slots))
		}
		return embed("Reaction roles", list(lines)), nil
	}

	guildID, channelID, messageID, err := parseMessageLink(opts.string("message"))
	if err != nil {
		return nil, err
	}
	if guildID != i.GuildID {
		return nil, fmt.Errorf("the message must be in this server: %w", model.ErrInvalidArgument)
	}
	emoji, err := guildEmoji(ctx, b, i.GuildID, opts.string("emoji"))
	if err != nil {
		return nil, err
	}
	roleID := opts.id("role")

	if sub == "add" {
		if _, err := b.Platform.Message(ctx, channelID, messageID); err != nil {
			return nil, err
		}
		var capacity *int64
		if v, ok := opts.int("slots"); ok {
			capacity = &v
		}
		message, err := res.Message(ctx, i.GuildID, channelID, messageID)
		if err != nil {
			return nil, err
		}
		emojiID, err := res.Emoji(ctx, i.GuildID, emoji)
		if err != nil {
			return nil, err
		}
		role, err := res.Role(ctx, i.GuildID, roleID)
		if err != nil {
			return nil, err
		}
		if err := database.AddReactionRole(ctx, db, guild, message, emojiID, role, capacity); err != nil {
			return nil, err
		}
		if err := b.Platform.AddReaction(ctx, channelID, messageID, emoji); err != nil {
			slog.Warn("could not react to reaction-role message", "message", messageID, "err", err)
		}
		return embed("Reaction roles", fmt.Sprintf("Reacting with %s grants <@&%s>.", emoji, roleID)), nil
	}

	message, ok, err := res.FindMessage(ctx, i.GuildID, channelID, messageID)
	if err != nil {
		return nil, err
	}
	emojiID, found, err := res.FindEmoji(ctx, i.GuildID, emoji)
	if err != nil {
		return nil, err
	}
	if !ok || !found {
		return embed("Reaction roles", "No such reaction role."), nil
	}
	role, err := res.Role(ctx, i.GuildID, roleID)
	if err != nil {
		return nil, err
	}
	n, err := database.RemoveReactionRole(ctx, db, message, emojiID, role)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return embed("Reaction roles", "No such reaction role."), nil
	}
	if left, err := database.HasReactionRoles(ctx, db, message, emojiID); err == nil && !left {
		if err := b.Platform.RemoveOwnReaction(ctx, channelID, messageID, emoji); err != nil && !model.IsNotFound(err) {
			slog.Warn("could not remove own reaction", "message", messageID, "err", err)
		}
	}
	return embed("Reaction roles", fmt.Sprintf("Reacting with %s no longer grants <@&%s>.", emoji, roleID)), nil
}

func handleDrop(ctx context.Context, b *bot.Bot, i *discordgo.InteractionCreate) (*discordgo.MessageEmbed, error) {
	sub, opts := subcommand(i)
	db, res := b.DB, b.Engine.Resolver()

	if sub == "list" {
		guild, err := res.Guild(ctx, i.GuildID)
		if err != nil {
			return nil, err
		}
		channels, err := database.DropChannels(ctx, db, guild)
		if err != nil {
			return nil, err
		}
		mentions := make([]string, 0, len(channels))
		for _, c := range channels {
			mentions = append(mentions, "<#"+c+">")
		}
		return embed("Drop channels", list(mentions)), nil
	}

	channelID := opts.id("channel")
	channel, err := res.Channel(ctx, i.GuildID, channelID)
	if err != nil {
		return nil, err
	}
	if sub == "add" {
		if _, err := database.AddDropChannel(ctx, db, channel); err != nil {
			return nil, err
		}
		return embed("Drop channels", fmt.Sprintf("Departed members' score is dropped in <#%s>.", channelID)), nil
	}
	if _, err := database.RemoveDropChannel(ctx, db, channel); err != nil {
		return nil, err
	}
	return embed("Drop channels", fmt.Sprintf("<#%s> is no longer a drop channel.", channelID)), nil
}

func handleClean(_ context.Context, b *bot.Bot, _ *discordgo.InteractionCreate) (*discordgo.MessageEmbed, error) {
	ctx, cancel := context.WithTimeout(b.Context(), cleanTimeout)
	defer cancel()
	report, err := b.Cleaner.Clean(ctx)
	if err != nil {
		return nil, err
	}
	b.Engine.Modules().Reset()
	return embed("Cleanup", fmt.Sprintf(
		"Removed %d guilds, %d users, %d roles, %d channels, %d emojis and %d messages.\nReconciled %d reaction-role counters.",
		report.Guilds, report.Users, report.Roles, report.Channels, report.Emojis, report.Messages, report.Slots)), nil
}

func list(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, "\n")
}
