package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"score-bot/bot"
	"score-bot/model"
	"score-bot/utils/database"
)

// target returns the user option, defaulting to the caller.
func target(i *discordgo.InteractionCreate, opts options) string {
	if id := opts.id("user"); id != "" {
		return id
	}
	return i.Member.User.ID
}

func scoreFields(s model.UserScore) []*discordgo.MessageEmbedField {
	return []*discordgo.MessageEmbedField{
		{Name: "Score", Value: fmt.Sprint(s.Total()), Inline: true},
		{Name: "Upvotes", Value: fmt.Sprint(s.Upvotes), Inline: true},
		{Name: "Downvotes", Value: fmt.Sprint(s.Downvotes), Inline: true},
		{Name: "Gifted", Value: fmt.Sprint(s.Gifted), Inline: true},
	}
}

func handleScore(ctx context.Context, b *bot.Bot, i *discordgo.InteractionCreate) (*discordgo.MessageEmbed, error) {
	_, opts := subcommand(i)
	userID := target(i, opts)
	e := embed("Score", fmt.Sprintf("<@%s>", userID))

	res := b.Engine.Resolver()
	guild, ok, err := res.FindGuild(ctx, i.GuildID)
	if err != nil {
		return nil, err
	}
	user, found, err := res.FindUser(ctx, i.GuildID, userID)
	if err != nil {
		return nil, err
	}
	if !ok || !found {
		e.Fields = append(scoreFields(model.UserScore{}), &discordgo.MessageEmbedField{Name: "Rank", Value: "not available", Inline: true})
		return e, nil
	}

	stats, err := database.ReceivedStats(ctx, b.DB, user)
	if err != nil {
		return nil, err
	}
	rank, err := database.ScoreRank(ctx, b.DB, guild, user)
	if err != nil {
		return nil, err
	}
	emojis, err := database.ReceivedEmojis(ctx, b.DB, user)
	if err != nil {
		return nil, err
	}

	e.Fields = append(scoreFields(stats), &discordgo.MessageEmbedField{Name: "Rank", Value: fmt.Sprint(rank), Inline: true})
	if len(emojis) > 0 {
		parts := make([]string, 0, len(emojis))
		for _, c := range emojis {
			parts = append(parts, fmt.Sprintf("%s %d", c.Emoji(), c.Count))
		}
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Emojis", Value: strings.Join(parts, "  ")})
	}
	return e, nil
}

func handleGiven(ctx context.Context, b *bot.Bot, i *discordgo.InteractionCreate) (*discordgo.MessageEmbed, error) {
	_, opts := subcommand(i)
	userID := target(i, opts)
	e := embed("Given", fmt.Sprintf("Votes given by <@%s>", userID))

	user, ok, err := b.Engine.Resolver().FindUser(ctx, i.GuildID, userID)
	if err != nil {
		return nil, err
	}
	var stats model.UserScore
	if ok {
		if stats, err = database.GivenStats(ctx, b.DB, user); err != nil {
			return nil, err
		}
	}
	e.Fields = scoreFields(stats)
	return e, nil
}

func handleGift(ctx context.Context, b *bot.Bot, i *discordgo.InteractionCreate) (*discordgo.MessageEmbed, error) {
	_, opts := subcommand(i)
	toID := opts.id("user")
	amount, _ := opts.int("amount")

	moved, err := b.Engine.Gift(ctx, i.GuildID, i.Member.User.ID, toID, amount)
	if moved == 0 && err == nil {
		return embed("Gift", "You have no upvotes to give."), nil
	}
	if moved == 0 {
		return nil, err
	}
	e := embed("Gift", fmt.Sprintf("<@%s> gave %d upvotes to <@%s>.", i.Member.User.ID, moved, toID))
	if err != nil {
		slog.Warn("gift committed but role sync failed", "guild", i.GuildID, "err", err)
		e.Footer = &discordgo.MessageEmbedFooter{Text: "Roles will be updated on the next vote."}
	}
	return e, nil
}

func handleGlobal(ctx context.Context, b *bot.Bot, i *discordgo.InteractionCreate) (*discordgo.MessageEmbed, error) {
	_, opts := subcommand(i)
	userID := target(i, opts)

	stats, err := database.GlobalStats(ctx, b.DB, userID)
	if err != nil {
		return nil, err
	}
	e := embed("Global score", fmt.Sprintf("<@%s> across %d servers", userID, stats.Guilds))
	rank := "not available"
	if stats.Rank > 0 {
		rank = fmt.Sprint(stats.Rank)
	}
	e.Fields = append(scoreFields(stats.Received), &discordgo.MessageEmbedField{Name: "Rank", Value: rank, Inline: true})
	e.Fields = append(e.Fields,
		&discordgo.MessageEmbedField{Name: "Upvotes given", Value: fmt.Sprint(stats.Given.Upvotes), Inline: true},
		&discordgo.MessageEmbedField{Name: "Downvotes given", Value: fmt.Sprint(stats.Given.Downvotes), Inline: true},
	)
	return e, nil
}
