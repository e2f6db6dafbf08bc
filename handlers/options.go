package handlers

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"

	"score-bot/model"
)

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

// subcommand returns the invoked subcommand name and its options.
func subcommand(i *discordgo.InteractionCreate) (string, options) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return "", toOptions(nil)
	}
	sub := data.Options[0]
	if sub.Type != discordgo.ApplicationCommandOptionSubCommand {
		return "", toOptions(data.Options)
	}
	return sub.Name, toOptions(sub.Options)
}

func toOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	m := make(options, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func (o options) string(name string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func (o options) int(name string) (int64, bool) {
	if opt, ok := o[name]; ok {
		return opt.IntValue(), true
	}
	return 0, false
}

// id returns the snowflake of a user, role or channel option.
func (o options) id(name string) string {
	if opt, ok := o[name]; ok {
		if s, ok := opt.Value.(string); ok {
			return s
		}
	}
	return ""
}

var customEmoji = regexp.MustCompile(`^<a?:(\w+):(\d+)>$`)

// parseEmoji accepts a unicode emoji or a custom emoji mention.
func parseEmoji(s string) (model.Emoji, error) {
	s = strings.TrimSpace(s)
	if m := customEmoji.FindStringSubmatch(s); m != nil {
		return model.Emoji{Name: m[1], ID: m[2]}, nil
	}
	if s == "" || strings.ContainsAny(s, "<>: \t") {
		return model.Emoji{}, fmt.Errorf("%q is not an emoji: %w", s, model.ErrInvalidArgument)
	}
	for _, r := range s {
		if r < 0x80 && r != '#' && r != '*' && (r < '0' || r > '9') {
			return model.Emoji{}, fmt.Errorf("%q is not an emoji: %w", s, model.ErrInvalidArgument)
		}
	}
	return model.Emoji{Name: s}, nil
}

var messageLink = regexp.MustCompile(`^https://(?:(?:ptb|canary)\.)?discord(?:app)?\.com/channels/(\d+)/(\d+)/(\d+)/?$`)

// parseMessageLink splits a message link into its guild, channel and message ids.
func parseMessageLink(link string) (guildID, channelID, messageID string, err error) {
	m := messageLink.FindStringSubmatch(strings.TrimSpace(link))
	if m == nil {
		return "", "", "", fmt.Errorf("%q is not a message link: %w", link, model.ErrInvalidArgument)
	}
	return m[1], m[2], m[3], nil
}

// userMessage turns an error into text that can be shown to the caller.
func userMessage(err error) string {
	var pe *model.PlatformError
	switch {
	case errors.Is(err, model.ErrInvalidArgument):
		return err.Error()
	case model.IsNotFound(err):
		return "That no longer exists."
	case errors.As(err, &pe):
		return "The request was refused, check my permissions."
	default:
		return "Something went wrong, please try again later."
	}
}
