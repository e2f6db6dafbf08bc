package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/bwmarrin/discordgo"

	"score-bot/model"
)

// Platform implements model.Platform and scanner.Directory on top of a
// discordgo session.
type Platform struct {
	session *discordgo.Session
}

func NewPlatform(s *discordgo.Session) *Platform {
	return &Platform{session: s}
}

// classify marks 404 responses as model.ErrNotFound.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound {
		return &model.PlatformError{Op: op, Err: fmt.Errorf("%w: %v", model.ErrNotFound, err)}
	}
	return &model.PlatformError{Op: op, Err: err}
}

func toMember(guildID string, m *discordgo.Member) *model.Member {
	member := &model.Member{GuildID: guildID, Roles: m.Roles}
	if m.User != nil {
		member.UserID = m.User.ID
		member.Bot = m.User.Bot
	}
	return member
}

func (p *Platform) Member(ctx context.Context, guildID, userID string) (*model.Member, error) {
	m, err := p.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify("fetch member", err)
	}
	return toMember(guildID, m), nil
}

func (p *Platform) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return classify("add role", p.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx)))
}

func (p *Platform) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return classify("remove role", p.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx)))
}

// Batches up to this size use the per-role endpoints, which cannot
// overwrite a concurrent change to another role of the member.
const perRoleLimit = 4

// editAttempts bounds how often a full role edit is retried while the
// member's roles keep changing underneath it.
const editAttempts = 3

// AddRoles adds several roles to a member.
func (p *Platform) AddRoles(ctx context.Context, guildID, userID string, roleIDs []string) error {
	if len(roleIDs) <= perRoleLimit {
		for _, r := range roleIDs {
			if err := p.AddRole(ctx, guildID, userID, r); err != nil {
				return err
			}
		}
		return nil
	}
	return p.editRoles(ctx, "add roles", guildID, userID, func(current []string) []string {
		for _, r := range roleIDs {
			if !slices.Contains(current, r) {
				current = append(current, r)
			}
		}
		return current
	})
}

// RemoveRoles removes several roles from a member.
func (p *Platform) RemoveRoles(ctx context.Context, guildID, userID string, roleIDs []string) error {
	if len(roleIDs) <= perRoleLimit {
		for _, r := range roleIDs {
			if err := p.RemoveRole(ctx, guildID, userID, r); err != nil {
				return err
			}
		}
		return nil
	}
	return p.editRoles(ctx, "remove roles", guildID, userID, func(current []string) []string {
		return slices.DeleteFunc(current, func(r string) bool { return slices.Contains(roleIDs, r) })
	})
}

// editRoles replaces the member's role list in one edit. The list is read
// twice and the edit only goes out when both reads agree.
func (p *Platform) editRoles(ctx context.Context, op, guildID, userID string, change func([]string) []string) error {
	for attempt := 0; attempt < editAttempts; attempt++ {
		before, err := p.memberRoles(ctx, guildID, userID)
		if err != nil {
			return classify(op, err)
		}
		roles := change(slices.Clone(before))
		now, err := p.memberRoles(ctx, guildID, userID)
		if err != nil {
			return classify(op, err)
		}
		if !sameRoles(before, now) {
			continue
		}
		_, err = p.session.GuildMemberEdit(guildID, userID, &discordgo.GuildMemberParams{Roles: &roles}, discordgo.WithContext(ctx))
		return classify(op, err)
	}
	return &model.PlatformError{Op: op, Err: fmt.Errorf("roles of %s kept changing", userID)}
}

func (p *Platform) memberRoles(ctx context.Context, guildID, userID string) ([]string, error) {
	m, err := p.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return m.Roles, nil
}

func sameRoles(a, b []string) bool {
	a, b = slices.Clone(a), slices.Clone(b)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

func (p *Platform) Message(ctx context.Context, channelID, messageID string) (*model.Message, error) {
	m, err := p.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify("fetch message", err)
	}
	msg := &model.Message{ID: m.ID, ChannelID: m.ChannelID, Pinned: m.Pinned}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
	}
	return msg, nil
}

func (p *Platform) PinMessage(ctx context.Context, channelID, messageID string) error {
	return classify("pin message", p.session.ChannelMessagePin(channelID, messageID, discordgo.WithContext(ctx)))
}

func (p *Platform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return classify("delete message", p.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)))
}

func (p *Platform) RemoveReaction(ctx context.Context, channelID, messageID string, emoji model.Emoji, userID string) error {
	err := p.session.MessageReactionRemove(channelID, messageID, emoji.APIName(), userID, discordgo.WithContext(ctx))
	return classify("remove reaction", err)
}

func (p *Platform) EmojiExists(ctx context.Context, guildID, emojiID string) (bool, error) {
	_, err := p.session.GuildEmoji(guildID, emojiID, discordgo.WithContext(ctx))
	if err == nil {
		return true, nil
	}
	err = classify("fetch emoji", err)
	if model.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// Guilds lists every guild the bot is a member of.
func (p *Platform) Guilds(ctx context.Context) ([]string, error) {
	var ids []string
	after := ""
	for {
		page, err := p.session.UserGuilds(200, "", after, false, discordgo.WithContext(ctx))
		if err != nil {
			return nil, classify("list guilds", err)
		}
		for _, g := range page {
			ids = append(ids, g.ID)
		}
		if len(page) < 200 {
			return ids, nil
		}
		after = page[len(page)-1].ID
	}
}

func (p *Platform) Roles(ctx context.Context, guildID string) ([]string, error) {
	roles, err := p.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify("list roles", err)
	}
	ids := make([]string, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (p *Platform) Channels(ctx context.Context, guildID string) ([]string, error) {
	channels, err := p.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify("list channels", err)
	}
	ids := make([]string, 0, len(channels))
	for _, c := range channels {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (p *Platform) Emojis(ctx context.Context, guildID string) ([]string, error) {
	emojis, err := p.session.GuildEmojis(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify("list emojis", err)
	}
	ids := make([]string, 0, len(emojis))
	for _, e := range emojis {
		ids = append(ids, e.ID)
	}
	return ids, nil
}

// HasMember reports whether userID is still a member of guildID.
func (p *Platform) HasMember(ctx context.Context, guildID, userID string) (bool, error) {
	_, err := p.Member(ctx, guildID, userID)
	return exists(err)
}

// MessageExists reports whether the message can still be fetched.
func (p *Platform) MessageExists(ctx context.Context, channelID, messageID string) (bool, error) {
	_, err := p.Message(ctx, channelID, messageID)
	return exists(err)
}

func exists(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case model.IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// AddReaction reacts to a message as the bot.
func (p *Platform) AddReaction(ctx context.Context, channelID, messageID string, emoji model.Emoji) error {
	return classify("add reaction", p.session.MessageReactionAdd(channelID, messageID, emoji.APIName(), discordgo.WithContext(ctx)))
}

// RemoveOwnReaction removes the bot's own reaction from a message.
func (p *Platform) RemoveOwnReaction(ctx context.Context, channelID, messageID string, emoji model.Emoji) error {
	return classify("remove reaction", p.session.MessageReactionRemove(channelID, messageID, emoji.APIName(), "@me", discordgo.WithContext(ctx)))
}
